// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package badfree is fixture data for reentrancy_test.go: its Free
// callback reenters the collector, which tgcvet must catch.
package badfree

import "github.com/aclements/tgc"

type node struct {
	tgc.Header
	child *node
}

var nodeType = tgc.TypeDescriptor{
	Mark: markNode,
	Free: freeNode,
}

func markNode(state *tgc.State, h *tgc.Header) {
	n := tgc.Entry[node](h, 0)
	if n.child != nil {
		tgc.Mark(state, &n.child.Header)
	}
}

// freeNode is wrong: it protects a replacement node from inside a
// callback that runs during sweep, which is exactly the reentrancy
// Mark and Free are documented to forbid.
func freeNode(state *tgc.State, h *tgc.Header) {
	replacement := &node{}
	tgc.InitObject(state, &replacement.Header, &nodeType)
	tgc.Protect(state, &replacement.Header)
}

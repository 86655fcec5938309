// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tgc

import (
	"unsafe"

	"github.com/aclements/tgc/internal/ilist"
)

// Root is a long-lived, user-drawn source of strong references: the
// host's globals, an interpreter's VM stack, anything not convenient
// to express as a Scope. The host owns the storage; the collector only
// links it into state.roots.
type Root struct {
	link ilist.Node
	mark func(state *State, root *Root)
}

// AddRoot installs root, idempotent with respect to its membership in
// state's root list: adding an already-added root just re-links it at
// the tail. At each cycle, mark is invoked once; it should call Mark
// (the tracer primitive) on every Header this root considers live.
func AddRoot(state *State, root *Root, mark func(state *State, root *Root)) {
	if root.link.Linked() {
		root.link.Remove()
	} else {
		root.link.Init()
	}
	root.mark = mark
	state.roots.PushBack(&root.link)
}

// DelRoot removes root from whichever root list it belongs to.
// Removing a root that was never added, or already removed, is a
// no-op — the operation is idempotent with respect to membership.
func DelRoot(root *Root) {
	if root.link.Linked() {
		root.link.Remove()
	}
}

func rootEntry(n *ilist.Node) *Root {
	return fromNode[Root](unsafe.Pointer(n), 0)
}

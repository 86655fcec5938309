// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"math/rand"

	"github.com/aclements/go-gg/table"
	"github.com/aclements/tgc"
)

// node is the synthetic heap object tgcbench allocates. Unlike the demo
// cons cell in cmd/tgclist, it carries an arbitrary number of outgoing
// edges so buildSyntheticHeap can shape graphs of any fan-out.
type node struct {
	tgc.Header
	next []*node
}

var nodeType = tgc.TypeDescriptor{Mark: nodeMark}

func nodeMark(state *tgc.State, h *tgc.Header) {
	n := tgc.Entry[node](h, 0)
	for _, e := range n.next {
		tgc.Mark(state, &e.Header)
	}
}

// buildSyntheticHeap allocates size nodes, gives each between 0 and
// 2*fanout-1 edges to randomly chosen nodes (itself included), roots
// about liveFrac of them directly in a single
// scope, and returns the ready-to-collect state. The returned *node
// slice is only for tests; ordinary callers just run state.RunTimed.
func buildSyntheticHeap(rng *rand.Rand, size, fanout int, liveFrac float64) (*tgc.State, []*node) {
	state := new(tgc.State)
	state.Init()

	nodes := make([]*node, size)
	for i := range nodes {
		nodes[i] = &node{}
		tgc.InitObject(state, &nodes[i].Header, &nodeType)
	}
	for _, n := range nodes {
		edges := rng.Intn(2 * fanout)
		for j := 0; j < edges; j++ {
			n.next = append(n.next, nodes[rng.Intn(size)])
		}
	}

	var scope tgc.Scope
	pool := make([]*tgc.Header, size)
	tgc.PushScope(state, &scope, pool)
	for _, n := range nodes {
		if rng.Float64() < liveFrac {
			tgc.Protect(state, &n.Header)
		}
	}

	return state, nodes
}

type row struct {
	Size    int
	MarkNS  float64
	SweepNS float64
}

func tableFromRows(rows []row) table.Grouping {
	return table.TableFromStructs(rows)
}

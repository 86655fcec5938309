// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tgc

import (
	"github.com/aclements/tgc/internal/ilist"
	"github.com/aclements/tgc/internal/istack"
)

// State is one collector instance. A degenerate process-wide singleton
// is permitted but not required: State is passed explicitly to every
// operation precisely so a program can run several independent
// collectors, or tear one down and start fresh, without any shared
// global mutable state.
//
// A State, and every Header, Root, Scope, and Weak registered with it,
// belongs to exactly one mutator goroutine. Nothing here is safe for
// concurrent access.
type State struct {
	heap   ilist.List // live, untraced objects: the from-space at cycle start
	stage  ilist.List // objects proven reachable this cycle; empty between cycles
	pinned ilist.List // objects exempt from reclamation until Unpin

	roots ilist.List // registered root descriptors, in registration order

	scopes istack.Stack // open scope frames, innermost on top

	weakPending istack.Stack // weak heads awaiting key-liveness decision this cycle
}

// Init brings a zero State to a ready, empty state. It must be called
// before any other operation on state.
func (state *State) Init() {
	state.heap.Init()
	state.stage.Init()
	state.pinned.Init()
	state.roots.Init()
	state.scopes = istack.Stack{}
	state.weakPending = istack.Stack{}
}

// Destroy tears state down: every pinned object is returned to the
// heap, every root and open scope is forgotten, and one final
// collection cycle runs. With no roots and no scopes left, that cycle
// finds nothing reachable, so every remaining object's Free callback
// fires exactly once.
//
// Calling Destroy does not free state itself; the host owns that
// storage, as always.
func (state *State) Destroy() {
	state.heap.SpliceBack(&state.pinned)
	state.roots.Init()
	state.scopes = istack.Stack{}
	state.Run()
}

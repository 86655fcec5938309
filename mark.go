// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tgc

import (
	"unsafe"

	"github.com/aclements/tgc/internal/ilist"
	"github.com/aclements/tgc/internal/istack"
)

// Run executes one collection cycle: mark from roots, resolve weak
// references to a fixed point, then sweep. The phases run in this
// fixed order — Marking, WeakFixpoint, Sweeping — with no state
// observable to the mutator in between; Run either completes this
// whole sequence or (only via a programmer error inside a callback)
// does not return at all. Calling Run (directly or via Destroy) from
// inside a TypeDescriptor.Mark or .Free callback is undefined
// behavior.
func (state *State) Run() {
	state.stage.Init()
	state.weakPending = istack.Stack{}

	state.markRoots()
	state.tracePins()
	state.drain(nil)
	state.resolveWeaks()
	state.sweep()
}

// markRoots seeds the worklist: first every object protected in an
// open scope, innermost scope first, then every registered root's
// reported reachable set. Both paths only ever call Mark, so this is
// just seeding — it does not itself invoke any object's own Mark
// callback.
func (state *State) markRoots() {
	state.scopes.ForEach(func(n *istack.Node) {
		scope := scopeEntry(n)
		for i := 0; i < scope.top; i++ {
			Mark(state, scope.pool[i])
		}
	})
	state.roots.ForEach(func(n *ilist.Node) {
		root := rootEntry(n)
		root.mark(state, root)
	})
}

// tracePins propagates reachability out of every pinned object's
// subgraph without moving the pinned objects themselves: a pinned
// header's own mark bit was already forced on by Pin and stays that
// way until Unpin, so it never needs (and must never receive) a call
// to the tracer primitive.
func (state *State) tracePins() {
	state.pinned.ForEach(func(n *ilist.Node) {
		h := headerEntry(n)
		if td := h.typ(); td != nil && td.Mark != nil {
			td.Mark(state, h)
		}
	})
}

// drain invokes every object's own Mark callback for each header in
// state.stage strictly after from (or from the front, if from is nil),
// walking forward to whatever the current tail is. Because Mark (the
// tracer primitive) appends newly reached headers to the tail of
// stage, a single forward walk that keeps re-reading the tail is
// enough to cover everything transitively reachable — no separate
// queue or recursion is needed.
func (state *State) drain(from *ilist.Node) {
	state.stage.ForEachFrom(from, func(n *ilist.Node) {
		h := headerEntry(n)
		if td := h.typ(); td != nil && td.Mark != nil {
			td.Mark(state, h)
		}
	})
}

// resolveWeaks runs the bounded fixed-point loop described in the
// weak-reference protocol: repeatedly take the batch of weak heads
// whose key liveness is still undecided, resolve the ones whose key
// now has its mark bit set (tracing their secondary edges), and put
// the rest back for the next round. Each round either makes the stage
// grow (because resolving a weak's secondary edges reached something
// new) or it doesn't, in which case every weak still undecided has a
// provably dead key and the loop terminates.
func (state *State) resolveWeaks() {
	if state.weakPending.Empty() {
		return
	}

	for {
		snapshot := state.stage.Back()

		batch := state.weakPending.Take()
		batch.ForEachSafe(func(n *istack.Node) {
			w := weakFromPend(n)
			if !w.key.marked() {
				state.weakPending.Push(&w.pend)
				return
			}
			if w.typ != nil && w.typ.Mark != nil {
				w.typ.Mark(state, &w.Header)
			}
		})

		if state.stage.Back() == snapshot {
			break
		}
		state.drain(snapshot)
	}

	state.weakPending.ForEachSafe(func(n *istack.Node) {
		w := weakFromPend(n)
		w.key = nil
		if w.notify != nil {
			w.notify.Push(&w.pend)
		}
	})
	state.weakPending = istack.Stack{}
}

func headerEntry(n *ilist.Node) *Header {
	return fromNode[Header](unsafe.Pointer(n), 0)
}

// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tgc

import "github.com/aclements/tgc/internal/ilist"

// sweep runs after weak resolution: clear the mark bit on every
// survivor, free everything left in heap (which by construction is
// exactly what marking never reached), then splice the survivors into
// heap as the next cycle's from-space.
//
// Pinned headers are deliberately left alone here. Their mark bit was
// forced on by Pin and must stay on across every cycle until Unpin —
// clearing it here would let a later cycle's tracer primitive mistake
// a pinned object reached via an ordinary strong edge for a fresh,
// unmarked object and splice it out of pinned into stage.
func (state *State) sweep() {
	state.sweepCounted()
}

// sweepCounted is sweep's implementation; it additionally returns how
// many objects it freed, for RunTimed.
func (state *State) sweepCounted() int {
	state.stage.ForEach(func(n *ilist.Node) {
		headerEntry(n).clearMark()
	})

	freed := 0
	state.heap.ForEachSafe(func(n *ilist.Node) {
		h := headerEntry(n)
		n.Remove()
		freed++
		if td := h.typ(); td != nil && td.Free != nil {
			td.Free(state, h)
		}
	})

	state.heap.SpliceBack(&state.stage)
	return freed
}

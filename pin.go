// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tgc

// Pin moves h to state's pinned set and forces its mark bit
// permanently on, so that no strong edge the tracer ever follows into
// h can mistake it for an ordinary unmarked heap object and relocate
// it into the mark worklist. A pinned object, its transitive strong
// closure, and any weak reference keyed on it all survive every cycle
// until Unpin.
//
// Sweep never clears a pinned header's mark bit — only Unpin does —
// which is what lets Pin's effect span arbitrarily many cycles without
// re-pinning.
func Pin(state *State, h *Header) {
	h.setMark()
	state.pinned.MoveToBack(&h.link)
}

// Unpin returns h to state's heap and clears its mark bit. It does not
// schedule or perform a collection; h is simply eligible for
// reclamation starting with whatever cycle the host runs next.
func Unpin(state *State, h *Header) {
	h.clearMark()
	state.heap.MoveToBack(&h.link)
}

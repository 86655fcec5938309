// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tgc

import (
	"time"

	"github.com/aclements/tgc/internal/ilist"
	"github.com/aclements/tgc/internal/istack"
)

// CycleStats breaks down the cost and yield of one RunTimed call. It
// exists for cmd/tgcbench; ordinary hosts should just call Run.
type CycleStats struct {
	Mark, Sweep  time.Duration
	ObjectsFreed int
	ObjectsLive  int
}

// RunTimed runs one collection cycle exactly like Run, but separately
// times the mark phase (seeding plus draining plus weak resolution) and
// the sweep phase, and counts objects freed and objects surviving. It
// has no effect on collector semantics; it only observes them.
func (state *State) RunTimed() CycleStats {
	state.stage.Init()
	state.weakPending = istack.Stack{}

	markStart := time.Now()
	state.markRoots()
	state.tracePins()
	state.drain(nil)
	state.resolveWeaks()
	markElapsed := time.Since(markStart)

	sweepStart := time.Now()
	freed := state.sweepCounted()
	sweepElapsed := time.Since(sweepStart)

	live := 0
	state.heap.ForEach(func(n *ilist.Node) { live++ })
	state.pinned.ForEach(func(n *ilist.Node) { live++ })

	return CycleStats{
		Mark:         markElapsed,
		Sweep:        sweepElapsed,
		ObjectsFreed: freed,
		ObjectsLive:  live,
	}
}

// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bench

import "time"

// The result keys cmd/tgcbench writes and internal/bench/cycle_test.go
// exercises. Any other tool reading these files (benchstat, custom
// scripts) sees ordinary benchmark metrics named after these keys.
const (
	MarkNS       = "mark-ns"
	SweepNS      = "sweep-ns"
	ObjectsFreed = "objects-freed"
	ObjectsLive  = "objects-live"
)

// Cycle summarizes one synthetic collection cycle: how long marking and
// sweeping took, and how many objects were reclaimed versus survived.
type Cycle struct {
	Mark, Sweep  time.Duration
	ObjectsFreed int
	ObjectsLive  int
}

// AppendCycle appends a Record for one named, sized benchmark run
// (iterations cycles averaged) summarizing cs to records, returning the
// extended slice.
func AppendCycle(records []*Record, name string, iterations int, cs Cycle) []*Record {
	return append(records, &Record{
		Name:       name,
		Iterations: iterations,
		Config:     map[string]*Config{"gomaxprocs": {RawValue: "1"}},
		Result: map[string]float64{
			MarkNS:       float64(cs.Mark.Nanoseconds()),
			SweepNS:      float64(cs.Sweep.Nanoseconds()),
			ObjectsFreed: float64(cs.ObjectsFreed),
			ObjectsLive:  float64(cs.ObjectsLive),
		},
	})
}

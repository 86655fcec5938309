// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package explore

import "testing"

func TestDFSVisitsEveryLeaf(t *testing.T) {
	var r Runner
	r.Strategy = &DFS{MaxDepth: 3}

	var leaves [][2]int
	r.Run(func(choose func(int) int) {
		a := choose(2)
		b := choose(3)
		leaves = append(leaves, [2]int{a, b})
	})

	if want := 6; r.Paths() != want {
		t.Fatalf("got %d paths, want %d", r.Paths(), want)
	}
	seen := map[[2]int]bool{}
	for _, l := range leaves {
		seen[l] = true
	}
	for a := 0; a < 2; a++ {
		for b := 0; b < 3; b++ {
			if !seen[[2]int{a, b}] {
				t.Errorf("never visited (%d, %d)", a, b)
			}
		}
	}
}

func TestDFSDepthBound(t *testing.T) {
	var r Runner
	r.Strategy = &DFS{MaxDepth: 2}

	terminatedEarly := 0
	r.Run(func(choose func(int) int) {
		for i := 0; i < 5; i++ {
			choose(2)
		}
		terminatedEarly++
	})

	if terminatedEarly != 0 {
		t.Fatalf("a 5-choice path completed under a depth bound of 2")
	}
	if r.Paths() != 4 {
		t.Fatalf("got %d paths, want 4", r.Paths())
	}
}

func TestDFSDetectsNondeterminism(t *testing.T) {
	defer func() {
		err := recover()
		if _, ok := err.(*ErrNondeterminism); !ok {
			t.Fatalf("got panic %v, want *ErrNondeterminism", err)
		}
	}()

	var r Runner
	r.Strategy = &DFS{MaxDepth: 4}

	first := true
	r.Run(func(choose func(int) int) {
		if first {
			choose(2)
			first = false
		} else {
			choose(3) // different width at the same choice point
		}
	})
	t.Fatal("expected a panic from the second path")
}

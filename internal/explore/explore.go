// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package explore drives a function repeatedly over every path through a
// bounded tree of choice points, so a property test can check an
// invariant on every reachable path instead of a handful of sampled
// ones.
package explore

import "fmt"

// DefaultMaxDepth is the maximum tree depth a Strategy uses if its
// MaxDepth field is left at zero.
const DefaultMaxDepth = 64

// A Strategy decides which branch to take at each choice point and when
// a run's path is exhausted.
type Strategy interface {
	// Choose returns a value in [0, n) for the current choice point. If
	// the current path cannot be extended (for example, it has reached
	// a depth bound), it returns 0, false.
	//
	// The first call to Choose after constructing a Strategy or calling
	// Next starts back at the root of the tree.
	Choose(n int) (int, bool)

	// Next advances to the next path to explore. It returns false once
	// every path has been visited.
	Next() bool

	// Reset returns the Strategy to the state where no path has been
	// explored.
	Reset()
}

// DFS explores the choice space in depth-first order: it exhausts every
// continuation of the current path before backtracking. Given enough
// calls to Next, it visits the whole tree up to MaxDepth.
type DFS struct {
	// MaxDepth bounds how many choice points a single path may contain.
	// Zero means DefaultMaxDepth.
	MaxDepth int

	widths []int
	path   []int
	step   int
}

func (s *DFS) Reset() {
	s.widths = nil
	s.path = nil
	s.step = 0
}

func (s *DFS) maxDepth() int {
	if s.MaxDepth == 0 {
		return DefaultMaxDepth
	}
	return s.MaxDepth
}

func (s *DFS) Choose(n int) (int, bool) {
	if s.step < len(s.path) {
		// Replaying a previously recorded path.
		if n != s.widths[s.step] {
			panic(&ErrNondeterminism{fmt.Sprintf("Choose(%d) during replay, but this point previously saw Choose(%d)", n, s.widths[s.step])})
		}
		res := s.path[s.step]
		s.step++
		return res, true
	}

	if len(s.path) == s.maxDepth() {
		return 0, false
	}

	// Extending the path with a fresh choice point, always taking
	// branch 0 first.
	s.widths = append(s.widths, n)
	s.path = append(s.path, 0)
	s.step++
	return 0, true
}

func (s *DFS) Next() bool {
	s.step = 0

	for i := len(s.path) - 1; i >= 0; i-- {
		s.path[i]++
		if s.path[i] < s.widths[i] {
			break
		}
		s.path = s.path[:len(s.path)-1]
	}
	s.widths = s.widths[:len(s.path)]
	return len(s.widths) > 0
}

// ErrNondeterminism is panicked by a Strategy when it detects that the
// function under exploration made a different sequence of choice-point
// widths on replay than it did the first time that path was recorded.
type ErrNondeterminism struct {
	Detail string
}

func (e *ErrNondeterminism) Error() string {
	return "non-determinism detected: " + e.Detail
}

// Runner drives a function over every path a Strategy produces.
type Runner struct {
	Strategy Strategy

	active bool
	paths  int
}

// Run calls root once per path in s.Strategy's tree, stopping when the
// Strategy reports no paths remain. Run panics if called re-entrantly
// (root calling back into the same Runner's Run).
func (r *Runner) Run(root func(choose func(n int) int)) {
	if r.active {
		panic("explore: nested Run call")
	}
	r.active = true
	defer func() { r.active = false }()

	r.paths = 0
	r.Strategy.Reset()
	choose := func(n int) int {
		v, ok := r.Strategy.Choose(n)
		if !ok {
			panic(errPathTerminated)
		}
		return v
	}

	for {
		r.paths++
		r.runOne(root, choose)
		if !r.Strategy.Next() {
			break
		}
	}
}

// Paths returns the number of paths visited by the most recent Run.
func (r *Runner) Paths() int { return r.paths }

func (r *Runner) runOne(root func(choose func(n int) int), choose func(n int) int) {
	defer func() {
		if err := recover(); err != nil && err != errPathTerminated {
			panic(err)
		}
	}()
	root(choose)
}

var errPathTerminated = fmt.Errorf("explore: path terminated")

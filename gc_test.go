// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tgc_test

import (
	"sort"
	"testing"

	"github.com/aclements/tgc"
	"github.com/aclements/tgc/internal/istack"
)

// cons is the demo mutator type used throughout this file: a classic
// singly linked list node, the same shape the original C source's
// gc_test.c builds its scenarios out of.
type cons struct {
	tgc.Header
	value int
	next  *cons
}

var consType = tgc.TypeDescriptor{Mark: consMark, Free: consFree}

func consMark(state *tgc.State, h *tgc.Header) {
	c := tgc.Entry[cons](h, 0)
	if c.next != nil {
		tgc.Mark(state, &c.next.Header)
	}
}

func newConsFreeLog(log *[]int) tgc.TypeDescriptor {
	return tgc.TypeDescriptor{
		Mark: consMark,
		Free: func(state *tgc.State, h *tgc.Header) {
			c := tgc.Entry[cons](h, 0)
			*log = append(*log, c.value)
		},
	}
}

func consFree(state *tgc.State, h *tgc.Header) {
	// Unused by default; tests that care about free order install
	// newConsFreeLog's type instead.
}

func newCons(state *tgc.State, td *tgc.TypeDescriptor, value int, next *cons) *cons {
	c := &cons{value: value, next: next}
	tgc.InitObject(state, &c.Header, td)
	tgc.Protect(state, &c.Header)
	return c
}

func TestScenario(t *testing.T) {
	var freed []int
	listType := newConsFreeLog(&freed)

	var state tgc.State
	state.Init()

	var outer tgc.Scope
	outerPool := make([]*tgc.Header, 8)
	tgc.PushScope(&state, &outer, outerPool)

	var d *cons
	var e *cons
	func() {
		var inner tgc.Scope
		innerPool := make([]*tgc.Header, 8)
		tgc.PushScope(&state, &inner, innerPool)

		a := newCons(&state, &listType, 1, nil)
		_ = newCons(&state, &listType, 2, nil)
		_ = newCons(&state, &listType, 3, nil)
		d = newCons(&state, &listType, 4, a)
		e = newCons(&state, &listType, 5, nil)
		tgc.Pin(&state, &e.Header)

		state.Run()
		if len(freed) != 0 {
			t.Fatalf("scenario 1: got %d frees %v, want 0", len(freed), freed)
		}

		// Promote d to the outer scope before the inner scope
		// closes, the way the original returns it from doit().
		tgc.PopScope(&state)
		tgc.Protect(&state, &d.Header)
	}()

	state.Run()
	sort.Ints(freed)
	if got, want := freed, []int{2, 3}; !equalInts(got, want) {
		t.Fatalf("scenario 2: freed %v, want %v", got, want)
	}
	freed = freed[:0]

	d.next = nil
	state.Run()
	if got, want := freed, []int{1}; !equalInts(got, want) {
		t.Fatalf("scenario 3: freed %v, want %v", got, want)
	}
	freed = freed[:0]

	tgc.PopScope(&state)
	state.Run()
	if got, want := freed, []int{4}; !equalInts(got, want) {
		t.Fatalf("scenario 4: freed %v, want %v", got, want)
	}
	freed = freed[:0]

	tgc.Unpin(&state, &e.Header)
	state.Run()
	if got, want := freed, []int{5}; !equalInts(got, want) {
		t.Fatalf("scenario 5: freed %v, want %v", got, want)
	}

	state.Destroy()
}

func TestWeakExpiresWhenKeyUnreachable(t *testing.T) {
	var state tgc.State
	state.Init()

	var scope tgc.Scope
	pool := make([]*tgc.Header, 8)
	tgc.PushScope(&state, &scope, pool)

	var notify istack.Stack
	key := newCons(&state, &consType, 9, nil)
	var weak tgc.Weak
	tgc.InitWeak(&state, &weak, nil, &key.Header, &notify)
	tgc.Protect(&state, &weak.Header)

	state.Run()
	if weak.Key() == nil {
		t.Fatal("key still rooted: weak should not have expired")
	}
	if !notify.Empty() {
		t.Fatal("weak should not be on the notify stack yet")
	}

	tgc.PopScope(&state)
	// Re-root the weak itself in a fresh outer scope so it survives
	// to be observed, while its key does not.
	var outer tgc.Scope
	outerPool := make([]*tgc.Header, 8)
	tgc.PushScope(&state, &outer, outerPool)
	tgc.Protect(&state, &weak.Header)

	state.Run()
	if weak.Key() != nil {
		t.Fatal("key unrooted: weak should have expired")
	}
	if notify.Empty() {
		t.Fatal("expired weak should have been pushed onto notify")
	}

	state.Destroy()
}

func TestPinSurvivesMultipleCycles(t *testing.T) {
	var freed []int
	listType := newConsFreeLog(&freed)

	var state tgc.State
	state.Init()

	pinned := &cons{value: 42}
	tgc.InitObject(&state, &pinned.Header, &listType)
	tgc.Pin(&state, &pinned.Header)

	for i := 0; i < 5; i++ {
		state.Run()
	}
	if len(freed) != 0 {
		t.Fatalf("pinned object freed after %d cycles: %v", len(freed), freed)
	}

	tgc.Unpin(&state, &pinned.Header)
	state.Run()
	if got, want := freed, []int{42}; !equalInts(got, want) {
		t.Fatalf("freed %v after unpin, want %v", got, want)
	}
}

func TestIdempotence(t *testing.T) {
	var freed []int
	listType := newConsFreeLog(&freed)

	var state tgc.State
	state.Init()
	unrooted := &cons{value: 1}
	tgc.InitObject(&state, &unrooted.Header, &listType)

	state.Run()
	first := len(freed)
	if first == 0 {
		t.Fatal("first run should have freed the unrooted object")
	}

	state.Run()
	if len(freed) != first {
		t.Fatalf("second run freed more objects: %v", freed)
	}
}

func TestCycleToleranceUnreachableCycleIsReclaimed(t *testing.T) {
	var freed []int
	listType := newConsFreeLog(&freed)

	var state tgc.State
	state.Init()

	a := &cons{value: 1}
	b := &cons{value: 2}
	tgc.InitObject(&state, &a.Header, &listType)
	tgc.InitObject(&state, &b.Header, &listType)
	a.next = b
	b.next = a // a <-> b cyclic, rooted by nothing

	state.Run()
	sort.Ints(freed)
	if got, want := freed, []int{1, 2}; !equalInts(got, want) {
		t.Fatalf("freed %v, want %v", got, want)
	}
}

func TestCycleToleranceReachableCycleSurvives(t *testing.T) {
	var freed []int
	listType := newConsFreeLog(&freed)

	var state tgc.State
	state.Init()

	var scope tgc.Scope
	pool := make([]*tgc.Header, 4)
	tgc.PushScope(&state, &scope, pool)

	a := newCons(&state, &listType, 1, nil)
	b := &cons{value: 2}
	tgc.InitObject(&state, &b.Header, &listType)
	a.next = b
	b.next = a

	state.Run()
	if len(freed) != 0 {
		t.Fatalf("reachable cycle freed: %v", freed)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

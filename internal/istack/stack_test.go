// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package istack

import (
	"testing"
	"unsafe"
)

type item struct {
	Node
	id int
}

func nodePointer(n *Node) *item {
	return (*item)(unsafe.Pointer(n))
}

func TestPushPopLIFO(t *testing.T) {
	var s Stack
	if !s.Empty() {
		t.Fatal("zero-value stack should be empty")
	}
	a, b, c := &item{id: 1}, &item{id: 2}, &item{id: 3}
	s.Push(&a.Node)
	s.Push(&b.Node)
	s.Push(&c.Node)

	for _, want := range []int{3, 2, 1} {
		n := s.Pop()
		if n == nil {
			t.Fatalf("want %d, stack empty", want)
		}
		if got := nodePointer(n).id; got != want {
			t.Errorf("got %d, want %d", got, want)
		}
	}
	if !s.Empty() {
		t.Error("stack should be empty after draining")
	}
	if s.Pop() != nil {
		t.Error("pop on empty stack should return nil")
	}
}

func TestForEachOrder(t *testing.T) {
	var s Stack
	a, b, c := &item{id: 1}, &item{id: 2}, &item{id: 3}
	s.Push(&a.Node)
	s.Push(&b.Node)
	s.Push(&c.Node)

	var got []int
	s.ForEach(func(n *Node) { got = append(got, nodePointer(n).id) })
	want := []int{3, 2, 1}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}

func TestTakeEmptiesSource(t *testing.T) {
	var s Stack
	a, b := &item{id: 1}, &item{id: 2}
	s.Push(&a.Node)
	s.Push(&b.Node)

	taken := s.Take()
	if !s.Empty() {
		t.Error("source stack should be empty after Take")
	}
	var got []int
	taken.ForEachSafe(func(n *Node) { got = append(got, nodePointer(n).id) })
	if want := []int{2, 1}; len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestForEachSafeAllowsRepush(t *testing.T) {
	var src, dst Stack
	a, b, c := &item{id: 1}, &item{id: 2}, &item{id: 3}
	src.Push(&a.Node)
	src.Push(&b.Node)
	src.Push(&c.Node)

	src.ForEachSafe(func(n *Node) {
		if nodePointer(n).id != 2 {
			dst.Push(n)
		}
	})

	var got []int
	dst.ForEach(func(n *Node) { got = append(got, nodePointer(n).id) })
	if want := []int{1, 3}; len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %v, want %v", got, want)
	}
}

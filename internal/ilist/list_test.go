// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ilist

import (
	"testing"
	"unsafe"
)

type item struct {
	Node
	id int
}

func collect(l *List) []int {
	var got []int
	l.ForEach(func(n *Node) {
		got = append(got, nodePointer(n).id)
	})
	return got
}

// nodePointer recovers an *item whose Node field is at offset 0; tests
// only, since the package itself never needs to recover a host type.
func nodePointer(n *Node) *item {
	return (*item)(unsafe.Pointer(n))
}

func TestPushOrder(t *testing.T) {
	var l List
	l.Init()
	a, b, c := &item{id: 1}, &item{id: 2}, &item{id: 3}
	a.Init()
	b.Init()
	c.Init()

	l.PushBack(&a.Node)
	l.PushBack(&b.Node)
	l.PushFront(&c.Node)

	got := collect(&l)
	want := []int{3, 1, 2}
	if !equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRemove(t *testing.T) {
	var l List
	l.Init()
	a, b, c := &item{id: 1}, &item{id: 2}, &item{id: 3}
	a.Init()
	b.Init()
	c.Init()
	l.PushBack(&a.Node)
	l.PushBack(&b.Node)
	l.PushBack(&c.Node)

	b.Remove()
	if got, want := collect(&l), []int{1, 3}; !equal(got, want) {
		t.Errorf("after remove: got %v, want %v", got, want)
	}
	if !b.Empty() {
		t.Error("removed node should be its own empty list")
	}
}

func TestForEachSafeAllowsRemoval(t *testing.T) {
	var l List
	l.Init()
	items := make([]*item, 5)
	for i := range items {
		items[i] = &item{id: i}
		items[i].Init()
		l.PushBack(&items[i].Node)
	}

	var got []int
	l.ForEachSafe(func(n *Node) {
		it := nodePointer(n)
		got = append(got, it.id)
		if it.id%2 == 0 {
			n.Remove()
		}
	})
	if want := []int{0, 1, 2, 3, 4}; !equal(got, want) {
		t.Errorf("visited %v, want %v", got, want)
	}
	if remaining := collect(&l); !equal(remaining, []int{1, 3}) {
		t.Errorf("remaining %v, want [1 3]", remaining)
	}
}

func TestSpliceBack(t *testing.T) {
	var dst, src List
	dst.Init()
	src.Init()

	d1 := &item{id: 1}
	d1.Init()
	dst.PushBack(&d1.Node)

	s1, s2 := &item{id: 2}, &item{id: 3}
	s1.Init()
	s2.Init()
	src.PushBack(&s1.Node)
	src.PushBack(&s2.Node)

	dst.SpliceBack(&src)

	if !src.Empty() {
		t.Error("src should be empty after splice")
	}
	if got, want := collect(&dst), []int{1, 2, 3}; !equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestForEachFromSeesAppendsDuringWalk(t *testing.T) {
	var l List
	l.Init()
	extra := &item{id: 99}
	extra.Init()

	seeded := &item{id: 1}
	seeded.Init()
	l.PushBack(&seeded.Node)

	var got []int
	l.ForEachFrom(nil, func(n *Node) {
		it := nodePointer(n)
		got = append(got, it.id)
		if it.id == 1 {
			l.PushBack(&extra.Node)
		}
	})
	if want := []int{1, 99}; !equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestForEachFromBookmark(t *testing.T) {
	var l List
	l.Init()
	a, b, c := &item{id: 1}, &item{id: 2}, &item{id: 3}
	a.Init()
	b.Init()
	c.Init()
	l.PushBack(&a.Node)
	l.PushBack(&b.Node)

	var got []int
	l.ForEachFrom(&a.Node, func(n *Node) {
		got = append(got, nodePointer(n).id)
		if nodePointer(n).id == 2 {
			l.PushBack(&c.Node)
		}
	})
	if want := []int{2, 3}; !equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func equal(a, b []int) bool {
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

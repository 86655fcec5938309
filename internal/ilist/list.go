// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ilist implements an intrusive, circular, sentinel-headed
// doubly linked list, the kind found throughout the Linux kernel and
// used here as the collector's only heap-membership structure.
//
// A Node is embedded by value into whatever larger struct needs to be
// listable; the list itself never allocates. Moving a Node between
// lists is an O(1) pointer splice, which is what lets the collector
// shuffle object membership between its heap, stage, and pinned sets
// without walking or copying anything.
package ilist

// Node is an intrusive list link. Embed it by value in a host struct.
// Its zero value is not a valid node; use Init or List.PushBack/PushFront
// to give it a home.
type Node struct {
	next, prev *Node
}

// Init makes n its own empty list. A freshly embedded Node must be
// initialized before use; re-initializing a node already in a list
// detaches it without touching its former neighbors' other links.
func (n *Node) Init() {
	n.next, n.prev = n, n
}

// Empty reports whether n is alone (its own empty list), which is
// also true of an initialized but never-inserted node.
func (n *Node) Empty() bool {
	return n.next == n
}

// Linked reports whether n has ever been initialized (by Init or by
// being inserted into a List). A zero-value Node is not Linked; Remove
// and MoveTo* require a Linked node.
func (n *Node) Linked() bool {
	return n.next != nil
}

func insert(n, prev, next *Node) {
	next.prev = n
	n.next = next
	n.prev = prev
	prev.next = n
}

// Remove unlinks n from whatever list it is in. n is left pointing at
// itself, i.e. as its own empty list.
func (n *Node) Remove() {
	n.next.prev = n.prev
	n.prev.next = n.next
	n.Init()
}

// List is a sentinel node: a list is ever only referred to by its
// sentinel, which is never itself a list element.
type List struct {
	sentinel Node
}

// Init resets l to the empty list. Must be called before first use.
func (l *List) Init() {
	l.sentinel.Init()
}

// Empty reports whether l has no elements.
func (l *List) Empty() bool {
	return l.sentinel.Empty()
}

// PushFront inserts n at the head of l.
func (l *List) PushFront(n *Node) {
	insert(n, &l.sentinel, l.sentinel.next)
}

// PushBack inserts n at the tail of l.
func (l *List) PushBack(n *Node) {
	insert(n, l.sentinel.prev, &l.sentinel)
}

// Front returns the first node of l, or nil if l is empty.
func (l *List) Front() *Node {
	if l.Empty() {
		return nil
	}
	return l.sentinel.next
}

// Back returns the last node of l, or nil if l is empty.
func (l *List) Back() *Node {
	if l.Empty() {
		return nil
	}
	return l.sentinel.prev
}

// MoveToBack moves n, which may currently belong to any list
// (including l itself), to the tail of l.
func (l *List) MoveToBack(n *Node) {
	n.Remove()
	l.PushBack(n)
}

// MoveToFront moves n, which may currently belong to any list
// (including l itself), to the head of l.
func (l *List) MoveToFront(n *Node) {
	n.Remove()
	l.PushFront(n)
}

// SpliceBack moves every element of src onto the tail of l, leaving
// src empty. O(1) regardless of src's length.
func (l *List) SpliceBack(src *List) {
	if src.Empty() {
		return
	}
	first, last := src.sentinel.next, src.sentinel.prev
	tail := l.sentinel.prev

	tail.next = first
	first.prev = tail
	last.next = &l.sentinel
	l.sentinel.prev = last

	src.Init()
}

// ForEach calls f for every node in l, in head-to-tail order. f must
// not remove or move the node it is passed, nor any other node,
// during the call; use ForEachSafe for that.
func (l *List) ForEach(f func(*Node)) {
	for n := l.sentinel.next; n != &l.sentinel; n = n.next {
		f(n)
	}
}

// ForEachSafe calls f for every node in l, in head-to-tail order. f
// may remove the node it was just passed (or move it to another
// list, including l) without disturbing the iteration; it must not
// touch any node it has not yet been passed.
func (l *List) ForEachSafe(f func(*Node)) {
	n := l.sentinel.next
	for n != &l.sentinel {
		next := n.next
		f(n)
		n = next
	}
}

// ForEachFrom calls f for every node strictly after from up to and
// including the current tail of l, in head-to-tail order, re-reading
// the tail after each call so that nodes appended to l by f itself
// (e.g. by a tracer marking new reachables) are visited too. from may
// be the list's own sentinel-adjacent bookmark obtained from Back;
// pass nil to walk the whole list.
func (l *List) ForEachFrom(from *Node, f func(*Node)) {
	start := from
	if start == nil {
		start = &l.sentinel
	}
	n := start.next
	for n != &l.sentinel {
		f(n)
		n = n.next
	}
}

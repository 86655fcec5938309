// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package istack implements an intrusive singly linked stack, the
// sibling of internal/ilist for the collector's two LIFO work sets:
// scope frames and the weak-reference worklist.
package istack

// Node is an intrusive stack link. Embed it by value in a host
// struct. Its zero value is a valid, unlinked node.
type Node struct {
	next *Node
}

// Stack is a singly linked LIFO stack of Nodes. The zero value is an
// empty stack.
type Stack struct {
	top *Node
}

// Empty reports whether s has no elements.
func (s *Stack) Empty() bool {
	return s.top == nil
}

// Push puts n on top of s. n must not already be linked into a
// stack.
func (s *Stack) Push(n *Node) {
	n.next = s.top
	s.top = n
}

// Pop removes and returns the top of s, or nil if s is empty.
func (s *Stack) Pop() *Node {
	n := s.top
	if n != nil {
		s.top = n.next
		n.next = nil
	}
	return n
}

// Top returns the top of s without removing it, or nil if s is
// empty.
func (s *Stack) Top() *Node {
	return s.top
}

// Take removes every element from s and returns them as a new Stack
// with the same top-to-bottom order, leaving s empty. This is the
// "take work off the queue, then start a fresh one" move the weak
// reference fixed point needs each iteration.
func (s *Stack) Take() Stack {
	taken := Stack{top: s.top}
	s.top = nil
	return taken
}

// ForEach calls f for every node from top to bottom. ForEach reads a
// node's next pointer after f returns, so f must not push the node it
// was passed onto any stack or otherwise change any node's links; use
// ForEachSafe for that.
func (s *Stack) ForEach(f func(*Node)) {
	for n := s.top; n != nil; n = n.next {
		f(n)
	}
}

// ForEachSafe calls f for every node from top to bottom, reading each
// node's next pointer before calling f so that f is free to push the
// node onto a different stack (changing its next pointer) as part of
// its work.
func (s *Stack) ForEachSafe(f func(*Node)) {
	n := s.top
	for n != nil {
		next := n.next
		f(n)
		n = next
	}
}

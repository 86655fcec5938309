// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tgc

import (
	"unsafe"

	"github.com/aclements/tgc/internal/ilist"
)

// markBit is stolen from the low bit of the TypeDescriptor pointer
// packed into Header.typeMark. Every TypeDescriptor the host registers
// is an ordinary heap-allocated Go value, and the Go allocator aligns
// anything containing a pointer (TypeDescriptor holds two func values)
// to at least two bytes, so the low bit is always free.
const markBit = uintptr(1)

// Header is the fixed preamble a host embeds in every object it wants
// the collector to manage. Embed it as the first field of your struct:
// callbacks receive a *Header and recover your struct with Entry, which
// assumes the Header sits at the given byte offset within it (normally
// zero).
//
//	type cons struct {
//		tgc.Header
//		value int
//		next  *cons
//	}
type Header struct {
	link     ilist.Node
	typeMark uintptr
}

// TypeDescriptor is the per-shape, immutable pair of callbacks a host
// registers once per object layout and reuses for every instance of
// that layout.
type TypeDescriptor struct {
	// Mark traces h's outgoing strong edges by calling Mark (the
	// tracer primitive) on every Header h's object points to. Mark
	// may be nil, meaning the object has no outgoing edges.
	Mark func(state *State, h *Header)

	// Free destroys h's object and releases its raw storage. Free
	// must not call back into the collector — no Run, no
	// registration, no scope or root changes — and must not assume
	// anything about the order in which sibling dead objects are
	// freed. Free may be nil, meaning the object owns nothing beyond
	// its own storage.
	Free func(state *State, h *Header)
}

func (h *Header) typ() *TypeDescriptor {
	return (*TypeDescriptor)(unsafe.Pointer(h.typeMark &^ markBit))
}

func (h *Header) marked() bool {
	return h.typeMark&markBit != 0
}

func (h *Header) setMark() {
	h.typeMark |= markBit
}

func (h *Header) clearMark() {
	h.typeMark &^= markBit
}

// Entry recovers the T embedding h, given the byte offset of the
// Header field within T (typically 0, via unsafe.Offsetof(T{}.Header)
// when Header is embedded and unnamed). This is the Go analog of the
// original design's container_of: a host type's Mark or Free
// implementation uses it to get from the *Header the collector hands
// it back to the concrete object.
func Entry[T any](h *Header, offset uintptr) *T {
	return entryAt[T](unsafe.Pointer(h), offset)
}

// fromNode recovers a *T that embeds an ilist.Node or istack.Node at
// the given byte offset, given a pointer to that embedded node. It is
// the package-internal counterpart to Entry, used for the collector's
// own intrusively linked descriptors (Root, Scope, Weak).
func fromNode[T any](p unsafe.Pointer, offset uintptr) *T {
	return entryAt[T](p, offset)
}

func entryAt[T any](p unsafe.Pointer, offset uintptr) *T {
	return (*T)(unsafe.Pointer(uintptr(p) - offset))
}

// InitObject links a freshly constructed header into state's heap with
// its mark bit clear. The host is responsible for the raw allocation
// backing h; InitObject only registers it. Registering the same header
// twice, or any use of h after its type's Free callback has run, is
// undefined behavior.
func InitObject(state *State, h *Header, td *TypeDescriptor) {
	h.link.Init()
	h.typeMark = uintptr(unsafe.Pointer(td))
	state.heap.PushFront(&h.link)
}

// Mark is the tracer primitive: the only collector entry point a
// TypeDescriptor.Mark callback should call on the headers it reaches.
//
// If h is already marked this returns immediately — cycles are
// tolerated and shared subgraphs are visited once. Otherwise it sets
// h's mark bit and moves h to the tail of the current cycle's worklist,
// where the main drain (or, for a weak reference, the weak-resolution
// drain) will eventually invoke h's own Mark callback.
func Mark(state *State, h *Header) {
	if h.marked() {
		return
	}
	h.setMark()
	state.stage.MoveToBack(&h.link)
}

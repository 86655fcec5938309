// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tgc

import (
	"unsafe"

	"github.com/aclements/tgc/internal/istack"
)

// Weak is a managed object that references another managed object
// (its Key) without keeping it alive. Once the collector proves Key
// unreachable by any other path, Key is set to nil and, if notify was
// given at InitWeak time, this Weak is pushed onto notify so the host
// can drain expired weak references after Run returns.
//
// Weak embeds Header as its first field: a Weak is itself a managed
// object and participates in marking and sweeping like any other, via
// an internal type descriptor the collector installs in InitWeak.
type Weak struct {
	Header
	key    *Header
	typ    *TypeDescriptor
	notify *istack.Stack
	pend   istack.Node
}

var weakPendOffset = unsafe.Offsetof(Weak{}.pend)

func weakFromPend(n *istack.Node) *Weak {
	return fromNode[Weak](unsafe.Pointer(n), weakPendOffset)
}

// Key returns w's current key: the referent it does not keep alive, or
// nil once that referent (or w itself) has expired.
func (w *Weak) Key() *Header {
	return w.key
}

var weakHeadType = TypeDescriptor{Mark: weakHeadMark, Free: weakHeadFree}

// weakHeadMark is the internal wrapper Mark hook installed on every
// Weak by InitWeak. It intercepts reachability of the weak head itself
// without yet tracing the user type's outgoing edges — whether Key
// survives may not be decided until the weak-resolution fixed point
// runs after the main drain.
func weakHeadMark(state *State, h *Header) {
	w := Entry[Weak](h, 0)
	if w.key == nil {
		return
	}
	state.weakPending.Push(&w.pend)
}

// weakHeadFree delegates to the user's own Free, once the collector
// has decided (via sweep) that this Weak itself is unreachable.
func weakHeadFree(state *State, h *Header) {
	w := Entry[Weak](h, 0)
	if w.typ != nil && w.typ.Free != nil {
		w.typ.Free(state, h)
	}
}

// InitWeak registers weak as a managed object keyed on key. userType is
// consulted only after the collector has confirmed key is live: its
// Mark callback traces weak's own secondary strong edges (if any), and
// its Free callback destroys weak's storage once weak itself is
// unreachable. notify may be nil; if non-nil, weak is pushed onto it
// when it expires.
func InitWeak(state *State, weak *Weak, userType *TypeDescriptor, key *Header, notify *istack.Stack) {
	weak.key = key
	weak.typ = userType
	weak.notify = notify
	InitObject(state, &weak.Header, &weakHeadType)
}

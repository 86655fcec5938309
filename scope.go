// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tgc

import (
	"unsafe"

	"github.com/aclements/tgc/internal/istack"
)

// Scope is one lexically nested root frame. The host supplies the
// backing storage (pool) when opening the scope; Scope itself never
// allocates. Protecting more objects than pool has room for is a
// programmer error — the conventional protocol is that the allocator
// returns every freshly created object already Protect-ed into the
// current innermost scope, so pool only ever needs to be as large as
// the number of temporaries a single evaluation step can produce.
type Scope struct {
	link istack.Node
	pool []*Header
	top  int
}

// PushScope opens a new innermost scope backed by pool, whose full
// capacity (not just its initial length) bounds how many objects may
// be Protect-ed into it before it closes. pool is typically a fresh,
// stack-allocated array the caller only uses for the scope's lifetime.
func PushScope(state *State, scope *Scope, pool []*Header) {
	scope.pool = pool[:cap(pool)]
	scope.top = 0
	state.scopes.Push(&scope.link)
}

// PopScope closes the innermost open scope, forgetting its protected
// objects as roots. It does not free anything and does not move any
// object — closing a scope only changes what counts as a root starting
// with the next cycle. Calling PopScope with no open scope is
// undefined behavior, as is popping anything but the innermost scope;
// since scopes only ever close in LIFO order through this call, the
// second case cannot arise through this API alone.
func PopScope(state *State) {
	state.scopes.Pop()
}

// Protect inserts h into the innermost open scope's pool, advancing
// its cursor. Calling Protect with no open scope, or once the
// innermost scope's pool is full, is undefined behavior (in this
// implementation, a nil-pointer panic with no open scope and a
// slice-index panic on a full pool).
func Protect(state *State, h *Header) {
	scope := scopeEntry(state.scopes.Top())
	scope.pool[scope.top] = h
	scope.top++
}

func scopeEntry(n *istack.Node) *Scope {
	return fromNode[Scope](unsafe.Pointer(n), 0)
}

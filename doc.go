// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tgc implements a precise, stop-the-world tracing garbage
// collector for embedding into a host mutator that allocates its own
// linked heap objects — interpreters, symbolic engines, graph
// workloads, and the like.
//
// The collector never allocates and never moves an object. The host
// allocates raw storage, embeds a Header in it, and registers it with
// InitObject; from then on the collector only tracks reachability and,
// on an unreachable object, calls its type's Free hook. A mutator names
// its temporary roots by registering newly created objects into the
// innermost open Scope (PushScope/Protect/PopScope), names long-lived
// roots with AddRoot, and exempts specific objects from collection
// entirely with Pin/Unpin. Collection itself only ever happens inside
// an explicit call to (*State).Run, chosen by the mutator.
//
// tgc is not safe for concurrent use: a State, and every object
// registered with it, belongs to a single mutator goroutine. Nothing in
// this package uses a mutex, because nothing in this package may run
// concurrently with anything else touching the same State.
package tgc

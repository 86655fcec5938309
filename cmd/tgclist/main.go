// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command tgclist is a runnable version of the collector's worked
// example: it builds a small cons-cell list under a nested scope, pins
// one node, promotes another to the outer scope, severs an edge, and
// closes scopes one at a time, printing each object's free as it
// happens.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/aclements/tgc"
)

// cons is a classic singly linked list node.
type cons struct {
	tgc.Header
	value int
	next  *cons
}

var consType = tgc.TypeDescriptor{
	Mark: func(state *tgc.State, h *tgc.Header) {
		c := tgc.Entry[cons](h, 0)
		if c.next != nil {
			tgc.Mark(state, &c.next.Header)
		}
	},
	Free: func(state *tgc.State, h *tgc.Header) {
		fmt.Printf("free %d!\n", tgc.Entry[cons](h, 0).value)
	},
}

func newCons(state *tgc.State, value int, next *cons) *cons {
	c := &cons{value: value, next: next}
	tgc.InitObject(state, &c.Header, &consType)
	tgc.Protect(state, &c.Header)
	return c
}

func main() {
	log.SetPrefix("tgclist: ")
	log.SetFlags(0)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Runs the collector's worked list-of-cons-cells example, printing each free.\n")
	}
	flag.Parse()
	if flag.NArg() != 0 {
		flag.Usage()
		os.Exit(2)
	}

	var state tgc.State
	state.Init()

	var outer tgc.Scope
	outerPool := make([]*tgc.Header, 8)
	tgc.PushScope(&state, &outer, outerPool)

	var d, e *cons
	func() {
		var inner tgc.Scope
		innerPool := make([]*tgc.Header, 8)
		tgc.PushScope(&state, &inner, innerPool)

		a := newCons(&state, 1, nil)
		newCons(&state, 2, nil)
		newCons(&state, 3, nil)
		d = newCons(&state, 4, a)
		e = newCons(&state, 5, nil)
		tgc.Pin(&state, &e.Header)

		fmt.Println("run 1: nothing should be freed (all protected or pinned)")
		state.Run()

		tgc.PopScope(&state)
		tgc.Protect(&state, &d.Header)
	}()

	fmt.Println("run 2: 2 and 3 should be freed (a, reachable from d, d, and the pinned e survive)")
	state.Run()

	d.next = nil
	fmt.Println("run 3: 1 should be freed (d no longer points to it)")
	state.Run()

	tgc.PopScope(&state)
	fmt.Println("run 4: 4 should be freed (d was only rooted by the outer scope)")
	state.Run()

	tgc.Unpin(&state, &e.Header)
	fmt.Println("run 5: 5 should be freed (e is no longer pinned or rooted)")
	state.Run()

	state.Destroy()
}

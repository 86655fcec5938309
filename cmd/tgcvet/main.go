// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command tgcvet performs static analysis of host programs that embed
// the collector.
//
// Reentrancy checking
//
// tgcvet builds a whole-program call graph (using class hierarchy
// analysis, golang.org/x/tools/go/callgraph/cha) and finds every
// TypeDescriptor's Mark and Free callback, then checks whether each
// one can, transitively, call back into the collector itself -- Run,
// PushScope, PopScope, Protect, AddRoot, DelRoot, Pin, Unpin, or
// InitObject. Mark and Free must do nothing but walk and release the
// object graph, per their own doc comments; any of those calls during
// a mark or sweep phase corrupts the collector's own bookkeeping.
//
// Like any static analysis built on class hierarchy analysis rather
// than points-to analysis, this can report a call graph edge that's
// never actually taken at runtime (an interface method resolves to
// every implementation of the interface, not just the ones reachable
// from this call site). Only Mark and Free fields set to a named
// function or method are checked; a callback written as a function
// literal is not followed, so a clean report says nothing about those.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/aclements/tgc/internal/lint/reentrancy"
)

func main() {
	log.SetPrefix("tgcvet: ")
	log.SetFlags(0)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s <package>...\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Checks that no TypeDescriptor Mark or Free callback calls back into the collector.\n")
	}
	flag.Parse()
	pkgPaths := flag.Args()
	if len(pkgPaths) == 0 {
		pkgPaths = []string{"./..."}
	}

	findings, err := reentrancy.Check(pkgPaths)
	if err != nil {
		log.Fatal(err)
	}
	if len(findings) == 0 {
		return
	}

	for _, f := range findings {
		fmt.Printf("%s (%s) can reach %s:\n", f.Callback, f.Position, f.Target)
		for _, step := range f.Path {
			fmt.Printf("\t%s\n", step)
		}
	}
	os.Exit(1)
}

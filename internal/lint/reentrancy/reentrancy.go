// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package reentrancy statically checks that a TypeDescriptor's Mark
// and Free callbacks never call back into the collector. Mark and
// Free are documented to touch only the object graph; calling Run,
// PushScope, PopScope, Protect, AddRoot, DelRoot, Pin, Unpin, or
// InitObject from inside one runs during the collector's own mark or
// sweep phase and corrupts its bookkeeping.
package reentrancy

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"sort"

	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/callgraph/cha"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// collectorPkg is the import path of the package whose methods a
// Mark or Free callback must not call back into.
const collectorPkg = "github.com/aclements/tgc"

// forbidden names a tgc API that mutates collector state and must
// not be reachable from a Mark or Free callback.
var forbidden = map[string]bool{
	"(*State).Run":      true,
	"PushScope":         true,
	"PopScope":          true,
	"Protect":           true,
	"AddRoot":           true,
	"DelRoot":           true,
	"Pin":               true,
	"Unpin":             true,
	"InitObject":        true,
	"(*State).RunTimed": true,
}

// Finding reports one callback that can reach a forbidden operation.
type Finding struct {
	Callback string    // the Mark or Free field that is the entry point
	Position string    // file:line of the composite literal that assigns it
	Target   string    // the forbidden function it can reach
	Path     []string  // call chain from Callback to Target, inclusive
	pos      token.Pos // position before Fset.Position resolves it
}

// Check loads pkgPaths, builds a static call graph, and reports every
// TypeDescriptor Mark or Free callback that can reach a forbidden tgc
// operation.
func Check(pkgPaths []string) ([]Finding, error) {
	fset := token.NewFileSet()
	cfg := &packages.Config{
		Fset: fset,
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedImports |
			packages.NeedDeps | packages.NeedTypes | packages.NeedTypesInfo |
			packages.NeedSyntax,
	}
	pkgs, err := packages.Load(cfg, pkgPaths...)
	if err != nil {
		return nil, err
	}
	if packages.PrintErrors(pkgs) > 0 {
		return nil, fmt.Errorf("reentrancy: errors loading %v", pkgPaths)
	}

	prog, ssaPkgs := ssautil.AllPackages(pkgs, ssa.InstantiateGenerics)
	prog.Build()

	cg := cha.CallGraph(prog)
	cg.DeleteSyntheticNodes()

	entries := findCallbacks(pkgs, ssaPkgs, prog)

	var findings []Finding
	for _, e := range entries {
		node := cg.Nodes[e.fn]
		if node == nil {
			continue
		}
		if target, path := reaches(node); target != "" {
			findings = append(findings, Finding{
				Callback: e.label,
				Position: fset.Position(e.pos).String(),
				Target:   target,
				Path:     path,
				pos:      e.pos,
			})
		}
	}

	sort.Slice(findings, func(i, j int) bool { return findings[i].pos < findings[j].pos })
	return findings, nil
}

type entryPoint struct {
	label string
	pos   token.Pos
	fn    *ssa.Function
}

// findCallbacks walks every composite literal of type tgc.TypeDescriptor
// in the loaded packages and resolves its Mark and Free fields, when
// they're a plain function reference, to the ssa.Function they name.
func findCallbacks(pkgs []*packages.Package, ssaPkgs []*ssa.Package, prog *ssa.Program) []entryPoint {
	var entries []entryPoint
	ssaPkgByTypesPkg := make(map[*types.Package]*ssa.Package)
	for i, p := range pkgs {
		if ssaPkgs[i] != nil {
			ssaPkgByTypesPkg[p.Types] = ssaPkgs[i]
		}
	}

	for _, pkg := range pkgs {
		info := pkg.TypesInfo
		if info == nil {
			continue
		}
		for _, file := range pkg.Syntax {
			ast.Inspect(file, func(n ast.Node) bool {
				cl, ok := n.(*ast.CompositeLit)
				if !ok {
					return true
				}
				t := info.TypeOf(cl)
				if t == nil || !isTypeDescriptor(t) {
					return true
				}
				for _, elt := range cl.Elts {
					kv, ok := elt.(*ast.KeyValueExpr)
					if !ok {
						continue
					}
					key, ok := kv.Key.(*ast.Ident)
					if !ok || (key.Name != "Mark" && key.Name != "Free") {
						continue
					}
					obj := funcObjOf(kv.Value, info)
					if obj == nil {
						continue
					}
					sp := ssaPkgByTypesPkg[obj.Pkg()]
					if sp == nil {
						continue
					}
					fn := sp.Prog.FuncValue(obj)
					if fn == nil {
						continue
					}
					entries = append(entries, entryPoint{
						label: fmt.Sprintf("%s.%s", pkg.PkgPath, key.Name),
						pos:   kv.Value.Pos(),
						fn:    fn,
					})
				}
				return true
			})
		}
	}
	return entries
}

func isTypeDescriptor(t types.Type) bool {
	named, ok := t.(*types.Named)
	if !ok {
		return false
	}
	obj := named.Obj()
	return obj.Pkg() != nil && obj.Pkg().Path() == collectorPkg && obj.Name() == "TypeDescriptor"
}

// funcObjOf resolves expr to the *types.Func it names, if expr is a
// plain function identifier or selector (not a closure literal, which
// this checker doesn't follow).
func funcObjOf(expr ast.Expr, info *types.Info) *types.Func {
	var ident *ast.Ident
	switch e := expr.(type) {
	case *ast.Ident:
		ident = e
	case *ast.SelectorExpr:
		ident = e.Sel
	default:
		return nil
	}
	fn, _ := info.Uses[ident].(*types.Func)
	return fn
}

// reaches runs a breadth-first search over the call graph starting at
// node and returns the name and call chain of the first forbidden
// function it finds, or "" if none is reachable.
func reaches(node *callgraph.Node) (string, []string) {
	type queued struct {
		node *callgraph.Node
		path []string
	}
	seen := map[*callgraph.Node]bool{node: true}
	queue := []queued{{node, nil}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, edge := range cur.node.Out {
			callee := edge.Callee
			if callee.Func == nil || seen[callee] {
				continue
			}
			seen[callee] = true

			name := funcLabel(callee.Func)
			path := append(append([]string{}, cur.path...), name)

			if isCollectorPkg(callee.Func) && forbidden[shortName(callee.Func)] {
				return name, path
			}
			queue = append(queue, queued{callee, path})
		}
	}
	return "", nil
}

func isCollectorPkg(fn *ssa.Function) bool {
	return fn.Pkg != nil && fn.Pkg.Pkg.Path() == collectorPkg
}

func shortName(fn *ssa.Function) string {
	if fn.Signature.Recv() != nil {
		recvType := fn.Signature.Recv().Type()
		star := ""
		if p, ok := recvType.(*types.Pointer); ok {
			star, recvType = "*", p.Elem()
		}
		recv := recvType.String()
		if i := lastDot(recv); i >= 0 {
			recv = recv[i+1:]
		}
		return fmt.Sprintf("(%s%s).%s", star, recv, fn.Name())
	}
	return fn.Name()
}

func funcLabel(fn *ssa.Function) string {
	if fn.Pkg == nil {
		return fn.Name()
	}
	return fmt.Sprintf("%s.%s", fn.Pkg.Pkg.Path(), shortName(fn))
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' || s[i] == '*' {
			return i
		}
	}
	return -1
}

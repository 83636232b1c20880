// Package callgraph builds the function call graph (§4.1) and detects
// recursion reachable from main, the randomnum/randombit built-ins
// being virtual leaf nodes that are never reachable as callers.
package callgraph

import (
	"fmt"

	"privc/internal/ast"
	"privc/internal/errors"
)

// node tracks a function's callees and DFS coloring (three-color
// marking: unvisited / on-stack / finished), mirroring the original
// CallGraphNode.
type node struct {
	name     string
	pointsTo map[string]bool
	visiting bool
	visited  bool
}

// Graph is the constructed call graph for a Program.
type Graph struct {
	nodes    map[string]*node
	Overload bool // duplicate function name, or redefinition of a built-in
}

// Build constructs the call graph, adding virtual nodes for the
// randomnum/randombit built-ins (§4.1). It reports duplicate function
// names, redefinitions of built-ins, calls to undeclared functions,
// and calls to main, as CompilerErrors; Graph.Overload is set whenever
// any of the first two occurred (mirrors func_overload in the original).
func Build(prog *ast.Program) (*Graph, []errors.CompilerError) {
	g := &Graph{nodes: map[string]*node{}}
	var diags []errors.CompilerError
	skipped := map[*ast.Function]bool{}

	for _, fn := range prog.Funcs {
		if _, exists := g.nodes[fn.Name]; exists {
			diags = append(diags, errors.NewError(fn.Line, "Multiple functions with same name '%s'. Only one allowed.", fn.Name))
			g.Overload = true
			skipped[fn] = true
			continue
		}
		if fn.Name == ast.BuiltinRandNum || fn.Name == ast.BuiltinRandBit {
			diags = append(diags, errors.NewError(fn.Line, "Redefining built-in function '%s'.", fn.Name))
			g.Overload = true
			skipped[fn] = true
			continue
		}
		g.nodes[fn.Name] = &node{name: fn.Name, pointsTo: map[string]bool{}}
	}
	g.nodes[ast.BuiltinRandNum] = &node{name: ast.BuiltinRandNum, pointsTo: map[string]bool{}}
	g.nodes[ast.BuiltinRandBit] = &node{name: ast.BuiltinRandBit, pointsTo: map[string]bool{}}

	for _, fn := range prog.Funcs {
		if skipped[fn] {
			continue // duplicate/overloaded name, already reported
		}
		for _, stm := range fn.Body.Stmts {
			a, ok := stm.(*ast.AssignStmt)
			if !ok {
				continue
			}
			diags = append(diags, g.addEdges(a.Value, fn.Name)...)
		}
		if fn.Name != "main" && fn.Body.Tail != nil {
			diags = append(diags, g.addEdges(fn.Body.Tail, fn.Name)...)
		}
	}

	return g, diags
}

func (g *Graph) addEdges(expr ast.Expr, caller string) []errors.CompilerError {
	switch e := expr.(type) {
	case *ast.NumberExpr, *ast.BooleanExpr, *ast.IdentExpr:
		return nil
	case *ast.BinopExpr:
		return append(g.addEdges(e.L, caller), g.addEdges(e.R, caller)...)
	case *ast.UminusExpr:
		return g.addEdges(e.X, caller)
	case *ast.NotExpr:
		return g.addEdges(e.X, caller)
	case *ast.LeakExpr:
		return g.addEdges(e.X, caller)
	case *ast.IfExpr:
		var diags []errors.CompilerError
		diags = append(diags, g.addEdges(e.Cond, caller)...)
		diags = append(diags, g.addEdges(e.Then, caller)...)
		diags = append(diags, g.addEdges(e.Else, caller)...)
		return diags
	case *ast.CallExpr:
		var diags []errors.CompilerError
		if e.Func == "main" {
			diags = append(diags, errors.NewError(e.Line, "Illegal function call to 'main'."))
			return diags
		}
		if _, ok := g.nodes[e.Func]; !ok {
			diags = append(diags, errors.NewError(e.Line, "Calling undeclared function '%s'.", e.Func))
			return diags
		}
		g.nodes[caller].pointsTo[e.Func] = true
		for _, arg := range e.Args {
			diags = append(diags, g.addEdges(arg, caller)...)
		}
		return diags
	default:
		errors.Internalf("unexpected expression %T found during call graph construction", expr)
		return nil
	}
}

// HasRecursion runs a DFS rooted at main and reports the first cycle
// found along the current path, mirroring has_recursion_dfs.
// Unreachable cycles (functions never called transitively from main)
// are intentionally not detected — see spec.md GLOSSARY and Open
// Questions.
func (g *Graph) HasRecursion() (bool, []errors.CompilerError) {
	main, ok := g.nodes["main"]
	if !ok {
		return false, nil
	}
	var path []string
	cyclic, diags := g.dfs(main, path)
	for _, n := range g.nodes {
		n.visited = false
		n.visiting = false
	}
	return cyclic, diags
}

func (g *Graph) dfs(n *node, path []string) (bool, []errors.CompilerError) {
	if n.visited {
		return false, nil
	}
	path = append(path, n.name)
	if n.visiting {
		return true, []errors.CompilerError{errors.NewError(0, "Recursion on path: %s", joinPath(path))}
	}
	n.visiting = true
	for callee := range n.pointsTo {
		if cyclic, diags := g.dfs(g.nodes[callee], path); cyclic {
			return true, diags
		}
	}
	n.visited = true
	return false, nil
}

func joinPath(path []string) string {
	s := ""
	for i, p := range path {
		if i > 0 {
			s += " --> "
		}
		s += p
	}
	return s
}

// String renders the graph for debugging, mirroring CallGraph.__str__.
func (g *Graph) String() string {
	s := ""
	for name, n := range g.nodes {
		s += fmt.Sprintf("Function '%s' pointsTo: %v\n", name, keys(n.pointsTo))
	}
	return s
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

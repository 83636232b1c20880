// Package rewrite implements the §4.4-§4.6 AST-to-AST rewrites that
// run after type checking and before inlining: elimination of unary
// minus, rewriting "==" as "!(!=)", and renaming variables that get
// redefined within a single function so every assignment target is
// unique.
package rewrite

import (
	"fmt"

	"privc/internal/ast"
	"privc/internal/errors"
)

// RemoveUminus rewrites every UminusExpr as "0 - x" throughout prog,
// recursively, so no later pass ever sees a UminusExpr node.
func RemoveUminus(prog *ast.Program) {
	for _, fn := range prog.Funcs {
		for _, stm := range fn.Body.Stmts {
			a, ok := stm.(*ast.AssignStmt)
			if !ok {
				continue
			}
			a.Value = removeUminusExpr(a.Value)
		}
		if fn.Name != "main" && fn.Body.Tail != nil {
			fn.Body.Tail = removeUminusExpr(fn.Body.Tail)
		}
	}
}

func removeUminusExpr(expr ast.Expr) ast.Expr {
	switch e := expr.(type) {
	case *ast.NumberExpr, *ast.BooleanExpr, *ast.IdentExpr:
		return e
	case *ast.NotExpr:
		e.X = removeUminusExpr(e.X)
		return e
	case *ast.LeakExpr:
		e.X = removeUminusExpr(e.X)
		return e
	case *ast.BinopExpr:
		e.L = removeUminusExpr(e.L)
		e.R = removeUminusExpr(e.R)
		return e
	case *ast.IfExpr:
		e.Cond = removeUminusExpr(e.Cond)
		e.Then = removeUminusExpr(e.Then)
		e.Else = removeUminusExpr(e.Else)
		return e
	case *ast.CallExpr:
		for i, arg := range e.Args {
			e.Args[i] = removeUminusExpr(arg)
		}
		return e
	case *ast.UminusExpr:
		zero := ast.NewNumber(0, e.Line)
		return ast.NewBinop(ast.OpSub, zero, removeUminusExpr(e.X), e.Line)
	default:
		errors.Internalf("unexpected expression %T found during uminus removal", expr)
		return nil
	}
}

// RewriteEq replaces every "a == b" with "!(a != b)" throughout prog.
func RewriteEq(prog *ast.Program) {
	for _, fn := range prog.Funcs {
		for _, stm := range fn.Body.Stmts {
			a, ok := stm.(*ast.AssignStmt)
			if !ok {
				continue
			}
			a.Value = rewriteEqExpr(a.Value)
		}
		if fn.Name != "main" && fn.Body.Tail != nil {
			fn.Body.Tail = rewriteEqExpr(fn.Body.Tail)
		}
	}
}

func rewriteEqExpr(expr ast.Expr) ast.Expr {
	switch e := expr.(type) {
	case *ast.NumberExpr, *ast.BooleanExpr, *ast.IdentExpr:
		return e
	case *ast.NotExpr:
		e.X = rewriteEqExpr(e.X)
		return e
	case *ast.LeakExpr:
		e.X = rewriteEqExpr(e.X)
		return e
	case *ast.CallExpr:
		for i, arg := range e.Args {
			e.Args[i] = rewriteEqExpr(arg)
		}
		return e
	case *ast.IfExpr:
		e.Cond = rewriteEqExpr(e.Cond)
		e.Then = rewriteEqExpr(e.Then)
		e.Else = rewriteEqExpr(e.Else)
		return e
	case *ast.BinopExpr:
		e.L = rewriteEqExpr(e.L)
		e.R = rewriteEqExpr(e.R)
		if e.Op == ast.OpEq {
			neq := ast.NewBinop(ast.OpNeq, e.L, e.R, e.Line)
			return ast.NewNot(neq, e.Line)
		}
		return e
	default:
		errors.Internalf("unexpected expression %T found during equality rewriting", expr)
		return nil
	}
}

// RenameReusedVars renames any variable that is assigned to more than
// once within a function, so that every AssignStmt in the function
// writes a distinct name. A function's parameters, and main's input
// variable names, are never renamed — only the targets (and uses) of
// AssignStmt. Each function keeps its own counter-derived suffix
// namespace via a process-wide counter, matching the original's single
// global var_redef_counter.
type Renamer struct {
	counter int
}

func (r *Renamer) RenameReusedVars(prog *ast.Program) {
	for _, fn := range prog.Funcs {
		names := map[string]string{}
		if fn.Name == "main" {
			for _, stm := range fn.Body.Stmts {
				if in, ok := stm.(*ast.InputStmt); ok {
					names[in.Var] = in.Var
				}
			}
		}
		for _, p := range fn.Params {
			names[p] = p
		}
		for _, stm := range fn.Body.Stmts {
			switch s := stm.(type) {
			case *ast.InputStmt:
				names[s.Var] = s.Var
			case *ast.OutputStmt:
				s.Value = r.renameExpr(s.Value, names)
			case *ast.AssignStmt:
				s.Value = r.renameExpr(s.Value, names)
				if _, exists := names[s.Var]; exists {
					newName := fmt.Sprintf("_%s_%d", s.Var, r.counter)
					r.counter++
					names[s.Var] = newName
					s.Var = newName
				} else {
					names[s.Var] = s.Var
				}
			default:
				errors.Internalf("unexpected statement %T found during reused var renaming", stm)
			}
		}
		if fn.Name != "main" && fn.Body.Tail != nil {
			fn.Body.Tail = r.renameExpr(fn.Body.Tail, names)
		}
	}
}

func (r *Renamer) renameExpr(expr ast.Expr, names map[string]string) ast.Expr {
	switch e := expr.(type) {
	case *ast.IdentExpr:
		if n, ok := names[e.Name]; ok {
			e.Name = n
		}
		return e
	case *ast.NumberExpr, *ast.BooleanExpr:
		return e
	case *ast.NotExpr:
		e.X = r.renameExpr(e.X, names)
		return e
	case *ast.LeakExpr:
		e.X = r.renameExpr(e.X, names)
		return e
	case *ast.BinopExpr:
		e.L = r.renameExpr(e.L, names)
		e.R = r.renameExpr(e.R, names)
		return e
	case *ast.IfExpr:
		e.Cond = r.renameExpr(e.Cond, names)
		e.Then = r.renameExpr(e.Then, names)
		e.Else = r.renameExpr(e.Else, names)
		return e
	case *ast.CallExpr:
		for i, arg := range e.Args {
			e.Args[i] = r.renameExpr(arg, names)
		}
		return e
	default:
		errors.Internalf("unexpected expression %T found during reused var renaming", expr)
		return nil
	}
}

// Package semantic implements the §4.2 validation passes: presence and
// shape of main, restriction of I/O to main, call arity, use of
// declared names, and uniqueness of input/output labels.
package semantic

import (
	"privc/internal/ast"
	"privc/internal/errors"
)

// CheckMain fails if no function named main exists, or if main takes
// parameters.
func CheckMain(prog *ast.Program) []errors.CompilerError {
	var diags []errors.CompilerError
	found := false
	for _, fn := range prog.Funcs {
		if fn.Name != "main" {
			continue
		}
		found = true
		if len(fn.Params) > 0 {
			diags = append(diags, errors.NewError(fn.Line, "Function 'main' should not take any arguments."))
		}
	}
	if !found {
		diags = append(diags, errors.NewError(0, "No function called 'main' in program."))
	}
	return diags
}

// CheckIllegalIO rejects Input/Output statements outside main.
func CheckIllegalIO(prog *ast.Program) []errors.CompilerError {
	var diags []errors.CompilerError
	for _, fn := range prog.Funcs {
		if fn.Name == "main" {
			continue
		}
		for _, stm := range fn.Body.Stmts {
			switch s := stm.(type) {
			case *ast.InputStmt:
				diags = append(diags, errors.NewError(s.Line,
					"Found illegal input statement '%s' in function '%s'. Input statements may only be used in function 'main'.",
					s.ReadableString(), fn.Name))
			case *ast.OutputStmt:
				diags = append(diags, errors.NewError(s.Line,
					"Found illegal output statement '%s' in function '%s'. Output statements may only be used in function 'main'.",
					s.ReadableString(), fn.Name))
			}
		}
	}
	return diags
}

// CheckBadFuncCalls verifies every call's argument count matches the
// callee's declared arity. randomnum/randombit accept any argument
// list — their arity check is skipped, matching the original's
// documented (if surprising) behavior (spec.md Open Questions).
//
// exprHasBadFuncCall below also preserves a second documented quirk:
// for an If expression it inspects the then-branch twice and never the
// else-branch (spec.md Open Questions — "may be a bug, treat as
// documented behavior").
func CheckBadFuncCalls(prog *ast.Program, funcs map[string]*ast.Function) []errors.CompilerError {
	var diags []errors.CompilerError
	for _, fn := range prog.Funcs {
		for _, stm := range fn.Body.Stmts {
			a, ok := stm.(*ast.AssignStmt)
			if !ok {
				continue
			}
			diags = append(diags, exprHasBadFuncCall(a.Value, funcs)...)
		}
		if fn.Name != "main" && fn.Body.Tail != nil {
			diags = append(diags, exprHasBadFuncCall(fn.Body.Tail, funcs)...)
		}
	}
	return diags
}

func exprHasBadFuncCall(expr ast.Expr, funcs map[string]*ast.Function) []errors.CompilerError {
	switch e := expr.(type) {
	case *ast.NumberExpr, *ast.BooleanExpr, *ast.IdentExpr:
		return nil
	case *ast.IfExpr:
		var diags []errors.CompilerError
		diags = append(diags, exprHasBadFuncCall(e.Cond, funcs)...)
		diags = append(diags, exprHasBadFuncCall(e.Then, funcs)...)
		diags = append(diags, exprHasBadFuncCall(e.Then, funcs)...) // preserved quirk: then twice, never else
		return diags
	case *ast.UminusExpr:
		return exprHasBadFuncCall(e.X, funcs)
	case *ast.NotExpr:
		return exprHasBadFuncCall(e.X, funcs)
	case *ast.LeakExpr:
		return exprHasBadFuncCall(e.X, funcs)
	case *ast.BinopExpr:
		return append(exprHasBadFuncCall(e.L, funcs), exprHasBadFuncCall(e.R, funcs)...)
	case *ast.CallExpr:
		var diags []errors.CompilerError
		for _, arg := range e.Args {
			diags = append(diags, exprHasBadFuncCall(arg, funcs)...)
		}
		if e.Func == ast.BuiltinRandNum || e.Func == ast.BuiltinRandBit {
			return diags
		}
		callee, ok := funcs[e.Func]
		if !ok {
			// Undeclared callees are reported by the call graph pass;
			// nothing more to check here.
			return diags
		}
		if len(e.Args) != len(callee.Params) {
			diags = append(diags, errors.NewError(e.Line,
				"Function call to '%s' has wrong number of arguments (%d). Expected %d.",
				e.Func, len(e.Args), len(callee.Params)))
		}
		return diags
	default:
		errors.Internalf("unexpected expression %T found during bad func call check", expr)
		return nil
	}
}

// CheckUndeclaredVars scans each function with a growing "declared" set
// seeded by its parameters. All errors within a function are reported
// (the scan does not short-circuit on the first failure), matching the
// original's report-all-then-abort style for this check.
//
// exprUndeclaredVars below preserves a second documented quirk: for a
// call's argument list, each argument's check overwrites rather than
// accumulates, so only the last argument's undeclared-variable
// diagnostics (if any) are ever reported (spec.md Open Questions).
func CheckUndeclaredVars(prog *ast.Program) []errors.CompilerError {
	var diags []errors.CompilerError
	for _, fn := range prog.Funcs {
		declared := map[string]bool{}
		for _, p := range fn.Params {
			declared[p] = true
		}
		for _, stm := range fn.Body.Stmts {
			switch s := stm.(type) {
			case *ast.InputStmt:
				declared[s.Var] = true
			case *ast.OutputStmt:
				diags = append(diags, exprUndeclaredVars(s.Value, declared)...)
			case *ast.AssignStmt:
				diags = append(diags, exprUndeclaredVars(s.Value, declared)...)
				declared[s.Var] = true
			}
		}
		if fn.Name != "main" && fn.Body.Tail != nil {
			diags = append(diags, exprUndeclaredVars(fn.Body.Tail, declared)...)
		}
	}
	return diags
}

func exprUndeclaredVars(expr ast.Expr, declared map[string]bool) []errors.CompilerError {
	switch e := expr.(type) {
	case *ast.NumberExpr, *ast.BooleanExpr:
		return nil
	case *ast.IdentExpr:
		if !declared[e.Name] {
			return []errors.CompilerError{errors.NewError(e.Line, "Use of undeclared variable '%s'.", e.Name)}
		}
		return nil
	case *ast.UminusExpr:
		return exprUndeclaredVars(e.X, declared)
	case *ast.NotExpr:
		return exprUndeclaredVars(e.X, declared)
	case *ast.LeakExpr:
		return exprUndeclaredVars(e.X, declared)
	case *ast.BinopExpr:
		return append(exprUndeclaredVars(e.L, declared), exprUndeclaredVars(e.R, declared)...)
	case *ast.IfExpr:
		var diags []errors.CompilerError
		diags = append(diags, exprUndeclaredVars(e.Cond, declared)...)
		diags = append(diags, exprUndeclaredVars(e.Then, declared)...)
		diags = append(diags, exprUndeclaredVars(e.Else, declared)...)
		return diags
	case *ast.CallExpr:
		// Preserved quirk: each argument's check result overwrites the
		// last rather than accumulating, so only the final argument's
		// undeclared-variable diagnostics (if any) survive.
		var diags []errors.CompilerError
		for _, arg := range e.Args {
			diags = exprUndeclaredVars(arg, declared)
		}
		return diags
	default:
		errors.Internalf("unexpected expression %T found during undeclared var check", expr)
		return nil
	}
}

// CheckIONames requires the Input variable names and the Output labels
// within main to each be unique (independently of each other).
func CheckIONames(prog *ast.Program) []errors.CompilerError {
	main := prog.Main()
	if main == nil {
		return nil
	}
	var diags []errors.CompilerError
	outputNames := map[string]bool{}
	inputNames := map[string]bool{}
	for _, stm := range main.Body.Stmts {
		switch s := stm.(type) {
		case *ast.OutputStmt:
			if outputNames[s.Label] {
				diags = append(diags, errors.NewError(s.Line, "Output name '%s' has already been used previously.", s.Label))
			} else {
				outputNames[s.Label] = true
			}
		case *ast.InputStmt:
			if inputNames[s.Var] {
				diags = append(diags, errors.NewError(s.Line, "Input name '%s' has already been used previously.", s.Var))
			} else {
				inputNames[s.Var] = true
			}
		}
	}
	return diags
}

// FuncMap indexes a program's functions by name, for passes (like
// CheckBadFuncCalls) that need arity lookups.
func FuncMap(prog *ast.Program) map[string]*ast.Function {
	m := make(map[string]*ast.Function, len(prog.Funcs))
	for _, fn := range prog.Funcs {
		m[fn.Name] = fn
	}
	return m
}

// Package types implements the §4.3 bivalent type checker. It runs in
// two modes: the normal strict mode used before any rewrites, and a
// relaxed "annotating for xor" mode used after rewrite/lowering has
// potentially left mismatched operand types on a binop that §4.11 is
// about to specialize into xor — in that mode every type mismatch is
// tolerated and types are merely refreshed, never rejected.
package types

import (
	"privc/internal/ast"
	"privc/internal/errors"
)

// Check type-checks main's body (and transitively every function main
// calls into, by re-checking a callee's body with the call's argument
// types injected) and annotates every Expr's Type in place. It returns
// the diagnostics found; when annotatingForXor is true it never
// returns diagnostics and instead only refreshes Type annotations.
func Check(prog *ast.Program, annotatingForXor bool) []errors.CompilerError {
	main := prog.Main()
	if main == nil {
		errors.Internalf("type checking requires a main function")
	}
	c := &checker{prog: prog, annotatingForXor: annotatingForXor}
	types := map[string]ast.Type{}
	for _, stm := range main.Body.Stmts {
		if !c.checkStmt(stm, types) {
			break
		}
	}
	return c.diags
}

type checker struct {
	prog             *ast.Program
	annotatingForXor bool
	diags            []errors.CompilerError
}

func (c *checker) fail(line int, format string, args ...interface{}) bool {
	if !c.annotatingForXor {
		c.diags = append(c.diags, errors.NewError(line, format, args...))
	}
	return false
}

// checkStmt returns false on an unsound statement (normal mode) so the
// caller can stop early, mirroring stm_type_check's short-circuiting.
func (c *checker) checkStmt(stm ast.Stmt, types map[string]ast.Type) bool {
	switch s := stm.(type) {
	case *ast.LabelStmt, *ast.JumpIfFalseStmt, *ast.JumpStmt:
		return true
	case *ast.OutputStmt:
		return true
	case *ast.InputStmt:
		types[s.Var] = s.Typ
		return true
	case *ast.AssignStmt:
		if !c.checkExpr(s.Value, types) {
			return false
		}
		types[s.Var] = s.Value.ExprType()
		return true
	default:
		errors.Internalf("unexpected statement %T encountered during type checking", stm)
		return false
	}
}

func (c *checker) checkExpr(expr ast.Expr, types map[string]ast.Type) bool {
	switch e := expr.(type) {
	case *ast.NumberExpr:
		e.SetType(ast.TypeNum)
		return true
	case *ast.BooleanExpr:
		e.SetType(ast.TypeBool)
		return true
	case *ast.IdentExpr:
		e.SetType(typeOf(e.Name, types))
		return true
	case *ast.IfResultExpr:
		e.SetType(typeOf(e.Name, types))
		return true
	case *ast.UminusExpr:
		if !c.checkExpr(e.X, types) {
			return false
		}
		if e.X.ExprType() != ast.TypeNum && !c.annotatingForXor {
			return c.fail(e.Line, "Uminus expression '%s' should have subexpression of type NUMBER.", e.ReadableString())
		}
		e.SetType(e.X.ExprType())
		return true
	case *ast.NotExpr:
		if !c.checkExpr(e.X, types) {
			return false
		}
		if e.X.ExprType() != ast.TypeBool && !c.annotatingForXor {
			return c.fail(e.Line, "Not-expression '%s' should have subexpression of type BOOLEAN.", e.ReadableString())
		}
		e.SetType(e.X.ExprType())
		return true
	case *ast.LeakExpr:
		if !c.checkExpr(e.X, types) {
			return false
		}
		e.SetType(e.X.ExprType())
		return true
	case *ast.BinopExpr:
		return c.checkBinop(e, types)
	case *ast.IfExpr:
		return c.checkIf(e, types)
	case *ast.CallExpr:
		return c.checkCall(e, types)
	default:
		errors.Internalf("unexpected expression %T encountered during type checking", expr)
		return false
	}
}

func typeOf(name string, types map[string]ast.Type) ast.Type {
	switch name {
	case ast.RandomNumName:
		return ast.TypeNum
	case ast.RandomBitName:
		return ast.TypeBool
	default:
		return types[name]
	}
}

func (c *checker) checkBinop(e *ast.BinopExpr, types map[string]ast.Type) bool {
	if !c.checkExpr(e.L, types) || !c.checkExpr(e.R, types) {
		return false
	}
	if e.L.ExprType() != e.R.ExprType() && !c.annotatingForXor {
		return c.fail(e.Line, "Operands of binop '%s' have different types.", e.ReadableString())
	}
	if e.L.ExprType() == ast.TypeNum && !c.annotatingForXor && (e.Op == ast.OpOr || e.Op == ast.OpAnd) {
		return c.fail(e.Line, "Expression '%s' requires operands of type BOOLEAN.", e.ReadableString())
	}
	if e.L.ExprType() == ast.TypeBool && !c.annotatingForXor && (e.Op.IsArithmetic() || e.Op.IsComparison()) {
		return c.fail(e.Line, "Expression '%s' requires operands of type NUMBER.", e.ReadableString())
	}
	if e.Op.IsArithmetic() {
		e.SetType(ast.TypeNum)
	} else {
		e.SetType(ast.TypeBool)
	}
	return true
}

func (c *checker) checkIf(e *ast.IfExpr, types map[string]ast.Type) bool {
	if !c.checkExpr(e.Cond, types) {
		return false
	}
	if e.Cond.ExprType() != ast.TypeBool && !c.annotatingForXor {
		return c.fail(e.Line, "If-condition '%s' must be of type BOOLEAN.", e.ReadableString())
	}
	if !c.checkExpr(e.Then, types) || !c.checkExpr(e.Else, types) {
		return false
	}
	if e.Then.ExprType() != e.Else.ExprType() && !c.annotatingForXor {
		return c.fail(e.Line, "Then- and else-branch of If-expression must have same types.")
	}
	e.SetType(e.Then.ExprType())
	return true
}

// checkCall type-checks a call's arguments, then re-checks the
// callee's entire body with the callee's parameters bound to the
// argument types in a fresh local type map. The callee is not copied:
// its expression nodes have their Type annotations set in place, so
// after checking they carry the types of the most recently checked
// call to it.
func (c *checker) checkCall(e *ast.CallExpr, types map[string]ast.Type) bool {
	if e.Func == ast.BuiltinRandNum {
		e.SetType(ast.TypeNum)
		return true
	}
	if e.Func == ast.BuiltinRandBit {
		e.SetType(ast.TypeBool)
		return true
	}
	for _, arg := range e.Args {
		if !c.checkExpr(arg, types) {
			return false
		}
	}
	callee := c.prog.FuncByName(e.Func)
	if callee == nil {
		errors.Internalf("call to undeclared function '%s' survived semantic validation", e.Func)
	}
	calleeTypes := map[string]ast.Type{}
	for i, param := range callee.Params {
		if i < len(e.Args) {
			calleeTypes[param] = e.Args[i].ExprType()
		}
	}
	for _, stm := range callee.Body.Stmts {
		if !c.checkStmt(stm, calleeTypes) {
			return false
		}
	}
	if !c.checkExpr(callee.Body.Tail, calleeTypes) {
		return false
	}
	e.SetType(callee.Body.Tail.ExprType())
	return true
}

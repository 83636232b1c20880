// Package lower implements §4.8: it flattens the nested call bodies
// smart inlining leaves behind and replaces every If expression with
// straight-line code — branchless multiplexer arithmetic for a secret
// condition, or JZ/JMP/PROGRAM_POINT control flow for a public one.
package lower

import (
	"fmt"

	"privc/internal/ast"
	"privc/internal/errors"
)

// nestedBodyExpr is the interface lower uses to see into the
// unexported type inline produces for a spliced-in call body, without
// either package depending on the other's internals.
type nestedBodyExpr interface {
	NestedBody() *ast.FunctionBody
}

// Lowerer carries the counters the original threads as instance state
// (tmp_counter for condition/result temporaries, program_point_counter
// for jump targets).
type Lowerer struct {
	tmpCounter   int
	pointCounter int
}

// TmpCounter reports how many "_tmpN" names Lower has allocated so far.
// The original keeps if-lowering and tmp insertion as methods of the
// same ASTworker instance, sharing one tmp_counter between them; Go
// splits the two passes into separate types, so the caller must carry
// this value into constprop.NewTmpInserter to keep the allocator
// shared and avoid a later pass reusing a name still referenced by the
// lowered if-multiplexer arithmetic.
func (l *Lowerer) TmpCounter() int { return l.tmpCounter }

// Lower rewrites main's body in place.
func (l *Lowerer) Lower(main *ast.Function) {
	var out []ast.Stmt
	for _, stm := range main.Body.Stmts {
		l.lowerStmt(stm, &out)
	}
	main.Body.Stmts = out
	main.Body.Tail = nil
}

func (l *Lowerer) lowerStmt(stm ast.Stmt, out *[]ast.Stmt) {
	a, ok := stm.(*ast.AssignStmt)
	if !ok {
		*out = append(*out, stm)
		return
	}
	result := l.lowerExpr(a.Value, out)
	*out = append(*out, ast.NewAssign(a.Var, result, a.Line))
}

func (l *Lowerer) lowerExpr(expr ast.Expr, out *[]ast.Stmt) ast.Expr {
	switch e := expr.(type) {
	case *ast.NumberExpr, *ast.BooleanExpr, *ast.IdentExpr:
		return e
	case *ast.NotExpr:
		e.X = l.lowerExpr(e.X, out)
		return e
	case *ast.LeakExpr:
		e.X = l.lowerExpr(e.X, out)
		return e
	case *ast.BinopExpr:
		e.L = l.lowerExpr(e.L, out)
		e.R = l.lowerExpr(e.R, out)
		return e
	case nestedBodyExpr:
		body := e.NestedBody()
		for _, stm := range body.Stmts {
			l.lowerStmt(stm, out)
		}
		return l.lowerExpr(body.Tail, out)
	case *ast.IfExpr:
		return l.lowerIf(e, out)
	default:
		errors.Internalf("unexpected expression %T found during if lowering", expr)
		return nil
	}
}

func (l *Lowerer) lowerIf(e *ast.IfExpr, out *[]ast.Stmt) ast.Expr {
	isPublic := e.Cond.ExprPublicness() == ast.Public

	cond := l.lowerExpr(e.Cond, out)
	condVar := fmt.Sprintf("_tmp%d", l.tmpCounter)
	l.tmpCounter++
	*out = append(*out, ast.NewAssign(condVar, cond, e.Line))

	if !isPublic {
		then := l.lowerExpr(e.Then, out)
		els := l.lowerExpr(e.Else, out)
		left := ast.NewBinop(ast.OpMul, ast.NewIdent(condVar, e.Line), then, e.Line)
		oneMinusCond := ast.NewBinop(ast.OpSub, ast.NewNumber(1, e.Line), ast.NewIdent(condVar, e.Line), e.Line)
		right := ast.NewBinop(ast.OpMul, oneMinusCond, els, e.Line)
		return ast.NewBinop(ast.OpAdd, left, right, e.Line)
	}

	resultVar := fmt.Sprintf("_tmp%d", l.tmpCounter)
	l.tmpCounter++

	elseTarget := l.pointCounter
	exitTarget := l.pointCounter + 1
	l.pointCounter += 2

	*out = append(*out, ast.NewJumpIfFalse(condVar, elseTarget))
	thenResult := l.lowerExpr(e.Then, out)
	*out = append(*out, &ast.AssignStmt{StmtMeta: ast.StmtMeta{Line: e.Line}, Var: resultVar, Value: thenResult, IsIfResultAssign: true})
	*out = append(*out, ast.NewJump(exitTarget))
	*out = append(*out, ast.NewLabel(elseTarget))
	elseResult := l.lowerExpr(e.Else, out)
	*out = append(*out, &ast.AssignStmt{StmtMeta: ast.StmtMeta{Line: e.Line}, Var: resultVar, Value: elseResult, IsIfResultAssign: true})
	*out = append(*out, ast.NewLabel(exitTarget))

	return ast.NewIfResult(resultVar)
}

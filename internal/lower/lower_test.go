package lower_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"privc/internal/ast"
	"privc/internal/inline"
	"privc/internal/lower"
)

func TestLowerSecretIfProducesBranchlessMultiplexer(t *testing.T) {
	cond := ast.NewIdent("c", 1)
	cond.SetPublicness(ast.Secret)
	ifExpr := ast.NewIf(cond, ast.NewNumber(1, 1), ast.NewNumber(2, 1), 1)
	ifExpr.SetPublicness(ast.Secret)

	main := &ast.Function{Name: "main", Body: &ast.FunctionBody{
		Stmts: []ast.Stmt{ast.NewAssign("y", ifExpr, 1)},
	}}

	(&lower.Lowerer{}).Lower(main)

	for _, stm := range main.Body.Stmts {
		switch stm.(type) {
		case *ast.JumpStmt, *ast.JumpIfFalseStmt, *ast.LabelStmt:
			t.Fatalf("secret if-lowering must never emit control flow, got %T", stm)
		}
	}
	last := main.Body.Stmts[len(main.Body.Stmts)-1].(*ast.AssignStmt)
	binop, ok := last.Value.(*ast.BinopExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpAdd, binop.Op)
}

func TestLowerPublicIfEmitsExactlyOneJZAndOneJMP(t *testing.T) {
	cond := ast.NewIdent("c", 1)
	cond.SetPublicness(ast.Public)
	ifExpr := ast.NewIf(cond, ast.NewNumber(1, 1), ast.NewNumber(2, 1), 1)
	ifExpr.SetPublicness(ast.Public)

	main := &ast.Function{Name: "main", Body: &ast.FunctionBody{
		Stmts: []ast.Stmt{ast.NewAssign("y", ifExpr, 1)},
	}}

	(&lower.Lowerer{}).Lower(main)

	var jz, jmp, labels int
	for _, stm := range main.Body.Stmts {
		switch stm.(type) {
		case *ast.JumpIfFalseStmt:
			jz++
		case *ast.JumpStmt:
			jmp++
		case *ast.LabelStmt:
			labels++
		}
	}
	assert.Equal(t, 1, jz)
	assert.Equal(t, 1, jmp)
	assert.Equal(t, 2, labels)
}

func TestLowerFlattensNestedBodySplice(t *testing.T) {
	callee := &ast.Function{Name: "f", Params: []string{"a"}, Body: &ast.FunctionBody{
		Tail: ast.NewBinop(ast.OpAdd, ast.NewIdent("a", 1), ast.NewNumber(1, 1), 1),
	}}
	main := &ast.Function{Name: "main", Body: &ast.FunctionBody{Stmts: []ast.Stmt{
		ast.NewAssign("y", ast.NewCall("f", []ast.Expr{ast.NewNumber(10, 1)}, 1), 1),
	}}}
	prog := &ast.Program{Funcs: []*ast.Function{callee, main}}

	diags := inline.Inline(prog)
	require.Empty(t, diags)

	inlinedMain := prog.Main()
	(&lower.Lowerer{}).Lower(inlinedMain)

	// Flattening must leave the call's argument-binding assignment and
	// the callee's own computation as plain statements in main, with
	// no trace of the nested-body splice surviving.
	require.Len(t, inlinedMain.Body.Stmts, 2)
	argAssign := inlinedMain.Body.Stmts[0].(*ast.AssignStmt)
	assert.Equal(t, 10, argAssign.Value.(*ast.NumberExpr).Value)
	resultAssign := inlinedMain.Body.Stmts[1].(*ast.AssignStmt)
	assert.Equal(t, "y", resultAssign.Var)
	assert.Nil(t, inlinedMain.Body.Tail)
}

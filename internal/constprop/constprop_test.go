package constprop_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"privc/internal/ast"
	"privc/internal/constprop"
)

func TestInsertTmpsFlattensNestedBinop(t *testing.T) {
	nested := ast.NewBinop(ast.OpAdd,
		ast.NewBinop(ast.OpMul, ast.NewNumber(2, 1), ast.NewNumber(3, 1), 1),
		ast.NewNumber(1, 1), 1)
	main := &ast.Function{Name: "main", Body: &ast.FunctionBody{
		Stmts: []ast.Stmt{ast.NewAssign("y", nested, 1)},
	}}

	(&constprop.TmpInserter{}).InsertTmps(main)

	require.Len(t, main.Body.Stmts, 2)
	tmpAssign := main.Body.Stmts[0].(*ast.AssignStmt)
	tmpBinop := tmpAssign.Value.(*ast.BinopExpr)
	assert.Equal(t, ast.OpMul, tmpBinop.Op)

	finalAssign := main.Body.Stmts[1].(*ast.AssignStmt)
	finalBinop := finalAssign.Value.(*ast.BinopExpr)
	_, leftIsIdent := finalBinop.L.(*ast.IdentExpr)
	assert.True(t, leftIsIdent, "the flattened subexpression must be referenced by name")
}

func TestPropagateFoldsConstantArithmetic(t *testing.T) {
	main := &ast.Function{Name: "main", Body: &ast.FunctionBody{
		Stmts: []ast.Stmt{
			ast.NewAssign("a", ast.NewNumber(2, 1), 1),
			ast.NewAssign("b", ast.NewNumber(3, 1), 1),
			ast.NewAssign("c", ast.NewBinop(ast.OpAdd, ast.NewIdent("a", 1), ast.NewIdent("b", 1), 1), 1),
			ast.NewOutput(ast.NewIdent("c", 1), "out", 1),
		},
	}}

	diags := constprop.Propagate(main)
	require.Len(t, diags, 1, "outputting a constant must warn")

	require.Len(t, main.Body.Stmts, 1)
	out := main.Body.Stmts[0].(*ast.OutputStmt)
	num, ok := out.Value.(*ast.NumberExpr)
	require.True(t, ok)
	assert.Equal(t, 5, num.Value)
}

func TestPropagateDoesNotFoldThroughInput(t *testing.T) {
	main := &ast.Function{Name: "main", Body: &ast.FunctionBody{
		Stmts: []ast.Stmt{
			ast.NewInput("s", 1, ast.TypeNum, 1),
			ast.NewOutput(ast.NewIdent("s", 1), "out", 1),
		},
	}}

	diags := constprop.Propagate(main)
	assert.Empty(t, diags)
	require.Len(t, main.Body.Stmts, 2)
}

func TestPropagateShortCircuitsOrWithTrueConstant(t *testing.T) {
	main := &ast.Function{Name: "main", Body: &ast.FunctionBody{
		Stmts: []ast.Stmt{
			ast.NewInput("s", 1, ast.TypeBool, 1),
			ast.NewAssign("t", ast.NewBoolean(true, 1), 1),
			ast.NewAssign("r", ast.NewBinop(ast.OpOr, ast.NewIdent("t", 1), ast.NewIdent("s", 1), 1), 1),
			ast.NewOutput(ast.NewIdent("r", 1), "out", 1),
		},
	}}

	diags := constprop.Propagate(main)
	require.Len(t, diags, 1)

	out := main.Body.Stmts[len(main.Body.Stmts)-1].(*ast.OutputStmt)
	b, ok := out.Value.(*ast.BooleanExpr)
	require.True(t, ok)
	assert.True(t, b.Value)
}

func TestPropagateShortCircuitsAndWithFalseConstant(t *testing.T) {
	main := &ast.Function{Name: "main", Body: &ast.FunctionBody{
		Stmts: []ast.Stmt{
			ast.NewInput("s", 1, ast.TypeBool, 1),
			ast.NewAssign("f", ast.NewBoolean(false, 1), 1),
			ast.NewAssign("r", ast.NewBinop(ast.OpAnd, ast.NewIdent("f", 1), ast.NewIdent("s", 1), 1), 1),
			ast.NewOutput(ast.NewIdent("r", 1), "out", 1),
		},
	}}

	diags := constprop.Propagate(main)
	require.Len(t, diags, 1)
	out := main.Body.Stmts[len(main.Body.Stmts)-1].(*ast.OutputStmt)
	b, ok := out.Value.(*ast.BooleanExpr)
	require.True(t, ok)
	assert.False(t, b.Value)
}

func TestPropagateEqConstantRewritesToIdentityOrNegation(t *testing.T) {
	main := &ast.Function{Name: "main", Body: &ast.FunctionBody{
		Stmts: []ast.Stmt{
			ast.NewInput("s", 1, ast.TypeBool, 1),
			ast.NewAssign("t", ast.NewBoolean(true, 1), 1),
			ast.NewAssign("r", ast.NewBinop(ast.OpEq, ast.NewIdent("t", 1), ast.NewIdent("s", 1), 1), 1),
			ast.NewOutput(ast.NewIdent("r", 1), "out", 1),
		},
	}}

	constprop.Propagate(main)

	var rAssign *ast.AssignStmt
	for _, stm := range main.Body.Stmts {
		if a, ok := stm.(*ast.AssignStmt); ok && a.Var == "r" {
			rAssign = a
		}
	}
	require.NotNil(t, rAssign)
	ident, ok := rAssign.Value.(*ast.IdentExpr)
	require.True(t, ok, "s == true collapses to s")
	assert.Equal(t, "s", ident.Name)
}

func TestFloorDivRoundsTowardNegativeInfinity(t *testing.T) {
	main := &ast.Function{Name: "main", Body: &ast.FunctionBody{
		Stmts: []ast.Stmt{
			ast.NewAssign("a", ast.NewNumber(-7, 1), 1),
			ast.NewAssign("b", ast.NewNumber(2, 1), 1),
			ast.NewAssign("c", ast.NewBinop(ast.OpDiv, ast.NewIdent("a", 1), ast.NewIdent("b", 1), 1), 1),
			ast.NewOutput(ast.NewIdent("c", 1), "out", 1),
		},
	}}

	constprop.Propagate(main)

	out := main.Body.Stmts[len(main.Body.Stmts)-1].(*ast.OutputStmt)
	num := out.Value.(*ast.NumberExpr)
	assert.Equal(t, -4, num.Value)
}

func TestPropagateKeepsIfResultJoinAssignment(t *testing.T) {
	main := &ast.Function{Name: "main", Body: &ast.FunctionBody{
		Stmts: []ast.Stmt{
			&ast.AssignStmt{StmtMeta: ast.StmtMeta{Line: 1}, Var: "r", Value: ast.NewNumber(1, 1), IsIfResultAssign: true},
			ast.NewOutput(ast.NewIdent("r", 1), "out", 1),
		},
	}}

	constprop.Propagate(main)

	require.Len(t, main.Body.Stmts, 2, "if-result join assignments are never eliminated")
}

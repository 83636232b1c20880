package rewrite_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"privc/internal/ast"
	"privc/internal/rewrite"
)

func TestRemoveUminusRewritesToZeroMinusX(t *testing.T) {
	uminus := &ast.UminusExpr{ExprMeta: ast.ExprMeta{Line: 1}, X: ast.NewIdent("x", 1)}
	main := &ast.Function{Name: "main", Body: &ast.FunctionBody{
		Stmts: []ast.Stmt{ast.NewAssign("y", uminus, 1)},
	}}
	prog := &ast.Program{Funcs: []*ast.Function{main}}

	rewrite.RemoveUminus(prog)

	assign := main.Body.Stmts[0].(*ast.AssignStmt)
	binop, ok := assign.Value.(*ast.BinopExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpSub, binop.Op)
	num, ok := binop.L.(*ast.NumberExpr)
	require.True(t, ok)
	assert.Equal(t, 0, num.Value)
}

func TestRemoveUminusRecursesThroughNesting(t *testing.T) {
	inner := &ast.UminusExpr{ExprMeta: ast.ExprMeta{Line: 1}, X: ast.NewNumber(5, 1)}
	not := ast.NewNot(inner, 1)
	main := &ast.Function{Name: "main", Body: &ast.FunctionBody{
		Stmts: []ast.Stmt{ast.NewAssign("y", not, 1)},
	}}
	prog := &ast.Program{Funcs: []*ast.Function{main}}

	rewrite.RemoveUminus(prog)

	assign := main.Body.Stmts[0].(*ast.AssignStmt)
	n, ok := assign.Value.(*ast.NotExpr)
	require.True(t, ok)
	_, ok = n.X.(*ast.BinopExpr)
	assert.True(t, ok, "uminus nested inside not must also be rewritten")
}

func TestRewriteEqRewritesToNotNeq(t *testing.T) {
	eq := ast.NewBinop(ast.OpEq, ast.NewIdent("a", 1), ast.NewIdent("b", 1), 1)
	main := &ast.Function{Name: "main", Body: &ast.FunctionBody{
		Stmts: []ast.Stmt{ast.NewAssign("y", eq, 1)},
	}}
	prog := &ast.Program{Funcs: []*ast.Function{main}}

	rewrite.RewriteEq(prog)

	assign := main.Body.Stmts[0].(*ast.AssignStmt)
	not, ok := assign.Value.(*ast.NotExpr)
	require.True(t, ok)
	neq, ok := not.X.(*ast.BinopExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpNeq, neq.Op)
}

func TestRenameReusedVarsRenamesOnlySecondAssignment(t *testing.T) {
	main := &ast.Function{Name: "main", Body: &ast.FunctionBody{
		Stmts: []ast.Stmt{
			ast.NewAssign("x", ast.NewNumber(1, 1), 1),
			ast.NewAssign("x", ast.NewNumber(2, 2), 2),
			ast.NewOutput(ast.NewIdent("x", 3), "out", 3),
		},
	}}
	prog := &ast.Program{Funcs: []*ast.Function{main}}

	(&rewrite.Renamer{}).RenameReusedVars(prog)

	first := main.Body.Stmts[0].(*ast.AssignStmt)
	second := main.Body.Stmts[1].(*ast.AssignStmt)
	output := main.Body.Stmts[2].(*ast.OutputStmt)

	assert.Equal(t, "x", first.Var)
	assert.NotEqual(t, "x", second.Var)
	assert.Equal(t, second.Var, output.Value.(*ast.IdentExpr).Name)
}

func TestRenameReusedVarsNeverRenamesParamsOrInputs(t *testing.T) {
	main := &ast.Function{Name: "main", Body: &ast.FunctionBody{
		Stmts: []ast.Stmt{
			ast.NewInput("x", 1, ast.TypeNum, 1),
			ast.NewOutput(ast.NewIdent("x", 2), "out", 2),
		},
	}}
	prog := &ast.Program{Funcs: []*ast.Function{main}}

	(&rewrite.Renamer{}).RenameReusedVars(prog)

	input := main.Body.Stmts[0].(*ast.InputStmt)
	output := main.Body.Stmts[1].(*ast.OutputStmt)
	assert.Equal(t, "x", input.Var)
	assert.Equal(t, "x", output.Value.(*ast.IdentExpr).Name)
}

package semantic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"privc/internal/ast"
	"privc/internal/semantic"
)

func mainFn(stmts []ast.Stmt, params ...string) *ast.Function {
	return &ast.Function{Name: "main", Params: params, Body: &ast.FunctionBody{Stmts: stmts}}
}

func TestCheckMainRequiresNoArgsAndPresence(t *testing.T) {
	prog := &ast.Program{Funcs: []*ast.Function{mainFn(nil, "x")}}
	diags := semantic.CheckMain(prog)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Msg, "should not take any arguments")

	empty := &ast.Program{}
	diags = semantic.CheckMain(empty)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Msg, "No function called 'main'")
}

func TestCheckIllegalIORejectsNonMainIO(t *testing.T) {
	f := &ast.Function{Name: "f", Body: &ast.FunctionBody{
		Stmts: []ast.Stmt{ast.NewInput("x", 1, ast.TypeNum, 1)},
	}}
	prog := &ast.Program{Funcs: []*ast.Function{f, mainFn(nil)}}

	diags := semantic.CheckIllegalIO(prog)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Msg, "illegal input statement")
}

func TestCheckBadFuncCallsArityMismatch(t *testing.T) {
	callee := &ast.Function{Name: "f", Params: []string{"a", "b"}, Body: &ast.FunctionBody{Tail: ast.NewNumber(0, 1)}}
	main := mainFn([]ast.Stmt{ast.NewAssign("x", ast.NewCall("f", []ast.Expr{ast.NewNumber(1, 1)}, 1), 1)})
	prog := &ast.Program{Funcs: []*ast.Function{callee, main}}

	diags := semantic.CheckBadFuncCalls(prog, semantic.FuncMap(prog))
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Msg, "wrong number of arguments")
}

func TestCheckBadFuncCallsSkipsBuiltins(t *testing.T) {
	main := mainFn([]ast.Stmt{ast.NewAssign("x", ast.NewCall("randomnum", []ast.Expr{ast.NewNumber(1, 1)}, 1), 1)})
	prog := &ast.Program{Funcs: []*ast.Function{main}}

	diags := semantic.CheckBadFuncCalls(prog, semantic.FuncMap(prog))
	assert.Empty(t, diags)
}

func TestExprHasBadFuncCallPreservesThenTwiceElseNeverQuirk(t *testing.T) {
	callee := &ast.Function{Name: "f", Params: nil, Body: &ast.FunctionBody{Tail: ast.NewNumber(0, 1)}}
	badThen := ast.NewCall("f", []ast.Expr{ast.NewNumber(1, 1)}, 1) // wrong arity
	badElse := ast.NewCall("f", []ast.Expr{ast.NewNumber(1, 1)}, 2) // also wrong arity
	ifExpr := ast.NewIf(ast.NewBoolean(true, 1), badThen, badElse, 1)
	main := mainFn([]ast.Stmt{ast.NewAssign("x", ifExpr, 1)})
	prog := &ast.Program{Funcs: []*ast.Function{callee, main}}

	diags := semantic.CheckBadFuncCalls(prog, semantic.FuncMap(prog))
	// The then-branch's bad call is reported twice; the else-branch's
	// identical mistake is never inspected at all.
	require.Len(t, diags, 2)
	assert.Equal(t, 1, diags[0].Line)
	assert.Equal(t, 1, diags[1].Line)
}

func TestCheckUndeclaredVarsReportsUse(t *testing.T) {
	main := mainFn([]ast.Stmt{ast.NewOutput(ast.NewIdent("x", 1), "out", 1)})
	prog := &ast.Program{Funcs: []*ast.Function{main}}

	diags := semantic.CheckUndeclaredVars(prog)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Msg, "undeclared variable 'x'")
}

func TestCheckUndeclaredVarsCallArgsOverwriteNotOR(t *testing.T) {
	callee := &ast.Function{Name: "f", Params: []string{"a", "b"}, Body: &ast.FunctionBody{Tail: ast.NewNumber(0, 1)}}
	call := ast.NewCall("f", []ast.Expr{ast.NewIdent("undeclared", 1), ast.NewIdent("x", 2)}, 1)
	main := mainFn([]ast.Stmt{
		ast.NewAssign("x", ast.NewNumber(1, 1), 1),
		ast.NewAssign("y", call, 2),
	})
	prog := &ast.Program{Funcs: []*ast.Function{callee, main}}

	diags := semantic.CheckUndeclaredVars(prog)
	// Only the last argument's check result survives; the first
	// argument's undeclared use is silently overwritten away.
	assert.Empty(t, diags)
}

func TestCheckIONamesRejectsDuplicateLabelsAndInputs(t *testing.T) {
	main := mainFn([]ast.Stmt{
		ast.NewInput("x", 1, ast.TypeNum, 1),
		ast.NewInput("x", 2, ast.TypeNum, 2),
		ast.NewOutput(ast.NewIdent("x", 3), "r", 3),
		ast.NewOutput(ast.NewIdent("x", 4), "r", 4),
	})
	prog := &ast.Program{Funcs: []*ast.Function{main}}

	diags := semantic.CheckIONames(prog)
	require.Len(t, diags, 2)
}

package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"privc/internal/ast"
)

func TestBinOpClassification(t *testing.T) {
	assert.True(t, ast.OpAdd.IsArithmetic())
	assert.True(t, ast.OpDiv.IsArithmetic())
	assert.False(t, ast.OpAnd.IsArithmetic())

	assert.True(t, ast.OpAnd.IsLogical())
	assert.True(t, ast.OpOr.IsLogical())
	assert.False(t, ast.OpEq.IsLogical())

	assert.True(t, ast.OpLt.IsComparison())
	assert.True(t, ast.OpGte.IsComparison())
	assert.False(t, ast.OpEq.IsComparison())
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "num", ast.TypeNum.String())
	assert.Equal(t, "bool", ast.TypeBool.String())
	assert.Equal(t, "unknown", ast.TypeUnknown.String())
}

func TestPublicnessString(t *testing.T) {
	assert.Equal(t, "public", ast.Public.String())
	assert.Equal(t, "secret", ast.Secret.String())
}

func TestProgramFuncByNameAndMain(t *testing.T) {
	main := &ast.Function{Name: "main", Body: &ast.FunctionBody{}}
	other := &ast.Function{Name: "f", Body: &ast.FunctionBody{}}
	prog := &ast.Program{Funcs: []*ast.Function{other, main}}

	assert.Same(t, main, prog.Main())
	assert.Same(t, other, prog.FuncByName("f"))
	assert.Nil(t, prog.FuncByName("nope"))
}

func TestReadableStringRoundTrips(t *testing.T) {
	n := ast.NewNumber(3, 1)
	b := ast.NewBoolean(true, 1)
	assign := ast.NewAssign("x", ast.NewBinop(ast.OpAdd, n, b, 1), 1)
	assert.Equal(t, "x = (3 + 1);", assign.ReadableString())

	out := ast.NewOutput(ast.NewIdent("x", 1), "result", 1)
	assert.Equal(t, "x >> result;", out.ReadableString())

	in := ast.NewInput("x", 1, ast.TypeNum, 1)
	assert.Equal(t, "x << 1 : num;", in.ReadableString())
}

func TestIsBuiltinRandomName(t *testing.T) {
	assert.True(t, ast.IsBuiltinRandomName(ast.RandomNumName))
	assert.True(t, ast.IsBuiltinRandomName(ast.RandomBitName))
	assert.False(t, ast.IsBuiltinRandomName("x"))
}

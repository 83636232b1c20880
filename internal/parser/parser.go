// Package parser walks a grammar.Program concrete parse tree into an
// internal/ast.Program, resolving operator spellings to ast.BinOp
// values and attaching a source line number to every node.
package parser

import (
	"strconv"

	"privc/grammar"
	"privc/internal/ast"
	"privc/internal/errors"
)

// ParseFile parses path's source and translates it into an AST.
func ParseFile(path string) (*ast.Program, error) {
	tree, err := grammar.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return translateProgram(tree), nil
}

// ParseString parses source and translates it into an AST; filename is
// used only in error positions.
func ParseString(filename, source string) (*ast.Program, error) {
	tree, err := grammar.ParseString(filename, source)
	if err != nil {
		return nil, err
	}
	return translateProgram(tree), nil
}

func translateProgram(tree *grammar.Program) *ast.Program {
	prog := &ast.Program{}
	for _, fn := range tree.Funcs {
		prog.Funcs = append(prog.Funcs, translateFunction(fn))
	}
	return prog
}

func translateFunction(fn *grammar.Function) *ast.Function {
	if fn.Main != nil {
		m := fn.Main
		var stmts []ast.Stmt
		for _, s := range m.Stmts {
			stmts = append(stmts, translateStmt(s))
		}
		return &ast.Function{
			Line: m.Pos.Line,
			Name: "main",
			Body: &ast.FunctionBody{Stmts: stmts},
		}
	}
	n := fn.Named
	var stmts []ast.Stmt
	for _, s := range n.Body.Stmts {
		stmts = append(stmts, translateStmt(s))
	}
	return &ast.Function{
		Line:   n.Pos.Line,
		Name:   n.Name,
		Params: n.Params,
		Body:   &ast.FunctionBody{Stmts: stmts, Tail: translateExpr(n.Body.Tail)},
	}
}

func translateStmt(s *grammar.Stmt) ast.Stmt {
	switch {
	case s.Input != nil:
		i := s.Input
		provider, _ := strconv.Atoi(i.Provider)
		typ := ast.TypeNum
		if i.Type == "bool" {
			typ = ast.TypeBool
		}
		return ast.NewInput(i.Var, provider, typ, i.Pos.Line)
	case s.Output != nil:
		o := s.Output
		return ast.NewOutput(ast.NewIdent(o.Var, o.Pos.Line), o.Label, o.Pos.Line)
	case s.Assign != nil:
		a := s.Assign
		return ast.NewAssign(a.Var, translateExpr(a.Expr), a.Pos.Line)
	default:
		errors.Internalf("empty statement in parse tree")
		return nil
	}
}

func translateExpr(e *grammar.Expr) ast.Expr {
	return translateOr(e.Or)
}

func translateOr(e *grammar.OrExpr) ast.Expr {
	result := translateAnd(e.Left)
	for _, r := range e.Right {
		result = ast.NewBinop(ast.OpOr, result, translateAnd(r), result.Pos().Line)
	}
	return result
}

func translateAnd(e *grammar.AndExpr) ast.Expr {
	result := translateCompare(e.Left)
	for _, r := range e.Right {
		result = ast.NewBinop(ast.OpAnd, result, translateCompare(r), result.Pos().Line)
	}
	return result
}

func translateCompare(e *grammar.CompareExpr) ast.Expr {
	left := translateAdd(e.Left)
	if e.Op == nil {
		return left
	}
	right := translateAdd(e.Right)
	return ast.NewBinop(compareOp(*e.Op), left, right, left.Pos().Line)
}

func compareOp(op string) ast.BinOp {
	switch op {
	case "==":
		return ast.OpEq
	case "!=":
		return ast.OpNeq
	case "<":
		return ast.OpLt
	case ">":
		return ast.OpGt
	case "<=":
		return ast.OpLte
	case ">=":
		return ast.OpGte
	default:
		errors.Internalf("unexpected comparison operator '%s' in parse tree", op)
		return ""
	}
}

func translateAdd(e *grammar.AddExpr) ast.Expr {
	result := translateMul(e.Left)
	for _, op := range e.Ops {
		binop := ast.OpAdd
		if op.Operator == "-" {
			binop = ast.OpSub
		}
		result = ast.NewBinop(binop, result, translateMul(op.Right), result.Pos().Line)
	}
	return result
}

func translateMul(e *grammar.MulExpr) ast.Expr {
	result := translateUnary(e.Left)
	for _, op := range e.Ops {
		binop := ast.OpMul
		if op.Operator == "/" {
			binop = ast.OpDiv
		}
		result = ast.NewBinop(binop, result, translateUnary(op.Right), result.Pos().Line)
	}
	return result
}

func translateUnary(e *grammar.UnaryExpr) ast.Expr {
	switch {
	case e.Leak != nil:
		return ast.NewLeak(translateUnary(e.Leak), e.Pos.Line)
	case e.Not != nil:
		return ast.NewNot(translateUnary(e.Not), e.Pos.Line)
	case e.Neg != nil:
		return &ast.UminusExpr{ExprMeta: ast.ExprMeta{Line: e.Pos.Line}, X: translateUnary(e.Neg)}
	case e.Primary != nil:
		return translatePrimary(e.Primary)
	default:
		errors.Internalf("empty unary expression in parse tree")
		return nil
	}
}

func translatePrimary(p *grammar.Primary) ast.Expr {
	switch {
	case p.If != nil:
		return ast.NewIf(translateExpr(p.If.Cond), translateExpr(p.If.Then), translateExpr(p.If.Else), p.Pos.Line)
	case p.Call != nil:
		c := p.Call
		var args []ast.Expr
		for _, a := range c.Args {
			args = append(args, translateExpr(a))
		}
		return ast.NewCall(c.Func, args, c.Pos.Line)
	case p.True:
		return ast.NewBoolean(true, p.Pos.Line)
	case p.False:
		return ast.NewBoolean(false, p.Pos.Line)
	case p.Number != nil:
		n, _ := strconv.Atoi(*p.Number)
		return ast.NewNumber(n, p.Pos.Line)
	case p.Ident != nil:
		return ast.NewIdent(*p.Ident, p.Pos.Line)
	case p.Paren != nil:
		return translateExpr(p.Paren)
	default:
		errors.Internalf("empty primary expression in parse tree")
		return nil
	}
}

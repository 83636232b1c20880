// Package inline implements §4.7 smart inlining: main is expanded into
// a single flat function body by substituting every call with its
// callee's body (renamed to avoid capture), computing each
// subexpression's publicness along the way, and replacing
// randomnum()/randombit() calls with references to the two synthetic
// random identifiers.
package inline

import (
	"fmt"

	"privc/internal/ast"
	"privc/internal/errors"
)

// Inliner holds the counters the original threads through recursive
// inlining as instance state (func_call_counter, private_cond_depth).
type Inliner struct {
	prog             *ast.Program
	funcCallCounter  int
	privateCondDepth int
	diags            []errors.CompilerError
}

// Inline replaces prog.Funcs with a single inlined main function and
// returns any warnings produced along the way (leaking inside a
// secret-conditioned branch).
func Inline(prog *ast.Program) []errors.CompilerError {
	in := &Inliner{prog: prog}
	main := prog.Main()
	body := in.inlineFunc("main", nil, map[string]ast.Expr{})
	prog.Funcs = []*ast.Function{{Line: main.Line, Name: "main", Params: nil, Body: body}}
	return in.diags
}

// inlineFunc deep-copies funcName's body, renames all of its local
// variables (main is never renamed, since its names are externally
// visible through Input/Output), prepends argument-binding assignments
// for argNames (in declaration order, so a call's IR is deterministic
// regardless of Go's unordered map iteration), and recursively inlines
// the body's statements and tail expression. varValues is both the
// initial argument scope and, as the body is walked, the growing table
// of every local name's current value and publicness.
func (in *Inliner) inlineFunc(funcName string, argNames []string, varValues map[string]ast.Expr) *ast.FunctionBody {
	fn := in.prog.FuncByName(funcName)
	body := cloneBody(fn.Body)
	if funcName != "main" {
		in.renameAllVars(fn.Name, body)
	}

	argAssigns := make([]ast.Stmt, 0, len(argNames))
	for _, name := range argNames {
		argAssigns = append(argAssigns, ast.NewAssign(name, varValues[name], 0))
	}

	var stmts []ast.Stmt
	for _, stm := range body.Stmts {
		switch s := stm.(type) {
		case *ast.InputStmt:
			varValues[s.Var] = &ast.IdentExpr{ExprMeta: ast.ExprMeta{Publicness: ast.Secret}, Name: s.Var}
			stmts = append(stmts, s)
		case *ast.AssignStmt:
			s.Value = in.inlineExpr(s.Value, varValues)
			varValues[s.Var] = s.Value
			stmts = append(stmts, s)
		case *ast.OutputStmt:
			s.Value = in.inlineExpr(s.Value, varValues)
			stmts = append(stmts, s)
		default:
			errors.Internalf("unexpected statement %T found during smart inlining", stm)
		}
	}

	result := &ast.FunctionBody{Stmts: append(argAssigns, stmts...)}
	if funcName != "main" {
		result.Tail = in.inlineExpr(body.Tail, varValues)
	}
	return result
}

func (in *Inliner) inlineExpr(expr ast.Expr, varValues map[string]ast.Expr) ast.Expr {
	switch e := expr.(type) {
	case *ast.NumberExpr:
		e.SetPublicness(ast.Public)
		return e
	case *ast.BooleanExpr:
		e.SetPublicness(ast.Public)
		return e
	case *ast.IdentExpr:
		e.SetPublicness(varValues[e.Name].ExprPublicness())
		return e
	case *ast.LeakExpr:
		e.X = in.inlineExpr(e.X, varValues)
		e.SetPublicness(ast.Public)
		if in.privateCondDepth > 0 {
			in.diags = append(in.diags, errors.NewWarning(e.Line,
				"Leaking in secret branch may leak value of branch-condition."))
		}
		return e
	case *ast.NotExpr:
		e.X = in.inlineExpr(e.X, varValues)
		e.SetPublicness(e.X.ExprPublicness())
		return e
	case *ast.BinopExpr:
		e.L = in.inlineExpr(e.L, varValues)
		e.R = in.inlineExpr(e.R, varValues)
		e.SetPublicness(combinePublicness(e.L.ExprPublicness(), e.R.ExprPublicness()))
		return e
	case *ast.IfExpr:
		e.Cond = in.inlineExpr(e.Cond, varValues)
		e.SetPublicness(e.Cond.ExprPublicness())
		if e.ExprPublicness() != ast.Public {
			in.privateCondDepth++
		}
		e.Then = in.inlineExpr(e.Then, varValues)
		e.Else = in.inlineExpr(e.Else, varValues)
		if e.ExprPublicness() != ast.Public {
			in.privateCondDepth--
		}
		return e
	case *ast.CallExpr:
		if e.Func == ast.BuiltinRandNum {
			return &ast.IdentExpr{ExprMeta: ast.ExprMeta{Publicness: ast.Secret}, Name: ast.RandomNumName}
		}
		if e.Func == ast.BuiltinRandBit {
			return &ast.IdentExpr{ExprMeta: ast.ExprMeta{Publicness: ast.Secret}, Name: ast.RandomBitName}
		}
		for i, arg := range e.Args {
			e.Args[i] = in.inlineExpr(arg, varValues)
		}
		callee := in.prog.FuncByName(e.Func)
		argNames := make([]string, len(callee.Params))
		argValues := map[string]ast.Expr{}
		for i, param := range callee.Params {
			newName := fmt.Sprintf("_%s_%d_%s", callee.Name, in.funcCallCounter, param)
			argNames[i] = newName
			argValues[newName] = e.Args[i]
		}
		inlinedBody := in.inlineFunc(e.Func, argNames, argValues)
		// Splice the callee's statements into the caller via a
		// synthetic nested-body marker that internal/lower flattens.
		return &nestedBody{body: inlinedBody}
	default:
		errors.Internalf("unexpected expression %T found during smart inlining", expr)
		return nil
	}
}

// combinePublicness mirrors is_public_exp() conjunction: an expression
// is public only if every operand is public.
func combinePublicness(a, b ast.Publicness) ast.Publicness {
	if a == ast.Public && b == ast.Public {
		return ast.Public
	}
	return ast.Secret
}

// nestedBody is a transient expression produced when a call is
// inlined: it carries the callee's statements (already inlined) plus
// its tail expression, to be spliced into the caller's statement list
// by internal/lower's Lowerer before any later pass observes the AST.
// It never survives past lowering. It embeds ast.IdentExpr only to
// pick up that type's annotations and the unexported marker method
// that makes it an ast.Expr; it is never treated as an identifier.
type nestedBody struct {
	ast.IdentExpr
	body *ast.FunctionBody
}

func (n *nestedBody) ReadableString() string { return n.body.ReadableString() }

// NestedBody exposes the spliced callee body to the lowering pass
// (internal/lower), which flattens it into the enclosing statement
// list without either package depending on the other's concrete type.
func (n *nestedBody) NestedBody() *ast.FunctionBody { return n.body }

func cloneBody(b *ast.FunctionBody) *ast.FunctionBody {
	stmts := make([]ast.Stmt, len(b.Stmts))
	for i, s := range b.Stmts {
		stmts[i] = cloneStmt(s)
	}
	var tail ast.Expr
	if b.Tail != nil {
		tail = cloneExpr(b.Tail)
	}
	return &ast.FunctionBody{Stmts: stmts, Tail: tail}
}

func cloneStmt(s ast.Stmt) ast.Stmt {
	switch v := s.(type) {
	case *ast.AssignStmt:
		c := *v
		c.Value = cloneExpr(v.Value)
		return &c
	case *ast.InputStmt:
		c := *v
		return &c
	case *ast.OutputStmt:
		c := *v
		c.Value = cloneExpr(v.Value)
		return &c
	default:
		errors.Internalf("unexpected statement %T found during function body cloning", s)
		return nil
	}
}

func cloneExpr(e ast.Expr) ast.Expr {
	switch v := e.(type) {
	case *ast.NumberExpr:
		c := *v
		return &c
	case *ast.BooleanExpr:
		c := *v
		return &c
	case *ast.IdentExpr:
		c := *v
		return &c
	case *ast.UminusExpr:
		c := *v
		c.X = cloneExpr(v.X)
		return &c
	case *ast.NotExpr:
		c := *v
		c.X = cloneExpr(v.X)
		return &c
	case *ast.LeakExpr:
		c := *v
		c.X = cloneExpr(v.X)
		return &c
	case *ast.BinopExpr:
		c := *v
		c.L, c.R = cloneExpr(v.L), cloneExpr(v.R)
		return &c
	case *ast.IfExpr:
		c := *v
		c.Cond, c.Then, c.Else = cloneExpr(v.Cond), cloneExpr(v.Then), cloneExpr(v.Else)
		return &c
	case *ast.CallExpr:
		c := *v
		c.Args = make([]ast.Expr, len(v.Args))
		for i, a := range v.Args {
			c.Args[i] = cloneExpr(a)
		}
		return &c
	default:
		errors.Internalf("unexpected expression %T found during expression cloning", e)
		return nil
	}
}

// renameAllVars prefixes every local identifier introduced by fn with
// a call-site-unique namespace, so repeated inlining of the same
// function never collides names across call sites.
func (in *Inliner) renameAllVars(funcName string, body *ast.FunctionBody) {
	for _, stm := range body.Stmts {
		switch s := stm.(type) {
		case *ast.InputStmt:
			s.Var = in.renamedVar(funcName, s.Var)
		case *ast.OutputStmt:
			in.renameVarsExpr(funcName, s.Value)
		case *ast.AssignStmt:
			s.Var = in.renamedVar(funcName, s.Var)
			in.renameVarsExpr(funcName, s.Value)
		default:
			errors.Internalf("unexpected statement %T found during function renaming", stm)
		}
	}
	if funcName != "main" && body.Tail != nil {
		in.renameVarsExpr(funcName, body.Tail)
	}
	in.funcCallCounter++
}

func (in *Inliner) renamedVar(funcName, name string) string {
	return fmt.Sprintf("_%s_%d_%s", funcName, in.funcCallCounter, name)
}

func (in *Inliner) renameVarsExpr(funcName string, expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.IdentExpr:
		e.Name = in.renamedVar(funcName, e.Name)
	case *ast.NotExpr:
		in.renameVarsExpr(funcName, e.X)
	case *ast.LeakExpr:
		in.renameVarsExpr(funcName, e.X)
	case *ast.BinopExpr:
		in.renameVarsExpr(funcName, e.L)
		in.renameVarsExpr(funcName, e.R)
	case *ast.CallExpr:
		for _, arg := range e.Args {
			in.renameVarsExpr(funcName, arg)
		}
	case *ast.IfExpr:
		in.renameVarsExpr(funcName, e.Cond)
		in.renameVarsExpr(funcName, e.Then)
		in.renameVarsExpr(funcName, e.Else)
	case *ast.NumberExpr, *ast.BooleanExpr:
		// Nothing to rename.
	default:
		errors.Internalf("unexpected expression %T found during variable renaming", expr)
	}
}

// Package constprop implements §4.9-§4.10: tmp insertion (so every
// binop/not/leak operand is a literal or a name) and constant
// propagation over the now-flat main body, including the short-circuit
// boolean identities and Python-style floor division.
package constprop

import (
	"fmt"

	"privc/internal/ast"
	"privc/internal/errors"
)

// InsertTmps folds every nested subexpression of an AssignStmt's RHS
// binop/not/leak out into its own preceding assignment, so later
// passes only ever see flat two-operand expressions. Statements other
// than AssignStmt, and AssignStmt whose RHS is already flat (literal,
// identifier, or an IfResultExpr produced by lowering), pass through
// unchanged.
type TmpInserter struct {
	counter int
}

// NewTmpInserter starts the "_tmpN" allocator at start rather than 0.
// Callers must pass the ending counter of the Lowerer that already ran
// over the same function, so tmp insertion never reallocates a name
// if-lowering is still using (e.g. the condition temporary a secret
// If's multiplexer arithmetic reads twice).
func NewTmpInserter(start int) *TmpInserter {
	return &TmpInserter{counter: start}
}

func (t *TmpInserter) InsertTmps(main *ast.Function) {
	var out []ast.Stmt
	for _, stm := range main.Body.Stmts {
		a, ok := stm.(*ast.AssignStmt)
		if !ok {
			out = append(out, stm)
			continue
		}
		switch v := a.Value.(type) {
		case *ast.BinopExpr:
			l := t.flatten(v.L, &out)
			r := t.flatten(v.R, &out)
			a.Value = ast.NewBinop(v.Op, l, r, v.Line)
		case *ast.NotExpr:
			v.X = t.flatten(v.X, &out)
		case *ast.LeakExpr:
			v.X = t.flatten(v.X, &out)
		}
		out = append(out, a)
	}
	main.Body.Stmts = out
}

// flatten returns expr unchanged if it is already a literal or a plain
// identifier reference (substituting a fresh tmp for the synthetic
// random identifiers, so RANDOM/RANDOM_BIT always target a real
// variable), or otherwise emits assignments for its subexpressions and
// returns a fresh identifier bound to the now-flat expression.
func (t *TmpInserter) flatten(expr ast.Expr, out *[]ast.Stmt) ast.Expr {
	switch e := expr.(type) {
	case *ast.NumberExpr, *ast.BooleanExpr:
		return e
	case *ast.IdentExpr:
		if ast.IsBuiltinRandomName(e.Name) {
			tmp := t.freshTmp("_tmp")
			*out = append(*out, ast.NewAssign(tmp, e, e.Line))
			return ast.NewIdent(tmp, e.Line)
		}
		return e
	case *ast.IfResultExpr:
		return e
	case *ast.LeakExpr, *ast.NotExpr, *ast.BinopExpr:
		tmp := t.freshTmp("_tmp")
		var flat ast.Expr
		switch v := e.(type) {
		case *ast.LeakExpr:
			flat = ast.NewLeak(t.flatten(v.X, out), v.Line)
		case *ast.NotExpr:
			flat = ast.NewNot(t.flatten(v.X, out), v.Line)
		case *ast.BinopExpr:
			flat = ast.NewBinop(v.Op, t.flatten(v.L, out), t.flatten(v.R, out), v.Line)
		}
		*out = append(*out, ast.NewAssign(tmp, flat, 0))
		return ast.NewIdent(tmp, 0)
	default:
		errors.Internalf("unexpected expression %T found during tmp insertion", expr)
		return nil
	}
}

func (t *TmpInserter) freshTmp(prefix string) string {
	name := fmt.Sprintf("%s%d", prefix, t.counter)
	t.counter++
	return name
}

// value is the constant-propagation lattice: either a known constant
// (is_constant=true with the Go value it resolved to, bool or int), or
// unknown.
type value struct {
	isConstant bool
	boolVal    bool
	numVal     int
	isBool     bool
}

func constBool(b bool) value  { return value{isConstant: true, isBool: true, boolVal: b} }
func constNum(n int) value    { return value{isConstant: true, numVal: n} }
func unknown() value          { return value{} }
func (v value) toExpr(line int) ast.Expr {
	if v.isBool {
		return ast.NewBoolean(v.boolVal, line)
	}
	return ast.NewNumber(v.numVal, line)
}

// Propagator holds the value environment across the single linear pass
// over main's statements.
type Propagator struct {
	values map[string]value
	diags  []errors.CompilerError
}

// Propagate rewrites main's body in place, eliminating every
// statically-resolvable assignment and folding constants through
// arithmetic, logical and comparison operators, and returns any
// warnings produced (constant values reaching an Output).
func Propagate(main *ast.Function) []errors.CompilerError {
	p := &Propagator{values: map[string]value{
		ast.RandomNumName: unknown(),
		ast.RandomBitName: unknown(),
	}}
	var out []ast.Stmt
	stmts := main.Body.Stmts
	for i, stm := range stmts {
		out = p.step(stm, out, stmts[i+1:])
	}
	main.Body.Stmts = out
	return p.diags
}

func (p *Propagator) valueOf(expr ast.Expr) value {
	switch e := expr.(type) {
	case *ast.NumberExpr:
		return constNum(e.Value)
	case *ast.BooleanExpr:
		return constBool(e.Value)
	case *ast.IdentExpr:
		return p.values[e.Name]
	default:
		errors.Internalf("unexpected operand %T found during constant propagation", expr)
		return unknown()
	}
}

func (p *Propagator) step(stm ast.Stmt, out []ast.Stmt, rest []ast.Stmt) []ast.Stmt {
	switch s := stm.(type) {
	case *ast.LabelStmt, *ast.JumpStmt:
		return append(out, s)
	case *ast.InputStmt:
		p.values[s.Var] = unknown()
		return append(out, s)
	case *ast.OutputStmt:
		ident, ok := s.Value.(*ast.IdentExpr)
		if !ok {
			return append(out, s)
		}
		v := p.values[ident.Name]
		if v.isConstant {
			p.diags = append(p.diags, errors.NewWarning(s.Line,
				"Outputting variable '%s' with constant value.", ident.Name))
			s.Value = v.toExpr(s.Line)
		}
		return append(out, s)
	case *ast.JumpIfFalseStmt:
		v := p.values[s.Var]
		if !v.isConstant {
			return append(out, s)
		}
		if !v.boolVal {
			return append(out, ast.NewJump(s.Target))
		}
		return out
	case *ast.AssignStmt:
		return p.stepAssign(s, out, rest)
	default:
		errors.Internalf("unexpected statement %T found during constant propagation", stm)
		return out
	}
}

func (p *Propagator) stepAssign(a *ast.AssignStmt, out []ast.Stmt, rest []ast.Stmt) []ast.Stmt {
	if a.IsIfResultAssign {
		a.Value = p.eval(a.Value)
		p.values[a.Var] = unknown()
		return append(out, a)
	}

	switch e := a.Value.(type) {
	case *ast.NumberExpr:
		p.values[a.Var] = constNum(e.Value)
		return out
	case *ast.BooleanExpr:
		p.values[a.Var] = constBool(e.Value)
		return out
	case *ast.IdentExpr:
		if ast.IsBuiltinRandomName(e.Name) {
			p.values[a.Var] = unknown()
			return append(out, a)
		}
		p.renameOccurrences(out, rest, a.Var, e.Name)
		return out
	case *ast.IfResultExpr:
		p.renameOccurrences(out, rest, a.Var, e.Name)
		return out
	case *ast.LeakExpr:
		switch sub := e.X.(type) {
		case *ast.NumberExpr:
			p.values[a.Var] = constNum(sub.Value)
			return out
		case *ast.BooleanExpr:
			p.values[a.Var] = constBool(sub.Value)
			return out
		case *ast.IdentExpr:
			v := p.values[sub.Name]
			p.values[a.Var] = v
			if !v.isConstant {
				return append(out, a)
			}
			return out
		default:
			errors.Internalf("unexpected leak subexpression %T found during constant propagation", e.X)
			return out
		}
	case *ast.NotExpr:
		switch sub := e.X.(type) {
		case *ast.BooleanExpr:
			p.values[a.Var] = constBool(!sub.Value)
			return out
		case *ast.IdentExpr:
			v := p.values[sub.Name]
			if v.isConstant {
				v.boolVal = !v.boolVal
				p.values[a.Var] = v
				return out
			}
			p.values[a.Var] = v
			return append(out, a)
		default:
			errors.Internalf("unexpected not-subexpression %T found during constant propagation", e.X)
			return out
		}
	case *ast.BinopExpr:
		return p.stepBinop(a, e, out)
	default:
		errors.Internalf("unexpected assignment RHS %T found during constant propagation", a.Value)
		return out
	}
}

// renameOccurrences substitutes oldName with newName throughout both the
// statements already emitted and the statements still awaiting a visit,
// mirroring rename_occurrences_of_var. A pure alias can be referenced by
// a statement later in program order than the assignment folding it away,
// so both out (already emitted) and rest (not yet visited) need rewriting.
func (p *Propagator) renameOccurrences(out, rest []ast.Stmt, oldName, newName string) {
	renameOccurrencesIn(out, oldName, newName)
	renameOccurrencesIn(rest, oldName, newName)
}

func renameOccurrencesIn(stmts []ast.Stmt, oldName, newName string) {
	for _, stm := range stmts {
		switch s := stm.(type) {
		case *ast.OutputStmt:
			if id, ok := s.Value.(*ast.IdentExpr); ok && id.Name == oldName {
				id.Name = newName
			}
		case *ast.JumpIfFalseStmt:
			if s.Var == oldName {
				s.Var = newName
			}
		case *ast.AssignStmt:
			renameExpr(s.Value, oldName, newName)
		}
	}
}

func renameExpr(expr ast.Expr, oldName, newName string) {
	switch e := expr.(type) {
	case *ast.IdentExpr:
		if e.Name == oldName {
			e.Name = newName
		}
	case *ast.IfResultExpr:
		if e.Name == oldName {
			e.Name = newName
		}
	case *ast.NotExpr:
		renameExpr(e.X, oldName, newName)
	case *ast.LeakExpr:
		renameExpr(e.X, oldName, newName)
	case *ast.BinopExpr:
		renameExpr(e.L, oldName, newName)
		renameExpr(e.R, oldName, newName)
	}
}

func (p *Propagator) stepBinop(a *ast.AssignStmt, e *ast.BinopExpr, out []ast.Stmt) []ast.Stmt {
	left := p.valueOf(e.L)
	right := p.valueOf(e.R)

	if left.isConstant && right.isConstant {
		p.values[a.Var] = evalBinop(e.Op, left, right)
		return out
	}

	isShortCircuitable := e.Op == ast.OpOr || e.Op == ast.OpAnd || e.Op == ast.OpEq || e.Op == ast.OpNeq
	if (left.isConstant || right.isConstant) && isShortCircuitable {
		if right.isConstant {
			left, right = right, left
			e.L, e.R = e.R, e.L
		}
		if !left.isBool {
			// Constant operand is a number; smart boolean propagation
			// only applies to booleans, fall through to the general case.
			p.values[a.Var] = unknown()
			substituteConstantOperand(e, left, right)
			return append(out, a)
		}
		return p.shortCircuit(a, e, left.boolVal, right, out)
	}

	p.values[a.Var] = unknown()
	substituteConstantOperand(e, left, right)
	return append(out, a)
}

// substituteConstantOperand writes the resolved literal back into the
// operand position so the emitted statement carries the constant
// directly rather than a name lookup the propagator already resolved.
func substituteConstantOperand(e *ast.BinopExpr, left, right value) {
	if left.isConstant {
		if _, ok := e.L.(*ast.IdentExpr); ok {
			e.L = left.toExpr(e.Line)
		}
	}
	if right.isConstant {
		if _, ok := e.R.(*ast.IdentExpr); ok {
			e.R = right.toExpr(e.Line)
		}
	}
}

// shortCircuit implements the ||/&&/==/!= boolean identities: when one
// operand of a boolean operator is a known constant, the statement
// collapses to the other operand (possibly negated), or to a constant,
// without ever evaluating both sides.
func (p *Propagator) shortCircuit(a *ast.AssignStmt, e *ast.BinopExpr, leftConst bool, right value, out []ast.Stmt) []ast.Stmt {
	switch e.Op {
	case ast.OpOr:
		if leftConst {
			p.values[a.Var] = constBool(true)
			return out
		}
		p.values[a.Var] = unknown()
		a.Value = e.R
		return append(out, a)
	case ast.OpAnd:
		if !leftConst {
			p.values[a.Var] = constBool(false)
			return out
		}
		p.values[a.Var] = unknown()
		a.Value = e.R
		return append(out, a)
	case ast.OpEq:
		p.values[a.Var] = unknown()
		if leftConst {
			a.Value = e.R
		} else {
			a.Value = ast.NewNot(e.R, e.Line)
		}
		return append(out, a)
	case ast.OpNeq:
		p.values[a.Var] = unknown()
		if !leftConst {
			a.Value = e.R
		} else {
			a.Value = ast.NewNot(e.R, e.Line)
		}
		return append(out, a)
	default:
		errors.Internalf("unexpected short-circuitable operator %s", e.Op)
		return out
	}
}

// eval resolves expr to a literal when every name it references is a
// known constant. Otherwise it returns expr unchanged, except that a
// Leak wrapper is dropped (its operand is evaluated instead) and an
// if-result reference becomes a plain identifier. Used only for
// the RHS of an if-result join assignment, which constant propagation
// never eliminates (control merges there from two branches).
func (p *Propagator) eval(expr ast.Expr) ast.Expr {
	switch e := expr.(type) {
	case *ast.NumberExpr, *ast.BooleanExpr:
		return e
	case *ast.IdentExpr:
		v := p.values[e.Name]
		if v.isConstant {
			return v.toExpr(e.Line)
		}
		return e
	case *ast.IfResultExpr:
		return ast.NewIdent(e.Name, e.Line)
	case *ast.LeakExpr:
		return p.eval(e.X)
	case *ast.NotExpr:
		v := p.valueOf(e.X)
		if v.isConstant {
			return ast.NewBoolean(!v.boolVal, e.Line)
		}
		return e
	case *ast.BinopExpr:
		left := p.valueOf(e.L)
		right := p.valueOf(e.R)
		if left.isConstant && right.isConstant {
			return evalBinop(e.Op, left, right).toExpr(e.Line)
		}
		return e
	default:
		errors.Internalf("unexpected expression %T found during constant evaluation", expr)
		return nil
	}
}

// evalBinop folds two known constants through op. Division floors
// toward negative infinity, matching Python's "//" rather than Go's
// truncating "/".
func evalBinop(op ast.BinOp, l, r value) value {
	switch op {
	case ast.OpAdd:
		return constNum(l.numVal + r.numVal)
	case ast.OpSub:
		return constNum(l.numVal - r.numVal)
	case ast.OpMul:
		return constNum(l.numVal * r.numVal)
	case ast.OpDiv:
		return constNum(floorDiv(l.numVal, r.numVal))
	case ast.OpOr:
		return constBool(l.boolVal || r.boolVal)
	case ast.OpAnd:
		return constBool(l.boolVal && r.boolVal)
	case ast.OpEq:
		return constBool(sameScalar(l, r))
	case ast.OpNeq:
		return constBool(!sameScalar(l, r))
	case ast.OpLt:
		return constBool(l.numVal < r.numVal)
	case ast.OpGt:
		return constBool(l.numVal > r.numVal)
	case ast.OpLte:
		return constBool(l.numVal <= r.numVal)
	case ast.OpGte:
		return constBool(l.numVal >= r.numVal)
	default:
		errors.Internalf("unexpected operator %s found during constant propagation", op)
		return unknown()
	}
}

func sameScalar(l, r value) bool {
	if l.isBool != r.isBool {
		return false
	}
	if l.isBool {
		return l.boolVal == r.boolVal
	}
	return l.numVal == r.numVal
}

// floorDiv implements Python's "//": division that rounds toward
// negative infinity rather than toward zero.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

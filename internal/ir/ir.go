// Package ir implements §4.11: xor specialization (retyping the
// now-fully-flat main body in relaxed mode, then renaming every
// boolean "!=" to "xor") and emission of the final flat textual
// instruction list.
package ir

import (
	"fmt"

	"privc/internal/ast"
	"privc/internal/errors"
	"privc/internal/types"
)

// IntroduceXor retypes main's body with the type checker's relaxed
// mode (mismatches are tolerated; only Type annotations are refreshed)
// and renames every bool-operand "!=" binop to the "xor" operator. The
// relaxed re-check is needed because if-lowering's multiplexer
// arithmetic mixes bool and num operands in ways the strict checker
// would reject, yet every "!=" on genuinely boolean operands must
// still be identified so it can be retargeted to xor.
func IntroduceXor(prog *ast.Program) {
	types.Check(prog, true)
	main := prog.Main()
	for _, stm := range main.Body.Stmts {
		a, ok := stm.(*ast.AssignStmt)
		if !ok {
			continue
		}
		b, ok := a.Value.(*ast.BinopExpr)
		if !ok {
			continue
		}
		if b.Op == ast.OpNeq && b.L.ExprType() == ast.TypeBool {
			b.Op = ast.OpXor
		}
	}
}

// Emit renders main's body as the flat textual instruction list
// described in the wire format, one line per statement, in order.
func Emit(main *ast.Function) []string {
	out := make([]string, 0, len(main.Body.Stmts))
	for _, stm := range main.Body.Stmts {
		out = append(out, translate(stm))
	}
	return out
}

func translate(stm ast.Stmt) string {
	switch s := stm.(type) {
	case *ast.InputStmt:
		return fmt.Sprintf("INPUT %d %s", s.Provider, s.Var)
	case *ast.OutputStmt:
		return fmt.Sprintf("OUTPUT %s %s", s.Value.ReadableString(), s.Label)
	case *ast.LabelStmt:
		return fmt.Sprintf("PROGRAM_POINT %d", s.Num)
	case *ast.JumpStmt:
		return fmt.Sprintf("JMP %d", s.Target)
	case *ast.JumpIfFalseStmt:
		return fmt.Sprintf("JZ %s %d", s.Var, s.Target)
	case *ast.AssignStmt:
		return translateAssign(s)
	default:
		errors.Internalf("unexpected statement %T found during instruction emission", stm)
		return ""
	}
}

func translateAssign(a *ast.AssignStmt) string {
	switch e := a.Value.(type) {
	case *ast.NumberExpr, *ast.BooleanExpr:
		return fmt.Sprintf("MOVE %s %s", e.ReadableString(), a.Var)
	case *ast.IdentExpr:
		switch e.Name {
		case ast.RandomNumName:
			return fmt.Sprintf("RANDOM %s", a.Var)
		case ast.RandomBitName:
			return fmt.Sprintf("RANDOM_BIT %s", a.Var)
		default:
			return fmt.Sprintf("MOVE %s %s", e.ReadableString(), a.Var)
		}
	case *ast.LeakExpr:
		return fmt.Sprintf("LEAK %s %s", e.X.ReadableString(), a.Var)
	case *ast.NotExpr:
		return fmt.Sprintf("NOT %s %s", e.X.ReadableString(), a.Var)
	case *ast.BinopExpr:
		return fmt.Sprintf("%s %s %s %s", opcode(e.Op), e.L.ReadableString(), e.R.ReadableString(), a.Var)
	default:
		errors.Internalf("unexpected assignment RHS %T found during instruction emission", a.Value)
		return ""
	}
}

func opcode(op ast.BinOp) string {
	switch op {
	case ast.OpAdd:
		return "PLUS"
	case ast.OpSub:
		return "MINUS"
	case ast.OpMul:
		return "MULTIPLY"
	case ast.OpDiv:
		return "DIVIDE"
	case ast.OpOr:
		return "OR"
	case ast.OpAnd:
		return "AND"
	case ast.OpXor:
		return "XOR"
	case ast.OpEq:
		return "EQUALS"
	case ast.OpNeq:
		return "NOT_EQUALS"
	case ast.OpLt:
		return "LT"
	case ast.OpGt:
		return "GT"
	case ast.OpLte:
		return "LTE"
	case ast.OpGte:
		return "GTE"
	default:
		errors.Internalf("unexpected operator %s found during instruction emission", op)
		return ""
	}
}

package grammar

import "github.com/alecthomas/participle/v2/lexer"

// Program is an ordered list of function declarations, mirroring the
// original grammar's "prog : funcs".
type Program struct {
	Funcs []*Function `@@*`
}

// Function is either "main() { stms }" or "name(params) { funcbody }".
// The main() form takes no parameters and its body has no trailing
// expression. A "main" written with parameters and a trailing
// expression still matches the named form; semantic.CheckMain rejects
// it later.
type Function struct {
	Pos    lexer.Position
	Main   *MainFunction    `  @@`
	Named  *NamedFunction   `| @@`
}

type MainFunction struct {
	Pos    lexer.Position
	Name   string  `@"main" "(" ")" "{"`
	Stmts  []*Stmt `@@* "}"`
}

type NamedFunction struct {
	Pos    lexer.Position
	Name   string       `@Ident "("`
	Params []string     `[ @Ident { "," @Ident } ] ")" "{"`
	Body   *FuncBody    `@@ "}"`
}

type FuncBody struct {
	Stmts []*Stmt `@@*`
	Tail  *Expr   `@@`
}

type Stmt struct {
	Pos    lexer.Position
	Input  *InputStmt  `  @@`
	Output *OutputStmt `| @@`
	Assign *AssignStmt `| @@`
}

type AssignStmt struct {
	Pos  lexer.Position
	Var  string `@Ident "="`
	Expr *Expr  `@@ ";"`
}

type InputStmt struct {
	Pos      lexer.Position
	Var      string `@Ident "<<"`
	Provider string `@Number ":"`
	Type     string `@("bool" | "num") ";"`
}

type OutputStmt struct {
	Pos   lexer.Position
	Var   string `@Ident ">>"`
	Label string `@Ident ";"`
}

// Expr layers standard precedence climbing: || then && then the
// non-associative comparison tier then +- then */ then the unary
// prefix operators then primaries. The original yacc grammar gives
// "leak"/unary "-"/"!" unusually loose precedence (looser than
// comparisons); this grammar instead gives them conventional tight
// unary precedence, a deliberate simplification documented alongside
// the rest of the parser decisions (this file implements concrete
// syntax only, a collaborator outside every core compiler invariant).
type Expr struct {
	Or *OrExpr `@@`
}

type OrExpr struct {
	Left  *AndExpr `@@`
	Right []*AndExpr `{ "||" @@ }`
}

type AndExpr struct {
	Left  *CompareExpr   `@@`
	Right []*CompareExpr `{ "&&" @@ }`
}

type CompareExpr struct {
	Left  *AddExpr `@@`
	Op    *string  `[ @("==" | "!=" | "<=" | ">=" | "<" | ">")`
	Right *AddExpr `  @@ ]`
}

type AddExpr struct {
	Left  *MulExpr   `@@`
	Ops   []*AddOp   `{ @@ }`
}

type AddOp struct {
	Operator string   `@("+" | "-")`
	Right    *MulExpr `@@`
}

type MulExpr struct {
	Left *UnaryExpr `@@`
	Ops  []*MulOp   `{ @@ }`
}

type MulOp struct {
	Operator string     `@("*" | "/")`
	Right    *UnaryExpr `@@`
}

type UnaryExpr struct {
	Pos     lexer.Position
	Leak    *UnaryExpr `  "leak" @@`
	Not     *UnaryExpr `| "!" @@`
	Neg     *UnaryExpr `| "-" @@`
	Primary *Primary   `| @@`
}

type Primary struct {
	Pos    lexer.Position
	If     *IfExpr `  @@`
	Call   *CallExpr `| @@`
	True   bool    `| @"true"`
	False  bool    `| @"false"`
	Number *string `| @Number`
	Ident  *string `| @Ident`
	Paren  *Expr   `| "(" @@ ")"`
}

type IfExpr struct {
	Pos  lexer.Position
	Cond *Expr `"if" "(" @@ ")"`
	Then *Expr `"{" @@ "}"`
	Else *Expr `"else" "{" @@ "}"`
}

type CallExpr struct {
	Pos  lexer.Position
	Func string  `@Ident "("`
	Args []*Expr `[ @@ { "," @@ } ] ")"`
}

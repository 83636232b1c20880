// Package grammar defines the concrete syntax: a participle stateful
// lexer plus struct-tag grammar rules that parse source text into a
// concrete parse tree. internal/parser walks that tree into
// internal/ast, attaching source line numbers along the way.
package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer tokenizes source text. Two-character operators are listed
// before their single-character prefixes so the longest match wins.
var Lexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Whitespace", `[ \t\r\n]+`, nil},
		{"Number", `[0-9]+`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Operator", `(<<|>>|==|!=|<=|>=|&&|\|\||[-+*/!<>=:;,(){}])`, nil},
	},
})

package grammar

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
)

var parser = participle.MustBuild[Program](
	participle.Lexer(Lexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(4),
)

// ParseFile reads path and parses it into a concrete Program tree.
func ParseFile(path string) (*Program, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseString(path, string(source))
}

// ParseString parses source text; filename is used only in error
// positions.
func ParseString(filename, source string) (*Program, error) {
	prog, err := parser.ParseString(filename, source)
	if err != nil {
		return nil, formatParseError(source, err)
	}
	return prog, nil
}

// formatParseError renders a participle error with a caret pointing at
// the offending column, mirroring the teacher's parse-error reporting.
func formatParseError(src string, err error) error {
	pe, ok := err.(participle.Error)
	if !ok {
		return err
	}
	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		return fmt.Errorf("syntax error: %w", err)
	}
	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", pos.Column-1) + "^"
	return fmt.Errorf("syntax error at line %d, column %d:\n%s\n%s\n%s",
		pos.Line, pos.Column, line, caret, pe.Message())
}

// Package pipeline orchestrates every pass, in the fixed order
// Compiler.py follows: build the call graph and validate the program
// (§4.1-§4.3), rewrite the AST (§4.4-§4.6), inline and lower
// (§4.7-§4.8), propagate constants (§4.9-§4.10), and finally emit flat
// instructions (§4.11). Each validation stage reports every diagnostic
// it finds before the pipeline halts; a later stage never runs once an
// earlier one reported an Error-level diagnostic.
package pipeline

import (
	"privc/internal/ast"
	"privc/internal/callgraph"
	"privc/internal/constprop"
	"privc/internal/errors"
	"privc/internal/inline"
	"privc/internal/ir"
	"privc/internal/lower"
	"privc/internal/rewrite"
	"privc/internal/semantic"
	"privc/internal/types"
)

// Result is the outcome of compiling a Program: either a flat
// instruction list, or the diagnostics that stopped compilation.
// Warnings may be present alongside a successful Instructions result;
// Diagnostics is empty only when nothing, not even a warning, was
// reported.
type Result struct {
	Instructions []string
	Diagnostics  []errors.CompilerError
}

// Ok reports whether compilation produced instructions.
func (r Result) Ok() bool { return r.Instructions != nil }

// Compile runs every pass over prog and returns either the emitted
// instructions or the diagnostics explaining why compilation stopped.
// prog is mutated in place; callers should not reuse it afterward.
func Compile(prog *ast.Program) Result {
	var diags []errors.CompilerError

	diags = append(diags, semantic.CheckMain(prog)...)
	if errors.HasErrors(diags) {
		return Result{Diagnostics: diags}
	}

	diags = append(diags, semantic.CheckIllegalIO(prog)...)
	if errors.HasErrors(diags) {
		return Result{Diagnostics: diags}
	}

	graph, graphDiags := callgraph.Build(prog)
	diags = append(diags, graphDiags...)
	if errors.HasErrors(diags) {
		return Result{Diagnostics: diags}
	}
	if hasRecursion, cycleDiags := graph.HasRecursion(); hasRecursion {
		diags = append(diags, cycleDiags...)
		return Result{Diagnostics: diags}
	}

	diags = append(diags, semantic.CheckBadFuncCalls(prog, semantic.FuncMap(prog))...)
	if errors.HasErrors(diags) {
		return Result{Diagnostics: diags}
	}

	diags = append(diags, semantic.CheckUndeclaredVars(prog)...)
	if errors.HasErrors(diags) {
		return Result{Diagnostics: diags}
	}

	diags = append(diags, semantic.CheckIONames(prog)...)
	if errors.HasErrors(diags) {
		return Result{Diagnostics: diags}
	}

	diags = append(diags, types.Check(prog, false)...)
	if errors.HasErrors(diags) {
		return Result{Diagnostics: diags}
	}

	rewrite.RemoveUminus(prog)
	rewrite.RewriteEq(prog)
	(&rewrite.Renamer{}).RenameReusedVars(prog)

	inlineDiags := inline.Inline(prog)
	diags = append(diags, inlineDiags...)

	main := prog.Main()
	lowerer := &lower.Lowerer{}
	lowerer.Lower(main)

	constprop.NewTmpInserter(lowerer.TmpCounter()).InsertTmps(main)
	propDiags := constprop.Propagate(main)
	diags = append(diags, propDiags...)

	ir.IntroduceXor(prog)

	instructions := ir.Emit(main)
	return Result{Instructions: instructions, Diagnostics: diags}
}

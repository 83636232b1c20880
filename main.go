// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"privc/internal/errors"
	"privc/internal/parser"
	"privc/internal/pipeline"
)

const defaultOutputPath = "out.ir"

// Exit codes: 0 success, 1 a usage error or a source program that could
// not be read, parsed or validated, 2 an internal compiler invariant
// was violated or the output file could not be written.
const (
	exitOK       = 0
	exitRejected = 1
	exitInternal = 2
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: privc <source> [output]")
		os.Exit(exitRejected)
	}
	sourcePath := os.Args[1]
	outputPath := defaultOutputPath
	if len(os.Args) >= 3 {
		outputPath = os.Args[2]
	}
	os.Exit(run(sourcePath, outputPath))
}

func run(sourcePath, outputPath string) (code int) {
	defer func() {
		if r := recover(); r != nil {
			if ie, ok := r.(errors.InternalError); ok {
				fmt.Println(ie.Error())
				code = exitInternal
				return
			}
			panic(r)
		}
	}()

	reporter := errors.NewReporter(os.Stdout, isatty.IsTerminal(os.Stdout.Fd()))

	prog, err := parser.ParseFile(sourcePath)
	if err != nil {
		fmt.Println(err)
		return exitRejected
	}

	result := pipeline.Compile(prog)
	if !result.Ok() {
		reporter.Report(result.Diagnostics)
		return exitRejected
	}

	if err := os.WriteFile(outputPath, []byte(joinLines(result.Instructions)), 0o644); err != nil {
		fmt.Printf("Failed to write output file: %s\n", err)
		return exitInternal
	}
	reporter.Report(result.Diagnostics) // warnings only, since Ok() implies no Error-level diagnostic
	return exitOK
}

func joinLines(lines []string) string {
	out := ""
	for _, l := range lines {
		out += l + "\n"
	}
	return out
}

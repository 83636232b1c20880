// SPDX-License-Identifier: Apache-2.0
//
// privc-debug parses a source file and prints its AST without running
// any validation or lowering pass, for inspecting what the grammar and
// parser produced in isolation from the rest of the pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"privc/internal/parser"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: privc-debug <source>")
		os.Exit(1)
	}

	path := os.Args[1]
	prog, err := parser.ParseFile(path)
	if err != nil {
		color.Red("%s", err)
		os.Exit(1)
	}

	fmt.Println(prog.ReadableString())
	color.Green("✅ Successfully parsed %s", path)
}

// Package main provides the entry point for pipesim.
// pipesim is an educational 5-stage pipeline simulator built on Akita.
//
// For the full CLI, use: go run ./cmd/pipesim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("pipesim - 5-stage pipeline simulator")
	fmt.Println("Built on Akita simulation framework")
	fmt.Println("")
	fmt.Println("Usage: pipesim <command> [flags] [program.s]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  run       Run a program to completion and print a report")
	fmt.Println("  step      Step through a program in an interactive console")
	fmt.Println("  validate  Check that every line of a program parses")
	fmt.Println("  diff      Compare two exported reports")
	fmt.Println("  bench     Run the built-in sample programs")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/pipesim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/pipesim' instead.")
	}
}

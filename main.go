// Package main provides the entry point for armsim.
// armsim is a functional simulator for a subset of the 32-bit ARM
// instruction set.
//
// For the full CLI, use: go run ./cmd/armsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("armsim - ARM instruction set simulator")
	fmt.Println("")
	fmt.Println("Usage: armsim [options] <program>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config       Path to run configuration JSON file")
	fmt.Println("  -v            Verbose output")
	fmt.Println("  -diff         Print state changes instead of the full state")
	fmt.Println("  -cache        Route loads and stores through a data cache")
	fmt.Println("  -full-cond    Evaluate all sixteen condition codes")
	fmt.Println("  -pure-kinds   Do not rename conditional SUB/ADD to SUBNE/ADDEQ")
	fmt.Println("  -max          Max instructions to execute")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/armsim' for the full CLI.")
	fmt.Println("Run 'go run ./cmd/armgen' to write the sample program.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/armsim' instead.")
	}
}

// Package main provides armgen, which writes the sample ARM program as a raw
// big-endian instruction stream for armsim to run.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/armsim/loader"
)

var output = flag.String("o", "test_instructions.bin", "Output file")

func main() {
	flag.Parse()

	if err := generate(*output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated test binary file: %s\n", *output)
}

// generate writes the sample program to path.
func generate(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := loader.WriteRaw(f, loader.SampleWords()); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

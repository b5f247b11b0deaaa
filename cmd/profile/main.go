// Package main provides a profiling wrapper for armsim to identify
// performance bottlenecks in decoding and execution.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/armsim/config"
	"github.com/sarchlab/armsim/emu"
	"github.com/sarchlab/armsim/loader"
)

var (
	configPath = flag.String("config", "", "Path to run configuration JSON file")
	cpuProfile = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile = flag.String("memprofile", "", "write memory profile to file")
	duration   = flag.Duration("duration", 30*time.Second, "max duration to run (for profiling)")
	iterations = flag.Int("iterations", 100000, "number of times to decode and run the program")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: profile [options] <program>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Start CPU profiling if requested
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	programPath := flag.Arg(0)

	prog, err := loader.Load(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded: %s (%s, %d words)\n", programPath, prog.Format, len(prog.Words))

	start := time.Now()
	runs, instrCount, err := profileRuns(cfg, prog, *iterations, start.Add(*duration))
	elapsed := time.Since(start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Write memory profile if requested
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
		}
	}

	fmt.Printf("\nProfiling Results:\n")
	fmt.Printf("Runs: %d\n", runs)
	fmt.Printf("Instructions executed: %d\n", instrCount)
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if instrCount > 0 {
		fmt.Printf("Instructions/second: %.0f\n", float64(instrCount)/elapsed.Seconds())
	}
}

// profileRuns decodes and runs prog on a fresh state up to n times, stopping
// early at deadline. It returns the number of completed runs and the
// instructions they executed.
func profileRuns(
	cfg *config.Config,
	prog *loader.Program,
	n int,
	deadline time.Time,
) (int, uint64, error) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	decoder := cfg.NewDecoder()
	exec, err := cfg.NewExecutor(logger)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create executor: %w", err)
	}

	var instrCount uint64
	runs := 0
	for ; runs < n; runs++ {
		if time.Now().After(deadline) {
			fmt.Printf("\nTimeout reached - stopping after %d runs\n", runs)
			break
		}

		state, _, err := cfg.NewState()
		if err != nil {
			return runs, instrCount, fmt.Errorf("failed to create state: %w", err)
		}

		runner := emu.NewRunner(exec, state, emu.WithMaxInstructions(cfg.MaxInstructions))
		stats := runner.Run(prog.Decode(decoder), nil)
		instrCount += stats.Steps
	}

	return runs, instrCount, nil
}

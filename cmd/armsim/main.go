// Package main provides the entry point for armsim.
// armsim decodes a 32-bit ARM instruction stream and executes it one
// instruction at a time, printing the machine state after each step.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/armsim/cache"
	"github.com/sarchlab/armsim/config"
	"github.com/sarchlab/armsim/emu"
	"github.com/sarchlab/armsim/loader"
)

var (
	configPath = flag.String("config", "", "Path to run configuration JSON file")
	verbose    = flag.Bool("v", false, "Verbose output (debug logging)")
	diffMode   = flag.Bool("diff", false, "Print register and flag changes instead of the full state")
	useCache   = flag.Bool("cache", false, "Route loads and stores through a data cache")
	fullCond   = flag.Bool("full-cond", false, "Evaluate all sixteen condition codes")
	pureKinds  = flag.Bool("pure-kinds", false, "Do not rename conditional SUB/ADD to SUBNE/ADDEQ")
	maxInstr   = flag.Uint64("max", 0, "Max instructions to execute (0 = unlimited)")
)

// options holds the output switches that do not belong in the config file.
type options struct {
	diff bool
}

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: armsim [options] <program>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	opts := options{diff: *diffMode}
	if err := run(cfg, flag.Arg(0), logger, os.Stdout, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, if any, and applies command-line
// overrides on top of it.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			return nil, err
		}
	}

	if *verbose {
		cfg.LogLevel = logrus.DebugLevel.String()
	}
	if *useCache && cfg.Cache == nil {
		cacheConfig := cache.DefaultConfig()
		cfg.Cache = &cacheConfig
	}
	if *fullCond {
		cfg.ConditionPolicy = emu.CondPolicyFull.String()
	}
	if *pureKinds {
		cfg.PureKinds = true
	}
	if *maxInstr > 0 {
		cfg.MaxInstructions = *maxInstr
	}

	return cfg, cfg.Validate()
}

// newLogger creates a logger writing to w at the configured level.
func newLogger(cfg *config.Config, w io.Writer) (*logrus.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return logger, nil
}

// run loads the program at programPath and executes it, writing the trace
// to out. Only setup problems are returned; instruction-level failures are
// part of the trace.
func run(
	cfg *config.Config,
	programPath string,
	logger *logrus.Logger,
	out io.Writer,
	opts options,
) error {
	prog, err := loader.Load(programPath)
	if err != nil {
		return err
	}

	log := logger.WithFields(logrus.Fields{
		"program": programPath,
		"format":  prog.Format.String(),
		"words":   len(prog.Words),
	})
	log.Debug("program loaded")
	if prog.TrailingBytes > 0 {
		log.WithField("bytes", prog.TrailingBytes).Warn("dropping trailing partial word")
	}

	state, dcache, err := cfg.NewState()
	if err != nil {
		return err
	}

	exec, err := cfg.NewExecutor(logger)
	if err != nil {
		return err
	}

	program := prog.Decode(cfg.NewDecoder())
	runner := emu.NewRunner(exec, state, emu.WithMaxInstructions(cfg.MaxInstructions))

	fmt.Fprintln(out, "--- Initial CPU State ---")
	fmt.Fprintln(out, state.Snapshot())
	fmt.Fprintln(out, "-------------------------")

	stats := runner.Run(program, func(step emu.Step) {
		printStep(out, step, opts)
	})

	printSummary(out, stats, dcache)

	return nil
}

func printStep(out io.Writer, step emu.Step, opts options) {
	fmt.Fprintf(out, "\n--- Executing Instruction %d ---\n", step.Index+1)
	fmt.Fprintf(out, "Decoded: %v\n", step.Inst)
	fmt.Fprintf(out, "Disasm: %s\n", step.Inst.Disasm())

	if step.Result.Err != nil {
		fmt.Fprintf(out, "Outcome: %v (%v)\n", step.Result.Outcome, step.Result.Err)
	} else {
		fmt.Fprintf(out, "Outcome: %v\n", step.Result.Outcome)
	}

	if opts.diff {
		fmt.Fprintln(out, "--- State Changes ---")
		if d := cmp.Diff(step.Before, step.After); d != "" {
			fmt.Fprint(out, d)
		} else {
			fmt.Fprintln(out, "(no change)")
		}
	} else {
		fmt.Fprintln(out, "--- CPU State After Execution ---")
		fmt.Fprintln(out, step.After)
	}

	fmt.Fprintln(out, "---------------------------------")
}

func printSummary(out io.Writer, stats emu.RunStats, dcache *cache.Cache) {
	fmt.Fprintf(out, "\nInstructions: %d (executed %d, skipped %d, rejected %d, unknown %d, branches %d)\n",
		stats.Steps, stats.Executed, stats.Skipped, stats.Rejected, stats.Unknown, stats.Branches)
	if stats.Truncated {
		fmt.Fprintln(out, "Stopped at the instruction limit")
	}

	if dcache == nil {
		return
	}

	cs := dcache.Stats()
	fmt.Fprintf(out, "Cache: reads %d, writes %d, hits %d, misses %d, evictions %d, hit rate %.1f%%\n",
		cs.Reads, cs.Writes, cs.Hits, cs.Misses, cs.Evictions, 100*cs.HitRate())
}

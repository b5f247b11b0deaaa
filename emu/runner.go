package emu

import (
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/armsim/insts"
)

// Step describes one executed instruction.
type Step struct {
	// Index is the position of the instruction in the program.
	Index int

	Inst   insts.Instruction
	Result StepResult

	// Before and After are the register/flag snapshots around the step.
	Before Snapshot
	After  Snapshot
}

// StepFunc is called after every instruction a Runner executes.
type StepFunc func(Step)

// RunStats counts step outcomes.
type RunStats struct {
	Steps    uint64
	Executed uint64
	Skipped  uint64
	Rejected uint64
	Unknown  uint64
	Branches uint64

	// Truncated is true if the instruction limit stopped the run early.
	Truncated bool
}

func (s *RunStats) record(o Outcome) {
	s.Steps++
	switch o {
	case OutcomeExecuted:
		s.Executed++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeRejected:
		s.Rejected++
	case OutcomeUnknown:
		s.Unknown++
	case OutcomeBranch:
		s.Branches++
	}
}

// Runner feeds a decoded program to an Executor in order.
type Runner struct {
	exec  *Executor
	state *State

	maxInstructions uint64 // 0 means no limit
}

// RunnerOption is a functional option for configuring the Runner.
type RunnerOption func(*Runner)

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) RunnerOption {
	return func(r *Runner) {
		r.maxInstructions = max
	}
}

// NewRunner creates a Runner that executes against state.
func NewRunner(exec *Executor, state *State, opts ...RunnerOption) *Runner {
	r := &Runner{exec: exec, state: state}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the state the runner executes against.
func (r *Runner) State() *State {
	return r.state
}

// Run executes program in order, calling fn (if not nil) after each
// instruction. Instruction-level errors never stop the run.
func (r *Runner) Run(program []insts.Instruction, fn StepFunc) RunStats {
	var stats RunStats

	for i, inst := range program {
		if r.maxInstructions > 0 && stats.Steps >= r.maxInstructions {
			r.exec.Logger().WithFields(logrus.Fields{
				"limit":     r.maxInstructions,
				"remaining": len(program) - i,
			}).Info("max instructions reached")
			stats.Truncated = true
			break
		}

		before := r.state.Snapshot()
		result := r.exec.Execute(inst, r.state)
		stats.record(result.Outcome)

		if fn != nil {
			fn(Step{
				Index:  i,
				Inst:   inst,
				Result: result,
				Before: before,
				After:  r.state.Snapshot(),
			})
		}
	}

	r.exec.Logger().WithFields(logrus.Fields{
		"steps":    stats.Steps,
		"executed": stats.Executed,
		"skipped":  stats.Skipped,
		"rejected": stats.Rejected,
	}).Debug("run finished")

	return stats
}

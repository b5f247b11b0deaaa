package emu

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/armsim/insts"
)

// Errors reported in StepResult.Err. None of them stops a run.
var (
	// ErrConditionFailed marks an instruction skipped by its condition code.
	ErrConditionFailed = errors.New("condition not met")
	// ErrOutOfBounds marks a rejected memory access.
	ErrOutOfBounds = errors.New("memory access out of bounds")
	// ErrUnknownInstruction marks an instruction the executor cannot run.
	ErrUnknownInstruction = errors.New("unknown instruction")
)

// Outcome classifies what Execute did with an instruction.
type Outcome uint8

// Outcomes.
const (
	OutcomeExecuted Outcome = iota // State updated
	OutcomeSkipped                 // Condition failed, no effect
	OutcomeRejected                // Memory access out of bounds, no effect
	OutcomeUnknown                 // Unknown kind, no effect
	OutcomeBranch                  // Branch decoded and reported, no effect
)

var outcomeNames = [...]string{"executed", "skipped", "rejected", "unknown", "branch"}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("Outcome(%d)", uint8(o))
}

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	Outcome Outcome

	// Err is set for skipped, rejected and unknown outcomes.
	Err error
}

// Executor applies decoded instructions to a State. The ALU and condition
// unit are bound to the register file of the last State executed against,
// so an Executor must not be shared between goroutines.
type Executor struct {
	logger *logrus.Logger
	policy CondPolicy

	regFile    *RegFile
	alu        *ALU
	branchUnit *BranchUnit
}

// ExecutorOption is a functional option for configuring the Executor.
type ExecutorOption func(*Executor)

// WithLogger sets the logger used to report skipped, rejected, unknown and
// branch instructions.
func WithLogger(logger *logrus.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithCondPolicy selects how condition codes are evaluated.
func WithCondPolicy(policy CondPolicy) ExecutorOption {
	return func(e *Executor) {
		e.policy = policy
	}
}

// NewExecutor creates a new ARM executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		policy: CondPolicyLegacy,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logrus.New()
		e.logger.SetLevel(logrus.WarnLevel)
	}

	return e
}

// Logger returns the executor's logger.
func (e *Executor) Logger() *logrus.Logger {
	return e.logger
}

// CondPolicy returns the condition policy in use.
func (e *Executor) CondPolicy() CondPolicy {
	return e.policy
}

// Execute runs one decoded instruction against s. The condition is checked
// first; nothing in here aborts, every failure is reported in the result.
func (e *Executor) Execute(inst insts.Instruction, s *State) StepResult {
	log := e.logger.WithFields(logrus.Fields{
		"kind": inst.Kind.String(),
		"cond": inst.Cond.String(),
		"raw":  fmt.Sprintf("0x%08X", inst.Raw),
	})

	e.bind(s)
	alu := e.alu

	if !e.branchUnit.CheckCondition(inst.Cond) {
		log.Info("instruction skipped due to condition")
		return StepResult{
			Outcome: OutcomeSkipped,
			Err:     fmt.Errorf("%s: %w", inst.Mnemonic(), ErrConditionFailed),
		}
	}

	switch inst.Kind.Base() {
	case insts.KindMOV, insts.KindLSL, insts.KindLSR, insts.KindASR, insts.KindROR:
		alu.MOV(inst.Rd, Operand2(inst, &s.Regs), inst.SetFlags)
	case insts.KindADD:
		alu.ADD(inst.Rd, inst.Rn, Operand2(inst, &s.Regs), inst.SetFlags)
	case insts.KindSUB:
		alu.SUB(inst.Rd, inst.Rn, Operand2(inst, &s.Regs), inst.SetFlags)
	case insts.KindCMP:
		alu.CMP(inst.Rn, Operand2(inst, &s.Regs))
	case insts.KindAND:
		alu.AND(inst.Rd, inst.Rn, Operand2(inst, &s.Regs), inst.SetFlags)
	case insts.KindORR:
		alu.ORR(inst.Rd, inst.Rn, Operand2(inst, &s.Regs), inst.SetFlags)
	case insts.KindMUL:
		alu.MUL(inst.Rd, inst.Rm, inst.Rs, inst.SetFlags)
	case insts.KindLDR, insts.KindSTR:
		return e.executeLoadStore(inst, s, log)
	case insts.KindB, insts.KindBL:
		log.WithFields(logrus.Fields{
			"offset": inst.Offset,
			"link":   inst.Kind == insts.KindBL,
		}).Info("branch instruction decoded, control flow unchanged")
		return StepResult{Outcome: OutcomeBranch}
	default:
		log.Warn("unknown instruction type for execution")
		return StepResult{
			Outcome: OutcomeUnknown,
			Err:     fmt.Errorf("%v 0x%08X: %w", inst.Kind, inst.Raw, ErrUnknownInstruction),
		}
	}

	return StepResult{Outcome: OutcomeExecuted}
}

// bind rebuilds the functional units when s has a different register file
// from the previous call.
func (e *Executor) bind(s *State) {
	if e.regFile == &s.Regs {
		return
	}

	e.regFile = &s.Regs
	e.alu = NewALU(e.regFile)
	e.branchUnit = NewBranchUnit(e.regFile, e.policy)
}

// executeLoadStore executes LDR and STR.
func (e *Executor) executeLoadStore(inst insts.Instruction, s *State, log *logrus.Entry) StepResult {
	lsu := NewLoadStoreUnit(&s.Regs, s.DataPort(), s.Memory.Size())

	var err error
	if inst.Kind == insts.KindLDR {
		err = lsu.LDR(inst.Rd, inst.Rn, inst.Offset)
	} else {
		err = lsu.STR(inst.Rd, inst.Rn, inst.Offset)
	}

	if err != nil {
		log.WithField("addr", lsu.Address(inst.Rn, inst.Offset)).
			WithError(err).
			Warn("memory access rejected")
		return StepResult{
			Outcome: OutcomeRejected,
			Err:     fmt.Errorf("%v: %w", inst.Kind, err),
		}
	}

	return StepResult{Outcome: OutcomeExecuted}
}

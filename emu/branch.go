package emu

import (
	"fmt"

	"github.com/sarchlab/armsim/insts"
)

// CondPolicy selects how condition codes gate execution.
type CondPolicy uint8

// Condition policies.
const (
	// CondPolicyLegacy checks EQ and NE only; every other code executes.
	CondPolicyLegacy CondPolicy = iota
	// CondPolicyFull evaluates all sixteen condition codes against NZCV.
	CondPolicyFull
)

func (p CondPolicy) String() string {
	switch p {
	case CondPolicyFull:
		return "full"
	case CondPolicyLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("CondPolicy(%d)", uint8(p))
	}
}

// ParseCondPolicy converts "legacy" or "full" to a CondPolicy. The empty
// string selects the legacy policy.
func ParseCondPolicy(s string) (CondPolicy, error) {
	switch s {
	case "", "legacy":
		return CondPolicyLegacy, nil
	case "full":
		return CondPolicyFull, nil
	default:
		return CondPolicyLegacy, fmt.Errorf("unknown condition policy %q", s)
	}
}

// BranchUnit evaluates condition codes. Branch instructions are reported
// by the executor but never change the program counter.
type BranchUnit struct {
	regFile *RegFile
	policy  CondPolicy
}

// NewBranchUnit creates a new BranchUnit connected to the given register file.
func NewBranchUnit(regFile *RegFile, policy CondPolicy) *BranchUnit {
	return &BranchUnit{regFile: regFile, policy: policy}
}

// CheckCondition evaluates a condition code against the current CPSR flags.
func (b *BranchUnit) CheckCondition(cond insts.Cond) bool {
	flags := &b.regFile.CPSR

	if b.policy == CondPolicyLegacy {
		switch cond {
		case insts.CondEQ:
			return flags.Z
		case insts.CondNE:
			return !flags.Z
		default:
			return true
		}
	}

	switch cond {
	case insts.CondEQ:
		// Equal: Z == 1
		return flags.Z
	case insts.CondNE:
		// Not Equal: Z == 0
		return !flags.Z
	case insts.CondCS:
		// Carry Set / Unsigned higher or same: C == 1
		return flags.C
	case insts.CondCC:
		// Carry Clear / Unsigned lower: C == 0
		return !flags.C
	case insts.CondMI:
		// Minus / Negative: N == 1
		return flags.N
	case insts.CondPL:
		// Plus / Positive or zero: N == 0
		return !flags.N
	case insts.CondVS:
		// Overflow: V == 1
		return flags.V
	case insts.CondVC:
		// No overflow: V == 0
		return !flags.V
	case insts.CondHI:
		// Unsigned higher: C == 1 && Z == 0
		return flags.C && !flags.Z
	case insts.CondLS:
		// Unsigned lower or same: C == 0 || Z == 1
		return !flags.C || flags.Z
	case insts.CondGE:
		// Signed greater than or equal: N == V
		return flags.N == flags.V
	case insts.CondLT:
		// Signed less than: N != V
		return flags.N != flags.V
	case insts.CondGT:
		// Signed greater than: Z == 0 && N == V
		return !flags.Z && (flags.N == flags.V)
	case insts.CondLE:
		// Signed less than or equal: Z == 1 || N != V
		return flags.Z || (flags.N != flags.V)
	case insts.CondAL, insts.CondNV:
		// Always (unconditional)
		return true
	default:
		return false
	}
}

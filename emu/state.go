package emu

import (
	"fmt"
	"strings"
)

// State is the machine state an Executor mutates: registers, flags and data
// memory. It is created once per run and passed to Execute by pointer.
type State struct {
	Regs   RegFile
	Memory *Memory

	// Port is the path loads and stores take. Nil means Memory directly.
	Port DataPort
}

// NewState creates a zeroed state with a memory of memSize bytes.
func NewState(memSize int) *State {
	return &State{Memory: NewMemory(memSize)}
}

// DataPort returns the port loads and stores use.
func (s *State) DataPort() DataPort {
	if s.Port != nil {
		return s.Port
	}
	return s.Memory
}

// Snapshot is a value copy of the registers and flags.
type Snapshot struct {
	R    [16]uint32
	CPSR CPSR
}

// Snapshot copies the current registers and flags.
func (s *State) Snapshot() Snapshot {
	return Snapshot{R: s.Regs.R, CPSR: s.Regs.CPSR}
}

func (s Snapshot) String() string {
	regs := make([]string, len(s.R))
	for i, v := range s.R {
		regs[i] = fmt.Sprintf("R%d: %08X", i, v)
	}

	return fmt.Sprintf("Registers: %s\nCPSR: N: %d, Z: %d, C: %d, V: %d",
		strings.Join(regs, ", "),
		bit(s.CPSR.N), bit(s.CPSR.Z), bit(s.CPSR.C), bit(s.CPSR.V))
}

func bit(b bool) int {
	if b {
		return 1
	}
	return 0
}

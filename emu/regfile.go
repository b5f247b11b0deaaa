// Package emu provides functional ARM emulation.
package emu

// RegFile represents the ARM register file.
// It contains 16 general-purpose registers (R0-R15) and the status flags.
type RegFile struct {
	// R holds general-purpose registers R0-R15.
	// R15 is the program counter by convention; branches never write it.
	R [16]uint32

	// CPSR holds the condition flags.
	CPSR CPSR
}

// CPSR represents the condition flags of the current program status register.
// Mode and interrupt bits are not modeled.
type CPSR struct {
	// N is the negative flag.
	N bool
	// Z is the zero flag.
	Z bool
	// C is the carry flag.
	C bool
	// V is the overflow flag.
	V bool
}

// ReadReg reads a register value. Only the low four bits of reg are used.
func (r *RegFile) ReadReg(reg uint8) uint32 {
	return r.R[reg&0xF]
}

// WriteReg writes a value to a register. Only the low four bits of reg are used.
func (r *RegFile) WriteReg(reg uint8, value uint32) {
	r.R[reg&0xF] = value
}

// setNZ sets N and Z from a result and leaves C and V untouched.
func (f *CPSR) setNZ(result uint32) {
	f.N = (result >> 31) == 1
	f.Z = result == 0
}

package emu

import (
	"math/bits"

	"github.com/sarchlab/armsim/insts"
)

// Shift applies a barrel shifter operation to a 32-bit value.
// An amount of zero returns the value unchanged for every shift type.
func Shift(value uint32, shiftType insts.ShiftType, amount uint8) uint32 {
	amount &= 0x1F
	if amount == 0 {
		return value
	}
	switch shiftType {
	case insts.ShiftLSL:
		return value << amount
	case insts.ShiftLSR:
		return value >> amount
	case insts.ShiftASR:
		return uint32(int32(value) >> amount)
	case insts.ShiftROR:
		return bits.RotateLeft32(value, -int(amount))
	default:
		return value
	}
}

// Operand2 resolves the second operand of inst against the register file.
// A decoded immediate wins; otherwise Rm is shifted by the immediate amount
// or by the low five bits of Rs.
func Operand2(inst insts.Instruction, regFile *RegFile) uint32 {
	if inst.Operands.Has(insts.OperandImm) {
		return inst.Imm
	}
	if !inst.Operands.Has(insts.OperandRm) {
		return 0
	}

	value := regFile.ReadReg(inst.Rm)

	var amount uint8
	switch inst.ShiftSource {
	case insts.ShiftByImm:
		amount = inst.ShiftAmount
	case insts.ShiftByReg:
		amount = uint8(regFile.ReadReg(inst.Rs) & 0x1F)
	}

	return Shift(value, inst.ShiftType, amount)
}

package insts

import (
	"fmt"
	"strings"
)

// Kind identifies the operation an instruction performs.
type Kind uint8

// Instruction kinds.
const (
	KindUnknown      Kind = iota
	KindUnknownDPImm      // Data processing (immediate) with an unmapped opcode
	KindUnknownDPReg      // Data processing (register) with an unmapped opcode
	KindUnknownThumb      // Produced only by the Thumb stub
	KindMOV
	KindADD
	KindSUB
	KindADDEQ // ADD with condition EQ, unless WithPureKinds
	KindSUBNE // SUB with condition NE, unless WithPureKinds
	KindCMP
	KindAND
	KindORR
	KindMUL
	KindLDR
	KindSTR
	KindB
	KindBL
	KindLSL
	KindLSR
	KindASR
	KindROR
)

var kindNames = [...]string{
	KindUnknown:      "UNKNOWN",
	KindUnknownDPImm: "UNKNOWN_DATA_PROCESSING_IMM",
	KindUnknownDPReg: "UNKNOWN_DATA_PROCESSING_REG",
	KindUnknownThumb: "UNKNOWN_THUMB",
	KindMOV:          "MOV",
	KindADD:          "ADD",
	KindSUB:          "SUB",
	KindADDEQ:        "ADDEQ",
	KindSUBNE:        "SUBNE",
	KindCMP:          "CMP",
	KindAND:          "AND",
	KindORR:          "ORR",
	KindMUL:          "MUL",
	KindLDR:          "LDR",
	KindSTR:          "STR",
	KindB:            "B",
	KindBL:           "BL",
	KindLSL:          "LSL",
	KindLSR:          "LSR",
	KindASR:          "ASR",
	KindROR:          "ROR",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsUnknown returns true for every kind the decoder could not classify.
func (k Kind) IsUnknown() bool {
	switch k {
	case KindUnknown, KindUnknownDPImm, KindUnknownDPReg, KindUnknownThumb:
		return true
	default:
		return false
	}
}

// IsShift returns true for the standalone shift kinds produced by MOV aliasing.
func (k Kind) IsShift() bool {
	return k == KindLSL || k == KindLSR || k == KindASR || k == KindROR
}

// Base strips the condition from the renamed kinds. ADDEQ becomes ADD and
// SUBNE becomes SUB; every other kind is returned unchanged.
func (k Kind) Base() Kind {
	switch k {
	case KindADDEQ:
		return KindADD
	case KindSUBNE:
		return KindSUB
	default:
		return k
	}
}

// Cond represents an ARM condition code.
type Cond uint8

// ARM condition codes.
const (
	CondEQ Cond = 0b0000 // Equal (Z == 1)
	CondNE Cond = 0b0001 // Not Equal (Z == 0)
	CondCS Cond = 0b0010 // Carry Set / Unsigned higher or same (C == 1)
	CondCC Cond = 0b0011 // Carry Clear / Unsigned lower (C == 0)
	CondMI Cond = 0b0100 // Minus / Negative (N == 1)
	CondPL Cond = 0b0101 // Plus / Positive or zero (N == 0)
	CondVS Cond = 0b0110 // Overflow (V == 1)
	CondVC Cond = 0b0111 // No overflow (V == 0)
	CondHI Cond = 0b1000 // Unsigned higher (C == 1 && Z == 0)
	CondLS Cond = 0b1001 // Unsigned lower or same (C == 0 || Z == 1)
	CondGE Cond = 0b1010 // Signed greater than or equal (N == V)
	CondLT Cond = 0b1011 // Signed less than (N != V)
	CondGT Cond = 0b1100 // Signed greater than (Z == 0 && N == V)
	CondLE Cond = 0b1101 // Signed less than or equal (Z == 1 || N != V)
	CondAL Cond = 0b1110 // Always (unconditional)
	CondNV Cond = 0b1111 // Reserved, treated as always
)

var condSuffixes = [16]string{
	"EQ", "NE", "CS", "CC", "MI", "PL", "VS", "VC",
	"HI", "LS", "GE", "LT", "GT", "LE", "AL", "NV",
}

// String returns the two-letter assembler suffix of the condition.
func (c Cond) String() string {
	return condSuffixes[c&0xF]
}

// ShiftType represents a shift type for register operands.
type ShiftType uint8

// Shift types.
const (
	ShiftLSL ShiftType = 0b00 // Logical shift left
	ShiftLSR ShiftType = 0b01 // Logical shift right
	ShiftASR ShiftType = 0b10 // Arithmetic shift right
	ShiftROR ShiftType = 0b11 // Rotate right
)

var shiftNames = [4]string{"LSL", "LSR", "ASR", "ROR"}

func (s ShiftType) String() string {
	return shiftNames[s&0x3]
}

// ShiftSource tells where a register operand's shift amount comes from.
// Exactly one applies to every register-operand instruction.
type ShiftSource uint8

// Shift sources.
const (
	ShiftNone  ShiftSource = iota // No shift descriptor
	ShiftByImm                    // Amount is the 5-bit immediate in ShiftAmount
	ShiftByReg                    // Amount is the low 5 bits of register Rs
)

// OperandSet records which operand fields are meaningful for an instruction.
type OperandSet uint16

// Operand fields.
const (
	OperandRd OperandSet = 1 << iota
	OperandRn
	OperandRm
	OperandRs
	OperandImm
	OperandShiftAmount
	OperandShiftType
	OperandOffset
)

// Has returns true if every operand in o is present.
func (s OperandSet) Has(o OperandSet) bool {
	return s&o == o
}

// Instruction represents a decoded ARM instruction. Instructions are plain
// values: the decoder fills every field before returning and nothing
// modifies them afterwards.
type Instruction struct {
	Kind     Kind // Operation
	Cond     Cond // Condition code, bits [31:28]
	SetFlags bool // S bit, always true for CMP

	// Operands lists the fields below that apply to Kind.
	Operands OperandSet

	Rd uint8 // Destination register
	Rn uint8 // First operand / base register
	Rm uint8 // Second operand register
	Rs uint8 // Shift amount register (register shifts) or multiplier

	// Imm is the resolved data processing immediate (rotation applied).
	Imm uint32

	// Shift applied to Rm
	ShiftType   ShiftType
	ShiftSource ShiftSource
	ShiftAmount uint8

	// Offset is the unsigned 12-bit load/store offset or the raw 24-bit
	// branch offset.
	Offset uint32

	// Raw is the original instruction word.
	Raw uint32
}

// String renders the record for diagnostics.
func (i Instruction) String() string {
	if i.Kind.IsUnknown() {
		return fmt.Sprintf("%v Instruction: %08X", i.Kind, i.Raw)
	}

	var ops []string
	add := func(o OperandSet, name string, v interface{}) {
		if i.Operands.Has(o) {
			ops = append(ops, fmt.Sprintf("%s: %v", name, v))
		}
	}
	add(OperandRd, "rd", i.Rd)
	if !i.Kind.IsShift() {
		add(OperandRn, "rn", i.Rn)
	}
	add(OperandRm, "rm", i.Rm)
	add(OperandRs, "rs", i.Rs)
	add(OperandImm, "operand2", i.Imm)
	add(OperandShiftAmount, "shift_amount", i.ShiftAmount)
	add(OperandShiftType, "shift_type", uint8(i.ShiftType))
	add(OperandOffset, "offset", i.Offset)
	// Shift aliases list the zero Rn last.
	if i.Kind.IsShift() {
		add(OperandRn, "rn", i.Rn)
	}

	return fmt.Sprintf("Type: %v, Cond: %X, Set Flags: %t, Operands: {%s}",
		i.Kind, uint8(i.Cond), i.SetFlags, strings.Join(ops, ", "))
}

// Mnemonic returns the assembler mnemonic with condition and S suffixes,
// e.g. "SUBNE", "MOVS" or "ADDEQ". The AL suffix is omitted.
func (i Instruction) Mnemonic() string {
	if i.Kind.IsUnknown() {
		return i.Kind.String()
	}

	m := i.Kind.Base().String()
	if i.Cond != CondAL {
		m += i.Cond.String()
	}
	if i.SetFlags && i.Kind != KindCMP {
		m += "S"
	}
	return m
}

// Disasm returns an assembler-like rendering of the instruction.
func (i Instruction) Disasm() string {
	m := i.Mnemonic()

	switch i.Kind.Base() {
	case KindMOV:
		return fmt.Sprintf("%s R%d, %s", m, i.Rd, i.operand2String())
	case KindADD, KindSUB, KindAND, KindORR:
		return fmt.Sprintf("%s R%d, R%d, %s", m, i.Rd, i.Rn, i.operand2String())
	case KindCMP:
		return fmt.Sprintf("%s R%d, %s", m, i.Rn, i.operand2String())
	case KindMUL:
		return fmt.Sprintf("%s R%d, R%d, R%d", m, i.Rd, i.Rm, i.Rs)
	case KindLDR, KindSTR:
		return fmt.Sprintf("%s R%d, [R%d, #%d]", m, i.Rd, i.Rn, i.Offset)
	case KindB, KindBL:
		return fmt.Sprintf("%s #0x%06X", m, i.Offset)
	case KindLSL, KindLSR, KindASR, KindROR:
		if i.ShiftSource == ShiftByReg {
			return fmt.Sprintf("%s R%d, R%d, R%d", m, i.Rd, i.Rm, i.Rs)
		}
		return fmt.Sprintf("%s R%d, R%d, #%d", m, i.Rd, i.Rm, i.ShiftAmount)
	default:
		return fmt.Sprintf(".word 0x%08X", i.Raw)
	}
}

func (i Instruction) operand2String() string {
	if i.Operands.Has(OperandImm) {
		return fmt.Sprintf("#%d", i.Imm)
	}

	switch i.ShiftSource {
	case ShiftByReg:
		return fmt.Sprintf("R%d, %v R%d", i.Rm, i.ShiftType, i.Rs)
	case ShiftByImm:
		if i.ShiftAmount != 0 {
			return fmt.Sprintf("R%d, %v #%d", i.Rm, i.ShiftType, i.ShiftAmount)
		}
	}
	return fmt.Sprintf("R%d", i.Rm)
}

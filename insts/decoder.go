package insts

import (
	"encoding/binary"
	"math/bits"
)

// Data processing opcodes, bits [24:21].
const (
	opcodeAND = 0b0000
	opcodeSUB = 0b0010
	opcodeADD = 0b0100
	opcodeCMP = 0b1010
	opcodeORR = 0b1100
	opcodeMOV = 0b1101
)

var shiftKinds = [4]Kind{KindLSL, KindLSR, KindASR, KindROR}

// Decoder decodes ARM machine code into instructions.
type Decoder struct {
	pureKinds bool
}

// DecoderOption is a functional option for configuring the Decoder.
type DecoderOption func(*Decoder)

// WithPureKinds turns off condition renaming. SUB with condition NE stays
// SUB and ADD with condition EQ stays ADD; the condition is left to
// Instruction.Cond.
func WithPureKinds() DecoderOption {
	return func(d *Decoder) {
		d.pureKinds = true
	}
}

// NewDecoder creates a new ARM instruction decoder.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode decodes a 32-bit ARM instruction word. It never fails: words
// outside the supported subset decode to one of the unknown kinds.
func (d *Decoder) Decode(word uint32) Instruction {
	cond := Cond(word >> 28)

	switch {
	case d.isMultiply(word):
		return d.decodeMultiply(word, cond)
	case d.isDataProcessing(word):
		return d.decodeDataProcessing(word, cond)
	case d.isLoadStore(word):
		return d.decodeLoadStore(word, cond)
	case d.isBranch(word):
		return d.decodeBranch(word, cond)
	default:
		return Instruction{Kind: KindUnknown, Cond: cond, Raw: word}
	}
}

// DecodeStream splits data into big-endian 32-bit words and decodes each
// one. Trailing bytes that do not complete a word are dropped.
func (d *Decoder) DecodeStream(data []byte) []Instruction {
	return d.DecodeWords(SplitWords(data, binary.BigEndian))
}

// DecodeWords decodes words in order.
func (d *Decoder) DecodeWords(words []uint32) []Instruction {
	out := make([]Instruction, len(words))
	for i, w := range words {
		out[i] = d.Decode(w)
	}
	return out
}

// SplitWords splits data into 32-bit words using order. Trailing bytes that
// do not complete a word are dropped.
func SplitWords(data []byte, order binary.ByteOrder) []uint32 {
	words := make([]uint32, 0, len(data)/4)
	for i := 0; i+4 <= len(data); i += 4 {
		words = append(words, order.Uint32(data[i:]))
	}
	return words
}

// DecodeThumb is the Thumb decoding stub. Every halfword decodes to
// KindUnknownThumb.
func DecodeThumb(half uint16) Instruction {
	return Instruction{Kind: KindUnknownThumb, Cond: CondAL, Raw: uint32(half)}
}

// isMultiply checks for MUL.
// bits [27:24] == 0b0000 and bits [7:4] == 0b1001
func (d *Decoder) isMultiply(word uint32) bool {
	return (word>>24)&0xF == 0b0000 && (word>>4)&0xF == 0b1001
}

// decodeMultiply decodes MUL.
// Format: cond | 000000 | A | S | Rd | Rn | Rs | 1001 | Rm
func (d *Decoder) decodeMultiply(word uint32, cond Cond) Instruction {
	return Instruction{
		Kind:     KindMUL,
		Cond:     cond,
		SetFlags: (word>>20)&0x1 == 1,
		Operands: OperandRd | OperandRm | OperandRs,
		Rd:       uint8((word >> 16) & 0xF), // bits [19:16]
		Rs:       uint8((word >> 8) & 0xF),  // bits [11:8]
		Rm:       uint8(word & 0xF),         // bits [3:0]
		Raw:      word,
	}
}

// isDataProcessing checks for data processing instructions.
// bits [27:26] == 0b00
func (d *Decoder) isDataProcessing(word uint32) bool {
	return (word>>26)&0x3 == 0b00
}

// decodeDataProcessing decodes data processing instructions.
// Format: cond | 00 | I | opcode | S | Rn | Rd | operand2
func (d *Decoder) decodeDataProcessing(word uint32, cond Cond) Instruction {
	opcode := (word >> 21) & 0xF // bits [24:21]

	inst := Instruction{
		Cond:     cond,
		SetFlags: (word>>20)&0x1 == 1,
		Rn:       uint8((word >> 16) & 0xF), // bits [19:16]
		Rd:       uint8((word >> 12) & 0xF), // bits [15:12]
		Raw:      word,
	}

	if (word>>25)&0x1 == 1 {
		// 8-bit immediate rotated right by twice the 4-bit rotate field
		rotate := (word >> 8) & 0xF
		imm8 := word & 0xFF
		inst.Imm = bits.RotateLeft32(imm8, -int(2*rotate))
		inst.Operands = OperandRd | OperandRn | OperandImm
		inst.Kind = dataProcessingKind(opcode, KindUnknownDPImm)
	} else {
		inst.Rm = uint8(word & 0xF)                    // bits [3:0]
		inst.ShiftType = ShiftType((word >> 5) & 0x3) // bits [6:5]

		if (word>>4)&0x1 == 0 {
			inst.ShiftSource = ShiftByImm
			inst.ShiftAmount = uint8((word >> 7) & 0x1F) // bits [11:7]
			inst.Operands = OperandRd | OperandRn | OperandRm |
				OperandShiftAmount | OperandShiftType
		} else {
			inst.ShiftSource = ShiftByReg
			inst.Rs = uint8((word >> 8) & 0xF) // bits [11:8]
			inst.Operands = OperandRd | OperandRn | OperandRm |
				OperandRs | OperandShiftType
		}

		// MOV Rd, Rm, <shift> with Rn == 0 is the standalone shift form.
		// This also covers ROR Rd, #n encoded as MOV Rd, Rd, ROR #n.
		if opcode == opcodeMOV && inst.Rn == 0 {
			inst.Kind = shiftKinds[inst.ShiftType]
			return inst
		}

		inst.Kind = dataProcessingKind(opcode, KindUnknownDPReg)
	}

	if inst.Kind == KindCMP {
		inst.SetFlags = true
	}

	if !d.pureKinds {
		switch {
		case cond == CondNE && inst.Kind == KindSUB:
			inst.Kind = KindSUBNE
		case cond == CondEQ && inst.Kind == KindADD:
			inst.Kind = KindADDEQ
		}
	}

	return inst
}

func dataProcessingKind(opcode uint32, unknown Kind) Kind {
	switch opcode {
	case opcodeADD:
		return KindADD
	case opcodeSUB:
		return KindSUB
	case opcodeMOV:
		return KindMOV
	case opcodeCMP:
		return KindCMP
	case opcodeAND:
		return KindAND
	case opcodeORR:
		return KindORR
	default:
		return unknown
	}
}

// isLoadStore checks for single data transfer.
// bits [27:26] == 0b01
func (d *Decoder) isLoadStore(word uint32) bool {
	return (word>>26)&0x3 == 0b01
}

// decodeLoadStore decodes LDR and STR.
// Format: cond | 01 | I | P | U | B | W | L | Rn | Rd | offset12
// Only the unsigned offset is modeled.
func (d *Decoder) decodeLoadStore(word uint32, cond Cond) Instruction {
	kind := KindSTR
	if (word>>20)&0x1 == 1 {
		kind = KindLDR
	}

	return Instruction{
		Kind:     kind,
		Cond:     cond,
		Operands: OperandRd | OperandRn | OperandOffset,
		Rn:       uint8((word >> 16) & 0xF),
		Rd:       uint8((word >> 12) & 0xF),
		Offset:   word & 0xFFF,
		Raw:      word,
	}
}

// isBranch checks for B and BL.
// bits [27:25] == 0b101
func (d *Decoder) isBranch(word uint32) bool {
	return (word>>25)&0x7 == 0b101
}

// decodeBranch decodes B and BL. The 24-bit offset is kept as encoded,
// without sign extension or word scaling.
func (d *Decoder) decodeBranch(word uint32, cond Cond) Instruction {
	kind := KindB
	if (word>>24)&0x1 == 1 {
		kind = KindBL
	}

	return Instruction{
		Kind:     kind,
		Cond:     cond,
		Operands: OperandOffset,
		Offset:   word & 0xFFFFFF,
		Raw:      word,
	}
}

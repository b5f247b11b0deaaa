// Package insts provides ARM (ARMv4, 32-bit) instruction definitions and
// decoding.
//
// This package implements decoding of ARM machine code into structured,
// immutable instruction records. It supports:
//   - Data Processing: MOV, ADD, SUB, CMP, AND, ORR with immediate or
//     shifted-register operands, including the MOV-based shift aliases
//     LSL, LSR, ASR and ROR
//   - Multiply: MUL
//   - Single data transfer: LDR, STR with a 12-bit unsigned offset
//   - Branch instructions: B, BL
//
// Every 32-bit word decodes to some record; encodings outside the subset
// fall back to one of the unknown kinds.
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0xE3A00010) // MOV R0, #16
//	fmt.Printf("Kind: %v, Rd: %d, Imm: %d\n", inst.Kind, inst.Rd, inst.Imm)
package insts

package loader

import (
	"encoding/binary"
	"fmt"
	"io"
)

// sampleWords is a short program touching every supported instruction class.
var sampleWords = [...]uint32{
	0xE3A00010, // MOV R0, #16
	0xE5901100, // LDR R1, [R0, #0x100]
	0xE5812000, // STR R2, [R1]
	0xE0813002, // ADD R3, R1, R2
	0xE0424003, // SUB R4, R2, R3
	0xE0050194, // MUL R5, R4, R1
	0xE1500005, // CMP R0, R5
	0xE0006005, // AND R6, R0, R5
	0xE1807005, // ORR R7, R0, R5
	0x10400005, // SUBNE R0, R0, R5
	0x00876008, // ADDEQ R6, R7, R8
	0xE1A01100, // LSL R1, R0, #2
	0xE1A02120, // LSR R2, R0, #2
	0xE1A14260, // MOV R4, R0, ROR #4
	0xE1A003E0, // ROR R0, R0, #7
}

// SampleWords returns the sample program.
func SampleWords() []uint32 {
	words := make([]uint32, len(sampleWords))
	copy(words, sampleWords[:])
	return words
}

// WriteRaw writes words as a raw big-endian instruction stream.
func WriteRaw(w io.Writer, words []uint32) error {
	if err := binary.Write(w, binary.BigEndian, words); err != nil {
		return fmt.Errorf("failed to write instruction stream: %w", err)
	}
	return nil
}

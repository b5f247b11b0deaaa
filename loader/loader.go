// Package loader reads ARM programs from disk. Two formats are accepted:
// raw instruction streams (big-endian 32-bit words, no header) and 32-bit
// ARM ELF executables.
package loader

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/sarchlab/armsim/insts"
)

// Format identifies the file format a Program was loaded from.
type Format uint8

// Program formats.
const (
	FormatRaw Format = iota
	FormatELF
)

func (f Format) String() string {
	switch f {
	case FormatRaw:
		return "raw"
	case FormatELF:
		return "elf"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// Program is a loaded instruction stream.
type Program struct {
	// Format is the file format the program came from.
	Format Format
	// Words holds the instruction words in execution order.
	Words []uint32
	// TrailingBytes counts bytes at the end of a raw stream that did not
	// complete a word. They are dropped.
	TrailingBytes int

	// EntryPoint is the ELF entry address. Zero for raw streams.
	EntryPoint uint32
	// Segments contains the loadable segments of an ELF file.
	Segments []Segment
}

// Load reads the program at path. ELF files are recognized by their magic
// number; anything else is treated as a raw big-endian stream.
func Load(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program file: %w", err)
	}

	return LoadData(data)
}

// LoadData parses a program held in memory.
func LoadData(data []byte) (*Program, error) {
	if bytes.HasPrefix(data, []byte(elf.ELFMAG)) {
		return loadELF(bytes.NewReader(data))
	}

	return &Program{
		Format:        FormatRaw,
		Words:         insts.SplitWords(data, binary.BigEndian),
		TrailingBytes: len(data) % 4,
	}, nil
}

// Decode decodes every word of the program.
func (p *Program) Decode(d *insts.Decoder) []insts.Instruction {
	return d.DecodeWords(p.Words)
}

package emu

import (
	"encoding/binary"
	"fmt"
)

// DefaultMemorySize is the capacity of the data memory in bytes.
const DefaultMemorySize = 1024

// DataPort is the path word loads and stores take to memory. Both Memory and
// a cache placed in front of it implement it.
type DataPort interface {
	Read32(addr uint32) (uint32, error)
	Write32(addr uint32, value uint32) error
}

// Memory is a fixed-size, byte-addressable data memory. Words are stored
// little-endian.
type Memory struct {
	data []byte
}

// NewMemory creates a zeroed memory of the given size in bytes.
func NewMemory(size int) *Memory {
	if size < 0 {
		size = 0
	}
	return &Memory{data: make([]byte, size)}
}

// Size returns the capacity in bytes.
func (m *Memory) Size() int {
	return len(m.data)
}

// Contains reports whether the n bytes starting at addr lie inside memory.
func (m *Memory) Contains(addr uint64, n int) bool {
	return n >= 0 && addr+uint64(n) <= uint64(len(m.data))
}

func (m *Memory) check(addr uint32, n int) error {
	if !m.Contains(uint64(addr), n) {
		return fmt.Errorf("%d-byte access at 0x%X (size %d): %w",
			n, addr, len(m.data), ErrOutOfBounds)
	}
	return nil
}

// Read8 reads a byte.
func (m *Memory) Read8(addr uint32) (byte, error) {
	if err := m.check(addr, 1); err != nil {
		return 0, err
	}
	return m.data[addr], nil
}

// Write8 writes a byte.
func (m *Memory) Write8(addr uint32, value byte) error {
	if err := m.check(addr, 1); err != nil {
		return err
	}
	m.data[addr] = value
	return nil
}

// Read32 reads a little-endian 32-bit word.
func (m *Memory) Read32(addr uint32) (uint32, error) {
	if err := m.check(addr, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(m.data[addr:]), nil
}

// Write32 writes a little-endian 32-bit word.
func (m *Memory) Write32(addr uint32, value uint32) error {
	if err := m.check(addr, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(m.data[addr:], value)
	return nil
}

// Read copies n bytes starting at addr.
func (m *Memory) Read(addr uint32, n int) ([]byte, error) {
	if err := m.check(addr, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, m.data[addr:])
	return out, nil
}

// Write copies data into memory starting at addr.
func (m *Memory) Write(addr uint32, data []byte) error {
	if err := m.check(addr, len(data)); err != nil {
		return err
	}
	copy(m.data[addr:], data)
	return nil
}

// Bytes returns a copy of the whole memory.
func (m *Memory) Bytes() []byte {
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out
}

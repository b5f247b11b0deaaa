package emu

import "fmt"

// LoadStoreUnit implements ARM word load and store operations.
// Addresses are Rn + offset and must leave room for a full word.
type LoadStoreUnit struct {
	regFile *RegFile
	port    DataPort
	size    int
}

// NewLoadStoreUnit creates a new LoadStoreUnit that accesses memory of the
// given size through port.
func NewLoadStoreUnit(regFile *RegFile, port DataPort, size int) *LoadStoreUnit {
	return &LoadStoreUnit{
		regFile: regFile,
		port:    port,
		size:    size,
	}
}

// Address computes Rn + offset without 32-bit wraparound.
func (lsu *LoadStoreUnit) Address(rn uint8, offset uint32) uint64 {
	return uint64(lsu.regFile.ReadReg(rn)) + uint64(offset)
}

// checkWord accepts addresses in [0, size-4].
func (lsu *LoadStoreUnit) checkWord(addr uint64) error {
	if addr+4 > uint64(lsu.size) {
		return fmt.Errorf("word access at 0x%X (size %d): %w", addr, lsu.size, ErrOutOfBounds)
	}
	return nil
}

// LDR performs a 32-bit load: Rd = mem[Rn + offset].
// Out-of-bounds loads leave Rd unchanged.
func (lsu *LoadStoreUnit) LDR(rd, rn uint8, offset uint32) error {
	addr := lsu.Address(rn, offset)
	if err := lsu.checkWord(addr); err != nil {
		return err
	}

	value, err := lsu.port.Read32(uint32(addr))
	if err != nil {
		return err
	}
	lsu.regFile.WriteReg(rd, value)
	return nil
}

// STR performs a 32-bit store: mem[Rn + offset] = Rd.
// Out-of-bounds stores leave memory unchanged.
func (lsu *LoadStoreUnit) STR(rd, rn uint8, offset uint32) error {
	addr := lsu.Address(rn, offset)
	if err := lsu.checkWord(addr); err != nil {
		return err
	}

	return lsu.port.Write32(uint32(addr), lsu.regFile.ReadReg(rd))
}

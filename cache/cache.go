// Package cache provides a set-associative data cache that sits between the
// executor and data memory, built on Akita cache components.
package cache

import (
	"encoding/binary"
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Config holds cache configuration parameters.
type Config struct {
	// Size in bytes
	Size int `json:"size"`
	// Associativity (number of ways)
	Associativity int `json:"associativity"`
	// BlockSize in bytes (cache line size)
	BlockSize int `json:"block_size"`
}

// DefaultConfig returns a small cache sized for the 1 KiB data memory:
// 256 B, 2-way, 16 B lines.
func DefaultConfig() Config {
	return Config{
		Size:          256,
		Associativity: 2,
		BlockSize:     16,
	}
}

// NumSets returns the number of sets the geometry produces.
func (c Config) NumSets() int {
	if c.Associativity <= 0 || c.BlockSize <= 0 {
		return 0
	}
	return c.Size / (c.Associativity * c.BlockSize)
}

// Validate checks that the geometry is usable in front of a memory of
// memSize bytes. Lines must be a power of two of at least one word, the
// capacity must divide into whole sets, and lines must tile the memory.
func (c Config) Validate(memSize int) error {
	if c.Size <= 0 {
		return fmt.Errorf("cache size must be positive, got %d", c.Size)
	}
	if c.Associativity <= 0 {
		return fmt.Errorf("cache associativity must be positive, got %d", c.Associativity)
	}
	if c.BlockSize < 4 || c.BlockSize&(c.BlockSize-1) != 0 {
		return fmt.Errorf("cache block size must be a power of two >= 4, got %d", c.BlockSize)
	}
	if c.Size%(c.Associativity*c.BlockSize) != 0 {
		return fmt.Errorf("cache size %d is not a multiple of associativity*block size (%d)",
			c.Size, c.Associativity*c.BlockSize)
	}
	if memSize%c.BlockSize != 0 {
		return fmt.Errorf("memory size %d is not a multiple of block size %d",
			memSize, c.BlockSize)
	}
	return nil
}

// Statistics holds cache performance statistics. Reads and Writes count
// word accesses; Hits and Misses count lines touched, so a word straddling
// two lines records two lookups.
type Statistics struct {
	Reads     uint64
	Writes    uint64
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// HitRate returns Hits / (Hits + Misses), or 0 before any lookup.
func (s Statistics) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache is a write-through, write-allocate cache. Lines are never dirty, so
// evictions need no writeback and the backing store always holds the
// architectural memory contents.
type Cache struct {
	// Configuration
	config Config

	// Akita cache directory for tag/state management
	directory *akitacache.DirectoryImpl

	// Data storage - indexed by (setID * associativity + wayID)
	dataStore [][]byte

	// Statistics
	stats Statistics

	// Backing store (for fetching on miss and write-through)
	backing BackingStore
}

// New creates a new cache with the given configuration. The configuration
// is expected to have passed Validate.
func New(config Config, backing BackingStore) *Cache {
	numSets := config.NumSets()
	totalBlocks := numSets * config.Associativity

	dataStore := make([][]byte, totalBlocks)
	for i := range dataStore {
		dataStore[i] = make([]byte, config.BlockSize)
	}

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
		dataStore: dataStore,
		backing:   backing,
	}
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// ResetStats clears cache statistics.
func (c *Cache) ResetStats() {
	c.stats = Statistics{}
}

// blockIndex computes the index into dataStore for a block.
func (c *Cache) blockIndex(block *akitacache.Block) int {
	return block.SetID*c.config.Associativity + block.WayID
}

// Read32 reads a little-endian word through the cache.
func (c *Cache) Read32(addr uint32) (uint32, error) {
	c.stats.Reads++

	var buf [4]byte
	if err := c.access(addr, buf[:], false); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// Write32 writes a little-endian word to the backing store and to the
// cached line, allocating the line on a miss.
func (c *Cache) Write32(addr uint32, value uint32) error {
	c.stats.Writes++

	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], value)

	if err := c.backing.Write(addr, buf[:]); err != nil {
		return err
	}
	return c.access(addr, buf[:], true)
}

// access copies buf to or from the cached lines covering
// [addr, addr+len(buf)).
func (c *Cache) access(addr uint32, buf []byte, isWrite bool) error {
	blockSize := uint64(c.config.BlockSize)

	for i := 0; i < len(buf); {
		a := uint64(addr) + uint64(i)
		blockAddr := (a / blockSize) * blockSize
		offset := int(a - blockAddr)

		block, err := c.lookup(blockAddr)
		if err != nil {
			return err
		}

		data := c.dataStore[c.blockIndex(block)]
		var n int
		if isWrite {
			n = copy(data[offset:], buf[i:])
		} else {
			n = copy(buf[i:], data[offset:])
		}
		i += n
	}

	return nil
}

// lookup returns the valid block holding blockAddr, filling it from the
// backing store on a miss.
func (c *Cache) lookup(blockAddr uint64) (*akitacache.Block, error) {
	block := c.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block) // Update LRU
		return block, nil
	}

	c.stats.Misses++

	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		return nil, fmt.Errorf("no victim for block 0x%X", blockAddr)
	}

	data, err := c.backing.Read(uint32(blockAddr), c.config.BlockSize)
	if err != nil {
		return nil, fmt.Errorf("cache fill at 0x%X: %w", blockAddr, err)
	}

	if victim.IsValid {
		c.stats.Evictions++
	}

	copy(c.dataStore[c.blockIndex(victim)], data)

	// Tag stores the block-aligned address
	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = false

	c.directory.Visit(victim) // Update LRU

	return victim, nil
}

// Invalidate marks the line holding addr as invalid.
func (c *Cache) Invalidate(addr uint32) {
	blockSize := uint64(c.config.BlockSize)
	blockAddr := (uint64(addr) / blockSize) * blockSize

	block := c.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		block.IsValid = false
	}
}

// ValidLines returns the number of lines currently holding data.
func (c *Cache) ValidLines() int {
	n := 0
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid {
				n++
			}
		}
	}
	return n
}

// Reset invalidates all cache lines and clears statistics.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}

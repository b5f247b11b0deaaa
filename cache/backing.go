package cache

import (
	"github.com/sarchlab/armsim/emu"
)

// BackingStore is the memory behind the cache.
type BackingStore interface {
	// Read fetches n bytes starting at addr.
	Read(addr uint32, n int) ([]byte, error)
	// Write stores data starting at addr.
	Write(addr uint32, data []byte) error
}

var (
	_ BackingStore = (*emu.Memory)(nil)
	_ emu.DataPort = (*Cache)(nil)
)

// Attach places a cache of the given configuration in front of the state's
// data memory and routes loads and stores through it.
func Attach(state *emu.State, config Config) (*Cache, error) {
	if err := config.Validate(state.Memory.Size()); err != nil {
		return nil, err
	}

	c := New(config, state.Memory)
	state.Port = c
	return c, nil
}

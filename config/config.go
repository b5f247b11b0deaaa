// Package config holds the run configuration of the simulator: memory size,
// initial registers, condition handling, logging and the optional data cache.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/armsim/cache"
	"github.com/sarchlab/armsim/emu"
	"github.com/sarchlab/armsim/insts"
)

// Config holds the settings for one simulation run.
type Config struct {
	// MemorySize is the data memory capacity in bytes. Default: 1024.
	MemorySize int `json:"memory_size"`

	// Registers seeds general-purpose registers before the run, keyed by
	// register number. Entries in a file are merged over the defaults.
	Registers map[int]uint32 `json:"registers"`

	// ConditionPolicy is "legacy" (EQ/NE only) or "full" (all sixteen
	// codes). Default: "legacy".
	ConditionPolicy string `json:"condition_policy"`

	// PureKinds stops the decoder renaming SUB/ADD with NE/EQ to
	// SUBNE/ADDEQ.
	PureKinds bool `json:"pure_kinds"`

	// MaxInstructions bounds the run. 0 means no limit.
	MaxInstructions uint64 `json:"max_instructions"`

	// LogLevel is a logrus level name. Default: "warning".
	LogLevel string `json:"log_level"`

	// Cache places a data cache in front of memory when set.
	Cache *cache.Config `json:"cache,omitempty"`
}

// DefaultConfig returns the configuration the simulator runs with when no
// file is given. The registers match the seed values the sample program
// expects.
func DefaultConfig() *Config {
	return &Config{
		MemorySize: emu.DefaultMemorySize,
		Registers: map[int]uint32{
			0: 0x10,
			1: 0x20,
			2: 0x05,
			3: 0x02,
			4: 0x0A,
			5: 0x03,
			7: 0x0F,
			8: 0x0F,
		},
		ConditionPolicy: emu.CondPolicyLegacy.String(),
		LogLevel:        logrus.WarnLevel.String(),
	}
}

// LoadConfig loads a Config from a JSON file. Fields missing from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	if c.MemorySize < 4 {
		return fmt.Errorf("memory_size must be >= 4, got %d", c.MemorySize)
	}

	for reg := range c.Registers {
		if reg < 0 || reg > 15 {
			return fmt.Errorf("registers: R%d does not exist", reg)
		}
	}

	if _, err := c.Policy(); err != nil {
		return fmt.Errorf("condition_policy: %w", err)
	}

	if _, err := c.Level(); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	if c.Cache != nil {
		if err := c.Cache.Validate(c.MemorySize); err != nil {
			return fmt.Errorf("cache: %w", err)
		}
	}

	return nil
}

// Clone returns a deep copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c

	if c.Registers != nil {
		clone.Registers = make(map[int]uint32, len(c.Registers))
		for reg, v := range c.Registers {
			clone.Registers[reg] = v
		}
	}

	if c.Cache != nil {
		cacheConfig := *c.Cache
		clone.Cache = &cacheConfig
	}

	return &clone
}

// Policy returns the parsed condition policy.
func (c *Config) Policy() (emu.CondPolicy, error) {
	return emu.ParseCondPolicy(c.ConditionPolicy)
}

// Level returns the parsed log level. The empty string selects warning.
func (c *Config) Level() (logrus.Level, error) {
	if c.LogLevel == "" {
		return logrus.WarnLevel, nil
	}
	return logrus.ParseLevel(c.LogLevel)
}

// SeededRegisters returns the register numbers with a seed value, in order.
func (c *Config) SeededRegisters() []int {
	regs := make([]int, 0, len(c.Registers))
	for reg := range c.Registers {
		regs = append(regs, reg)
	}
	sort.Ints(regs)
	return regs
}

// NewDecoder creates a decoder with the configured options.
func (c *Config) NewDecoder() *insts.Decoder {
	var opts []insts.DecoderOption
	if c.PureKinds {
		opts = append(opts, insts.WithPureKinds())
	}
	return insts.NewDecoder(opts...)
}

// NewExecutor creates an executor that logs to logger with the configured
// condition policy.
func (c *Config) NewExecutor(logger *logrus.Logger) (*emu.Executor, error) {
	policy, err := c.Policy()
	if err != nil {
		return nil, err
	}

	return emu.NewExecutor(
		emu.WithLogger(logger),
		emu.WithCondPolicy(policy),
	), nil
}

// NewState creates the initial machine state: zeroed memory, seeded
// registers and, if configured, a data cache. The returned cache is nil
// when none is configured.
func (c *Config) NewState() (*emu.State, *cache.Cache, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}

	state := emu.NewState(c.MemorySize)
	for reg, v := range c.Registers {
		state.Regs.WriteReg(uint8(reg), v)
	}

	if c.Cache == nil {
		return state, nil, nil
	}

	dcache, err := cache.Attach(state, *c.Cache)
	if err != nil {
		return nil, nil, err
	}

	return state, dcache, nil
}

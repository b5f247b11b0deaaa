package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/armsim/cache"
	"github.com/sarchlab/armsim/config"
	"github.com/sarchlab/armsim/emu"
	"github.com/sarchlab/armsim/insts"
)

var _ = Describe("Config", func() {
	var tempDir string

	BeforeEach(func() {
		tempDir = GinkgoT().TempDir()
	})

	writeFile := func(name, content string) string {
		path := filepath.Join(tempDir, name)
		Expect(os.WriteFile(path, []byte(content), 0644)).To(Succeed())
		return path
	}

	Describe("DefaultConfig", func() {
		It("should return valid defaults", func() {
			c := config.DefaultConfig()

			Expect(c.MemorySize).To(Equal(1024))
			Expect(c.ConditionPolicy).To(Equal("legacy"))
			Expect(c.PureKinds).To(BeFalse())
			Expect(c.MaxInstructions).To(BeZero())
			Expect(c.Cache).To(BeNil())
			Expect(c.Validate()).To(Succeed())
		})

		It("should seed the sample program registers", func() {
			c := config.DefaultConfig()

			Expect(c.SeededRegisters()).To(Equal([]int{0, 1, 2, 3, 4, 5, 7, 8}))
			Expect(c.Registers).To(HaveKeyWithValue(0, uint32(0x10)))
			Expect(c.Registers).To(HaveKeyWithValue(4, uint32(0x0A)))
			Expect(c.Registers).To(HaveKeyWithValue(8, uint32(0x0F)))
		})
	})

	Describe("LoadConfig", func() {
		It("should overlay the file on the defaults", func() {
			path := writeFile("run.json", `{
				"memory_size": 2048,
				"registers": {"0": 1, "9": 99},
				"condition_policy": "full",
				"cache": {"size": 128, "associativity": 1, "block_size": 32}
			}`)

			c, err := config.LoadConfig(path)

			Expect(err).NotTo(HaveOccurred())
			Expect(c.MemorySize).To(Equal(2048))
			Expect(c.Registers).To(HaveKeyWithValue(0, uint32(1)))
			Expect(c.Registers).To(HaveKeyWithValue(9, uint32(99)))
			Expect(c.Registers).To(HaveKeyWithValue(1, uint32(0x20)))
			Expect(c.ConditionPolicy).To(Equal("full"))
			Expect(c.LogLevel).To(Equal("warning"))
			Expect(*c.Cache).To(Equal(cache.Config{Size: 128, Associativity: 1, BlockSize: 32}))
		})

		It("should fail on a missing file", func() {
			_, err := config.LoadConfig(filepath.Join(tempDir, "missing.json"))

			Expect(err).To(MatchError(os.ErrNotExist))
		})

		It("should fail on malformed JSON", func() {
			path := writeFile("bad.json", `{"memory_size": }`)

			_, err := config.LoadConfig(path)

			Expect(err).To(MatchError(ContainSubstring("failed to parse config")))
		})
	})

	Describe("SaveConfig", func() {
		It("should round-trip through a file", func() {
			c := config.DefaultConfig()
			c.MaxInstructions = 100
			c.PureKinds = true
			cacheConfig := cache.DefaultConfig()
			c.Cache = &cacheConfig

			path := filepath.Join(tempDir, "saved.json")
			Expect(c.SaveConfig(path)).To(Succeed())

			loaded, err := config.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(c))
		})
	})

	Describe("Validate", func() {
		DescribeTable("invalid fields",
			func(mutate func(*config.Config), substr string) {
				c := config.DefaultConfig()
				mutate(c)
				Expect(c.Validate()).To(MatchError(ContainSubstring(substr)))
			},
			Entry("tiny memory", func(c *config.Config) { c.MemorySize = 2 }, "memory_size"),
			Entry("register out of range", func(c *config.Config) { c.Registers[16] = 1 }, "R16"),
			Entry("negative register", func(c *config.Config) { c.Registers[-1] = 1 }, "R-1"),
			Entry("unknown policy", func(c *config.Config) { c.ConditionPolicy = "loose" }, "condition_policy"),
			Entry("unknown log level", func(c *config.Config) { c.LogLevel = "loud" }, "log_level"),
			Entry("bad cache", func(c *config.Config) {
				c.Cache = &cache.Config{Size: 256, Associativity: 2, BlockSize: 16}
				c.MemorySize = 1000
			}, "cache"),
		)

		It("should accept an empty log level", func() {
			c := config.DefaultConfig()
			c.LogLevel = ""

			Expect(c.Validate()).To(Succeed())
			Expect(c.Level()).To(Equal(logrus.WarnLevel))
		})
	})

	Describe("Clone", func() {
		It("should deep copy registers and cache", func() {
			c := config.DefaultConfig()
			cacheConfig := cache.DefaultConfig()
			c.Cache = &cacheConfig

			clone := c.Clone()
			clone.Registers[0] = 0xFF
			clone.Cache.Size = 512

			Expect(c.Registers[0]).To(Equal(uint32(0x10)))
			Expect(c.Cache.Size).To(Equal(256))
		})
	})

	Describe("constructors", func() {
		It("should build a seeded state", func() {
			state, dcache, err := config.DefaultConfig().NewState()

			Expect(err).NotTo(HaveOccurred())
			Expect(dcache).To(BeNil())
			Expect(state.Regs.ReadReg(0)).To(Equal(uint32(0x10)))
			Expect(state.Regs.ReadReg(6)).To(Equal(uint32(0)))
			Expect(state.Memory.Size()).To(Equal(1024))
			Expect(state.Port).To(BeNil())
		})

		It("should attach a configured cache", func() {
			c := config.DefaultConfig()
			cacheConfig := cache.DefaultConfig()
			c.Cache = &cacheConfig

			state, dcache, err := c.NewState()

			Expect(err).NotTo(HaveOccurred())
			Expect(dcache).NotTo(BeNil())
			Expect(state.DataPort()).To(BeIdenticalTo(dcache))
		})

		It("should refuse to build from an invalid config", func() {
			c := config.DefaultConfig()
			c.MemorySize = 0

			_, _, err := c.NewState()

			Expect(err).To(HaveOccurred())
		})

		It("should build an executor with the legacy policy by default", func() {
			exec, err := config.DefaultConfig().NewExecutor(logrus.New())

			Expect(err).NotTo(HaveOccurred())
			Expect(exec.CondPolicy()).To(Equal(emu.CondPolicyLegacy))
		})

		It("should build an executor with the configured policy", func() {
			c := config.DefaultConfig()
			c.ConditionPolicy = "full"

			exec, err := c.NewExecutor(logrus.New())

			Expect(err).NotTo(HaveOccurred())
			Expect(exec.CondPolicy()).To(Equal(emu.CondPolicyFull))
		})

		It("should build a renaming decoder by default", func() {
			d := config.DefaultConfig().NewDecoder()

			Expect(d.Decode(0x10400005).Kind).To(Equal(insts.KindSUBNE))
			Expect(d.Decode(0x00876008).Kind).To(Equal(insts.KindADDEQ))
		})

		It("should build a decoder with pure kinds", func() {
			c := config.DefaultConfig()
			c.PureKinds = true

			Expect(c.NewDecoder().Decode(0x10400005).Kind).To(Equal(insts.KindSUB))
		})
	})
})

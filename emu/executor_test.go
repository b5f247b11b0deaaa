package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/sarchlab/armsim/emu"
	"github.com/sarchlab/armsim/insts"
)

var _ = Describe("Executor", func() {
	var (
		decoder *insts.Decoder
		exec    *emu.Executor
		state   *emu.State
		hook    *test.Hook
	)

	run := func(word uint32) emu.StepResult {
		return exec.Execute(decoder.Decode(word), state)
	}

	BeforeEach(func() {
		logger := newTestLogger()
		hook = test.NewLocal(logger)

		decoder = insts.NewDecoder()
		exec = emu.NewExecutor(emu.WithLogger(logger))
		state = emu.NewState(emu.DefaultMemorySize)
	})

	It("should default to the legacy condition policy", func() {
		Expect(emu.NewExecutor().CondPolicy()).To(Equal(emu.CondPolicyLegacy))
		Expect(emu.NewExecutor().Logger()).NotTo(BeNil())
	})

	It("should execute MOVGT with Z set under the default policy", func() {
		state.Regs.CPSR.Z = true

		result := emu.NewExecutor().Execute(decoder.Decode(0xC3A01001), state) // MOVGT R1, #1

		Expect(result.Outcome).To(Equal(emu.OutcomeExecuted))
		Expect(state.Regs.ReadReg(1)).To(Equal(uint32(1)))
	})

	It("should rebind to a new state", func() {
		state.Regs.WriteReg(1, 0x20)
		state.Regs.WriteReg(2, 0x05)
		run(0xE0813002) // ADD R3, R1, R2

		other := emu.NewState(emu.DefaultMemorySize)
		other.Regs.WriteReg(1, 1)
		other.Regs.WriteReg(2, 2)
		exec.Execute(decoder.Decode(0xE0813002), other)

		Expect(state.Regs.ReadReg(3)).To(Equal(uint32(0x25)))
		Expect(other.Regs.ReadReg(3)).To(Equal(uint32(3)))

		other.Regs.CPSR.Z = true
		Expect(exec.Execute(decoder.Decode(0x10400005), other).Outcome).
			To(Equal(emu.OutcomeSkipped))
		Expect(run(0x10400005).Outcome).To(Equal(emu.OutcomeExecuted))
	})

	Describe("data processing", func() {
		It("should execute MOV R0, #16 without touching flags", func() {
			result := run(0xE3A00010)

			Expect(result.Outcome).To(Equal(emu.OutcomeExecuted))
			Expect(result.Err).NotTo(HaveOccurred())
			Expect(state.Regs.ReadReg(0)).To(Equal(uint32(16)))
			Expect(state.Regs.CPSR).To(Equal(emu.CPSR{}))
		})

		It("should execute ADD R3, R1, R2", func() {
			state.Regs.WriteReg(1, 0x20)
			state.Regs.WriteReg(2, 0x05)

			run(0xE0813002)

			Expect(state.Regs.ReadReg(3)).To(Equal(uint32(0x25)))
		})

		It("should set flags for ADDS", func() {
			state.Regs.WriteReg(1, 0x7FFFFFFF)
			state.Regs.WriteReg(2, 1)

			run(0xE0913002) // ADDS R3, R1, R2

			Expect(state.Regs.ReadReg(3)).To(Equal(uint32(0x80000000)))
			Expect(state.Regs.CPSR).To(Equal(emu.CPSR{N: true, V: true}))
		})

		It("should compare without writing Rd", func() {
			state.Regs.WriteReg(0, 3)
			state.Regs.WriteReg(5, 3)

			run(0xE1500005) // CMP R0, R5

			Expect(state.Regs.CPSR.Z).To(BeTrue())
			Expect(state.Regs.CPSR.C).To(BeTrue())
			Expect(state.Regs.ReadReg(0)).To(Equal(uint32(3)))
		})

		It("should execute MUL R5, R4, R1", func() {
			state.Regs.WriteReg(4, 0x0A)
			state.Regs.WriteReg(1, 0x20)

			run(0xE0050194)

			Expect(state.Regs.ReadReg(5)).To(Equal(uint32(0x140)))
		})

		It("should execute shift aliases through the barrel shifter", func() {
			state.Regs.WriteReg(0, 0x10)

			run(0xE1A01100) // LSL R1, R0, #2

			Expect(state.Regs.ReadReg(1)).To(Equal(uint32(0x40)))
		})

		It("should execute register-shifted shifts", func() {
			state.Regs.WriteReg(3, 0x80000000)
			state.Regs.WriteReg(4, 4)

			run(0xE1A02453) // ASR R2, R3, R4

			Expect(state.Regs.ReadReg(2)).To(Equal(uint32(0xF8000000)))
		})
	})

	Describe("conditions", func() {
		BeforeEach(func() {
			state.Regs.WriteReg(0, 0x10)
			state.Regs.WriteReg(5, 0x03)
		})

		It("should skip SUBNE when Z is set", func() {
			state.Regs.CPSR.Z = true
			before := state.Snapshot()

			result := run(0x10400005)

			Expect(result.Outcome).To(Equal(emu.OutcomeSkipped))
			Expect(result.Err).To(MatchError(emu.ErrConditionFailed))
			Expect(state.Snapshot()).To(Equal(before))
			Expect(hook.LastEntry().Message).To(Equal("instruction skipped due to condition"))
		})

		It("should execute SUBNE when Z is clear", func() {
			result := run(0x10400005)

			Expect(result.Outcome).To(Equal(emu.OutcomeExecuted))
			Expect(state.Regs.ReadReg(0)).To(Equal(uint32(0x0D)))
		})

		It("should execute pure kinds the same way", func() {
			pure := insts.NewDecoder(insts.WithPureKinds())
			inst := pure.Decode(0x10400005)
			Expect(inst.Kind).To(Equal(insts.KindSUB))

			exec.Execute(inst, state)

			Expect(state.Regs.ReadReg(0)).To(Equal(uint32(0x0D)))
		})

		It("should gate GT under the full policy only", func() {
			state.Regs.CPSR.Z = true

			Expect(run(0xC3A01001).Outcome).To(Equal(emu.OutcomeExecuted)) // MOVGT R1, #1
			Expect(state.Regs.ReadReg(1)).To(Equal(uint32(1)))

			state.Regs.WriteReg(1, 0)
			full := emu.NewExecutor(
				emu.WithLogger(newTestLogger()),
				emu.WithCondPolicy(emu.CondPolicyFull),
			)
			result := full.Execute(decoder.Decode(0xC3A01001), state)

			Expect(result.Outcome).To(Equal(emu.OutcomeSkipped))
			Expect(result.Err).To(MatchError(emu.ErrConditionFailed))
			Expect(state.Regs.ReadReg(1)).To(Equal(uint32(0)))
		})
	})

	Describe("load and store", func() {
		It("should round-trip a word through memory", func() {
			state.Regs.WriteReg(1, 0x20)
			state.Regs.WriteReg(2, 0x12345678)

			Expect(run(0xE5812000).Outcome).To(Equal(emu.OutcomeExecuted)) // STR R2, [R1]
			Expect(run(0xE5913000).Outcome).To(Equal(emu.OutcomeExecuted)) // LDR R3, [R1]

			Expect(state.Regs.ReadReg(3)).To(Equal(uint32(0x12345678)))
			b, _ := state.Memory.Read(0x20, 4)
			Expect(b).To(Equal([]byte{0x78, 0x56, 0x34, 0x12}))
		})

		It("should reject out of bounds loads", func() {
			state.Regs.WriteReg(0, 0x10)
			state.Regs.WriteReg(1, 0x99)

			result := run(0xE5901400) // LDR R1, [R0, #1024]

			Expect(result.Outcome).To(Equal(emu.OutcomeRejected))
			Expect(result.Err).To(MatchError(emu.ErrOutOfBounds))
			Expect(state.Regs.ReadReg(1)).To(Equal(uint32(0x99)))

			entry := hook.LastEntry()
			Expect(entry.Level).To(Equal(logrus.WarnLevel))
			Expect(entry.Message).To(Equal("memory access rejected"))
			Expect(entry.Data).To(HaveKeyWithValue("addr", uint64(0x410)))
		})

		It("should go through the configured data port", func() {
			port := &recordingPort{Memory: state.Memory}
			state.Port = port

			run(0xE5812000)

			Expect(port.writes).To(Equal(1))
		})
	})

	Describe("branches", func() {
		It("should report branches without changing state", func() {
			before := state.Snapshot()

			result := run(0xEB000010) // BL

			Expect(result.Outcome).To(Equal(emu.OutcomeBranch))
			Expect(result.Err).NotTo(HaveOccurred())
			Expect(state.Snapshot()).To(Equal(before))

			entry := hook.LastEntry()
			Expect(entry.Data).To(HaveKeyWithValue("offset", uint32(0x10)))
			Expect(entry.Data).To(HaveKeyWithValue("link", true))
		})
	})

	Describe("unknown instructions", func() {
		It("should report unknown kinds without changing state", func() {
			before := state.Snapshot()

			result := run(0xEF000000)

			Expect(result.Outcome).To(Equal(emu.OutcomeUnknown))
			Expect(result.Err).To(MatchError(emu.ErrUnknownInstruction))
			Expect(state.Snapshot()).To(Equal(before))
		})

		It("should report unknown data processing opcodes", func() {
			Expect(run(0xE2210001).Outcome).To(Equal(emu.OutcomeUnknown))
		})
	})

	It("should name outcomes", func() {
		Expect(emu.OutcomeRejected.String()).To(Equal("rejected"))
		Expect(emu.Outcome(9).String()).To(Equal("Outcome(9)"))
	})
})

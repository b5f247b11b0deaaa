package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/armsim/emu"
)

var _ = Describe("Memory", func() {
	var memory *emu.Memory

	BeforeEach(func() {
		memory = emu.NewMemory(64)
	})

	It("should start zeroed", func() {
		Expect(memory.Size()).To(Equal(64))
		Expect(memory.Bytes()).To(Equal(make([]byte, 64)))
	})

	It("should store words little-endian", func() {
		Expect(memory.Write32(8, 0x11223344)).To(Succeed())

		b, err := memory.Read(8, 4)
		Expect(err).NotTo(HaveOccurred())
		Expect(b).To(Equal([]byte{0x44, 0x33, 0x22, 0x11}))

		v, err := memory.Read32(8)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(uint32(0x11223344)))
	})

	It("should read and write bytes", func() {
		Expect(memory.Write8(63, 0xAB)).To(Succeed())

		v, err := memory.Read8(63)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(byte(0xAB)))
	})

	It("should reject accesses past the end", func() {
		Expect(memory.Write32(61, 1)).To(MatchError(emu.ErrOutOfBounds))
		_, err := memory.Read8(64)
		Expect(err).To(MatchError(emu.ErrOutOfBounds))
		Expect(memory.Write(60, []byte{1, 2, 3, 4, 5})).To(MatchError(emu.ErrOutOfBounds))
		Expect(memory.Bytes()).To(Equal(make([]byte, 64)))
	})

	It("should accept the last word", func() {
		Expect(memory.Write32(60, 0xFFFFFFFF)).To(Succeed())
	})

	It("should not wrap around near the top of the address space", func() {
		Expect(memory.Contains(0xFFFFFFFE, 4)).To(BeFalse())
		_, err := memory.Read32(0xFFFFFFFE)
		Expect(err).To(MatchError(emu.ErrOutOfBounds))
	})

	It("should hand out copies", func() {
		snapshot := memory.Bytes()
		snapshot[0] = 0xFF

		v, _ := memory.Read8(0)
		Expect(v).To(Equal(byte(0)))
	})
})

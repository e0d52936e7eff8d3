package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipesim/emu"
	"github.com/sarchlab/pipesim/insts"
)

var _ = Describe("Emulator", func() {
	var (
		regFile emu.RegFile
		memory  emu.Memory
		e       *emu.Emulator
	)

	load := func(src string) []*insts.Instruction {
		prog, err := insts.ParseAssembly(src)
		Expect(err).ToNot(HaveOccurred())
		return prog.Instructions
	}

	BeforeEach(func() {
		regFile = emu.NewRegFile()
		memory = emu.NewMemory()
		e = emu.NewEmulator(&regFile, &memory)
	})

	DescribeTable("ALU operations",
		func(op insts.Op, a, b, want uint32) {
			Expect(emu.Compute(op, a, b)).To(Equal(want))
		},
		Entry("ADD", insts.OpADD, uint32(2), uint32(3), uint32(5)),
		Entry("ADD wraps", insts.OpADD, uint32(0xFFFFFFFF), uint32(2), uint32(1)),
		Entry("SUB", insts.OpSUB, uint32(9), uint32(4), uint32(5)),
		Entry("SUB wraps", insts.OpSUB, uint32(0), uint32(1), uint32(0xFFFFFFFF)),
		Entry("AND", insts.OpAND, uint32(0b1100), uint32(0b1010), uint32(0b1000)),
		Entry("OR", insts.OpOR, uint32(0b1100), uint32(0b1010), uint32(0b1110)),
		Entry("non-ALU", insts.OpLW, uint32(1), uint32(1), uint32(0)),
	)

	It("should execute ALU instructions in order", func() {
		regFile.Write("R2", 10, 0)
		regFile.Write("R3", 5, 0)

		n := e.Run(load("ADD R1, R2, R3\nSUB R4, R1, R3\nOR R5, R4, R2"))

		Expect(n).To(Equal(uint64(3)))
		Expect(e.InstructionCount()).To(Equal(uint64(3)))
		Expect(regFile.Read("R1")).To(Equal(uint32(15)))
		Expect(regFile.Read("R4")).To(Equal(uint32(10)))
		Expect(regFile.Read("R5")).To(Equal(uint32(10)))
	})

	It("should store and load through base plus offset", func() {
		regFile.Write("R2", emu.DataBase, 0)
		regFile.Write("R3", 77, 0)

		e.Run(load("SW R3, 8(R2)\nLW R4, 8(R2)"))

		Expect(memory.Read(emu.DataBase + 8)).To(Equal(uint32(77)))
		Expect(regFile.Read("R4")).To(Equal(uint32(77)))
	})

	It("should support negative offsets", func() {
		regFile.Write("R2", emu.DataBase+8, 0)
		regFile.Write("R3", 5, 0)

		e.Run(load("SW R3, -8(R2)"))
		Expect(memory.Read(emu.DataBase)).To(Equal(uint32(5)))
	})

	It("should load zero from unmapped addresses", func() {
		regFile.Write("R4", 99, 0)
		e.Run(load("LW R4, 0(R0)"))
		Expect(regFile.Read("R4")).To(BeZero())
	})

	It("should let branches and jumps fall through", func() {
		regFile.Write("R2", 1, 0)
		e.Run(load("BEQ R0, R0, 8\nJ 0\nADD R1, R2, R2"))
		Expect(regFile.Read("R1")).To(Equal(uint32(2)))
	})

	It("should leave R0 at zero", func() {
		regFile.Write("R2", 3, 0)
		e.Run(load("ADD R0, R2, R2"))
		Expect(regFile.Read("R0")).To(BeZero())
	})
})

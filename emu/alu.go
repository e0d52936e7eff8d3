package emu

import "github.com/sarchlab/pipesim/insts"

// Compute applies an ALU opcode to two operands. 32-bit arithmetic wraps.
// Non-ALU opcodes yield 0.
func Compute(op insts.Op, a, b uint32) uint32 {
	switch op {
	case insts.OpADD:
		return a + b
	case insts.OpSUB:
		return a - b
	case insts.OpAND:
		return a & b
	case insts.OpOR:
		return a | b
	default:
		return 0
	}
}

// Address computes the effective address of a LW or SW: base + offset.
func Address(inst *insts.Instruction, regs *RegFile) uint32 {
	base := regs.Read(inst.Operand(2))
	return uint32(int64(base) + int64(inst.Offset()))
}

// Result computes the value an instruction writes to its destination
// register from the current register and memory contents.
func Result(inst *insts.Instruction, regs *RegFile, mem *Memory) uint32 {
	switch inst.Op.Class() {
	case insts.ClassALU:
		return Compute(inst.Op, regs.Read(inst.Operand(1)), regs.Read(inst.Operand(2)))
	case insts.ClassLoad:
		return mem.Read(Address(inst, regs))
	default:
		return 0
	}
}

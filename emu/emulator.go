package emu

import "github.com/sarchlab/pipesim/insts"

// Emulator executes instructions one at a time in program order with no
// pipeline. Branches and jumps fall through, the same as in the pipeline.
type Emulator struct {
	regFile *RegFile
	memory  *Memory

	instructionCount uint64
}

// NewEmulator creates an emulator operating on the given state.
func NewEmulator(regFile *RegFile, memory *Memory) *Emulator {
	return &Emulator{
		regFile: regFile,
		memory:  memory,
	}
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Execute runs a single instruction.
func (e *Emulator) Execute(inst *insts.Instruction) {
	e.instructionCount++
	stamp := e.instructionCount

	switch inst.Op.Class() {
	case insts.ClassALU, insts.ClassLoad:
		e.regFile.Write(inst.Dest(), Result(inst, e.regFile, e.memory), stamp)
	case insts.ClassStore:
		value := e.regFile.Read(inst.Operand(0))
		e.memory.Write(Address(inst, e.regFile), value, stamp)
	}
}

// Run executes every instruction of the program and returns the number of
// instructions executed.
func (e *Emulator) Run(program []*insts.Instruction) uint64 {
	for _, inst := range program {
		e.Execute(inst)
	}
	return e.instructionCount
}

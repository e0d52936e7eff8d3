package pipeline

import (
	"github.com/sarchlab/pipesim/emu"
	"github.com/sarchlab/pipesim/insts"
)

// SimulationState is everything the engine owns. Values handed out by the
// engine are deep copies.
type SimulationState struct {
	Cycle        uint64
	PC           uint32
	Instructions []*insts.Instruction
	Registers    emu.RegFile
	Memory       emu.Memory
	Slots        Slots
	Hazards      []Hazard

	Running bool
	Paused  bool

	Completed   uint64 // Instructions retired through WB
	StallCycles uint64 // Cycles EX held an instruction on a RAW hazard

	ForwardingEnabled       bool
	BranchPredictionEnabled bool
}

// Clone returns a deep copy. Slots in the copy point into the copied
// instruction list.
func (s *SimulationState) Clone() SimulationState {
	c := *s
	c.Memory = s.Memory.Clone()
	c.Hazards = append([]Hazard(nil), s.Hazards...)

	c.Instructions = make([]*insts.Instruction, len(s.Instructions))
	for i, inst := range s.Instructions {
		c.Instructions[i] = inst.Clone()
	}

	c.Slots = Slots{}
	for _, stage := range Stages {
		c.Slots.Set(stage, c.remap(s, s.Slots.At(stage)))
	}

	return c
}

// remap finds the copy of inst, an instruction of the original state.
func (s *SimulationState) remap(orig *SimulationState, inst *insts.Instruction) *insts.Instruction {
	if inst == nil {
		return nil
	}
	if inst.ID >= 0 && inst.ID < len(orig.Instructions) && orig.Instructions[inst.ID] == inst {
		return s.Instructions[inst.ID]
	}
	return inst.Clone()
}

// IsComplete returns true once every instruction has retired and the
// pipeline is empty.
func (s *SimulationState) IsComplete() bool {
	return s.Completed == uint64(len(s.Instructions)) && s.Slots.IsEmpty()
}

// reload installs a new program, keeping register and memory contents.
func (s *SimulationState) reload(instructions []*insts.Instruction) {
	s.Instructions = instructions
	s.PC = insts.BaseAddress
	s.Cycle = 0
	s.Completed = 0
	s.StallCycles = 0
	s.Hazards = nil
	s.Slots.Clear()
	s.Running = false
	s.Paused = false
}

// nextInstruction returns the instruction at PC, or nil if PC is past the end
// of the program.
func (s *SimulationState) nextInstruction() *insts.Instruction {
	if s.PC < insts.BaseAddress {
		return nil
	}
	idx := int((s.PC - insts.BaseAddress) / insts.InstructionSize)
	if idx >= len(s.Instructions) {
		return nil
	}
	return s.Instructions[idx]
}

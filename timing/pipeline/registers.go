// Package pipeline provides the 5-stage pipeline engine: the per-cycle state
// machine, its hazard detector and the simulation state it owns.
package pipeline

import "github.com/sarchlab/pipesim/insts"

// Slots holds the instruction occupying each pipeline stage. A nil slot is
// idle. An instruction occupies at most one slot.
type Slots struct {
	IF  *insts.Instruction
	ID  *insts.Instruction
	EX  *insts.Instruction
	MEM *insts.Instruction
	WB  *insts.Instruction
}

// Stages lists the stages in program flow order.
var Stages = [insts.NumStages]insts.Stage{
	insts.StageIF, insts.StageID, insts.StageEX, insts.StageMEM, insts.StageWB,
}

// slot returns the field backing stage, or nil for StageNone.
func (s *Slots) slot(stage insts.Stage) **insts.Instruction {
	switch stage {
	case insts.StageIF:
		return &s.IF
	case insts.StageID:
		return &s.ID
	case insts.StageEX:
		return &s.EX
	case insts.StageMEM:
		return &s.MEM
	case insts.StageWB:
		return &s.WB
	default:
		return nil
	}
}

// At returns the instruction in stage, or nil.
func (s *Slots) At(stage insts.Stage) *insts.Instruction {
	if p := s.slot(stage); p != nil {
		return *p
	}
	return nil
}

// Set places inst in stage.
func (s *Slots) Set(stage insts.Stage, inst *insts.Instruction) {
	if p := s.slot(stage); p != nil {
		*p = inst
	}
}

// Clear empties every slot.
func (s *Slots) Clear() {
	*s = Slots{}
}

// IsEmpty returns true if no stage is occupied.
func (s *Slots) IsEmpty() bool {
	return s.Occupancy() == 0
}

// Occupancy returns the number of occupied stages.
func (s *Slots) Occupancy() int {
	n := 0
	for _, stage := range Stages {
		if s.At(stage) != nil {
			n++
		}
	}
	return n
}

// advance moves the instruction in from into to if to is free. It returns
// false and leaves both slots alone if to is occupied.
func (s *Slots) advance(from, to insts.Stage) bool {
	inst := s.At(from)
	if inst == nil || s.At(to) != nil {
		return false
	}

	s.Set(to, inst)
	s.Set(from, nil)
	inst.Stage = to

	return true
}

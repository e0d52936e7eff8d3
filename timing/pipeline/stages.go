package pipeline

import (
	"github.com/sarchlab/pipesim/emu"
	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/log"
)

// modifiedWindow is how many cycles a register or memory word stays flagged
// as recently modified.
const modifiedWindow = 3

// stageOrder is the order in which stages are evaluated within a cycle.
// Later stages go first so that the slot they vacate can be filled by the
// previous stage in the same cycle.
var stageOrder = [insts.NumStages]struct {
	stage insts.Stage
	run   func(*SimulationState, *HazardDetector)
}{
	{insts.StageWB, (*SimulationState).writeback},
	{insts.StageMEM, (*SimulationState).memoryAccess},
	{insts.StageEX, (*SimulationState).execute},
	{insts.StageID, (*SimulationState).decode},
	{insts.StageIF, (*SimulationState).fetch},
}

// advance runs one clock cycle. A cycle that starts with an empty pipeline
// is the fill edge and does not advance the cycle counter. A cycle with
// nothing in flight and nothing left to fetch does nothing.
func (s *SimulationState) advance(h *HazardDetector) {
	if s.Slots.IsEmpty() {
		if s.nextInstruction() == nil {
			return
		}
	} else {
		s.Cycle++
	}

	for _, st := range stageOrder {
		st.run(s, h)
	}

	s.Registers.ClearStale(s.Cycle, modifiedWindow)
	s.Memory.ClearStale(s.Cycle, modifiedWindow)

	log.Trace(log.PipelineModule, "cycle",
		"cycle", s.Cycle,
		"pc", s.PC,
		"occupancy", s.Slots.Occupancy(),
		"completed", s.Completed)
}

// writeback writes the result of the WB instruction into its destination
// register and retires it.
func (s *SimulationState) writeback(_ *HazardDetector) {
	inst := s.Slots.WB
	if inst == nil {
		return
	}

	if dest := inst.Dest(); dest != "" {
		value := emu.Result(inst, &s.Registers, &s.Memory)
		s.Registers.Write(dest, value, s.Cycle)
	}

	inst.Completed = true
	inst.Stage = insts.StageNone
	s.Completed++
	s.Slots.WB = nil
}

// memoryAccess performs the store of a SW and moves the instruction to WB.
// A LW reads memory here but its value is only materialized in WB.
func (s *SimulationState) memoryAccess(_ *HazardDetector) {
	inst := s.Slots.MEM
	if inst == nil {
		return
	}

	if inst.Op == insts.OpSW {
		addr := emu.Address(inst, &s.Registers)
		s.Memory.Write(addr, s.Registers.Read(inst.Operand(0)), s.Cycle)
	}

	s.Slots.advance(insts.StageMEM, insts.StageWB)
}

// execute checks the EX instruction for data hazards against EX, MEM and WB
// and holds it in EX while an unresolved RAW hazard remains.
func (s *SimulationState) execute(h *HazardDetector) {
	inst := s.Slots.EX
	if inst == nil {
		return
	}

	hazards := h.DetectDataHazards(inst, &s.Slots, s.ForwardingEnabled, s.Cycle)
	s.Hazards = append(s.Hazards, hazards...)

	if h.NeedsStall(hazards) {
		s.StallCycles++
		log.Debug(log.PipelineModule, "stall", "cycle", s.Cycle, "inst", inst.Raw)
		return
	}

	s.Slots.advance(insts.StageEX, insts.StageMEM)
}

// decode logs control hazards of branches and jumps and moves the
// instruction to EX once EX is free.
func (s *SimulationState) decode(h *HazardDetector) {
	inst := s.Slots.ID
	if inst == nil {
		return
	}

	s.Hazards = append(s.Hazards,
		h.DetectControlHazards(inst, s.BranchPredictionEnabled, s.Cycle)...)

	s.Slots.advance(insts.StageID, insts.StageEX)
}

// fetch moves the IF instruction to ID and, if IF is then free, fetches the
// instruction at PC.
func (s *SimulationState) fetch(_ *HazardDetector) {
	if s.Slots.IF != nil {
		s.Slots.advance(insts.StageIF, insts.StageID)
	}

	if s.Slots.IF != nil {
		return
	}

	next := s.nextInstruction()
	if next == nil {
		return
	}

	next.Cycle = s.Cycle
	next.Stage = insts.StageIF
	s.Slots.IF = next
	s.PC += insts.InstructionSize
}

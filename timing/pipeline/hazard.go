package pipeline

import (
	"fmt"

	"github.com/sarchlab/pipesim/insts"
)

// HazardType is the category of a hazard.
type HazardType string

// Hazard categories.
const (
	HazardData       HazardType = "data"
	HazardControl    HazardType = "control"
	HazardStructural HazardType = "structural"
)

// HazardSubtype refines a HazardType.
type HazardSubtype string

// Hazard subtypes.
const (
	SubtypeRAW      HazardSubtype = "RAW"
	SubtypeWAR      HazardSubtype = "WAR"
	SubtypeWAW      HazardSubtype = "WAW"
	SubtypeBranch   HazardSubtype = "branch"
	SubtypeResource HazardSubtype = "resource"
)

// Hazard is one entry of the hazard log. A condition that persists over
// several cycles is logged again on every one of them.
type Hazard struct {
	Type         HazardType    `json:"type"`
	Subtype      HazardSubtype `json:"subtype"`
	Instruction1 string        `json:"instruction1"`
	Instruction2 string        `json:"instruction2"`
	Description  string        `json:"description"`
	Resolved     bool          `json:"resolved"`
	Cycle        uint64        `json:"cycle"`
}

// HazardDetector classifies data, control and structural hazards.
type HazardDetector struct{}

// NewHazardDetector creates a new hazard detector.
func NewHazardDetector() *HazardDetector {
	return &HazardDetector{}
}

// DetectDataHazards compares the registers inst reads and writes against the
// instructions in EX, MEM and WB. inst itself is skipped if it occupies one
// of those slots.
//
// RAW hazards are resolved only when forwarding is enabled and the producer
// is an ALU instruction. WAR hazards are always resolved (renaming). WAW
// hazards are never resolved.
func (h *HazardDetector) DetectDataHazards(
	inst *insts.Instruction,
	slots *Slots,
	forwardingEnabled bool,
	cycle uint64,
) []Hazard {
	var hazards []Hazard
	deps := inst.Dependencies()

	for _, other := range []*insts.Instruction{slots.EX, slots.MEM, slots.WB} {
		if other == nil || other == inst {
			continue
		}
		otherDeps := other.Dependencies()

		for _, read := range deps.Reads {
			for _, write := range otherDeps.Writes {
				if read != write {
					continue
				}
				hazards = append(hazards, Hazard{
					Type:         HazardData,
					Subtype:      SubtypeRAW,
					Instruction1: other.Raw,
					Instruction2: inst.Raw,
					Description:  fmt.Sprintf("%s reads %s written by %s", inst.Raw, read, other.Raw),
					Resolved:     h.canForward(other, inst, forwardingEnabled),
					Cycle:        cycle,
				})
			}
		}

		for _, write := range deps.Writes {
			for _, read := range otherDeps.Reads {
				if write != read {
					continue
				}
				hazards = append(hazards, Hazard{
					Type:         HazardData,
					Subtype:      SubtypeWAR,
					Instruction1: other.Raw,
					Instruction2: inst.Raw,
					Description:  fmt.Sprintf("%s writes %s read by %s", inst.Raw, write, other.Raw),
					Resolved:     true,
					Cycle:        cycle,
				})
			}
		}

		for _, write := range deps.Writes {
			for _, otherWrite := range otherDeps.Writes {
				if write != otherWrite {
					continue
				}
				hazards = append(hazards, Hazard{
					Type:         HazardData,
					Subtype:      SubtypeWAW,
					Instruction1: other.Raw,
					Instruction2: inst.Raw,
					Description:  fmt.Sprintf("Both instructions write to %s", write),
					Resolved:     false,
					Cycle:        cycle,
				})
			}
		}
	}

	return hazards
}

// DetectControlHazards returns one control hazard for a branch or jump,
// resolved when branch prediction is enabled. No flush is modeled.
func (h *HazardDetector) DetectControlHazards(
	inst *insts.Instruction,
	branchPredictionEnabled bool,
	cycle uint64,
) []Hazard {
	if !inst.Op.IsControl() {
		return nil
	}

	return []Hazard{{
		Type:         HazardControl,
		Subtype:      SubtypeBranch,
		Instruction1: inst.Raw,
		Description:  fmt.Sprintf("Branch instruction %s causes control hazard", inst.Raw),
		Resolved:     branchPredictionEnabled,
		Cycle:        cycle,
	}}
}

// DetectStructuralHazards reports a memory port conflict when MEM holds a
// load or store while IF fetches. The engine does not call it every cycle.
func (h *HazardDetector) DetectStructuralHazards(slots *Slots, cycle uint64) []Hazard {
	mem, fetch := slots.MEM, slots.IF
	if mem == nil || fetch == nil || !mem.Op.IsMemory() {
		return nil
	}

	return []Hazard{{
		Type:         HazardStructural,
		Subtype:      SubtypeResource,
		Instruction1: mem.Raw,
		Instruction2: fetch.Raw,
		Description:  "Memory access conflict between MEM and IF stages",
		Resolved:     false,
		Cycle:        cycle,
	}}
}

// NeedsStall returns true if any hazard is an unresolved RAW data hazard.
func (h *HazardDetector) NeedsStall(hazards []Hazard) bool {
	for _, hz := range hazards {
		if hz.Type == HazardData && hz.Subtype == SubtypeRAW && !hz.Resolved {
			return true
		}
	}
	return false
}

// StallCycles returns the load-use penalty inst would pay behind the
// instruction currently in EX: 1 if EX holds a load whose destination inst
// reads, 0 otherwise.
func (h *HazardDetector) StallCycles(inst *insts.Instruction, slots *Slots) int {
	producer := slots.EX
	if producer == nil || producer == inst || producer.Op != insts.OpLW {
		return 0
	}

	dest := producer.Dest()
	for _, read := range inst.Dependencies().Reads {
		if read == dest {
			return 1
		}
	}

	return 0
}

// canForward decides whether a RAW hazard between producer and consumer is
// covered by the bypass network. Loads cannot forward (load-use).
func (h *HazardDetector) canForward(producer, _ *insts.Instruction, forwardingEnabled bool) bool {
	if !forwardingEnabled {
		return false
	}
	return producer.Op.IsALU()
}

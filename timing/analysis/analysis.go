// Package analysis derives performance metrics from a simulation state.
// Every function here is pure: it reads a state and never changes it.
package analysis

import (
	"math"

	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

// Metrics summarizes a run.
type Metrics struct {
	// TotalCycles is the cycle counter of the state.
	TotalCycles uint64 `json:"totalCycles"`

	// InstructionsExecuted is the number of instructions retired through WB.
	InstructionsExecuted uint64 `json:"instructionsExecuted"`

	// CPI is TotalCycles / InstructionsExecuted, or 0 before the first
	// instruction retires.
	CPI float64 `json:"cpi"`

	// StallCycles is the sum of the three per-category counts below.
	StallCycles int `json:"stallCycles"`

	// Per-category counts of unresolved hazard log entries. The log gets a
	// new entry on every cycle a condition holds, so these count
	// cycle-hazard occurrences rather than distinct hazards.
	DataHazardStalls       int `json:"dataHazardStalls"`
	ControlHazardStalls    int `json:"controlHazardStalls"`
	StructuralHazardStalls int `json:"structuralHazardStalls"`

	// PipelineStalls is the number of cycles EX actually held an
	// instruction.
	PipelineStalls uint64 `json:"pipelineStalls"`

	// Speedup is the sequential cycle count (5 per instruction) over
	// TotalCycles.
	Speedup float64 `json:"speedup"`

	// Efficiency is the ideal pipelined cycle count (N+4) over TotalCycles,
	// in percent.
	Efficiency float64 `json:"efficiency"`
}

// CalculateMetrics computes the metrics of s.
func CalculateMetrics(s pipeline.SimulationState) Metrics {
	n := uint64(len(s.Instructions))

	m := Metrics{
		TotalCycles:          s.Cycle,
		InstructionsExecuted: s.Completed,
		PipelineStalls:       s.StallCycles,
	}

	if s.Completed > 0 {
		m.CPI = float64(s.Cycle) / float64(s.Completed)
	}

	m.DataHazardStalls = countUnresolved(s.Hazards, pipeline.HazardData)
	m.ControlHazardStalls = countUnresolved(s.Hazards, pipeline.HazardControl)
	m.StructuralHazardStalls = countUnresolved(s.Hazards, pipeline.HazardStructural)
	m.StallCycles = m.DataHazardStalls + m.ControlHazardStalls + m.StructuralHazardStalls

	cycles := float64(max(s.Cycle, 1))
	m.Speedup = 1
	if n > 0 {
		m.Speedup = float64(SequentialCycles(n)) / cycles
	}
	m.Efficiency = float64(IdealPipelinedCycles(n)) / cycles * 100

	return m
}

// Rounded returns m with CPI and Speedup rounded to two decimals and
// Efficiency to one.
func (m Metrics) Rounded() Metrics {
	m.CPI = round(m.CPI, 2)
	m.Speedup = round(m.Speedup, 2)
	m.Efficiency = round(m.Efficiency, 1)
	return m
}

func countUnresolved(hazards []pipeline.Hazard, t pipeline.HazardType) int {
	count := 0
	for _, h := range hazards {
		if h.Type == t && !h.Resolved {
			count++
		}
	}
	return count
}

// SequentialCycles is the cycle count of n instructions run one at a time
// through all five stages.
func SequentialCycles(n uint64) uint64 {
	return n * insts.NumStages
}

// IdealPipelinedCycles is the cycle count of n instructions on a pipeline
// that never stalls: one per instruction plus the fill.
func IdealPipelinedCycles(n uint64) uint64 {
	return n + insts.NumStages - 1
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

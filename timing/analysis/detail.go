package analysis

import "github.com/sarchlab/pipesim/timing/pipeline"

// Hazard breakdown keys.
const (
	BreakdownRAW        = "RAW"
	BreakdownWAR        = "WAR"
	BreakdownWAW        = "WAW"
	BreakdownBranch     = "Branch"
	BreakdownStructural = "Structural"
)

var breakdownKeys = map[pipeline.HazardSubtype]string{
	pipeline.SubtypeRAW:      BreakdownRAW,
	pipeline.SubtypeWAR:      BreakdownWAR,
	pipeline.SubtypeWAW:      BreakdownWAW,
	pipeline.SubtypeBranch:   BreakdownBranch,
	pipeline.SubtypeResource: BreakdownStructural,
}

// DetailedAnalysis buckets the hazard log and the program for reporting.
type DetailedAnalysis struct {
	// HazardBreakdown counts every log entry, resolved or not, by subtype.
	// All five keys are always present.
	HazardBreakdown map[string]int `json:"hazardBreakdown"`

	// InstructionTypes counts the program's instructions by format class
	// (R, I, J).
	InstructionTypes map[string]int `json:"instructionTypes"`

	// CycleEfficiency is retired instructions per cycle in percent,
	// rounded to one decimal.
	CycleEfficiency float64 `json:"cycleEfficiency"`
}

// Analyze computes the detailed analysis of s.
func Analyze(s pipeline.SimulationState) DetailedAnalysis {
	d := DetailedAnalysis{
		HazardBreakdown:  make(map[string]int, len(breakdownKeys)),
		InstructionTypes: make(map[string]int),
	}

	for _, key := range breakdownKeys {
		d.HazardBreakdown[key] = 0
	}
	for _, h := range s.Hazards {
		if key, ok := breakdownKeys[h.Subtype]; ok {
			d.HazardBreakdown[key]++
		}
	}

	for _, inst := range s.Instructions {
		d.InstructionTypes[inst.Format.String()]++
	}

	if len(s.Instructions) > 0 && s.Cycle > 0 {
		d.CycleEfficiency = round(float64(s.Completed)/float64(s.Cycle)*100, 1)
	}

	return d
}

// Comparison sets the actual cycle count against the sequential and ideal
// pipelined ones.
type Comparison struct {
	Sequential      uint64 `json:"sequential"`
	IdealPipelined  uint64 `json:"idealPipelined"`
	ActualPipelined uint64 `json:"actualPipelined"`

	// HazardOverhead is ActualPipelined - IdealPipelined, floored at 0.
	HazardOverhead uint64 `json:"hazardOverhead"`
}

// CompareExecution compares s against sequential and ideal execution of its
// program.
func CompareExecution(s pipeline.SimulationState) Comparison {
	n := uint64(len(s.Instructions))

	c := Comparison{
		Sequential:      SequentialCycles(n),
		IdealPipelined:  IdealPipelinedCycles(n),
		ActualPipelined: s.Cycle,
	}
	if c.ActualPipelined > c.IdealPipelined {
		c.HazardOverhead = c.ActualPipelined - c.IdealPipelined
	}

	return c
}

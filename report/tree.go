package report

import (
	"fmt"
	"sort"

	"github.com/xlab/treeprint"

	"github.com/sarchlab/pipesim/timing/analysis"
)

var breakdownOrder = []string{
	analysis.BreakdownRAW,
	analysis.BreakdownWAR,
	analysis.BreakdownWAW,
	analysis.BreakdownBranch,
	analysis.BreakdownStructural,
}

// Tree renders r as an indented text tree. With withLog set the full hazard
// log is listed as well.
func (r *Report) Tree(withLog bool) string {
	tree := treeprint.New()
	tree.SetValue(fmt.Sprintf("Pipeline run %s", r.Timestamp.Format("2006-01-02 15:04:05")))

	m := r.Metrics
	metrics := tree.AddBranch("Metrics")
	metrics.AddNode(fmt.Sprintf("cycles: %d", m.TotalCycles))
	metrics.AddNode(fmt.Sprintf("instructions: %d", m.InstructionsExecuted))
	metrics.AddNode(fmt.Sprintf("CPI: %.2f", m.CPI))
	metrics.AddNode(fmt.Sprintf("speedup: %.2fx", m.Speedup))
	metrics.AddNode(fmt.Sprintf("efficiency: %.1f%%", m.Efficiency))
	stalls := metrics.AddBranch(fmt.Sprintf("unresolved hazards: %d", m.StallCycles))
	stalls.AddNode(fmt.Sprintf("data: %d", m.DataHazardStalls))
	stalls.AddNode(fmt.Sprintf("control: %d", m.ControlHazardStalls))
	stalls.AddNode(fmt.Sprintf("structural: %d", m.StructuralHazardStalls))
	metrics.AddNode(fmt.Sprintf("stall cycles: %d", m.PipelineStalls))

	c := r.Comparison
	cmp := tree.AddBranch("Comparison")
	cmp.AddNode(fmt.Sprintf("sequential: %d", c.Sequential))
	cmp.AddNode(fmt.Sprintf("ideal pipelined: %d", c.IdealPipelined))
	cmp.AddNode(fmt.Sprintf("actual pipelined: %d", c.ActualPipelined))
	cmp.AddNode(fmt.Sprintf("hazard overhead: %d", c.HazardOverhead))

	hazards := tree.AddBranch("Hazards")
	for _, key := range breakdownOrder {
		hazards.AddNode(fmt.Sprintf("%s: %d", key, r.DetailedAnalysis.HazardBreakdown[key]))
	}

	formats := make([]string, 0, len(r.DetailedAnalysis.InstructionTypes))
	for f := range r.DetailedAnalysis.InstructionTypes {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	types := tree.AddBranch("Instruction types")
	for _, f := range formats {
		types.AddNode(fmt.Sprintf("%s-type: %d", f, r.DetailedAnalysis.InstructionTypes[f]))
	}

	s := r.Settings
	settings := tree.AddBranch("Settings")
	settings.AddNode(fmt.Sprintf("forwarding: %v", s.ForwardingEnabled))
	settings.AddNode(fmt.Sprintf("branch prediction: %v", s.BranchPredictionEnabled))

	if withLog && len(r.Hazards) > 0 {
		hlog := tree.AddBranch(fmt.Sprintf("Hazard log (%d)", len(r.Hazards)))
		for _, h := range r.Hazards {
			status := "unresolved"
			if h.Resolved {
				status = "resolved"
			}
			hlog.AddMetaNode(fmt.Sprintf("cycle %d", h.Cycle),
				fmt.Sprintf("%s %s: %s", h.Subtype, status, h.Description))
		}
	}

	return tree.String()
}

package analysis_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipesim/insts"
	"github.com/sarchlab/pipesim/timing/analysis"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

func program(n int) []*insts.Instruction {
	prog := make([]*insts.Instruction, n)
	for i := range prog {
		prog[i] = &insts.Instruction{ID: i, Op: insts.OpADD, Format: insts.FormatR}
	}
	return prog
}

func run(src string, forwarding bool) pipeline.SimulationState {
	p := pipeline.NewPipeline(pipeline.WithSeed(3), pipeline.WithForwarding(forwarding))
	Expect(p.LoadProgram(src)).To(BeTrue())
	return p.Run()
}

var _ = Describe("CalculateMetrics", func() {
	It("should compute the metrics of a hand-built state", func() {
		s := pipeline.SimulationState{
			Cycle:        10,
			Completed:    4,
			StallCycles:  2,
			Instructions: program(4),
			Hazards: []pipeline.Hazard{
				{Type: pipeline.HazardData, Subtype: pipeline.SubtypeRAW},
				{Type: pipeline.HazardData, Subtype: pipeline.SubtypeRAW},
				{Type: pipeline.HazardData, Subtype: pipeline.SubtypeRAW, Resolved: true},
				{Type: pipeline.HazardControl, Subtype: pipeline.SubtypeBranch},
				{Type: pipeline.HazardStructural, Subtype: pipeline.SubtypeResource},
			},
		}

		m := analysis.CalculateMetrics(s)

		Expect(m.TotalCycles).To(Equal(uint64(10)))
		Expect(m.InstructionsExecuted).To(Equal(uint64(4)))
		Expect(m.CPI).To(Equal(2.5))
		Expect(m.DataHazardStalls).To(Equal(2))
		Expect(m.ControlHazardStalls).To(Equal(1))
		Expect(m.StructuralHazardStalls).To(Equal(1))
		Expect(m.StallCycles).To(Equal(4))
		Expect(m.PipelineStalls).To(Equal(uint64(2)))
		Expect(m.Speedup).To(Equal(2.0))
		Expect(m.Efficiency).To(Equal(80.0))
	})

	It("should not divide by zero on an empty state", func() {
		m := analysis.CalculateMetrics(pipeline.SimulationState{})

		Expect(m.CPI).To(BeZero())
		Expect(m.Speedup).To(Equal(1.0))
		Expect(m.Efficiency).To(Equal(400.0))
	})

	It("should report zero CPI until an instruction retires", func() {
		s := pipeline.SimulationState{Cycle: 3, Instructions: program(2)}
		Expect(analysis.CalculateMetrics(s).CPI).To(BeZero())
	})

	It("should reach 100% efficiency on a hazard-free program", func() {
		s := run("ADD R1, R2, R3\nSUB R4, R5, R6\nAND R7, R8, R9", false)
		m := analysis.CalculateMetrics(s)

		Expect(m.TotalCycles).To(Equal(uint64(7)))
		Expect(m.StallCycles).To(BeZero())
		Expect(m.Efficiency).To(Equal(100.0))
		Expect(m.Rounded().CPI).To(Equal(2.33))
		Expect(m.Rounded().Speedup).To(Equal(2.14))
	})

	It("should count the load-use stall", func() {
		m := analysis.CalculateMetrics(run("LW R1, 0(R2)\nADD R3, R1, R4", true))

		Expect(m.DataHazardStalls).To(Equal(1))
		Expect(m.PipelineStalls).To(Equal(uint64(1)))
		Expect(m.TotalCycles).To(Equal(uint64(7)))
	})

	It("should count a persisting hazard once per cycle", func() {
		m := analysis.CalculateMetrics(run("LW R1, 0(R2)\nADD R3, R1, R4\nBEQ R3, R5, 8", true))

		Expect(m.ControlHazardStalls).To(Equal(2))
		Expect(m.PipelineStalls).To(Equal(uint64(1)))
	})

	It("should be deterministic", func() {
		src := "ADD R1, R2, R3\nLW R4, 0(R1)\nSUB R5, R4, R2"
		Expect(analysis.CalculateMetrics(run(src, true))).
			To(Equal(analysis.CalculateMetrics(run(src, true))))
	})
})

var _ = Describe("Rounded", func() {
	It("should round CPI and speedup to 2 places and efficiency to 1", func() {
		m := analysis.Metrics{CPI: 1.23456, Speedup: 3.14159, Efficiency: 87.654}.Rounded()

		Expect(m.CPI).To(Equal(1.23))
		Expect(m.Speedup).To(Equal(3.14))
		Expect(m.Efficiency).To(Equal(87.7))
	})
})

var _ = Describe("Analyze", func() {
	It("should always report all five hazard keys", func() {
		d := analysis.Analyze(pipeline.SimulationState{})

		Expect(d.HazardBreakdown).To(HaveLen(5))
		Expect(d.HazardBreakdown).To(HaveKeyWithValue(analysis.BreakdownRAW, 0))
		Expect(d.HazardBreakdown).To(HaveKeyWithValue(analysis.BreakdownStructural, 0))
		Expect(d.InstructionTypes).To(BeEmpty())
		Expect(d.CycleEfficiency).To(BeZero())
	})

	It("should bucket hazards by subtype regardless of resolution", func() {
		s := pipeline.SimulationState{
			Hazards: []pipeline.Hazard{
				{Subtype: pipeline.SubtypeRAW, Resolved: true},
				{Subtype: pipeline.SubtypeRAW},
				{Subtype: pipeline.SubtypeWAR, Resolved: true},
				{Subtype: pipeline.SubtypeWAW},
				{Subtype: pipeline.SubtypeBranch},
				{Subtype: pipeline.SubtypeResource},
			},
		}

		d := analysis.Analyze(s)
		Expect(d.HazardBreakdown).To(Equal(map[string]int{
			"RAW": 2, "WAR": 1, "WAW": 1, "Branch": 1, "Structural": 1,
		}))
	})

	It("should count instructions by format", func() {
		s := run("ADD R1, R2, R3\nLW R4, 0(R1)\nSW R4, 4(R1)\nBEQ R1, R2, 8\nJ 0", true)
		d := analysis.Analyze(s)

		Expect(d.InstructionTypes).To(Equal(map[string]int{"R": 1, "I": 3, "J": 1}))
		Expect(d.CycleEfficiency).To(BeNumerically(">", 0))
		Expect(d.CycleEfficiency).To(BeNumerically("<=", 100))
	})
})

var _ = Describe("CompareExecution", func() {
	It("should compare against sequential and ideal execution", func() {
		s := pipeline.SimulationState{Cycle: 12, Instructions: program(6)}
		c := analysis.CompareExecution(s)

		Expect(c).To(Equal(analysis.Comparison{
			Sequential:      30,
			IdealPipelined:  10,
			ActualPipelined: 12,
			HazardOverhead:  2,
		}))
	})

	It("should floor the overhead at zero", func() {
		s := pipeline.SimulationState{Cycle: 3, Instructions: program(6)}
		Expect(analysis.CompareExecution(s).HazardOverhead).To(BeZero())
	})

	It("should show no overhead for a hazard-free run", func() {
		c := analysis.CompareExecution(run("ADD R1, R2, R3\nOR R4, R5, R6", false))

		Expect(c.ActualPipelined).To(Equal(c.IdealPipelined))
		Expect(c.HazardOverhead).To(BeZero())
	})
})

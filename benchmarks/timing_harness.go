// Package benchmarks provides the sample programs and a harness that runs
// them through the pipeline and reports their timing.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/pipesim/emu"
	"github.com/sarchlab/pipesim/timing/analysis"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// SimulatedCycles is the total cycle count from the pipeline
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// InstructionsRetired is the number of completed instructions
	InstructionsRetired uint64 `json:"instructions_retired"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// StallCycles is the number of cycles EX held an instruction
	StallCycles uint64 `json:"stall_cycles"`

	// DataHazards is the number of unresolved data hazard log entries
	DataHazards int `json:"data_hazards"`

	// ControlHazards is the number of unresolved control hazard log entries
	ControlHazards int `json:"control_hazards"`

	// ForwardedHazards is the number of RAW hazards resolved by forwarding
	ForwardedHazards int `json:"forwarded_hazards"`

	// Speedup over sequential execution
	Speedup float64 `json:"speedup"`

	// Efficiency relative to an ideal pipeline, in percent
	Efficiency float64 `json:"efficiency"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Setup prepares the machine state (e.g., initialize registers, memory)
	Setup func(regFile *emu.RegFile, memory *emu.Memory)

	// Source is the assembly text of the program
	Source string
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// ForwardingEnabled lets ALU results bypass to dependent instructions
	ForwardingEnabled bool

	// BranchPredictionEnabled marks control hazards as resolved
	BranchPredictionEnabled bool

	// Seed for the initial register and memory contents
	Seed int64

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		ForwardingEnabled:       true,
		BranchPredictionEnabled: false,
		Seed:                    1,
		Output:                  os.Stdout,
		Verbose:                 false,
	}
}

// Harness runs timing benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() ([]BenchmarkResult, error) {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result, err := h.runBenchmark(bench)
		if err != nil {
			return results, fmt.Errorf("benchmark %s: %w", bench.Name, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// runBenchmark executes a single benchmark on a fresh pipeline.
func (h *Harness) runBenchmark(bench Benchmark) (BenchmarkResult, error) {
	pipe := pipeline.NewPipeline(
		pipeline.WithSeed(h.config.Seed),
		pipeline.WithForwarding(h.config.ForwardingEnabled),
		pipeline.WithBranchPrediction(h.config.BranchPredictionEnabled),
	)

	if bench.Setup != nil {
		s := pipe.State()
		bench.Setup(&s.Registers, &s.Memory)
		pipe.SetState(pipeline.StateUpdate{Registers: &s.Registers, Memory: &s.Memory})
	}

	if _, err := pipe.Load(bench.Source); err != nil {
		return BenchmarkResult{}, err
	}

	// Run simulation and measure time
	start := time.Now()
	final := pipe.Run()
	wallTime := time.Since(start)

	m := analysis.CalculateMetrics(final)
	result := BenchmarkResult{
		Name:                bench.Name,
		Description:         bench.Description,
		SimulatedCycles:     m.TotalCycles,
		InstructionsRetired: m.InstructionsExecuted,
		CPI:                 m.CPI,
		StallCycles:         m.PipelineStalls,
		DataHazards:         m.DataHazardStalls,
		ControlHazards:      m.ControlHazardStalls,
		Speedup:             m.Speedup,
		Efficiency:          m.Efficiency,
		WallTime:            wallTime,
	}

	for _, hz := range final.Hazards {
		if hz.Subtype == pipeline.SubtypeRAW && hz.Resolved {
			result.ForwardedHazards++
		}
	}

	if h.config.Verbose {
		for _, hz := range final.Hazards {
			_, _ = fmt.Fprintf(h.config.Output, "  [%s] cycle %d: %s\n", bench.Name, hz.Cycle, hz.Description)
		}
	}

	return result, nil
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== Pipeline Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintln(h.config.Output, "  --- Timing ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Simulated Cycles:     %d\n", r.SimulatedCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions Retired: %d\n", r.InstructionsRetired)
		_, _ = fmt.Fprintf(h.config.Output, "  CPI:                  %.3f\n", r.CPI)
		_, _ = fmt.Fprintf(h.config.Output, "  Stall Cycles:         %d\n", r.StallCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Data Hazards:         %d\n", r.DataHazards)
		_, _ = fmt.Fprintf(h.config.Output, "  Control Hazards:      %d\n", r.ControlHazards)
		_, _ = fmt.Fprintf(h.config.Output, "  Forwarded:            %d\n", r.ForwardedHazards)
		_, _ = fmt.Fprintf(h.config.Output, "  Speedup:              %.2fx\n", r.Speedup)
		_, _ = fmt.Fprintf(h.config.Output, "  Efficiency:           %.1f%%\n", r.Efficiency)
		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,instructions,cpi,stalls,data_hazards,control_hazards,forwarded,speedup,efficiency")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%.3f,%d,%d,%d,%d,%.2f,%.1f\n",
			r.Name,
			r.SimulatedCycles,
			r.InstructionsRetired,
			r.CPI,
			r.StallCycles,
			r.DataHazards,
			r.ControlHazards,
			r.ForwardedHazards,
			r.Speedup,
			r.Efficiency,
		)
	}
}

// PrintJSON outputs benchmark results as a JSON array.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	enc := json.NewEncoder(h.config.Output)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

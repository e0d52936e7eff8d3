package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/spf13/cobra"

	"github.com/sarchlab/pipesim/benchmarks"
)

type benchOptions struct {
	format           string
	names            []string
	forwarding       bool
	branchPrediction bool
	seed             int64
	verbose          bool
	cpuProfile       string
	memProfile       string
}

func newBenchCmd() *cobra.Command {
	o := &benchOptions{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run the built-in sample programs and report their timing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd)
		},
	}

	cmd.Flags().StringVar(&o.format, "format", "text", "Output format (text, csv, json)")
	cmd.Flags().StringSliceVar(&o.names, "only", nil, "Run only the named samples")
	cmd.Flags().BoolVar(&o.forwarding, "forwarding", true, "Enable data forwarding")
	cmd.Flags().BoolVar(&o.branchPrediction, "branch-prediction", false, "Enable branch prediction")
	cmd.Flags().Int64Var(&o.seed, "seed", 1, "Seed for the initial registers and memory")
	cmd.Flags().BoolVarP(&o.verbose, "verbose", "v", false, "Print per-benchmark progress")
	cmd.Flags().StringVar(&o.cpuProfile, "cpuprofile", "", "Write a CPU profile to this file")
	cmd.Flags().StringVar(&o.memProfile, "memprofile", "", "Write a heap profile to this file")

	return cmd
}

func (o *benchOptions) run(cmd *cobra.Command) error {
	switch o.format {
	case "text", "csv", "json":
	default:
		return fmt.Errorf("unknown format %q (want text, csv or json)", o.format)
	}

	selected, err := o.selected()
	if err != nil {
		return err
	}

	if o.cpuProfile != "" {
		f, err := os.Create(o.cpuProfile)
		if err != nil {
			return fmt.Errorf("failed to create CPU profile: %w", err)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("failed to start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	h := benchmarks.NewHarness(benchmarks.HarnessConfig{
		ForwardingEnabled:       o.forwarding,
		BranchPredictionEnabled: o.branchPrediction,
		Seed:                    o.seed,
		Output:                  cmd.OutOrStdout(),
		Verbose:                 o.verbose,
	})
	h.AddBenchmarks(selected)

	results, err := h.RunAll()
	if err != nil {
		return err
	}

	switch o.format {
	case "csv":
		h.PrintCSV(results)
	case "json":
		if err := h.PrintJSON(results); err != nil {
			return err
		}
	default:
		h.PrintResults(results)
	}

	if o.memProfile != "" {
		return writeHeapProfile(o.memProfile)
	}

	return nil
}

func (o *benchOptions) selected() ([]benchmarks.Benchmark, error) {
	if len(o.names) == 0 {
		return benchmarks.Samples(), nil
	}

	selected := make([]benchmarks.Benchmark, 0, len(o.names))
	for _, name := range o.names {
		b, ok := benchmarks.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown sample %q", name)
		}
		selected = append(selected, b)
	}

	return selected, nil
}

func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create memory profile: %w", err)
	}
	defer func() { _ = f.Close() }()

	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("failed to write memory profile: %w", err)
	}

	return nil
}

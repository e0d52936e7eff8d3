package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/pipesim/benchmarks"
	"github.com/sarchlab/pipesim/emu"
	"github.com/sarchlab/pipesim/loader"
	"github.com/sarchlab/pipesim/timing/config"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

// source is a program together with the machine state it expects.
type source struct {
	name  string
	prog  *loader.Program
	setup func(*emu.RegFile, *emu.Memory)
}

// engineFlags are the flags shared by every command that builds an engine.
type engineFlags struct {
	configPath       string
	sample           string
	forwarding       bool
	branchPrediction bool
	seed             int64
}

func (f *engineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to settings JSON file")
	cmd.Flags().StringVar(&f.sample, "sample", "", "Run a built-in sample program ("+strings.Join(sampleNames(), ", ")+")")
	cmd.Flags().BoolVar(&f.forwarding, "forwarding", true, "Enable data forwarding")
	cmd.Flags().BoolVar(&f.branchPrediction, "branch-prediction", false, "Enable branch prediction")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "Seed for the initial registers and memory (0 = time based)")
}

// settings loads the settings file, if any, and applies the flags the user
// set explicitly on top of it.
func (f *engineFlags) settings(cmd *cobra.Command) (*config.Settings, error) {
	settings := config.DefaultSettings()
	if f.configPath != "" {
		var err error
		settings, err = config.LoadConfig(f.configPath)
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("forwarding") {
		settings.ForwardingEnabled = f.forwarding
	}
	if cmd.Flags().Changed("branch-prediction") {
		settings.BranchPredictionEnabled = f.branchPrediction
	}
	if cmd.Flags().Changed("seed") {
		settings.Seed = f.seed
	}

	return settings, nil
}

// source resolves the program named by --sample or the first argument.
func (f *engineFlags) source(args []string) (*source, error) {
	switch {
	case f.sample != "" && len(args) > 0:
		return nil, errors.New("give either --sample or a program file, not both")
	case f.sample != "":
		b, ok := benchmarks.Lookup(f.sample)
		if !ok {
			return nil, fmt.Errorf("unknown sample %q (have %s)", f.sample, strings.Join(sampleNames(), ", "))
		}
		prog, err := loader.Parse(strings.NewReader(b.Source))
		if err != nil {
			return nil, err
		}
		return &source{name: b.Name, prog: prog, setup: b.Setup}, nil
	case len(args) > 0:
		prog, err := loader.Load(args[0])
		if err != nil {
			return nil, err
		}
		return &source{name: args[0], prog: prog}, nil
	default:
		return nil, errors.New("no program: give a program file or --sample")
	}
}

// install loads src into p and seeds the registers and memory it expects.
func install(p *pipeline.Pipeline, src *source) {
	p.LoadInstructions(src.prog.Instructions)

	if src.setup == nil && !src.prog.HasInit() {
		return
	}

	s := p.State()
	if src.setup != nil {
		src.setup(&s.Registers, &s.Memory)
	}
	src.prog.ApplyInit(&s.Registers, &s.Memory)
	p.SetState(pipeline.StateUpdate{Registers: &s.Registers, Memory: &s.Memory})
}

func sampleNames() []string {
	samples := benchmarks.Samples()
	names := make([]string, 0, len(samples))
	for _, b := range samples {
		names = append(names, b.Name)
	}
	sort.Strings(names)
	return names
}

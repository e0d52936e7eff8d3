package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/spf13/cobra"

	"github.com/sarchlab/pipesim/report"
	"github.com/sarchlab/pipesim/timing/config"
	"github.com/sarchlab/pipesim/timing/core"
	"github.com/sarchlab/pipesim/timing/driver"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

// virtualClock is the frequency of the simulated clock used when a run is
// not paced in real time.
const virtualClock = 1 * sim.GHz

type runOptions struct {
	engineFlags

	realtime   bool
	verbose    bool
	hazardLog  bool
	exportPath string
	chartPath  string
}

func newRunCmd() *cobra.Command {
	o := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [program.s]",
		Short: "Run a program to completion and print a report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := o.settings(cmd)
			if err != nil {
				return err
			}
			src, err := o.source(args)
			if err != nil {
				return err
			}

			if settings.StepMode {
				return runConsole(settings, src, cmd.InOrStdin(), cmd.OutOrStdout())
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return o.run(ctx, settings, src, cmd.OutOrStdout())
		},
	}

	o.register(cmd)
	cmd.Flags().BoolVar(&o.realtime, "realtime", false, "Pace the run with the configured speed instead of simulated time")
	cmd.Flags().BoolVarP(&o.verbose, "verbose", "v", false, "Print the pipeline after every cycle")
	cmd.Flags().BoolVar(&o.hazardLog, "hazards", false, "Include the full hazard log in the summary")
	cmd.Flags().StringVar(&o.exportPath, "export", "", "Write the report as JSON to this file")
	cmd.Flags().StringVar(&o.chartPath, "chart", "", "Write an HTML chart page to this file")

	return cmd
}

func (o *runOptions) run(ctx context.Context, settings *config.Settings, src *source, out io.Writer) error {
	pipe := pipeline.NewPipeline(pipeline.WithSettings(settings))
	install(pipe, src)

	var ticker driver.Ticker = driver.NewSimTicker(virtualClock)
	if o.realtime {
		ticker = driver.NewWallTicker(settings.StepInterval())
	}

	var runnerOpts []driver.RunnerOption
	if o.verbose {
		runnerOpts = append(runnerOpts, driver.WithOnStep(func(s pipeline.SimulationState) {
			printCycle(out, s)
		}))
	}

	runner := driver.NewRunner(core.NewCore(pipe), ticker, runnerOpts...)

	_, _ = fmt.Fprintf(out, "Program: %s (%d instructions)\n", src.name, len(src.prog.Instructions))
	for _, d := range src.prog.Diagnostics {
		_, _ = fmt.Fprintf(out, "  skipped %s\n", d)
	}

	if err := runner.Start(); err != nil {
		return err
	}
	if err := runner.Wait(ctx); err != nil {
		runner.Stop()
		return fmt.Errorf("run interrupted: %w", err)
	}

	rep := report.New(runner.State(), settings, time.Now())
	_, _ = fmt.Fprintln(out, rep.Tree(o.hazardLog))

	if o.exportPath != "" {
		if err := rep.Save(o.exportPath); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "Report written to %s\n", o.exportPath)
	}

	if o.chartPath != "" {
		if err := writeChart(rep, o.chartPath); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "Chart written to %s\n", o.chartPath)
	}

	return nil
}

func writeChart(rep *report.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}

	if err := rep.RenderChart(f); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

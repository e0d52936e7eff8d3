package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/sarchlab/pipesim/report"
	"github.com/sarchlab/pipesim/timing/config"
	"github.com/sarchlab/pipesim/timing/core"
	"github.com/sarchlab/pipesim/timing/driver"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

const consoleHelp = `Commands:
  step [n]                  advance n cycles (default 1)
  run                       run to completion
  pipeline                  show the five stages
  regs                      show the registers (* = recently written)
  mem                       show data memory (* = recently written)
  hazards                   show the hazard log
  metrics                   show the run summary
  set forwarding on|off     toggle forwarding
  set prediction on|off     toggle branch prediction
  reset                     reload the program on fresh state
  help                      show this text
  exit                      leave the console`

func newStepCmd() *cobra.Command {
	flags := &engineFlags{}

	cmd := &cobra.Command{
		Use:   "step [program.s]",
		Short: "Step through a program in an interactive console",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := flags.settings(cmd)
			if err != nil {
				return err
			}
			src, err := flags.source(args)
			if err != nil {
				return err
			}
			return runConsole(settings, src, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	flags.register(cmd)

	return cmd
}

// runConsole reads commands with line editing and history until exit or
// end of input.
func runConsole(settings *config.Settings, src *source, in io.Reader, out io.Writer) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "pipesim> ",
		HistoryFile: filepath.Join(os.TempDir(), "pipesim_history.txt"),
		Stdin:       io.NopCloser(in),
		Stdout:      out,
	})
	if err != nil {
		return fmt.Errorf("failed to start console: %w", err)
	}
	defer func() { _ = rl.Close() }()

	sess := newSession(settings, src, out)
	_, _ = fmt.Fprintf(out, "Loaded %s (%d instructions). Type 'help' for commands.\n",
		src.name, len(src.prog.Instructions))

	for {
		line, err := rl.Readline()
		if err != nil {
			return nil
		}
		if sess.exec(line) {
			return nil
		}
	}
}

// session is the state behind the console.
type session struct {
	settings *config.Settings
	src      *source
	out      io.Writer

	pipe   *pipeline.Pipeline
	core   *core.Core
	runner *driver.Runner
}

func newSession(settings *config.Settings, src *source, out io.Writer) *session {
	s := &session{
		settings: settings,
		src:      src,
		out:      out,
		pipe:     pipeline.NewPipeline(pipeline.WithSettings(settings)),
	}
	install(s.pipe, src)
	s.core = core.NewCore(s.pipe)
	s.runner = driver.NewRunner(s.core, driver.NewSimTicker(virtualClock))

	return s
}

// exec runs one console command and returns true if the console should
// close.
func (s *session) exec(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch strings.ToLower(fields[0]) {
	case "exit", "quit":
		return true
	case "help", "?":
		s.println(consoleHelp)
	case "step", "s":
		s.step(fields[1:])
	case "run", "r":
		s.runToEnd()
	case "pipeline", "p":
		printCycle(s.out, s.runner.State())
	case "regs":
		printRegisters(s.out, s.runner.State())
	case "mem":
		printMemory(s.out, s.runner.State())
	case "hazards":
		printHazards(s.out, s.runner.State())
	case "metrics":
		s.println(report.New(s.runner.State(), s.currentSettings(), time.Now()).Tree(false))
	case "set":
		s.set(fields[1:])
	case "reset":
		s.core.Reset()
		install(s.pipe, s.src)
		s.println("Reset.")
	default:
		s.printf("unknown command %q, type 'help'\n", fields[0])
	}

	return false
}

func (s *session) step(args []string) {
	n := 1
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			s.printf("bad step count %q\n", args[0])
			return
		}
		n = v
	}

	for i := 0; i < n; i++ {
		if s.pipe.IsComplete() {
			s.println("Program complete.")
			return
		}
		st, err := s.runner.Step()
		if err != nil {
			s.printf("step failed: %v\n", err)
			return
		}
		printCycle(s.out, st)
	}
}

func (s *session) runToEnd() {
	if err := s.runner.Start(); err != nil {
		s.printf("run failed: %v\n", err)
		return
	}
	if err := s.runner.Wait(context.Background()); err != nil {
		s.printf("run failed: %v\n", err)
		return
	}

	st := s.runner.State()
	s.printf("Program complete after %d cycles.\n", st.Cycle)
}

func (s *session) set(args []string) {
	if len(args) != 2 || (args[1] != "on" && args[1] != "off") {
		s.println("usage: set forwarding|prediction on|off")
		return
	}
	on := args[1] == "on"

	switch args[0] {
	case "forwarding":
		s.pipe.SetState(pipeline.StateUpdate{ForwardingEnabled: pipeline.Bool(on)})
	case "prediction":
		s.pipe.SetState(pipeline.StateUpdate{BranchPredictionEnabled: pipeline.Bool(on)})
	default:
		s.printf("unknown setting %q\n", args[0])
		return
	}
	s.printf("%s %s, effective next cycle.\n", args[0], args[1])
}

// currentSettings returns the configured settings with the live engine
// flags.
func (s *session) currentSettings() *config.Settings {
	st := s.runner.State()
	settings := s.settings.Clone()
	settings.ForwardingEnabled = st.ForwardingEnabled
	settings.BranchPredictionEnabled = st.BranchPredictionEnabled
	settings.StepMode = true
	return settings
}

func (s *session) println(a ...any) {
	_, _ = fmt.Fprintln(s.out, a...)
}

func (s *session) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.out, format, a...)
}

func printCycle(w io.Writer, s pipeline.SimulationState) {
	_, _ = fmt.Fprintf(w, "cycle %-4d pc=0x%08x", s.Cycle, s.PC)
	for _, stage := range pipeline.Stages {
		text := "-"
		if inst := s.Slots.At(stage); inst != nil {
			text = inst.Render()
		}
		_, _ = fmt.Fprintf(w, " | %s: %-18s", stage, text)
	}
	_, _ = fmt.Fprintf(w, " | done %d/%d\n", s.Completed, len(s.Instructions))
}

func printRegisters(w io.Writer, s pipeline.SimulationState) {
	for i, r := range s.Registers.Regs {
		mark := " "
		if r.Modified {
			mark = "*"
		}
		_, _ = fmt.Fprintf(w, "%4s%s %08x", r.Name, mark, r.Value)
		if i%4 == 3 {
			_, _ = fmt.Fprintln(w)
		} else {
			_, _ = fmt.Fprint(w, "   ")
		}
	}
}

func printMemory(w io.Writer, s pipeline.SimulationState) {
	for _, loc := range s.Memory.Locations {
		mark := " "
		if loc.Modified {
			mark = "*"
		}
		_, _ = fmt.Fprintf(w, "0x%08x%s %08x\n", loc.Address, mark, loc.Value)
	}
}

func printHazards(w io.Writer, s pipeline.SimulationState) {
	if len(s.Hazards) == 0 {
		_, _ = fmt.Fprintln(w, "No hazards.")
		return
	}
	detector := pipeline.NewHazardDetector()
	for _, h := range s.Hazards {
		status := "resolved"
		switch {
		case h.Resolved:
		case detector.NeedsStall([]pipeline.Hazard{h}):
			status = "stall"
		default:
			status = "unresolved"
		}
		_, _ = fmt.Fprintf(w, "cycle %-4d %-10s %-8s %-8s %s\n",
			h.Cycle, h.Type, h.Subtype, status, h.Description)
	}
}

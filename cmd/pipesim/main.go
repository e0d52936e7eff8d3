// Command pipesim runs assembly programs through a 5-stage pipeline model
// and reports the hazards and timing it observes.
//
// Usage:
//
//	pipesim run [flags] [program.s]
//	pipesim step [flags] [program.s]
//	pipesim validate program.s
//	pipesim diff a.json b.json
//	pipesim bench [flags]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/pipesim/log"
)

var (
	Version = "dev"
	Commit  = "none"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		logLevel     string
		debugModules string
	)

	rootCmd := &cobra.Command{
		Use:   "pipesim",
		Short: "Educational 5-stage pipeline simulator",
		Long: `pipesim steps a small RISC assembly program through IF, ID, EX, MEM and WB,
logs every data, control and structural hazard it sees, and reports CPI,
speedup and pipeline efficiency.`,
		Version:       fmt.Sprintf("%s (%s)", Version, Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := log.InitLogger(logLevel); err != nil {
				return err
			}
			log.EnableModules(debugModules)
			return nil
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&debugModules, "debug", "", "Comma separated modules to enable trace/debug records for (parser, pipeline, driver, report)")

	rootCmd.AddCommand(
		newRunCmd(),
		newStepCmd(),
		newValidateCmd(),
		newDiffCmd(),
		newBenchCmd(),
	)

	return rootCmd
}

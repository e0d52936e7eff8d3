package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/pipesim/loader"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate program.s",
		Short: "Check that every line of a program parses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := loader.Load(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, d := range prog.Diagnostics {
				_, _ = fmt.Fprintf(out, "%s: %s\n", args[0], d)
			}

			if len(prog.Diagnostics) > 0 {
				return fmt.Errorf("%s: %d invalid line(s)", args[0], len(prog.Diagnostics))
			}

			_, _ = fmt.Fprintf(out, "%s: %d instructions OK\n", args[0], len(prog.Instructions))
			return nil
		},
	}
}

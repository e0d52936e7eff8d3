package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/pipesim/report"
)

// errReportsDiffer is returned by diff when the reports are not equal so
// that the command exits non-zero.
var errReportsDiffer = errors.New("reports differ")

func newDiffCmd() *cobra.Command {
	var color bool

	cmd := &cobra.Command{
		Use:   "diff a.json b.json",
		Short: "Compare two exported reports, ignoring timestamps",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := report.Load(args[0])
			if err != nil {
				return err
			}
			b, err := report.Load(args[1])
			if err != nil {
				return err
			}

			text, modified, err := report.Diff(a, b, color)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !modified {
				_, _ = fmt.Fprintln(out, "Reports are identical.")
				return nil
			}

			_, _ = fmt.Fprint(out, text)
			return errReportsDiffer
		},
	}

	cmd.Flags().BoolVar(&color, "color", false, "Color the diff output")

	return cmd
}

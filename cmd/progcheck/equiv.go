package main

import (
	"fmt"

	"github.com/spf13/cobra"

	perrors "progcheck/internal/errors"
	"progcheck/internal/verify"
)

func newEquivCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "equiv FIRST SECOND",
		Short: "Check that two programs compute the same outputs for all inputs",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			checker := cfg.NewChecker()
			out := cmd.OutOrStdout()

			sources := make([]string, len(args))
			for i, path := range args {
				if sources[i], err = readSource(path); err != nil {
					return err
				}
				// Report rejected input against the file it came from.
				if _, err := checker.Analyze(sources[i]); err != nil {
					fmt.Fprint(out, perrors.NewErrorReporter(path, sources[i]).FormatError(perrors.FromError(err)))
					return errChecksFailed
				}
			}

			report, err := checker.Equivalence(cmd.Context(), sources[0], sources[1])
			if err != nil {
				return err
			}

			reporter := perrors.NewErrorReporter(args[0]+" and "+args[1], "")
			for _, diag := range perrors.FromReport(report) {
				fmt.Fprint(out, reporter.FormatError(diag))
			}
			fmt.Fprintf(out, "%s, %s: %s\n", args[0], args[1], colorStatus(report.Status))
			if report.Status == verify.NotEquivalent {
				return errChecksFailed
			}
			return nil
		},
	}
}


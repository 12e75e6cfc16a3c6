package main

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/alecthomas/participle/v2"
	"github.com/spf13/cobra"

	"progcheck/grammar"
	"progcheck/internal/smt"
)

func newSolveCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "solve SCRIPT",
		Short: "Run the configured solver on a constraint script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			source, err := readSource(args[0])
			if err != nil {
				return err
			}
			script, err := smt.ParseScript(args[0], source)
			var syntaxErr participle.Error
			if errors.As(err, &syntaxErr) {
				grammar.ReportParseError(cmd.OutOrStdout(), source, syntaxErr)
				return errChecksFailed
			}
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if cfg.Solver.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.Solver.Timeout)
				defer cancel()
			}
			result, err := cfg.NewSolver().Solve(ctx, script)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, result.Verdict)
			if result.Reason != "" {
				fmt.Fprintf(out, "  reason: %s\n", result.Reason)
			}
			for _, name := range slices.Sorted(maps.Keys(result.Model)) {
				fmt.Fprintf(out, "  %s = %d\n", name, result.Model[name])
			}
			return nil
		},
	}
}

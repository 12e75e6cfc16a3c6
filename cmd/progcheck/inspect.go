package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"progcheck/internal/ir"
	"progcheck/internal/smt"
	"progcheck/internal/verify"
)

func newSSACommand(opts *globalOptions) *cobra.Command {
	var optimize bool

	cmd := &cobra.Command{
		Use:   "ssa FILE",
		Short: "Print the SSA form of a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			analysis, err := analyzeFile(opts, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !optimize {
				fmt.Fprint(out, ir.Print(analysis.SSA))
				return nil
			}
			optimized, stats := ir.OptimizeProgram(analysis.SSA)
			fmt.Fprint(out, ir.Print(optimized))
			fmt.Fprintf(out, "\n%d propagated, %d folded, %d suppressed, %d removed\n",
				stats.Propagated, stats.Folded, stats.Suppressed, stats.Removed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&optimize, "optimize", false, "Run constant propagation and dead code elimination first")
	return cmd
}

func newCFGCommand(opts *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "cfg FILE",
		Short: "Print the control flow graph of a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "dot" {
				return fmt.Errorf("unknown format %q, want json or dot", format)
			}
			analysis, err := analyzeFile(opts, args[0])
			if err != nil {
				return err
			}
			if format == "dot" {
				return analysis.CFG.WriteDot(cmd.OutOrStdout())
			}
			d, err := json.MarshalIndent(analysis.CFG, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(d))
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "dot", "Output format: json or dot")
	return cmd
}

func newSMTCommand(opts *globalOptions) *cobra.Command {
	var other string

	cmd := &cobra.Command{
		Use:   "smt FILE",
		Short: "Print the constraint script sent to the solver",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			analysis, err := analyzeFile(opts, args[0])
			if err != nil {
				return err
			}

			var script *smt.Script
			if other == "" {
				script, err = smt.Encode(analysis.Checked())
			} else {
				var second *verify.Analysis
				if second, err = analyzeFile(opts, other); err != nil {
					return err
				}
				script, err = smt.EncodeEquivalence(analysis.SSA.Instructions, second.SSA.Instructions)
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), script.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&other, "equiv", "", "Encode equivalence with this second program instead")
	return cmd
}

// analyzeFile runs the computational stages on the program at path.
func analyzeFile(opts *globalOptions, path string) (*verify.Analysis, error) {
	cfg, err := opts.load()
	if err != nil {
		return nil, err
	}
	source, err := readSource(path)
	if err != nil {
		return nil, err
	}
	analysis, err := cfg.NewChecker().Analyze(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return analysis, nil
}

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"progcheck/internal/config"
)

// errChecksFailed is returned once a command has already reported the
// failures it found; main exits with status 1 without printing it again.
var errChecksFailed = errors.New("checks failed")

type globalOptions struct {
	configPath string
	timeout    time.Duration
	solverKind string
	verbose    int
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "progcheck",
		Short:         "progcheck - SSA analysis and assertion verification for a small imperative language",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Configure(opts.verbose, nil)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.FileName, "Path to the configuration file")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Timeout for each solver call (overrides solver.timeout)")
	flags.StringVar(&opts.solverKind, "solver", "", "Solver to use: bounded or process (overrides solver.kind)")
	flags.CountVarP(&opts.verbose, "verbose", "v", "Increase log verbosity (repeat for debug output)")

	rootCmd.AddCommand(
		newVerifyCommand(opts),
		newEquivCommand(opts),
		newSSACommand(opts),
		newCFGCommand(opts),
		newSMTCommand(opts),
		newSolveCommand(opts),
		newWatchCommand(opts),
		newInitCommand(opts),
		newReplCommand(opts),
	)
	return rootCmd
}

// load reads the configuration file and applies the global flag overrides.
func (o *globalOptions) load() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}
	if o.timeout > 0 {
		cfg.Solver.Timeout = o.timeout
	}
	if o.solverKind != "" {
		cfg.Solver.Kind = o.solverKind
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func readSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

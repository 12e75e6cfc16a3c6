package main

import (
	"fmt"
	"os/user"

	"github.com/spf13/cobra"

	"progcheck/repl"
)

func newReplCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Build a program line by line and inspect it interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			name := "there"
			if currentUser, err := user.Current(); err == nil {
				name = currentUser.Username
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome to the progcheck REPL, %s! Type :help for commands.\n", name)
			return repl.Start(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), cfg.NewChecker())
		},
	}
}

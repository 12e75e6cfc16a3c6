// SPDX-License-Identifier: GPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"os/user"

	"progcheck/internal/config"
	"progcheck/repl"
)

func main() {
	currentUser, err := user.Current()
	if err != nil {
		fmt.Printf("Error getting current user: %v\n", err)
		return
	}

	cfg, err := config.Load(config.FileName)
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Welcome to the progcheck REPL, %s! Type :help for commands.\n", currentUser.Username)
	if err := repl.Start(context.Background(), os.Stdin, os.Stdout, cfg.NewChecker()); err != nil {
		fmt.Printf("Error reading input: %v\n", err)
		os.Exit(1)
	}
}

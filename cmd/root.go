// Copyright (c) 2025 Cardline
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the Cardline CLI.
// It implements subcommands for Google sign-in, session inspection and the
// card, transaction and recommendation views using the Cobra framework,
// with a terminal UI built on pterm spinners and tables.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	showVersion bool
)

// rootCmd represents the base command when called without any subcommands.
// It serves as the entry point for the Cardline CLI.
var rootCmd = &cobra.Command{
	Use:           "cardline",
	Short:         "Cardline CLI for cards, transactions and recommendations",
	Long:          `Cardline is a command-line companion for the Cardline service. Sign in with Google, then browse your cards, recent transactions and personalized card recommendations from the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("cardline %s\n", Version)
			return nil
		}
		// If no flag is set, show help
		return cmd.Help()
	},
}

// Execute runs the CLI application.
// It executes the root command and handles any errors that occur during execution.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")
}

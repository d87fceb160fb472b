package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for xorcrack.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "xorcrack",
		Short: "Repeating-key XOR cryptanalysis tool",
		Long: `xorcrack analyzes data encrypted with a repeating-key XOR cipher.

It estimates the most probable key lengths, guesses keys from the most
frequent plaintext character, decodes the input with every candidate key and
scores the results against a target charset.

Analyses are recorded in a local history database (see 'xorcrack history').`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

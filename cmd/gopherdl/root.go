// Package main provides the entry point for the gopherdl CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for gopherdl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gopherdl",
		Short: "Recursive downloader for the Gopher protocol",
		Long: `gopherdl downloads content from Gopher servers into a local mirror tree.

A single resource is fetched by default. With --recursive, menus are
parsed and followed breadth-first so a whole server (or a subtree of it)
is mirrored, one directory per host, menus stored as "gophermap" files.

Every run is journaled in a local database; use "gopherdl history" to
inspect past runs.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewGetCmd())
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

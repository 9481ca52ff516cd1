package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nao1215/gopherdl/internal/config"
	"github.com/nao1215/gopherdl/internal/database"
	"github.com/nao1215/gopherdl/internal/report"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
// This command inspects mirror runs recorded in the journal database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [host]",
		Short: "Show mirror runs recorded in the journal database",
		Long: `History inspects the journal of past mirror runs.

Every "gopherdl get" records its report in a local database. This command
shows the latest report for a host, lists a host's run history, or prints
one stored report in full.

Examples:
  # Show the latest stored report for a host
  gopherdl history gopher.example.org

  # List every host with recorded runs
  gopherdl history --list-hosts

  # List the last 10 runs for a host
  gopherdl history --limit 10 gopher.example.org

  # Print one stored report as JSON
  gopherdl history --run-id 5 gopher.example.org`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list-hosts", "L", false,
		"List all hosts with recorded mirror runs")
	cmd.Flags().IntP("limit", "l", 0,
		"List the host's run history, newest first (0 lists everything)")

	// Single-run flags
	cmd.Flags().Int64P("run-id", "i", 0,
		"Print the stored report with this ID as JSON (use --limit to see available IDs)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	// Handle --list-hosts flag first (requires database but no host)
	listHosts, err := cmd.Flags().GetBool("list-hosts")
	if err != nil {
		return err
	}

	runID, err := cmd.Flags().GetInt64("run-id")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database
	var host string
	if !listHosts && runID <= 0 {
		if len(args) == 0 {
			return errors.New("host is required (use --list-hosts to see recorded hosts)")
		}
		host = args[0]
	} else if len(args) > 0 {
		host = args[0]
	}

	// The journal lives in the XDG data directory. History never creates
	// it: no database simply means nothing has been mirrored yet.
	db, err := database.Open(config.XDGDataDir(), database.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no mirror history yet (run 'gopherdl get' first): %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if listHosts {
		return listMirroredHosts(ctx, db)
	}

	if runID > 0 {
		return printRunByID(ctx, db, runID)
	}

	if cmd.Flags().Changed("limit") {
		limit, err := cmd.Flags().GetInt("limit")
		if err != nil {
			return err
		}
		return listRunHistory(ctx, db, host, limit)
	}

	return printLatestReport(ctx, db, host)
}

// listMirroredHosts lists all hosts that have mirror runs in the database.
func listMirroredHosts(ctx context.Context, db *database.MirrorDB) error {
	hosts, err := db.ListMirroredHosts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list hosts: %w", err)
	}

	if len(hosts) == 0 {
		fmt.Println("No mirrored hosts found in the journal.")
		fmt.Println("\nUse 'gopherdl get <address>' to mirror a gopher server.")
		return nil
	}

	fmt.Printf("Mirrored hosts (%d):\n\n", len(hosts))
	for _, host := range hosts {
		fmt.Printf("  %s\n", host)
	}
	fmt.Println("\nUse 'gopherdl history <host>' to see the latest report for a host.")

	return nil
}

// listRunHistory lists recorded mirror runs for a host, newest first.
func listRunHistory(ctx context.Context, db *database.MirrorDB, host string, limit int) error {
	runs, err := db.GetRunHistory(ctx, host, limit)
	if err != nil {
		return fmt.Errorf("failed to get run history: %w", err)
	}

	if len(runs) == 0 {
		fmt.Printf("No mirror history found for %s\n", host)
		fmt.Println("\nUse 'gopherdl get' to mirror this host.")
		return nil
	}

	fmt.Printf("Mirror history for %s (%d runs):\n\n", host, len(runs))
	fmt.Printf("  %-6s  %-20s  %-9s  %-8s  %-8s  %-8s\n",
		"ID", "Date", "Resources", "Written", "Skipped", "Failed")
	fmt.Println("  " + strings.Repeat("-", 70))

	for _, meta := range runs {
		fmt.Printf("  %-6d  %-20s  %-9d  %-8d  %-8d  %-8d\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			meta.ResourceCount,
			meta.WrittenCount,
			meta.SkippedCount,
			meta.FailedCount,
		)
	}

	fmt.Println("\nUse 'gopherdl history --run-id <id>' to print a stored report in full.")

	return nil
}

// printRunByID prints one stored mirror report as JSON.
func printRunByID(ctx context.Context, db *database.MirrorDB, runID int64) error {
	stored, err := db.GetMirrorReportByID(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to load run %d: %w", runID, err)
	}
	if stored == nil {
		return fmt.Errorf("no mirror run with id %d (use --limit to list runs)", runID)
	}

	writer := report.NewJSONWriter(os.Stdout, report.WithPrettyPrint())
	_, err = writer.Write(stored)
	return err
}

// printLatestReport prints the most recent stored report for a host.
func printLatestReport(ctx context.Context, db *database.MirrorDB, host string) error {
	stored, err := db.GetLatestMirrorReport(ctx, host)
	if err != nil {
		return fmt.Errorf("failed to load latest report: %w", err)
	}
	if stored == nil {
		fmt.Printf("No mirror history found for %s\n", host)
		fmt.Println("\nUse 'gopherdl get' to mirror this host.")
		return nil
	}

	writer := report.NewSimpleWriter(os.Stdout, report.WithVerbose(true))
	_, err = writer.Write(stored)
	return err
}

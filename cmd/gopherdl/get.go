package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nao1215/gopherdl/internal/config"
	"github.com/nao1215/gopherdl/internal/database"
	"github.com/nao1215/gopherdl/internal/gopher"
	"github.com/nao1215/gopherdl/internal/log"
	"github.com/nao1215/gopherdl/internal/mirror"
	"github.com/nao1215/gopherdl/internal/model"
	"github.com/nao1215/gopherdl/internal/report"
	"github.com/spf13/cobra"
)

// NewGetCmd creates the get command.
func NewGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [address]...",
		Short: "Download gopher resources into a local mirror tree",
		Long: `Get downloads gopher resources into a local mirror tree.

By default only the named resource is fetched. With --recursive, menus
are parsed and followed breadth-first, and every in-scope resource is
persisted under the output directory: one subdirectory per host, menus
stored as "gophermap" files so the mirror stays browsable.

Examples:
  # Download a single text file
  gopherdl get gopher://gopher.example.org/docs/readme.txt

  # Mirror a whole server
  gopherdl get -r gopher.example.org

  # Mirror two menu levels deep with a politeness delay
  gopherdl get -r -l 2 -w 500ms gopher.example.org

  # Keep only text files, re-fetching everything
  gopherdl get -r -c -A ".*\.txt" gopher.example.org

  # Mirror several servers concurrently through a SOCKS5 proxy
  gopherdl get -r -b 4 --socks5 127.0.0.1:9050 host-a.org host-b.org

  # Emit the report as JSON to a file
  gopherdl get -r -j -o report.json gopher.example.org

Configuration file (.gopherdl) example:
  defaults:
    delay: 500ms
  hosts:
    gopher.example.org:
      maxDepth: 3
      reject: ".*\\.iso"`,
		Args: cobra.ArbitraryArgs,
		RunE: runGetCmd,
	}

	// Traversal flags
	cmd.Flags().BoolP("recursive", "r", false,
		"Follow menu links and mirror the whole reachable tree")
	cmd.Flags().IntP("max-depth", "l", config.DefaultMaxDepth,
		"Maximum number of menu expansions after the root (negative: unbounded)")
	cmd.Flags().BoolP("span-hosts", "s", false,
		"Follow menu links onto other hosts")
	cmd.Flags().BoolP("ascend-parents", "p", false,
		"Follow menu links outside the root selector's subtree")

	// Download behavior flags
	cmd.Flags().DurationP("delay", "w", 0,
		"Politeness delay between fetches (e.g. 500ms)")
	cmd.Flags().BoolP("clobber", "c", false,
		"Overwrite files that already exist in the mirror tree")
	cmd.Flags().BoolP("only-menus", "m", false,
		"Download menus only, skipping files")
	cmd.Flags().BoolP("no-menus", "n", false,
		"Download files only, skipping menus")
	cmd.Flags().StringP("accept", "A", "",
		"Keep only resources whose URL fully matches this regular expression")
	cmd.Flags().StringP("reject", "R", "",
		"Drop resources whose URL fully matches this regular expression")
	cmd.Flags().BoolP("patterns-on-menus", "M", false,
		"Apply accept/reject patterns to menus as well as files")
	cmd.Flags().StringP("output-dir", "O", config.DefaultOutputDir,
		"Root directory of the mirror tree")

	// Network flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connect and per-read timeout for each fetch")
	cmd.Flags().Int("retries", config.DefaultMaxRetries,
		"How many transient fetch failures are retried per resource")
	cmd.Flags().String("socks5", "",
		"Route fetches through the SOCKS5 proxy at this address (e.g. 127.0.0.1:9050)")
	cmd.Flags().IntP("concurrency", "b", config.DefaultConcurrency,
		"Number of targets mirrored concurrently")

	// Configuration file
	cmd.Flags().String("config", "",
		"Configuration file path (default: .gopherdl in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().Bool("markdown", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to this file path (creates directories if needed)")

	return cmd
}

// runGetCmd executes the get command.
func runGetCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging. Menu lines and selectors on hostile
	// servers can be arbitrarily long, so log values are trimmed.
	logger := log.NewTrimLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runMirror(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	cfg.Recursive, err = cmd.Flags().GetBool("recursive")
	if err != nil {
		return nil, err
	}

	cfg.MaxDepth, err = cmd.Flags().GetInt("max-depth")
	if err != nil {
		return nil, err
	}

	cfg.SpanHosts, err = cmd.Flags().GetBool("span-hosts")
	if err != nil {
		return nil, err
	}

	cfg.AscendParents, err = cmd.Flags().GetBool("ascend-parents")
	if err != nil {
		return nil, err
	}

	cfg.Delay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.Clobber, err = cmd.Flags().GetBool("clobber")
	if err != nil {
		return nil, err
	}

	cfg.OnlyMenus, err = cmd.Flags().GetBool("only-menus")
	if err != nil {
		return nil, err
	}

	cfg.NoMenus, err = cmd.Flags().GetBool("no-menus")
	if err != nil {
		return nil, err
	}

	cfg.AcceptPattern, err = cmd.Flags().GetString("accept")
	if err != nil {
		return nil, err
	}

	cfg.RejectPattern, err = cmd.Flags().GetString("reject")
	if err != nil {
		return nil, err
	}

	cfg.PatternsOnMenus, err = cmd.Flags().GetBool("patterns-on-menus")
	if err != nil {
		return nil, err
	}

	cfg.OutputDir, err = cmd.Flags().GetString("output-dir")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.MaxRetries, err = cmd.Flags().GetInt("retries")
	if err != nil {
		return nil, err
	}

	cfg.SocksProxy, err = cmd.Flags().GetString("socks5")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load per-host configurations from the config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.HostConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.HostConfigs = &config.File{
			Hosts: make(map[string]config.HostConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Get positional arguments (gopher addresses)
	cfg.Targets = args

	return cfg, nil
}

// runMirror executes the mirror run.
func runMirror(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting mirror",
		"targets", cfg.Targets,
		"recursive", cfg.Recursive,
		"concurrency", cfg.Concurrency,
	)

	// Open the journal database. A failure here costs history, not the
	// mirror itself.
	var db *database.MirrorDB
	if cfg.DBDir != "" {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			logger.Warn("journal database unavailable, continuing without history",
				"dir", cfg.DBDir, "error", err)
		} else {
			defer db.Close()
			logger.Info("journal database opened", "dir", cfg.DBDir)
		}
	}

	// Mirror targets concurrently when asked for
	if len(cfg.Targets) > 1 && cfg.Concurrency > 1 {
		return runBatchMirror(ctx, cfg, db, logger)
	}

	// Single target or sequential mirroring
	return runSequentialMirror(ctx, cfg, db, logger)
}

// runSequentialMirror mirrors targets one at a time.
func runSequentialMirror(ctx context.Context, cfg *config.Config, db *database.MirrorDB, logger *slog.Logger) error {
	m, err := mirror.New(cfg, mirror.WithLogger(logger))
	if err != nil {
		return err
	}

	failed := 0
	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Printf("Mirroring %s...\n", target)

		mirrorReport, err := m.Run(ctx, target)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failed++
			logger.Error("mirror failed", "target", target, "error", err)
			fmt.Fprintf(os.Stderr, "Mirror error for %s: %v\n", target, err)
			continue
		}

		fmt.Printf("Mirror completed in %s\n\n", mirrorReport.Elapsed.Round(time.Millisecond))

		// Generate and output report
		if err := outputReport(cfg, mirrorReport); err != nil {
			logger.Error("report failed", "target", target, "error", err)
		}

		// Record the run in the journal
		journalReport(ctx, db, mirrorReport, logger)
	}

	if failed > 0 && failed == len(cfg.Targets) {
		return fmt.Errorf("all %d targets failed", failed)
	}
	return nil
}

// runBatchMirror mirrors multiple targets concurrently.
func runBatchMirror(ctx context.Context, cfg *config.Config, db *database.MirrorDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch mirror of %d targets (concurrency: %d)...\n\n",
		len(cfg.Targets), cfg.Concurrency)

	startTime := time.Now()

	completed := 0
	failed := 0
	err := mirror.RunBatch(ctx, cfg, cfg.Targets, cfg.Concurrency, func(r mirror.Result) {
		completed++
		if r.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "[%d/%d] Mirror error for %s: %v\n",
				completed, len(cfg.Targets), r.Target, r.Err)
			return
		}

		fmt.Printf("[%d/%d] Mirror completed: %s\n", completed, len(cfg.Targets), r.Target)

		// Generate and output report
		if err := outputReport(cfg, r.Report); err != nil {
			logger.Error("report failed", "target", r.Target, "error", err)
		}

		// Record the run in the journal
		journalReport(ctx, db, r.Report, logger)
	}, mirror.WithLogger(logger))

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch mirror completed in %s\n", elapsed.Round(time.Millisecond))

	if err != nil {
		return err
	}
	if failed > 0 && failed == len(cfg.Targets) {
		return fmt.Errorf("all %d targets failed", failed)
	}
	return nil
}

// outputReport outputs the mirror report in the requested format.
func outputReport(cfg *config.Config, mirrorReport *model.MirrorReport) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output (full report wrapped with the tool version)
	if cfg.JSONReport {
		writer := report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
		_, err := writer.Write(mirrorReport)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(mirrorReport)
		return err
	}

	// Human-readable report (default)
	writer := report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	_, err := writer.Write(mirrorReport)
	return err
}

// journalReport records the run and its per-resource outcomes in the
// journal database. A nil db is a no-op; journaling failures are logged
// and never fail the mirror.
func journalReport(ctx context.Context, db *database.MirrorDB, mirrorReport *model.MirrorReport, logger *slog.Logger) {
	if db == nil {
		return
	}

	if err := db.SaveMirrorReport(ctx, mirrorReport); err != nil {
		logger.Error("failed to journal mirror run",
			"host", mirrorReport.Host, "error", err)
		return
	}

	for i := range mirrorReport.Resources {
		res := &mirrorReport.Resources[i]

		// The record keys on host and selector, which the report stores
		// only in URL form.
		parsed, err := gopher.ParseAddress(res.URL)
		if err != nil {
			logger.Debug("skipping journal entry for unparseable url",
				"url", res.URL, "error", err)
			continue
		}

		if _, err := db.SaveFetchRecord(ctx, &database.FetchRecord{
			Host:     parsed.Host,
			Selector: parsed.Selector,
			ItemType: res.Type,
			URL:      res.URL,
			Path:     res.Path,
			Bytes:    res.Bytes,
			Status:   res.Status.String(),
			Error:    res.Error,
		}); err != nil {
			logger.Error("failed to journal fetch", "url", res.URL, "error", err)
		}
	}

	logger.Info("mirror run journaled",
		"host", mirrorReport.Host,
		"resources", mirrorReport.ResourceCount(),
	)
}

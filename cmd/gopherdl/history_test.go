package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/nao1215/gopherdl/internal/database"
	"github.com/nao1215/gopherdl/internal/model"
)

// TestNewHistoryCmd tests the history command creation.
func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "history [host]" {
			t.Errorf("expected use 'history [host]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("list-hosts flag has shorthand L", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("list-hosts")
		if flag == nil {
			t.Fatal("expected list-hosts flag")
		}
		if flag.Shorthand != "L" {
			t.Errorf("expected shorthand 'L', got %q", flag.Shorthand)
		}
	})

	t.Run("limit flag has shorthand l", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("limit")
		if flag == nil {
			t.Fatal("expected limit flag")
		}
		if flag.Shorthand != "l" {
			t.Errorf("expected shorthand 'l', got %q", flag.Shorthand)
		}
	})

	t.Run("run-id flag has shorthand i", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("run-id")
		if flag == nil {
			t.Fatal("expected run-id flag")
		}
		if flag.Shorthand != "i" {
			t.Errorf("expected shorthand 'i', got %q", flag.Shorthand)
		}
	})

	t.Run("accepts maximum 1 argument", func(t *testing.T) {
		t.Parallel()
		// cobra.MaximumNArgs(1) is used
		if cmd.Args == nil {
			t.Error("expected Args to be set")
		}
	})
}

// TestRunHistoryCmdRequiresHost tests that a host argument is required
// unless a listing flag is given.
func TestRunHistoryCmdRequiresHost(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()
	cmd.SetArgs([]string{})

	// Validation happens before the database is opened, so this works
	// without any journal on disk.
	err := cmd.Execute()
	if err == nil {
		t.Error("expected error when no host provided")
	}
	if !strings.Contains(err.Error(), "host is required") {
		t.Errorf("unexpected error: %v", err)
	}
}

// seedMirrorRun stores one finished run for host in the journal.
func seedMirrorRun(t *testing.T, db *database.MirrorDB, host, target string) {
	t.Helper()

	mirrorReport := model.NewMirrorReport(target)
	mirrorReport.Host = host
	mirrorReport.AddRecord(model.ResourceRecord{
		Type:   "0",
		URL:    target,
		Path:   "archive/" + host + "/readme.txt",
		Bytes:  10,
		Status: model.StatusWritten,
	})
	mirrorReport.Finish()

	if err := db.SaveMirrorReport(context.Background(), mirrorReport); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}
}

func TestListMirroredHostsIntegration(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	tmpDir := t.TempDir()
	db, err := database.Open(tmpDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Test with empty database
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err = listMirroredHosts(ctx, db)

	w.Close()
	os.Stdout = oldStdout

	if err != nil {
		t.Fatalf("listMirroredHosts() error = %v", err)
	}

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	output := buf.String()

	if !strings.Contains(output, "No mirrored hosts found") {
		t.Error("expected 'No mirrored hosts found' message")
	}

	// Add some data
	seedMirrorRun(t, db, "alpha.example.org", "gopher://alpha.example.org/")
	seedMirrorRun(t, db, "beta.example.org", "gopher://beta.example.org/")

	// Test with data
	r, w, _ = os.Pipe()
	os.Stdout = w

	err = listMirroredHosts(ctx, db)

	w.Close()
	os.Stdout = oldStdout

	if err != nil {
		t.Fatalf("listMirroredHosts() error = %v", err)
	}

	buf.Reset()
	_, _ = buf.ReadFrom(r)
	output = buf.String()

	if !strings.Contains(output, "Mirrored hosts (2)") {
		t.Errorf("expected 'Mirrored hosts (2)' in output, got: %s", output)
	}
	if !strings.Contains(output, "alpha.example.org") {
		t.Error("expected alpha.example.org to be listed")
	}
	if !strings.Contains(output, "beta.example.org") {
		t.Error("expected beta.example.org to be listed")
	}
}

func TestListRunHistoryIntegration(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	tmpDir := t.TempDir()
	db, err := database.Open(tmpDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Add test data
	for i := 0; i < 3; i++ {
		seedMirrorRun(t, db, "history.example.org", "gopher://history.example.org/")
	}

	// Test listing the full history
	oldStdout := os.Stdout
	r, w, pipeErr := os.Pipe()
	if pipeErr != nil {
		t.Fatalf("failed to create pipe: %v", pipeErr)
	}
	os.Stdout = w

	listErr := listRunHistory(ctx, db, "history.example.org", 0)

	w.Close()
	os.Stdout = oldStdout

	if listErr != nil {
		t.Fatalf("listRunHistory() error = %v", listErr)
	}

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	r.Close()
	output := buf.String()

	if !strings.Contains(output, "3 runs") {
		t.Errorf("expected '3 runs' in output, got: %s", output)
	}
	if !strings.Contains(output, "history.example.org") {
		t.Errorf("expected host name in output, got: %s", output)
	}
	if !strings.Contains(output, "Written") {
		t.Errorf("expected table header in output, got: %s", output)
	}

	// Test with a limit
	r, w, pipeErr = os.Pipe()
	if pipeErr != nil {
		t.Fatalf("failed to create pipe: %v", pipeErr)
	}
	os.Stdout = w

	listErr = listRunHistory(ctx, db, "history.example.org", 2)

	w.Close()
	os.Stdout = oldStdout

	if listErr != nil {
		t.Fatalf("listRunHistory() error = %v", listErr)
	}

	buf.Reset()
	_, _ = buf.ReadFrom(r)
	r.Close()
	output = buf.String()

	if !strings.Contains(output, "2 runs") {
		t.Errorf("expected '2 runs' in output, got: %s", output)
	}
}

func TestListRunHistoryNoData(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	tmpDir := t.TempDir()
	db, err := database.Open(tmpDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	oldStdout := os.Stdout
	r, w, pipeErr := os.Pipe()
	if pipeErr != nil {
		t.Fatalf("failed to create pipe: %v", pipeErr)
	}
	os.Stdout = w

	listErr := listRunHistory(ctx, db, "nonexistent.example.org", 0)

	w.Close()
	os.Stdout = oldStdout

	if listErr != nil {
		t.Fatalf("listRunHistory() error = %v", listErr)
	}

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	r.Close()
	output := buf.String()

	if !strings.Contains(output, "No mirror history found") {
		t.Errorf("expected 'No mirror history found' message, got: %s", output)
	}
}

func TestPrintRunByID(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	tmpDir := t.TempDir()
	db, err := database.Open(tmpDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	seedMirrorRun(t, db, "byid.example.org", "gopher://byid.example.org/")

	runs, err := db.GetRunHistory(ctx, "byid.example.org", 0)
	if err != nil {
		t.Fatalf("failed to get run history: %v", err)
	}
	if len(runs) == 0 {
		t.Fatal("expected at least one run")
	}

	oldStdout := os.Stdout
	r, w, pipeErr := os.Pipe()
	if pipeErr != nil {
		t.Fatalf("failed to create pipe: %v", pipeErr)
	}
	os.Stdout = w

	printErr := printRunByID(ctx, db, runs[0].ID)

	w.Close()
	os.Stdout = oldStdout

	if printErr != nil {
		t.Fatalf("printRunByID() error = %v", printErr)
	}

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	r.Close()
	output := buf.String()

	if !strings.Contains(output, `"target": "gopher://byid.example.org/"`) {
		t.Errorf("expected JSON with target field, got: %s", output)
	}
}

func TestPrintRunByIDNotFound(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	db, err := database.Open(tmpDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	err = printRunByID(context.Background(), db, 99999)
	if err == nil {
		t.Error("expected error for non-existent run ID")
	}
	if !strings.Contains(err.Error(), "no mirror run with id") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPrintLatestReport(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	tmpDir := t.TempDir()
	db, err := database.Open(tmpDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	seedMirrorRun(t, db, "latest.example.org", "gopher://latest.example.org/")

	oldStdout := os.Stdout
	r, w, pipeErr := os.Pipe()
	if pipeErr != nil {
		t.Fatalf("failed to create pipe: %v", pipeErr)
	}
	os.Stdout = w

	printErr := printLatestReport(ctx, db, "latest.example.org")

	w.Close()
	os.Stdout = oldStdout

	if printErr != nil {
		t.Fatalf("printLatestReport() error = %v", printErr)
	}

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	r.Close()
	output := buf.String()

	if !strings.Contains(output, "GOPHERDL MIRROR REPORT") {
		t.Errorf("expected report header in output, got: %s", output)
	}
	if !strings.Contains(output, "latest.example.org") {
		t.Errorf("expected host in output, got: %s", output)
	}
}

func TestPrintLatestReportNoData(t *testing.T) {
	// Note: Not using t.Parallel() because this test captures os.Stdout

	tmpDir := t.TempDir()
	db, err := database.Open(tmpDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	oldStdout := os.Stdout
	r, w, pipeErr := os.Pipe()
	if pipeErr != nil {
		t.Fatalf("failed to create pipe: %v", pipeErr)
	}
	os.Stdout = w

	printErr := printLatestReport(context.Background(), db, "nonexistent.example.org")

	w.Close()
	os.Stdout = oldStdout

	if printErr != nil {
		t.Fatalf("printLatestReport() error = %v", printErr)
	}

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	r.Close()
	output := buf.String()

	if !strings.Contains(output, "No mirror history found") {
		t.Errorf("expected 'No mirror history found' message, got: %s", output)
	}
}

package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/gopherdl/internal/model"
)

// createTestReport creates a report with sample data for testing.
func createTestReport() *model.MirrorReport {
	report := model.NewMirrorReport("gopher://gopher.example.org/")
	report.Host = "gopher.example.org"
	report.RootURL = "gopher://gopher.example.org:70/1/"
	report.Recursive = true
	report.MaxDepth = 3
	report.MenuCount = 2
	report.FileCount = 2

	report.AddRecord(model.ResourceRecord{
		Type:   "1",
		URL:    "gopher://gopher.example.org:70/1/",
		Path:   "gopher.example.org/gophermap",
		Bytes:  128,
		Status: model.StatusWritten,
	})
	report.AddRecord(model.ResourceRecord{
		Type:   "0",
		URL:    "gopher://gopher.example.org:70/0/docs/readme.txt",
		Path:   "gopher.example.org/docs/readme.txt",
		Bytes:  2048,
		Status: model.StatusWritten,
	})
	report.AddRecord(model.ResourceRecord{
		Type:   "0",
		URL:    "gopher://gopher.example.org:70/0/docs/old.txt",
		Path:   "gopher.example.org/docs/old.txt",
		Status: model.StatusSkipped,
	})
	report.AddRecord(model.ResourceRecord{
		Type:   "9",
		URL:    "gopher://gopher.example.org:70/9/files/data.bin",
		Status: model.StatusFailed,
		Error:  "connection refused",
	})

	report.Finish()
	return report
}

// TestSimpleWriter tests the human-readable report writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "GOPHERDL MIRROR REPORT") {
			t.Error("expected output to contain header")
		}
		if !strings.Contains(output, "gopher.example.org") {
			t.Error("expected output to contain the host")
		}
		if !strings.Contains(output, "recursive (max depth 3)") {
			t.Error("expected output to contain the traversal mode")
		}
	})

	t.Run("writes download summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "DOWNLOAD SUMMARY") {
			t.Error("expected output to contain download summary")
		}
		if !strings.Contains(output, "Written:  2") {
			t.Error("expected output to contain written count")
		}
		if !strings.Contains(output, "Failed:   1") {
			t.Error("expected output to contain failed count")
		}
		if !strings.Contains(output, "4 resources") {
			t.Error("expected output to contain total resource count")
		}
	})

	t.Run("lists failures with errors", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "FAILURES") {
			t.Error("expected output to contain failures section")
		}
		if !strings.Contains(output, "gopher://gopher.example.org:70/9/files/data.bin") {
			t.Error("expected output to contain failed URL")
		}
		if !strings.Contains(output, "connection refused") {
			t.Error("expected output to contain failure reason")
		}
	})

	t.Run("omits failures section when clean", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := model.NewMirrorReport("gopher://clean.example.org/")
		report.Host = "clean.example.org"
		report.AddRecord(model.ResourceRecord{
			Type:   "0",
			URL:    "gopher://clean.example.org:70/0/a.txt",
			Path:   "clean.example.org/a.txt",
			Bytes:  10,
			Status: model.StatusWritten,
		})
		report.Finish()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if strings.Contains(buf.String(), "FAILURES") {
			t.Error("expected no failures section for a clean report")
		}
	})

	t.Run("showEmpty forces empty sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithShowEmpty(true))
		report := model.NewMirrorReport("gopher://clean.example.org/")
		report.Host = "clean.example.org"
		report.Finish()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "FAILURES") {
			t.Error("expected failures section with showEmpty")
		}
		if !strings.Contains(output, "No failures") {
			t.Error("expected placeholder text for empty failures")
		}
	})

	t.Run("verbose mode lists resources", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithVerbose(true))
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "RESOURCES") {
			t.Error("expected verbose output to contain resources section")
		}
		if !strings.Contains(output, "[written] gopher://gopher.example.org:70/0/docs/readme.txt") {
			t.Error("expected verbose output to list written resources")
		}
		if !strings.Contains(output, "-> gopher.example.org/docs/readme.txt") {
			t.Error("expected verbose output to show local paths")
		}
	})

	t.Run("non-verbose mode hides resource listing", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if strings.Contains(buf.String(), "RESOURCES") {
			t.Error("expected no resources section without verbose")
		}
	})

	t.Run("single resource mode text", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := model.NewMirrorReport("gopher://single.example.org/0/file.txt")
		report.Host = "single.example.org"
		report.Recursive = false
		report.Finish()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "single resource") {
			t.Error("expected mode text for non-recursive run")
		}
	})

	t.Run("unbounded depth mode text", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := createTestReport()
		report.MaxDepth = -1

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "recursive (unbounded depth)") {
			t.Error("expected mode text for unbounded recursion")
		}
	})
}

// TestJSONWriter tests the JSON report writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("outputs valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var parsed model.MirrorReport
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}

		if parsed.Target != "gopher://gopher.example.org/" {
			t.Errorf("expected target %q, got %q",
				"gopher://gopher.example.org/", parsed.Target)
		}
		if parsed.WrittenCount != 2 {
			t.Errorf("expected written count 2, got %d", parsed.WrittenCount)
		}
		if len(parsed.Resources) != 4 {
			t.Errorf("expected 4 resource records, got %d", len(parsed.Resources))
		}
	})

	t.Run("compact output by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		lines := strings.Split(strings.TrimSpace(output), "\n")
		if len(lines) > 1 {
			t.Errorf("expected compact output (1 line), got %d lines", len(lines))
		}
	})

	t.Run("pretty print with indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		lines := strings.Split(strings.TrimSpace(output), "\n")
		if len(lines) < 5 {
			t.Errorf("expected multi-line output, got %d lines", len(lines))
		}
	})

	t.Run("custom indent prefix", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithIndent("", "\t"))
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "\t\"target\"") {
			t.Error("expected tab-indented output")
		}
	})
}

// TestFullJSONWriter tests the full JSON writer with metadata.
func TestFullJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("includes version in output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewFullJSONWriter(&buf, "1.2.3")
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var parsed JSONReport
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}

		if parsed.Version != "1.2.3" {
			t.Errorf("expected version %q, got %q", "1.2.3", parsed.Version)
		}
		if parsed.Report == nil {
			t.Fatal("expected wrapped report")
		}
		if parsed.Report.Host != "gopher.example.org" {
			t.Errorf("expected host %q, got %q", "gopher.example.org", parsed.Report.Host)
		}
	})
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes document structure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "# gopherdl Mirror Report") {
			t.Error("expected markdown title")
		}
		if !strings.Contains(output, "## Download Summary") {
			t.Error("expected summary section")
		}
		if !strings.Contains(output, "## Resources") {
			t.Error("expected resources section")
		}
		if !strings.Contains(output, "`gopher.example.org`") {
			t.Error("expected host in info table")
		}
	})

	t.Run("includes outcome pie chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "mermaid") {
			t.Error("expected mermaid chart block")
		}
		if !strings.Contains(output, "Resource Outcome Distribution") {
			t.Error("expected chart title")
		}
	})

	t.Run("omits pie chart for empty run", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := model.NewMirrorReport("gopher://empty.example.org/")
		report.Host = "empty.example.org"
		report.Finish()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if strings.Contains(buf.String(), "mermaid") {
			t.Error("expected no chart for an empty run")
		}
	})

	t.Run("writes failures section with errors", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "## Failures") {
			t.Error("expected failures section")
		}
		if !strings.Contains(output, "connection refused") {
			t.Error("expected failure reason in table")
		}
	})

	t.Run("omits failures section when clean", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := model.NewMirrorReport("gopher://clean.example.org/")
		report.Host = "clean.example.org"
		report.AddRecord(model.ResourceRecord{
			Type:   "0",
			URL:    "gopher://clean.example.org:70/0/a.txt",
			Path:   "clean.example.org/a.txt",
			Bytes:  10,
			Status: model.StatusWritten,
		})
		report.Finish()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if strings.Contains(buf.String(), "## Failures") {
			t.Error("expected no failures section for a clean report")
		}
	})
}

// failingWriter always returns an error from Write.
type failingWriter struct{}

func (f *failingWriter) Write(_ *model.MirrorReport) (int, error) {
	return 0, errors.New("write failed")
}

// TestMultiWriter tests fan-out to multiple writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var buf1, buf2 bytes.Buffer
		mw := NewMultiWriter(NewSimpleWriter(&buf1), NewJSONWriter(&buf2))
		report := createTestReport()

		_, err := mw.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if buf1.Len() == 0 {
			t.Error("expected first writer to receive output")
		}
		if buf2.Len() == 0 {
			t.Error("expected second writer to receive output")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		mw := NewMultiWriter(&failingWriter{}, NewSimpleWriter(&buf))
		report := createTestReport()

		_, err := mw.Write(report)
		if err == nil {
			t.Fatal("expected error from failing writer")
		}
		if buf.Len() != 0 {
			t.Error("expected no output after failing writer")
		}
	})
}

// TestTruncateString tests the string truncation helper.
func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "shorter than limit", input: "short", maxLen: 10, want: "short"},
		{name: "exactly at limit", input: "exact", maxLen: 5, want: "exact"},
		{name: "longer gets ellipsis", input: "a long string here", maxLen: 10, want: "a long ..."},
		{name: "tiny limit skips ellipsis", input: "abcdef", maxLen: 3, want: "abc"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := truncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/gopherdl/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Plain text with ASCII rules works in all terminals and pipes cleanly
// to files or other tools.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose enables the per-resource listing in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with a per-resource listing.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.MirrorReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeResources(&sb, report)
	w.writeFailures(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.MirrorReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                       GOPHERDL MIRROR REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Target:    %s\n", report.Target))
	if report.RootURL != "" && report.RootURL != report.Target {
		sb.WriteString(fmt.Sprintf("Root URL:  %s\n", report.RootURL))
	}
	sb.WriteString(fmt.Sprintf("Host:      %s\n", report.Host))
	sb.WriteString(fmt.Sprintf("Started:   %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Elapsed:   %s\n", report.Elapsed.Round(time.Millisecond)))
	sb.WriteString(fmt.Sprintf("Mode:      %s\n", modeText(report)))

	sb.WriteString("\n")
}

// modeText describes the traversal mode of the run.
func modeText(report *model.MirrorReport) string {
	if !report.Recursive {
		return "single resource"
	}
	if report.MaxDepth < 0 {
		return "recursive (unbounded depth)"
	}
	return fmt.Sprintf("recursive (max depth %d)", report.MaxDepth)
}

// writeSummary writes the download summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.MirrorReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("DOWNLOAD SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Menus:    %d\n", report.MenuCount))
	sb.WriteString(fmt.Sprintf("  Files:    %d\n", report.FileCount))
	sb.WriteString(fmt.Sprintf("  Written:  %d\n", report.WrittenCount))
	sb.WriteString(fmt.Sprintf("  Skipped:  %d\n", report.SkippedCount))
	sb.WriteString(fmt.Sprintf("  Failed:   %d\n", report.FailedCount))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("  TOTAL:    %d resources, %s written\n",
		report.ResourceCount(), humanize.Bytes(uint64(report.BytesWritten)))) //nolint:gosec // byte totals never go negative
	sb.WriteString("\n")
}

// writeResources writes the per-resource listing.
// Only shown in verbose mode because mirrors can contain thousands of
// resources.
func (w *SimpleWriter) writeResources(sb *strings.Builder, report *model.MirrorReport) {
	if !w.verbose {
		return
	}
	if len(report.Resources) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("RESOURCES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Resources) == 0 {
		sb.WriteString("  No resources handled\n")
	}

	for _, rec := range report.Resources {
		sb.WriteString(fmt.Sprintf("  [%s] %s\n", rec.Status, rec.URL))
		if rec.Path != "" {
			sb.WriteString(fmt.Sprintf("    -> %s", rec.Path))
			if rec.Status == model.StatusWritten {
				sb.WriteString(fmt.Sprintf(" (%s)", humanize.Bytes(uint64(rec.Bytes)))) //nolint:gosec // sizes never go negative
			}
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")
}

// writeFailures writes the failed resources with their errors.
func (w *SimpleWriter) writeFailures(sb *strings.Builder, report *model.MirrorReport) {
	failures := report.Failures()
	if len(failures) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FAILURES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(failures) == 0 {
		sb.WriteString("  No failures\n")
	}

	for _, rec := range failures {
		sb.WriteString(fmt.Sprintf("  * %s\n", rec.URL))
		if rec.Error != "" {
			sb.WriteString(fmt.Sprintf("    Error: %s\n", rec.Error))
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by gopherdl\n")
	sb.WriteString("https://github.com/nao1215/gopherdl\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

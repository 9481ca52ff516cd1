package report

import (
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/gopherdl/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.MirrorReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeResources(md, report)
	w.writeFailures(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.MirrorReport) {
	md.H1("gopherdl Mirror Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Target", "`" + report.Target + "`"},
			{"Host", "`" + report.Host + "`"},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", report.Elapsed.Round(time.Millisecond).String()},
			{"Mode", modeText(report)},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.MirrorReport) string {
	if report.FailedCount > 0 {
		return "⚠️ " + strconv.Itoa(report.FailedCount) + " failure(s)"
	}
	return "✅ Complete"
}

// writeSummary writes the download summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.MirrorReport) {
	md.H2("Download Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Menus", strconv.Itoa(report.MenuCount)},
			{"Files", strconv.Itoa(report.FileCount)},
			{"Written", strconv.Itoa(report.WrittenCount)},
			{"Skipped", strconv.Itoa(report.SkippedCount)},
			{"Failed", strconv.Itoa(report.FailedCount)},
			{"Bytes Written", humanize.Bytes(uint64(report.BytesWritten))}, //nolint:gosec // byte totals never go negative
			{"**Total Resources**", "**" + strconv.Itoa(report.ResourceCount()) + "**"},
		},
	})
	md.PlainText("")

	if report.ResourceCount() > 0 {
		w.writePieChart(md, report)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart for the outcome distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.MirrorReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Resource Outcome Distribution"),
		piechart.WithShowData(true),
	)

	if report.WrittenCount > 0 {
		chart.LabelAndIntValue("Written", uint64(report.WrittenCount)) //nolint:gosec // counts never go negative
	}
	if report.SkippedCount > 0 {
		chart.LabelAndIntValue("Skipped", uint64(report.SkippedCount)) //nolint:gosec // counts never go negative
	}
	if report.FailedCount > 0 {
		chart.LabelAndIntValue("Failed", uint64(report.FailedCount)) //nolint:gosec // counts never go negative
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the run outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.MirrorReport) {
	switch {
	case report.FailedCount > 0:
		md.Warningf(
			"%d of %d resources failed to download. See the failures section below.",
			report.FailedCount, report.ResourceCount(),
		)
	case report.ResourceCount() == 0:
		md.Note("No resources were handled in this run.")
	case report.WrittenCount == 0:
		md.Note("Nothing new was downloaded; the local mirror is already up to date.")
	default:
		md.Tip("All resources mirrored successfully.")
	}
	md.PlainText("")
}

// writeResources writes the per-resource table.
func (w *MarkdownWriter) writeResources(md *markdown.Markdown, report *model.MirrorReport) {
	md.H2("Resources")
	md.PlainText("")

	if len(report.Resources) == 0 {
		md.PlainText("No resources were handled.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Resources))
	for i, rec := range report.Resources {
		size := "-"
		if rec.Status == model.StatusWritten {
			size = humanize.Bytes(uint64(rec.Bytes)) //nolint:gosec // sizes never go negative
		}
		path := rec.Path
		if path == "" {
			path = "-"
		}

		rows[i] = []string{
			"`" + rec.Type + "`",
			truncateString(rec.URL, 60),
			truncateString(path, 40),
			size,
			rec.Status.String(),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Type", "URL", "Path", "Size", "Status"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFailures writes the failed resources with their errors.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, report *model.MirrorReport) {
	failures := report.Failures()
	if len(failures) == 0 {
		return
	}

	md.H2("Failures")
	md.PlainText("")

	rows := make([][]string, len(failures))
	for i, rec := range failures {
		reason := rec.Error
		if reason == "" {
			reason = "-"
		}
		rows[i] = []string{
			truncateString(rec.URL, 60),
			truncateString(reason, 70),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Error"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [gopherdl](https://github.com/nao1215/gopherdl)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

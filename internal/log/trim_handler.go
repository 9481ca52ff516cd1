package log

import (
	"context"
	"io"
	"log/slog"
)

// TrimLimit is the maximum rune count of a string attribute value before
// it is shortened. Gopher selectors and menu lines have no length limit
// in practice, and a single hostile menu entry can otherwise stretch a
// log line across several screens.
const TrimLimit = 150

const (
	// trimHead is the number of leading runes kept when trimming.
	trimHead = 100

	// trimTail is the number of trailing runes kept when trimming.
	trimTail = 30
)

// TrimHandler wraps an slog.Handler to shorten oversized string
// attribute values. It intercepts log records and rewrites string
// attributes longer than TrimLimit runes to `head...tail` form before
// passing them to the underlying handler.
//
// A handler wrapper integrates seamlessly with standard slog APIs and
// works with any underlying handler (text, JSON, etc.).
type TrimHandler struct {
	// handler is the underlying slog handler that receives trimmed records.
	handler slog.Handler
}

// NewTrimHandler creates a new TrimHandler wrapping the given handler.
// All string log attributes will be shortened before being passed to the
// underlying handler. If handler is nil, the returned TrimHandler will
// use slog.Default().Handler().
func NewTrimHandler(handler slog.Handler) *TrimHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &TrimHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *TrimHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle trims the record's attributes and passes it to the underlying handler.
func (h *TrimHandler) Handle(ctx context.Context, r slog.Record) error {
	trimmed := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		trimmed.AddAttrs(h.trimAttr(a))
		return true
	})

	return h.handler.Handle(ctx, trimmed)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are trimmed before being added.
func (h *TrimHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	trimmedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		trimmedAttrs[i] = h.trimAttr(a)
	}
	return &TrimHandler{handler: h.handler.WithAttrs(trimmedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *TrimHandler) WithGroup(name string) slog.Handler {
	return &TrimHandler{handler: h.handler.WithGroup(name)}
}

// trimAttr trims a single attribute, recursively handling groups.
func (h *TrimHandler) trimAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		trimmedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			trimmedAttrs[i] = h.trimAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(trimmedAttrs...)}
	}

	if a.Value.Kind() == slog.KindString {
		if trimmed, changed := trimString(a.Value.String()); changed {
			return slog.String(a.Key, trimmed)
		}
	}

	return a
}

// trimString shortens s to `head...tail` form when it exceeds TrimLimit
// runes. The second return value reports whether trimming happened.
func trimString(s string) (string, bool) {
	runes := []rune(s)
	if len(runes) <= TrimLimit {
		return s, false
	}
	return string(runes[:trimHead]) + "..." + string(runes[len(runes)-trimTail:]), true
}

// NewTrimLogger creates a new slog.Logger with attribute trimming.
// The logger shortens oversized attribute values in all log output.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Info
//
// Returns a *slog.Logger that can be used with slog.SetDefault() or
// passed to components that accept *slog.Logger.
func NewTrimLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	textHandler := slog.NewTextHandler(w, opts)
	trimHandler := NewTrimHandler(textHandler)

	return slog.New(trimHandler)
}

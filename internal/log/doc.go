// Package log provides logging functionality with automatic trimming of
// oversized attribute values, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Shortening of pathologically long attribute values (selectors, menu lines)
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Trimming
//
// The TrimHandler shortens string attribute values longer than TrimLimit
// runes to `head...tail` form. Gopher servers control the length of
// selectors and menu lines, so without trimming a single hostile menu
// entry could stretch a log line across several screens.
//
// # Usage
//
//	// Create a trimming logger
//	logger := log.NewTrimLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Info("fetching resource",
//	    "selector", veryLongSelector, // shortened to head...tail
//	    "host", "gopher.example.org",
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log

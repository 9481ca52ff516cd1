package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration. They are
// package-level sentinels so callers can match them with errors.Is().
var (
	// ErrNoTarget is returned when no gopher address was given to
	// download.
	ErrNoTarget = errors.New("no target specified: provide at least one gopher URL")

	// ErrInvalidDelay is returned when the inter-fetch delay is
	// negative. Use 0 for no delay between fetches.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidTimeout is returned when the fetch timeout is not
	// positive. A zero timeout would fail every connection immediately.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxRetries is returned when the retry budget is
	// negative. Use 0 to fail on the first transient error.
	ErrInvalidMaxRetries = errors.New("invalid max retries: must be non-negative")

	// ErrConflictingMenuModes is returned when both --only-menus and
	// --no-menus are specified. Together they would download nothing.
	ErrConflictingMenuModes = errors.New("conflicting menu modes: --only-menus and --no-menus cannot be used together")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used at a
	// time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidConcurrency is returned when the target concurrency is
	// less than one.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be at least 1")

	// ErrInvalidAcceptPattern is returned when the accept pattern does
	// not compile as a regular expression.
	ErrInvalidAcceptPattern = errors.New("invalid accept pattern")

	// ErrInvalidRejectPattern is returned when the reject pattern does
	// not compile as a regular expression.
	ErrInvalidRejectPattern = errors.New("invalid reject pattern")
)

package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. Where applicable they match the
// long-standing behavior of gopher mirroring tools: unbounded recursion
// depth, no politeness delay, and a local ./archive output tree.
const (
	// DefaultGopherPort is the well-known gopher port.
	DefaultGopherPort = 70

	// DefaultTimeout bounds connecting and each read cycle of a fetch.
	// Gopher servers are small machines on slow links; five seconds is
	// enough to tell a dead host from a slow one without stalling a
	// large mirror run.
	DefaultTimeout = 5 * time.Second

	// DefaultMaxRetries is how many times a transient fetch failure is
	// retried before the resource is marked failed.
	DefaultMaxRetries = 3

	// DefaultMaxDepth means unbounded recursion. The crawl still
	// terminates because visited resources are never expanded twice.
	DefaultMaxDepth = -1

	// DefaultOutputDir is where the mirrored directory tree is written.
	DefaultOutputDir = "./archive"

	// DefaultConcurrency is the number of hosts mirrored at once when
	// several targets are given. Sequential by default; gopher servers
	// tend to run on modest hardware.
	DefaultConcurrency = 1

	// AppName is the application name used for XDG directory paths.
	AppName = "gopherdl"
)

// Config holds all configuration options for gopherdl.
// It is populated from CLI flags and passed through the application via
// dependency injection rather than global state.
type Config struct {
	// Recursive enables menu-tree traversal. When false only the root
	// resource of each target is downloaded.
	Recursive bool

	// MaxDepth is the maximum number of menu expansions after the root.
	// 0 downloads the root and its direct children only. Negative means
	// unbounded.
	MaxDepth int

	// SpanHosts permits the crawl to follow menu entries onto hosts
	// other than the target's.
	SpanHosts bool

	// AscendParents permits selectors outside the root selector's
	// subtree.
	AscendParents bool

	// Delay is the politeness delay between fetches. Zero means no
	// delay.
	Delay time.Duration

	// Clobber overwrites files that already exist in the output tree.
	// When false, existing files are kept and menus already on disk are
	// reused instead of re-fetched.
	Clobber bool

	// OnlyMenus restricts downloads to menu resources.
	// Mutually exclusive with NoMenus.
	OnlyMenus bool

	// NoMenus skips menu resources when downloading.
	// Mutually exclusive with OnlyMenus.
	NoMenus bool

	// AcceptPattern keeps only resources whose URL fully matches this
	// regular expression. Empty keeps everything.
	AcceptPattern string

	// RejectPattern drops resources whose URL fully matches this
	// regular expression. Empty drops nothing.
	RejectPattern string

	// PatternsOnMenus applies the accept and reject patterns to menus
	// as well as files. Off by default because rejecting a menu also
	// severs everything reachable through it.
	PatternsOnMenus bool

	// OutputDir is the root of the mirrored directory tree. One
	// subdirectory per host is created beneath it.
	OutputDir string

	// Timeout is the connect and per-read timeout for each fetch.
	Timeout time.Duration

	// MaxRetries is how many transient fetch failures are retried per
	// resource.
	MaxRetries int

	// SocksProxy is an optional SOCKS5 proxy address in "host:port"
	// form. Empty means direct connections.
	SocksProxy string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only info and above are logged.
	Verbose bool

	// Targets is the list of gopher addresses to mirror.
	// Must contain at least one entry.
	Targets []string

	// ConfigFilePath is the path to the configuration file. If empty,
	// the tool searches for .gopherdl in the current directory and then
	// in the user's home directory.
	ConfigFilePath string

	// HostConfigs holds per-host overrides loaded from the config file.
	// Populated by LoadConfigFile and consulted before each mirror run.
	HostConfigs *File

	// DBDir is the directory for the run-history SQLite database.
	// When empty, runs are not recorded.
	DBDir string

	// JSONReport emits the mirror report as JSON instead of the
	// human-readable format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport emits the mirror report as GitHub Flavored
	// Markdown. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report. When set, the
	// report is written there instead of stdout.
	ReportFile string

	// Concurrency is the number of targets mirrored concurrently when
	// several are given. Resources within one target are always fetched
	// sequentially.
	Concurrency int
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases. Users can override specific values after creation.
func NewConfig() *Config {
	return &Config{
		MaxDepth:    DefaultMaxDepth,
		OutputDir:   DefaultOutputDir,
		Timeout:     DefaultTimeout,
		MaxRetries:  DefaultMaxRetries,
		Concurrency: DefaultConcurrency,
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for gopherdl.
// On Linux: ~/.local/share/gopherdl
// On macOS: ~/Library/Application Support/gopherdl
// On Windows: %LOCALAPPDATA%\gopherdl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for gopherdl.
// On Linux: ~/.config/gopherdl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for gopherdl.
// On Linux: ~/.cache/gopherdl
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error, wrapped with
// detail where the bad value matters.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	if c.Delay < 0 {
		return ErrInvalidDelay
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxRetries < 0 {
		return ErrInvalidMaxRetries
	}

	// Saving only menus and never saving menus cancel out to nothing.
	if c.OnlyMenus && c.NoMenus {
		return ErrConflictingMenuModes
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.Concurrency < 1 {
		return ErrInvalidConcurrency
	}

	if c.AcceptPattern != "" {
		if _, err := regexp.Compile(c.AcceptPattern); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAcceptPattern, err)
		}
	}
	if c.RejectPattern != "" {
		if _, err := regexp.Compile(c.RejectPattern); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRejectPattern, err)
		}
	}

	return nil
}

package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/gopherdl/internal/archive"
	"github.com/nao1215/gopherdl/internal/config"
	"github.com/nao1215/gopherdl/internal/crawler"
	"github.com/nao1215/gopherdl/internal/gopher"
	"github.com/nao1215/gopherdl/internal/model"
)

// ErrInvalidRoot is returned when a target parses but cannot be mirrored
// safely, for example a selector that would escape the host's directory
// in the output tree.
var ErrInvalidRoot = errors.New("root resource cannot be mirrored")

// Mirrorer runs one gopher target end to end: parse, discover, fetch,
// persist, report.
type Mirrorer struct {
	// cfg holds the validated run configuration.
	cfg *config.Config

	// client fetches resource content over the network.
	client *gopher.Client

	// store persists resources into the output tree.
	store *archive.Store

	// logger is used for structured logging during the run.
	logger *slog.Logger
}

// Option configures a Mirrorer.
type Option func(*Mirrorer)

// WithLogger sets a custom logger for the mirror run.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Mirrorer) {
		m.logger = logger
	}
}

// New creates a Mirrorer wired from the given configuration.
// The configuration should already be validated.
func New(cfg *config.Config, opts ...Option) (*Mirrorer, error) {
	m := &Mirrorer{cfg: cfg}

	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}

	clientOpts := []gopher.ClientOption{
		gopher.WithTimeout(cfg.Timeout),
		gopher.WithMaxRetries(cfg.MaxRetries),
		gopher.WithLogger(m.logger),
	}
	if cfg.SocksProxy != "" {
		dialer, err := gopher.SOCKS5Dialer(cfg.SocksProxy)
		if err != nil {
			return nil, fmt.Errorf("failed to configure SOCKS5 proxy: %w", err)
		}
		clientOpts = append(clientOpts, gopher.WithDialer(dialer))
	}
	m.client = gopher.NewClient(clientOpts...)

	m.store = archive.NewStore(cfg.OutputDir,
		archive.WithClobber(cfg.Clobber),
		archive.WithLogger(m.logger),
	)

	return m, nil
}

// Run mirrors a single target and returns its report.
//
// Parse and validation errors are fatal for the target. After discovery,
// per-resource failures are recorded in the report and the run continues.
// When ctx is cancelled the partial report is returned together with the
// context's error.
func (m *Mirrorer) Run(ctx context.Context, target string) (*model.MirrorReport, error) {
	root, err := gopher.ParseAddress(target)
	if err != nil {
		return nil, fmt.Errorf("failed to parse target %q: %w", target, err)
	}
	if !root.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRoot, target)
	}

	report := model.NewMirrorReport(target)
	report.RootURL = root.URL()
	report.Host = root.Host
	report.Recursive = m.cfg.Recursive

	delay, maxDepth, accept, reject := m.hostOverrides(root.Host)
	report.MaxDepth = maxDepth

	resources := []*gopher.Resource{root}
	if m.cfg.Recursive {
		resources, err = m.discover(ctx, root, delay, maxDepth, accept, reject)
		if err != nil {
			report.Finish()
			return report, err
		}
	}

	resources = m.partition(resources)
	for _, res := range resources {
		if res.IsMenu() {
			report.MenuCount++
		} else {
			report.FileCount++
		}
	}

	total := len(resources)
	for i, res := range resources {
		select {
		case <-ctx.Done():
			report.Finish()
			return report, ctx.Err()
		default:
		}

		m.logger.Info("mirroring resource",
			"progress", fmt.Sprintf("[%d/%d]", i+1, total),
			"path", res.RawPath(),
		)

		if err := m.processResource(ctx, res, delay, report); err != nil {
			report.Finish()
			return report, err
		}
	}

	report.Finish()
	return report, nil
}

// hostOverrides resolves the effective delay, depth, and patterns for a
// host, preferring config-file host entries over the global flags.
func (m *Mirrorer) hostOverrides(host string) (time.Duration, int, string, string) {
	delay := m.cfg.Delay
	maxDepth := m.cfg.MaxDepth
	accept := m.cfg.AcceptPattern
	reject := m.cfg.RejectPattern

	if m.cfg.HostConfigs == nil {
		return delay, maxDepth, accept, reject
	}

	hc := m.cfg.HostConfigs.GetHostConfig(host)
	if hc.Delay != "" {
		d, err := hc.DelayDuration()
		if err != nil {
			m.logger.Warn("ignoring invalid delay in config file",
				"host", host, "delay", hc.Delay, "error", err)
		} else {
			delay = d
		}
	}
	if hc.MaxDepth != nil {
		maxDepth = *hc.MaxDepth
	}
	if hc.AcceptPattern != "" {
		accept = hc.AcceptPattern
	}
	if hc.RejectPattern != "" {
		reject = hc.RejectPattern
	}

	return delay, maxDepth, accept, reject
}

// discover runs the crawl engine and returns every in-scope resource
// reachable from root, the root first.
func (m *Mirrorer) discover(ctx context.Context, root *gopher.Resource, delay time.Duration, maxDepth int, accept, reject string) ([]*gopher.Resource, error) {
	scope, err := crawler.NewScope(root, crawler.ScopeConfig{
		SpanHosts:       m.cfg.SpanHosts,
		AscendParents:   m.cfg.AscendParents,
		PatternsOnMenus: m.cfg.PatternsOnMenus,
		AcceptPattern:   accept,
		RejectPattern:   reject,
	}, m.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build crawl scope: %w", err)
	}

	c := crawler.New(m.client, scope,
		crawler.WithMaxDepth(maxDepth),
		crawler.WithDelay(delay),
		crawler.WithCache(m.store),
		crawler.WithClobber(m.cfg.Clobber),
		crawler.WithLogger(m.logger),
	)

	return c.Crawl(ctx, root)
}

// partition orders the resource set menus-first and applies the menu
// filters. Writing menus before files means an interrupted run leaves a
// browsable partial mirror.
func (m *Mirrorer) partition(resources []*gopher.Resource) []*gopher.Resource {
	menus := make([]*gopher.Resource, 0, len(resources))
	files := make([]*gopher.Resource, 0, len(resources))
	for _, res := range resources {
		if res.IsMenu() {
			menus = append(menus, res)
		} else {
			files = append(files, res)
		}
	}

	switch {
	case m.cfg.OnlyMenus:
		return menus
	case m.cfg.NoMenus:
		return files
	default:
		return append(menus, files...)
	}
}

// processResource downloads and persists one resource, recording the
// outcome in the report. Only context cancellation is returned as an
// error; everything else is recorded and swallowed so the run continues.
func (m *Mirrorer) processResource(ctx context.Context, res *gopher.Resource, delay time.Duration, report *model.MirrorReport) error {
	rec := model.ResourceRecord{
		Type: res.Type.String(),
		URL:  res.URL(),
		Path: res.StoragePath(),
	}

	// Skip without touching the network when a copy already exists.
	if !m.cfg.Clobber && m.store.Exists(res) {
		m.logger.Info("keeping existing copy", "path", res.StoragePath())
		rec.Status = model.StatusSkipped
		report.AddRecord(rec)
		return nil
	}

	data, err := m.client.Fetch(ctx, res, delay)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		m.logger.Warn("failed to fetch resource", "url", res.URL(), "error", err)
		rec.Status = model.StatusFailed
		rec.Error = err.Error()
		report.AddRecord(rec)
		return nil
	}

	written, err := m.store.Persist(res, data)
	if err != nil {
		m.logger.Warn("failed to persist resource",
			"path", res.StoragePath(), "error", err)
		rec.Status = model.StatusFailed
		rec.Error = err.Error()
		report.AddRecord(rec)
		return nil
	}

	if !written {
		rec.Status = model.StatusSkipped
		report.AddRecord(rec)
		return nil
	}

	rec.Bytes = int64(len(data))
	rec.Status = model.StatusWritten
	report.AddRecord(rec)
	return nil
}

package crawler

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/gopherdl/internal/gopher"
)

// Fetcher retrieves the raw bytes of a single resource, sleeping the
// politeness delay first. *gopher.Client satisfies this interface.
type Fetcher interface {
	Fetch(ctx context.Context, res *gopher.Resource, delay time.Duration) ([]byte, error)
}

// Cache provides read access to previously mirrored content. The
// crawler uses it to skip re-fetching menus that already exist on disk
// from an earlier run.
type Cache interface {
	Exists(res *gopher.Resource) bool
	ReadLocal(res *gopher.Resource) ([]byte, error)
}

// Crawler walks a menu tree breadth-first and collects every reachable
// resource the scope allows.
type Crawler struct {
	// fetcher retrieves menu content over the network.
	fetcher Fetcher

	// scope filters candidates discovered in menus.
	scope *Scope

	// parser turns raw menu bytes into resources.
	parser *gopher.MenuParser

	// cache reads menus already present in the local mirror. Nil means
	// every menu is fetched.
	cache Cache

	// maxDepth bounds the number of menu expansions after the root.
	// 0 limits the crawl to the root and its direct children; negative
	// means unbounded.
	maxDepth int

	// delay is the politeness delay forwarded to the fetcher.
	delay time.Duration

	// clobber disables the cache short-circuit so menus are always
	// re-fetched.
	clobber bool

	logger *slog.Logger
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithMaxDepth bounds the number of menu expansions after the root.
// 0 limits the crawl to the root and its direct children. Negative
// means unbounded.
func WithMaxDepth(depth int) Option {
	return func(c *Crawler) {
		c.maxDepth = depth
	}
}

// WithDelay sets the politeness delay between fetches.
func WithDelay(d time.Duration) Option {
	return func(c *Crawler) {
		c.delay = d
	}
}

// WithCache lets the crawler reuse menus already present in the local
// mirror instead of fetching them again.
func WithCache(cache Cache) Option {
	return func(c *Crawler) {
		c.cache = cache
	}
}

// WithClobber forces menus to be re-fetched even when a local copy
// exists.
func WithClobber(clobber bool) Option {
	return func(c *Crawler) {
		c.clobber = clobber
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// New creates a Crawler that discovers resources through fetcher and
// keeps those allowed by scope.
func New(fetcher Fetcher, scope *Scope, opts ...Option) *Crawler {
	c := &Crawler{
		fetcher:  fetcher,
		scope:    scope,
		maxDepth: -1,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.parser = gopher.NewMenuParser(c.logger)
	return c
}

// Crawl discovers the resource tree reachable from root and returns it
// in discovery order. The root is always the first element, even when
// it expands to nothing. A menu whose fetch fails contributes zero
// children and the traversal continues; on context cancellation the
// partial set is returned together with ctx.Err().
func (c *Crawler) Crawl(ctx context.Context, root *gopher.Resource) ([]*gopher.Resource, error) {
	visited := newResourceSet()
	visited.add(root)

	// Seed round: the root's children form the first frontier. The root
	// itself is queued last so single-file roots still bootstrap the
	// traversal.
	queue := make([]*gopher.Resource, 0)
	for _, child := range c.expand(ctx, root) {
		if !visited.add(child) {
			continue
		}
		if child.IsMenu() {
			queue = append(queue, child)
		}
	}
	queue = append(queue, root)
	depth := 1

	for len(queue) > 0 && (c.maxDepth < 0 || depth <= c.maxDepth) {
		select {
		case <-ctx.Done():
			return visited.resources(), ctx.Err()
		default:
		}

		menu := queue[0]
		queue = queue[1:]

		for _, child := range c.expand(ctx, menu) {
			if !visited.add(child) {
				continue
			}
			if child.IsMenu() {
				queue = append(queue, child)
			}
		}
		depth++

		c.logger.Info("crawl progress",
			"visited", visited.len(),
			"depth", depth,
			"queued", len(queue))
	}

	return visited.resources(), nil
}

// expand fetches and parses menu, returning its in-scope children in
// menu order. Non-menu resources expand to nothing. A failed fetch is
// logged and yields no children so the crawl can continue with the rest
// of the queue.
func (c *Crawler) expand(ctx context.Context, menu *gopher.Resource) []*gopher.Resource {
	if !menu.IsMenu() {
		return nil
	}

	content, err := c.menuContent(ctx, menu)
	if err != nil {
		c.logger.Warn("failed to retrieve menu", "url", menu.URL(), "error", err)
		return nil
	}

	children := make([]*gopher.Resource, 0)
	for _, candidate := range c.parser.Parse(content) {
		if c.scope.Allows(candidate) {
			children = append(children, candidate)
		}
	}
	return children
}

// menuContent returns the menu's bytes, preferring a locally mirrored
// copy when clobbering is off. A cache read failure falls back to the
// network.
func (c *Crawler) menuContent(ctx context.Context, menu *gopher.Resource) ([]byte, error) {
	if c.cache != nil && !c.clobber && c.cache.Exists(menu) {
		data, err := c.cache.ReadLocal(menu)
		if err == nil {
			c.logger.Info("using existing menu", "path", menu.StoragePath())
			return data, nil
		}
		c.logger.Debug("cache read failed, fetching instead",
			"url", menu.URL(), "error", err)
	}
	return c.fetcher.Fetch(ctx, menu, c.delay)
}

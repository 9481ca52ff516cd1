package archive

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nao1215/gopherdl/internal/gopher"
)

// Store writes fetched resources into a mirrored directory tree rooted
// at one output directory. It also serves as the crawl engine's read
// cache for menus persisted by earlier runs.
type Store struct {
	// root is the output directory. Host directories are created
	// beneath it.
	root string

	// clobber overwrites files that already exist.
	clobber bool

	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClobber makes Persist overwrite existing files instead of
// keeping them.
func WithClobber(clobber bool) Option {
	return func(s *Store) {
		s.clobber = clobber
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a store writing beneath root.
func NewStore(root string, opts ...Option) *Store {
	s := &Store{
		root:   root,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns where res lives in the mirror tree.
func (s *Store) Path(res *gopher.Resource) string {
	return filepath.Join(s.root, res.StoragePath())
}

// Exists reports whether res has already been persisted.
func (s *Store) Exists(res *gopher.Resource) bool {
	_, err := os.Stat(s.Path(res))
	return err == nil
}

// ReadLocal returns the previously persisted bytes of res.
func (s *Store) ReadLocal(res *gopher.Resource) ([]byte, error) {
	data, err := os.ReadFile(s.Path(res))
	if err != nil {
		return nil, fmt.Errorf("failed to read mirrored copy: %w", err)
	}
	return data, nil
}

// Persist writes data to the resource's path, creating parent
// directories as needed. It reports whether bytes hit the disk: an
// existing file is kept unless clobbering is on, and empty content is
// never written.
func (s *Store) Persist(res *gopher.Resource, data []byte) (bool, error) {
	path := s.Path(res)

	if !s.clobber && s.Exists(res) {
		s.logger.Debug("not overwriting", "path", path)
		return false, nil
	}
	if len(data) == 0 {
		s.logger.Debug("skipping empty content", "path", path)
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return false, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}

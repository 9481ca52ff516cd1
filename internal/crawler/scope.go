package crawler

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/nao1215/gopherdl/internal/gopher"
)

// Scope decides whether a resource discovered in a menu belongs to the
// crawl. It is constructed once per crawl from the root resource and
// the traversal policy; pattern compilation errors surface here rather
// than mid-traversal.
type Scope struct {
	root            *gopher.Resource
	spanHosts       bool
	ascendParents   bool
	patternsOnMenus bool
	accept          *regexp.Regexp
	reject          *regexp.Regexp
	logger          *slog.Logger
}

// ScopeConfig is the traversal policy for a single crawl.
type ScopeConfig struct {
	// SpanHosts permits candidates hosted somewhere other than the
	// root's host.
	SpanHosts bool

	// AscendParents permits selectors outside the root selector's
	// subtree.
	AscendParents bool

	// PatternsOnMenus applies the accept and reject patterns to menus
	// as well as files. Off by default so menus stay traversable as
	// structure even when their names match a reject pattern.
	PatternsOnMenus bool

	// AcceptPattern keeps only candidates whose display URL fully
	// matches the expression. Empty accepts everything the other rules
	// let through.
	AcceptPattern string

	// RejectPattern drops candidates whose display URL fully matches
	// the expression. Empty rejects nothing.
	RejectPattern string
}

// NewScope compiles the policy for crawls rooted at root. Patterns are
// anchored so they must match the whole display URL, not a substring.
// A nil logger falls back to slog.Default().
func NewScope(root *gopher.Resource, cfg ScopeConfig, logger *slog.Logger) (*Scope, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scope{
		root:            root,
		spanHosts:       cfg.SpanHosts,
		ascendParents:   cfg.AscendParents,
		patternsOnMenus: cfg.PatternsOnMenus,
		logger:          logger,
	}

	var err error
	if s.accept, err = compileAnchored(cfg.AcceptPattern); err != nil {
		return nil, fmt.Errorf("invalid accept pattern: %w", err)
	}
	if s.reject, err = compileAnchored(cfg.RejectPattern); err != nil {
		return nil, fmt.Errorf("invalid reject pattern: %w", err)
	}
	return s, nil
}

// compileAnchored compiles expr wrapped so it matches the whole input.
// An empty expr compiles to nil, meaning the pattern is not in use.
func compileAnchored(expr string) (*regexp.Regexp, error) {
	if expr == "" {
		return nil, nil
	}
	return regexp.Compile(`\A(?:` + expr + `)\z`)
}

// Allows reports whether the candidate is in scope. Rules apply in
// order: host spanning, parent ascension, the menu bypass, the reject
// pattern, then the accept pattern.
func (s *Scope) Allows(candidate *gopher.Resource) bool {
	if !s.spanHosts && candidate.Host != s.root.Host {
		s.logger.Debug("not spanning hosts",
			"root", s.root.Host, "candidate", candidate.Host)
		return false
	}

	if !s.ascendParents && !strings.HasPrefix(candidate.Selector, s.root.Selector) {
		s.logger.Debug("not ascending to parent",
			"root", s.root.Selector, "candidate", candidate.Selector)
		return false
	}

	// Menus are structure rather than content. Unless patterns were
	// explicitly extended to them, they pass so the crawl can keep
	// descending.
	if candidate.IsMenu() && !s.patternsOnMenus {
		return true
	}

	url := candidate.URL()
	if s.reject != nil && s.reject.MatchString(url) {
		s.logger.Debug("rejected by pattern", "url", url)
		return false
	}
	if s.accept != nil {
		if !s.accept.MatchString(url) {
			s.logger.Debug("not accepted by pattern", "url", url)
			return false
		}
	}
	return true
}

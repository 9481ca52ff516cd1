// Package crawler discovers the reachable resource tree of a gopher
// server by breadth-first menu expansion.
//
// # Architecture
//
// The package is designed around the Crawler type, which walks menus
// starting from a root resource. Each expansion fetches one menu,
// parses its records, and filters the candidates through a Scope that
// enforces the traversal policy (host spanning, parent ascension,
// accept and reject patterns). Visited resources are tracked in an
// insertion-ordered set keyed by host and selector, which both
// guarantees termination on cyclic menu graphs and keeps results
// deterministic for a fixed server.
//
// # Components
//
//   - Crawler: coordinates the breadth-first traversal
//   - Scope: per-crawl filter deciding which candidates are followed
//   - resourceSet: ordered visited set with identity deduplication
//
// # Politeness
//
// The crawler fetches one menu at a time and forwards the configured
// inter-request delay to the fetcher. When a menu already exists in the
// local mirror and clobbering is off, the local copy is read instead of
// hitting the network again.
//
// # Usage
//
//	scope, err := crawler.NewScope(root, crawler.ScopeConfig{}, logger)
//	if err != nil {
//		return err
//	}
//	c := crawler.New(client, scope, crawler.WithMaxDepth(3))
//	resources, err := c.Crawl(ctx, root)
package crawler

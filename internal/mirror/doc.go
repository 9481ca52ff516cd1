// Package mirror orchestrates complete mirror runs.
//
// A Mirrorer runs one gopher target end to end: parse the address,
// discover the resource tree (recursively or just the root), then fetch
// and persist every resource while building a MirrorReport. RunBatch
// fans out over multiple targets with a bounded number of concurrent
// runs.
//
// # Components
//
// The Mirrorer wires together the lower layers from a single Config:
//   - gopher.Client for fetching (with optional SOCKS5 dialer)
//   - crawler.Crawler and crawler.Scope for recursive discovery
//   - archive.Store for the on-disk tree
//
// # Failure Model
//
// A target that cannot be parsed or validated fails its run with an
// error. Once the resource set is known, individual fetch failures are
// recorded in the report and never stop the run. Context cancellation
// stops the run and returns the partial report together with the
// context's error.
package mirror

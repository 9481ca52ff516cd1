// Package model defines the core data structures used throughout gopherdl.
//
// This package contains the following main types:
//   - MirrorReport: The result of mirroring one gopher target
//   - ResourceRecord: The per-resource outcome within a mirror run
//   - FetchStatus: Classification of how a resource was handled
//
// Multiple packages (mirror, report, database) need to use these types,
// so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output
// and database storage.
package model

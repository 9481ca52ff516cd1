// Package database provides SQLite-based storage for gopherdl.
//
// This package implements the MirrorDB, which stores:
//   - Fetch records for individual gopher resources
//   - Mirror run reports for historical queries
//
// SQLite (via modernc.org/sqlite) keeps the journal a single file, needs
// no CGO, and performs well enough for a download journal. WAL mode gives
// good concurrent read performance while mirror runs write.
package database

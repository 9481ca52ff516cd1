package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/gopherdl/internal/model"
)

// MirrorDB provides SQLite-based storage for fetch records and mirror
// run reports. It manages connection pooling and provides methods for
// CRUD operations.
//
// A single database file serves all hosts, which keeps history queries
// across hosts simple and makes backup a one-file copy.
type MirrorDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures MirrorDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a MirrorDB at the specified path.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*MirrorDB, error) {
	dbPath := filepath.Join(dbDir, "gopherdl.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses URI-style connection parameters.
	// mode=rw prevents creating new files; mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	mdb := &MirrorDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Wait briefly on lock contention instead of failing immediately.
	if _, err := db.ExecContext(context.Background(), "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := mdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return mdb, nil
}

// Close closes the database connection.
func (mdb *MirrorDB) Close() error {
	return mdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (mdb *MirrorDB) createTables() error {
	schema := `
	-- Fetch records store individual resource retrievals
	CREATE TABLE IF NOT EXISTS fetches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		host TEXT NOT NULL,
		selector TEXT NOT NULL,
		item_type TEXT,
		url TEXT NOT NULL,
		local_path TEXT,
		bytes INTEGER DEFAULT 0,
		status TEXT,
		error TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(host, selector)
	);

	CREATE INDEX IF NOT EXISTS idx_fetches_host ON fetches(host);
	CREATE INDEX IF NOT EXISTS idx_fetches_status ON fetches(status);
	CREATE INDEX IF NOT EXISTS idx_fetches_timestamp ON fetches(timestamp);

	-- Mirror runs store complete run reports as JSON
	CREATE TABLE IF NOT EXISTS mirror_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		host TEXT NOT NULL,
		target TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		resource_count INTEGER DEFAULT 0,
		written_count INTEGER DEFAULT 0,
		skipped_count INTEGER DEFAULT 0,
		failed_count INTEGER DEFAULT 0,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_host ON mirror_runs(host);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON mirror_runs(timestamp);
	`

	_, err := mdb.db.ExecContext(context.Background(), schema)
	return err
}

// FetchRecord represents a stored resource fetch.
type FetchRecord struct {
	ID        int64
	Host      string
	Selector  string
	ItemType  string
	URL       string
	Path      string
	Bytes     int64
	Status    string
	Error     string
	Timestamp time.Time
}

// SaveFetchRecord inserts or updates a fetch record.
// Uses UPSERT to handle duplicates (same host + selector).
func (mdb *MirrorDB) SaveFetchRecord(ctx context.Context, record *FetchRecord) (int64, error) {
	query := `
	INSERT INTO fetches (host, selector, item_type, url, local_path, bytes, status, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(host, selector) DO UPDATE SET
		item_type = excluded.item_type,
		url = excluded.url,
		local_path = excluded.local_path,
		bytes = excluded.bytes,
		status = excluded.status,
		error = excluded.error,
		timestamp = CURRENT_TIMESTAMP
	`

	result, err := mdb.db.ExecContext(ctx, query,
		record.Host,
		record.Selector,
		record.ItemType,
		record.URL,
		record.Path,
		record.Bytes,
		record.Status,
		record.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save fetch record: %w", err)
	}

	return result.LastInsertId()
}

// GetFetchRecord retrieves a fetch record by host and selector.
// Returns nil without error when no record exists.
func (mdb *MirrorDB) GetFetchRecord(ctx context.Context, host, selector string) (*FetchRecord, error) {
	query := `
	SELECT id, host, selector, item_type, url, local_path, bytes, status, error, timestamp
	FROM fetches
	WHERE host = ? AND selector = ?
	`

	var record FetchRecord
	var timestamp string

	err := mdb.db.QueryRowContext(ctx, query, host, selector).Scan(
		&record.ID,
		&record.Host,
		&record.Selector,
		&record.ItemType,
		&record.URL,
		&record.Path,
		&record.Bytes,
		&record.Status,
		&record.Error,
		&timestamp,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fetch record: %w", err)
	}

	// SQLite may return timestamps in different formats depending on
	// version and configuration.
	record.Timestamp = parseTimestamp(timestamp)

	return &record, nil
}

// HasRecentFetch checks if a resource was fetched within the specified window.
func (mdb *MirrorDB) HasRecentFetch(ctx context.Context, host, selector string, window time.Duration) (bool, error) {
	query := `
	SELECT COUNT(*) FROM fetches
	WHERE host = ? AND selector = ? AND timestamp > datetime('now', ?)
	`

	// SQLite datetime modifier format
	modifier := fmt.Sprintf("-%d seconds", int(window.Seconds()))

	var count int
	err := mdb.db.QueryRowContext(ctx, query, host, selector, modifier).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check recent fetch: %w", err)
	}

	return count > 0, nil
}

// SaveMirrorReport saves a complete mirror run report as JSON alongside
// its summary counts.
func (mdb *MirrorDB) SaveMirrorReport(ctx context.Context, report *model.MirrorReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	query := `
	INSERT INTO mirror_runs (host, target, resource_count, written_count, skipped_count, failed_count, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = mdb.db.ExecContext(ctx, query,
		report.Host,
		report.Target,
		report.ResourceCount(),
		report.WrittenCount,
		report.SkippedCount,
		report.FailedCount,
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save mirror report: %w", err)
	}

	return nil
}

// GetLatestMirrorReport retrieves the most recent mirror report for a host.
// Returns nil without error when the host has no runs.
func (mdb *MirrorDB) GetLatestMirrorReport(ctx context.Context, host string) (*model.MirrorReport, error) {
	query := `
	SELECT report_json FROM mirror_runs
	WHERE host = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`

	var reportJSON string
	err := mdb.db.QueryRowContext(ctx, query, host).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mirror report: %w", err)
	}

	var report model.MirrorReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// GetMirrorReportByID retrieves a mirror report by its database ID.
// Returns nil without error when the ID is unknown.
func (mdb *MirrorDB) GetMirrorReportByID(ctx context.Context, id int64) (*model.MirrorReport, error) {
	query := `
	SELECT report_json FROM mirror_runs
	WHERE id = ?
	`

	var reportJSON string
	err := mdb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mirror report: %w", err)
	}

	var report model.MirrorReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// ListMirroredHosts returns all hosts that have at least one mirror run.
func (mdb *MirrorDB) ListMirroredHosts(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT host FROM mirror_runs
	ORDER BY host
	`

	rows, err := mdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list hosts: %w", err)
	}
	defer rows.Close()

	var hosts []string
	for rows.Next() {
		var host string
		if err := rows.Scan(&host); err != nil {
			return nil, fmt.Errorf("failed to scan host: %w", err)
		}
		hosts = append(hosts, host)
	}

	return hosts, rows.Err()
}

// RunMetadata contains summary information about a stored mirror run.
// This is used for displaying run history without loading the full report.
type RunMetadata struct {
	// ID is the unique identifier of the run in the database.
	ID int64

	// Host is the mirrored gopher host.
	Host string

	// Target is the address the run was started with.
	Target string

	// Timestamp is when the run was recorded.
	Timestamp time.Time

	// ResourceCount is the number of resources the run handled.
	ResourceCount int

	// WrittenCount is the number of resources written to disk.
	WrittenCount int

	// SkippedCount is the number of resources left untouched.
	SkippedCount int

	// FailedCount is the number of resources whose fetch failed.
	FailedCount int
}

// GetRunHistory retrieves run metadata for a host, newest first.
// A limit of zero or less returns the full history.
func (mdb *MirrorDB) GetRunHistory(ctx context.Context, host string, limit int) ([]RunMetadata, error) {
	query := `
	SELECT id, host, target, timestamp, resource_count, written_count, skipped_count, failed_count
	FROM mirror_runs
	WHERE host = ?
	ORDER BY timestamp DESC, id DESC
	`
	args := []interface{}{host}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := mdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get run history: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var timestamp string

		err := rows.Scan(
			&meta.ID,
			&meta.Host,
			&meta.Target,
			&timestamp,
			&meta.ResourceCount,
			&meta.WrittenCount,
			&meta.SkippedCount,
			&meta.FailedCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

package model

import (
	"time"
)

// MirrorReport is the result of mirroring one gopher target.
// It contains everything collected while walking and persisting the
// resource tree rooted at the target.
type MirrorReport struct {
	// === Basic Information ===

	// Target is the address exactly as given on the command line.
	Target string `json:"target"`

	// RootURL is the canonical URL of the parsed root resource.
	RootURL string `json:"root_url"`

	// Host is the root resource's host name.
	Host string `json:"host"`

	// StartedAt is when the mirror run began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the mirror run ended.
	FinishedAt time.Time `json:"finished_at"`

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration `json:"elapsed_ns"`

	// === Configuration Echo ===

	// Recursive is true if the run descended into menus.
	Recursive bool `json:"recursive"`

	// MaxDepth is the recursion limit used. Negative means unbounded.
	MaxDepth int `json:"max_depth"`

	// === Discovery Counts ===

	// MenuCount is the number of menus in the discovered set.
	MenuCount int `json:"menu_count"`

	// FileCount is the number of non-menu resources in the discovered set.
	FileCount int `json:"file_count"`

	// === Outcome Counts ===

	// WrittenCount is the number of resources written to disk.
	WrittenCount int `json:"written_count"`

	// SkippedCount is the number of resources left untouched, either
	// because a local copy existed or because the content was empty.
	SkippedCount int `json:"skipped_count"`

	// FailedCount is the number of resources whose fetch failed.
	FailedCount int `json:"failed_count"`

	// BytesWritten is the total number of bytes persisted.
	BytesWritten int64 `json:"bytes_written"`

	// === Per-Resource Outcomes ===

	// Resources records the outcome of every resource handled,
	// in processing order.
	Resources []ResourceRecord `json:"resources,omitempty"`
}

// ResourceRecord is the per-resource outcome within a mirror run.
type ResourceRecord struct {
	// Type is the one-character gopher item type tag.
	Type string `json:"type"`

	// URL is the resource's canonical URL.
	URL string `json:"url"`

	// Path is the resource's location in the local mirror tree.
	Path string `json:"path"`

	// Bytes is the size of the fetched content. Zero when nothing
	// was fetched.
	Bytes int64 `json:"bytes"`

	// Status says whether the resource was written, skipped, or failed.
	Status FetchStatus `json:"status"`

	// Error is the failure reason when Status is StatusFailed.
	Error string `json:"error,omitempty"`
}

// NewMirrorReport creates a new report for the given target with the
// clock already started.
func NewMirrorReport(target string) *MirrorReport {
	return &MirrorReport{
		Target:    target,
		StartedAt: time.Now(),
		Resources: make([]ResourceRecord, 0),
	}
}

// AddRecord appends the outcome of one resource and updates the
// aggregate counters.
func (r *MirrorReport) AddRecord(rec ResourceRecord) {
	r.Resources = append(r.Resources, rec)

	switch rec.Status {
	case StatusWritten:
		r.WrittenCount++
		r.BytesWritten += rec.Bytes
	case StatusSkipped:
		r.SkippedCount++
	case StatusFailed:
		r.FailedCount++
	}
}

// Finish stamps the end of the run and computes the elapsed time.
func (r *MirrorReport) Finish() {
	r.FinishedAt = time.Now()
	r.Elapsed = r.FinishedAt.Sub(r.StartedAt)
}

// ResourceCount returns the total number of recorded resources.
func (r *MirrorReport) ResourceCount() int {
	return len(r.Resources)
}

// Failures returns the records whose fetch failed.
func (r *MirrorReport) Failures() []ResourceRecord {
	var failed []ResourceRecord
	for _, rec := range r.Resources {
		if rec.Status == StatusFailed {
			failed = append(failed, rec)
		}
	}
	return failed
}

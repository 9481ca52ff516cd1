package model

// FetchStatus classifies the outcome of handling one resource during a
// mirror run.
type FetchStatus string

const (
	// StatusWritten means the content was fetched and written to the
	// local mirror tree.
	StatusWritten FetchStatus = "written"

	// StatusSkipped means nothing was written, either because a local
	// copy already existed or because the content was empty.
	StatusSkipped FetchStatus = "skipped"

	// StatusFailed means the fetch errored after exhausting retries.
	StatusFailed FetchStatus = "failed"
)

// String returns the status as a plain word for logs and reports.
func (s FetchStatus) String() string {
	return string(s)
}

// IsValid checks if the status is one of the known values.
func (s FetchStatus) IsValid() bool {
	switch s {
	case StatusWritten, StatusSkipped, StatusFailed:
		return true
	default:
		return false
	}
}

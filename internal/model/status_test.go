package model

import "testing"

func TestFetchStatusString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status FetchStatus
		want   string
	}{
		{name: "written", status: StatusWritten, want: "written"},
		{name: "skipped", status: StatusSkipped, want: "skipped"},
		{name: "failed", status: StatusFailed, want: "failed"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.status.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFetchStatusIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status FetchStatus
		want   bool
	}{
		{name: "written is valid", status: StatusWritten, want: true},
		{name: "skipped is valid", status: StatusSkipped, want: true},
		{name: "failed is valid", status: StatusFailed, want: true},
		{name: "empty is invalid", status: FetchStatus(""), want: false},
		{name: "unknown is invalid", status: FetchStatus("pending"), want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.status.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Package pipeline holds what the stages of a rate sync run share: the run
// status snapshot and the error taxonomy.
package pipeline

import "time"

// StatusNotRun is the error message carried by the status before the first run.
const StatusNotRun = "not run yet"

// RunStatus is the outcome of the most recent completed run.
type RunStatus struct {
	OK          bool       `json:"ok"`
	Error       string     `json:"error,omitempty"`
	PublishedAt *time.Time `json:"publishedAt"`
	RowCount    int        `json:"count"`
}

// InitialStatus returns the status reported before any run has completed.
func InitialStatus() RunStatus {
	return RunStatus{OK: false, Error: StatusNotRun}
}

package models

import (
	"fmt"
	"time"
)

// RunOutcome is the terminal state of a pipeline run.
type RunOutcome string

const (
	RunSucceeded   RunOutcome = "succeeded"   // end of stream reached
	RunFailed      RunOutcome = "failed"      // engine reported a fatal error
	RunInterrupted RunOutcome = "interrupted" // end of stream injected after a signal
)

// RunResult summarizes one run of the lifecycle driver.
type RunResult struct {
	Outcome    RunOutcome
	OutputPath string

	// ErrorSource names the element that reported the terminal error, if any.
	ErrorSource string
	Error       error

	Branches  []*BranchResult
	StartedAt time.Time
	EndedAt   time.Time
}

// Elapsed returns the wall time of the run.
func (r *RunResult) Elapsed() time.Duration {
	if r.EndedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// Built counts successful branches of the given kind.
func (r *RunResult) Built(kind MediaKind) int {
	n := 0
	for _, b := range r.Branches {
		if b.Success && b.Stream.Kind == kind {
			n++
		}
	}
	return n
}

// Failed counts branches that were abandoned.
func (r *RunResult) Failed() int {
	n := 0
	for _, b := range r.Branches {
		if !b.Success {
			n++
		}
	}
	return n
}

// FormatSummary returns a one-line summary of the run.
func (r *RunResult) FormatSummary() string {
	return fmt.Sprintf(
		"Outcome: %s | Audio branches: %d | Video branches: %d | Failed branches: %d | Elapsed: %s",
		r.Outcome,
		r.Built(MediaAudio),
		r.Built(MediaVideo),
		r.Failed(),
		r.Elapsed().Round(time.Millisecond),
	)
}

package model

import "time"

// Status is the lifecycle state of a job within one pipeline run.
//
// The legal transitions are:
//
//	Pending -> Skipped                      (gate rejected)
//	Pending -> Running -> Succeeded         (all commands completed)
//	Pending -> Running -> Failed            (first command failure)
//
// Skipped, Succeeded and Failed are terminal; no further transitions occur.
type Status int

const (
	StatusPending Status = iota
	StatusSkipped
	StatusRunning
	StatusSucceeded
	StatusFailed
)

// String returns the lower-case display name of the status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSkipped:
		return "skipped"
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusSkipped || s == StatusSucceeded || s == StatusFailed
}

// Result is the finalized record of one job for one run. It is created when
// the job reaches a terminal state and never mutated afterwards.
type Result struct {
	// Label echoes the job's display name.
	Label string

	// Ran is false when the job was skipped by its gate.
	Ran bool

	// Status is the job's terminal state.
	Status Status

	// Err holds the command failure for a Failed job, nil otherwise.
	Err error

	// CleanupRan records that the job's cleanup guard fired. It is true
	// for every job that started running and declared a cleanup, whether
	// the commands succeeded or not.
	CleanupRan bool

	// CleanupErr holds a failure from the cleanup step itself. It never
	// overrides Err: a job's outcome reflects its commands, not its
	// cleanup.
	CleanupErr error

	// Duration is the wall-clock time the job spent in Running.
	Duration time.Duration
}

// Failed reports whether any result in the slice is a command failure.
// Skipped jobs never count as failures.
func Failed(results []Result) bool {
	for _, r := range results {
		if r.Status == StatusFailed {
			return true
		}
	}
	return false
}

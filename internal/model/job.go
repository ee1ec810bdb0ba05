package model

import "time"

// DefaultCommandTimeout is used when a job does not declare its own timeout.
const DefaultCommandTimeout = 5 * time.Minute

// Job is the format-agnostic representation of a single `job` block. It is
// immutable once loaded; the engine never writes back into it.
type Job struct {
	// Label is the display name of the job, unique within a pipeline.
	Label string

	// Conditions is the set of signal names that must all be true for the
	// job to run. An empty set means the job always runs.
	Conditions []string

	// Env holds the job's environment overrides, applied on top of the
	// pipeline-level environment for the duration of this job only.
	Env map[string]string

	// Commands is the ordered sequence of shell commands. Each entry is
	// handed to `sh -c` verbatim; the engine treats its content as opaque.
	Commands []string

	// Timeout bounds each individual command. Zero means
	// DefaultCommandTimeout.
	Timeout time.Duration

	// Cleanup, when non-nil, declares the finalization that must run once
	// the job's execution scope ends, whatever the outcome.
	Cleanup *Cleanup
}

// Cleanup declares a job's guaranteed finalization step.
type Cleanup struct {
	// When names a signal gating the cleanup's externally visible action.
	// Empty means the cleanup commands always run. The signal is evaluated
	// at cleanup time, not captured when the job starts.
	When string

	// Commands is the ordered command sequence for the cleanup step.
	Commands []string
}

// CommandTimeout returns the effective per-command timeout for the job.
func (j *Job) CommandTimeout() time.Duration {
	if j.Timeout > 0 {
		return j.Timeout
	}
	return DefaultCommandTimeout
}

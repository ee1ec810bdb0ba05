// Package runner drives one job through its lifecycle: evaluate the gate,
// build the scoped environment, install the cleanup guard, and run the
// command sequence. Job failure is recorded on the result, never escalated;
// the pipeline moves on to the next job.
package runner

import (
	"context"
	"time"

	"github.com/vk/jobgate/internal/ctxlog"
	"github.com/vk/jobgate/internal/envscope"
	"github.com/vk/jobgate/internal/guard"
	"github.com/vk/jobgate/internal/model"
	"github.com/vk/jobgate/internal/report"
	"github.com/vk/jobgate/internal/sequencer"
)

// cleanupDetachTimeout bounds a cleanup sequence whose job was aborted.
// Cleanup-on-abort is mandatory, but it must not hold the process open
// forever.
const cleanupDetachTimeout = 2 * time.Minute

// Runner executes single jobs against a fixed signal set and base
// environment.
type Runner struct {
	signals  model.SignalSet
	baseEnv  map[string]string
	reporter report.Reporter

	// CleanupGate decides whether a job's cleanup performs its visible
	// action. It is consulted at cleanup time, not captured at job start.
	// When nil, the gate is the signal named in the cleanup's `when`.
	CleanupGate func(signal string) bool
}

// New creates a Runner. A nil reporter is allowed and reports nowhere.
func New(signals model.SignalSet, baseEnv map[string]string, reporter report.Reporter) *Runner {
	if reporter == nil {
		reporter = report.Multi(nil)
	}
	return &Runner{signals: signals, baseEnv: baseEnv, reporter: reporter}
}

// RunJob takes a job from Pending to one of its terminal states and
// returns the finalized result.
func (r *Runner) RunJob(ctx context.Context, job *model.Job) model.Result {
	logger := ctxlog.FromContext(ctx).With("job", job.Label)

	if !r.signals.Satisfies(job.Conditions) {
		logger.Info("⏭ Skipping job, conditions not met", "conditions", job.Conditions)
		return model.Result{Label: job.Label, Status: model.StatusSkipped}
	}

	logger.Info("▶️ Starting job")
	r.reporter.JobStarted(ctx, job)

	env := envscope.Build(r.baseEnv, job.Env)
	seq := sequencer.New(job.CommandTimeout())

	start := time.Now()
	outcome := guard.Run(
		func() error { return seq.Run(ctx, job.Commands, env) },
		func() error { return r.runCleanup(ctx, job, env) },
	)

	result := model.Result{
		Label:      job.Label,
		Ran:        true,
		CleanupRan: outcome.CleanupRan,
		CleanupErr: outcome.CleanupErr,
		Duration:   time.Since(start),
	}
	if outcome.Err != nil {
		result.Status = model.StatusFailed
		result.Err = outcome.Err
		logger.Error("❌ Job failed", "error", outcome.Err)
	} else {
		result.Status = model.StatusSucceeded
		logger.Info("✅ Job finished", "duration", result.Duration)
	}
	if outcome.CleanupErr != nil {
		logger.Warn("Cleanup step failed; job outcome unchanged.", "error", outcome.CleanupErr)
	}
	return result
}

// runCleanup performs the job's declared cleanup action, if any. The gate
// signal is evaluated here, at cleanup time. The sequence runs detached
// from the job's context so that an aborted job still gets its cleanup,
// bounded by its own timeout.
func (r *Runner) runCleanup(ctx context.Context, job *model.Job, env map[string]string) error {
	if job.Cleanup == nil || len(job.Cleanup.Commands) == 0 {
		return nil
	}
	logger := ctxlog.FromContext(ctx).With("job", job.Label)

	if when := job.Cleanup.When; when != "" && !r.cleanupAllowed(when) {
		logger.Info("Cleanup action disabled by gate signal.", "when", when)
		return nil
	}

	logger.Info("🧹 Running cleanup")
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupDetachTimeout)
	defer cancel()
	return sequencer.New(job.CommandTimeout()).Run(cleanupCtx, job.Cleanup.Commands, env)
}

func (r *Runner) cleanupAllowed(signal string) bool {
	if r.CleanupGate != nil {
		return r.CleanupGate(signal)
	}
	return r.signals.Satisfies([]string{signal})
}

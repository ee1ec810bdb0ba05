// Package report defines how job and pipeline outcomes are surfaced: a
// Reporter interface for event sinks, a console renderer for the terminal
// summary, a fan-out over multiple sinks, and a tracker that keeps a live
// snapshot for the status server.
package report

import (
	"context"

	"github.com/vk/jobgate/internal/model"
)

// Reporter receives pipeline lifecycle events. Implementations must
// tolerate being called from a single goroutine in declaration order and
// should treat delivery as best-effort: a reporter failure never fails the
// pipeline.
type Reporter interface {
	// PipelineStarted fires once, before the first job is considered.
	PipelineStarted(ctx context.Context, jobs []*model.Job)

	// JobStarted fires when a job passes its gate, before its first command.
	JobStarted(ctx context.Context, job *model.Job)

	// JobFinished fires once per job with its terminal result, including
	// skipped jobs.
	JobFinished(ctx context.Context, result model.Result)

	// PipelineFinished fires once with the full ordered result list.
	PipelineFinished(ctx context.Context, results []model.Result)
}

// Multi fans events out to several reporters in order.
type Multi []Reporter

// PipelineStarted implements Reporter.
func (m Multi) PipelineStarted(ctx context.Context, jobs []*model.Job) {
	for _, r := range m {
		r.PipelineStarted(ctx, jobs)
	}
}

// JobStarted implements Reporter.
func (m Multi) JobStarted(ctx context.Context, job *model.Job) {
	for _, r := range m {
		r.JobStarted(ctx, job)
	}
}

// JobFinished implements Reporter.
func (m Multi) JobFinished(ctx context.Context, result model.Result) {
	for _, r := range m {
		r.JobFinished(ctx, result)
	}
}

// PipelineFinished implements Reporter.
func (m Multi) PipelineFinished(ctx context.Context, results []model.Result) {
	for _, r := range m {
		r.PipelineFinished(ctx, results)
	}
}

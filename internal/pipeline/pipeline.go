// Package pipeline drives an ordered list of jobs through the runner and
// aggregates their results. Execution is sequential by design: the report
// preserves declaration order, and each job's execution context is
// exclusively its own.
package pipeline

import (
	"context"

	"github.com/vk/jobgate/internal/ctxlog"
	"github.com/vk/jobgate/internal/model"
	"github.com/vk/jobgate/internal/report"
	"github.com/vk/jobgate/internal/runner"
)

// Driver executes pipelines.
type Driver struct {
	runner   *runner.Runner
	reporter report.Reporter
}

// NewDriver creates a Driver. A nil reporter is allowed and reports
// nowhere.
func NewDriver(r *runner.Runner, reporter report.Reporter) *Driver {
	if reporter == nil {
		reporter = report.Multi(nil)
	}
	return &Driver{runner: r, reporter: reporter}
}

// Execute runs jobs in declaration order and returns one result per job,
// in the same order. A failed job is reported and execution continues with
// the next job; nothing here is fatal to the run itself.
func (d *Driver) Execute(ctx context.Context, jobs []*model.Job) []model.Result {
	logger := ctxlog.FromContext(ctx)
	logger.Info("🚀 Pipeline starting", "jobs", len(jobs))
	d.reporter.PipelineStarted(ctx, jobs)

	results := make([]model.Result, 0, len(jobs))
	for _, job := range jobs {
		result := d.runner.RunJob(ctx, job)
		d.reporter.JobFinished(ctx, result)
		results = append(results, result)
	}

	d.reporter.PipelineFinished(ctx, results)
	logger.Info("🏁 Pipeline finished", "failed", model.Failed(results))
	return results
}

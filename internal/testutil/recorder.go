package testutil

import (
	"context"
	"sync"

	"github.com/vk/jobgate/internal/model"
	"github.com/vk/jobgate/internal/registry"
	"github.com/vk/jobgate/internal/report"
)

// RecordingReporter captures every lifecycle event it receives, in order.
// It is safe for concurrent use.
type RecordingReporter struct {
	mu       sync.Mutex
	Events   []string
	Results  []model.Result
	Finished []model.Result
}

// PipelineStarted implements report.Reporter.
func (r *RecordingReporter) PipelineStarted(_ context.Context, jobs []*model.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, "pipeline:started")
}

// JobStarted implements report.Reporter.
func (r *RecordingReporter) JobStarted(_ context.Context, job *model.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, "start:"+job.Label)
}

// JobFinished implements report.Reporter.
func (r *RecordingReporter) JobFinished(_ context.Context, result model.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, "finish:"+result.Label)
	r.Results = append(r.Results, result)
}

// PipelineFinished implements report.Reporter.
func (r *RecordingReporter) PipelineFinished(_ context.Context, results []model.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, "pipeline:finished")
	r.Finished = append([]model.Result(nil), results...)
}

// EventLog returns a copy of the recorded event sequence.
func (r *RecordingReporter) EventLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.Events...)
}

// ResultFor returns the terminal result recorded for a label.
func (r *RecordingReporter) ResultFor(label string) (model.Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range r.Results {
		if res.Label == label {
			return res, true
		}
	}
	return model.Result{}, false
}

// RecorderModule registers a shared RecordingReporter under the "recorder"
// type, so pipelines under test can declare `reporter "recorder" {}` and
// assertions can inspect what the run emitted.
type RecorderModule struct {
	Reporter *RecordingReporter
}

// Register implements the registry.Module interface.
func (m *RecorderModule) Register(r *registry.Registry) {
	r.RegisterReporter("recorder", func(context.Context, map[string]string) (report.Reporter, error) {
		return m.Reporter, nil
	})
}

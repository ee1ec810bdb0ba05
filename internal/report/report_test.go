package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/jobgate/internal/model"
)

func TestConsole_DistinguishesOutcomes(t *testing.T) {
	var out strings.Builder
	console := NewConsole(&out)
	ctx := context.Background()

	console.PipelineStarted(ctx, []*model.Job{{Label: "a"}, {Label: "b"}, {Label: "c"}})
	console.JobFinished(ctx, model.Result{Label: "a", Status: model.StatusSkipped})
	console.JobFinished(ctx, model.Result{
		Label: "b", Ran: true, Status: model.StatusSucceeded,
		CleanupRan: true, Duration: 120 * time.Millisecond,
	})
	console.JobFinished(ctx, model.Result{
		Label: "c", Ran: true, Status: model.StatusFailed,
		Err: errors.New("exit 1"), CleanupRan: true,
	})
	console.PipelineFinished(ctx, []model.Result{
		{Status: model.StatusSkipped}, {Status: model.StatusSucceeded}, {Status: model.StatusFailed},
	})

	rendered := out.String()
	assert.Contains(t, rendered, "a (condition not met)")
	assert.Contains(t, rendered, "exit 1")
	assert.Contains(t, rendered, "summary: 1 succeeded, 1 failed, 1 skipped")
}

func TestConsole_ReportsCleanupFailure(t *testing.T) {
	var out strings.Builder
	console := NewConsole(&out)

	console.JobFinished(context.Background(), model.Result{
		Label: "x", Ran: true, Status: model.StatusSucceeded,
		CleanupRan: true, CleanupErr: errors.New("upload failed"),
	})

	assert.Contains(t, out.String(), "cleanup failed: upload failed")
}

func TestTracker_SnapshotLifecycle(t *testing.T) {
	tracker := NewTracker()
	ctx := context.Background()
	jobs := []*model.Job{{Label: "first"}, {Label: "second"}}

	tracker.PipelineStarted(ctx, jobs)
	snap := tracker.Current()
	require.Len(t, snap.Jobs, 2)
	assert.False(t, snap.Done)
	assert.Equal(t, "pending", snap.Jobs[0].Status)

	tracker.JobStarted(ctx, jobs[0])
	assert.Equal(t, "running", tracker.Current().Jobs[0].Status)

	tracker.JobFinished(ctx, model.Result{
		Label: "first", Ran: true, Status: model.StatusFailed,
		Err: errors.New("exit 2"), CleanupRan: true,
	})
	tracker.JobFinished(ctx, model.Result{Label: "second", Status: model.StatusSkipped})
	tracker.PipelineFinished(ctx, nil)

	snap = tracker.Current()
	assert.True(t, snap.Done)
	assert.Equal(t, "failed", snap.Jobs[0].Status)
	assert.Equal(t, "exit 2", snap.Jobs[0].Error)
	assert.True(t, snap.Jobs[0].CleanupRan)
	assert.Equal(t, "skipped", snap.Jobs[1].Status)
}

// recordingReporter captures event names for fan-out ordering tests.
type recordingReporter struct {
	id     string
	events *[]string
}

func (r *recordingReporter) PipelineStarted(context.Context, []*model.Job) {
	*r.events = append(*r.events, r.id+":start")
}
func (r *recordingReporter) JobStarted(context.Context, *model.Job) {
	*r.events = append(*r.events, r.id+":job")
}
func (r *recordingReporter) JobFinished(context.Context, model.Result) {
	*r.events = append(*r.events, r.id+":done")
}
func (r *recordingReporter) PipelineFinished(context.Context, []model.Result) {
	*r.events = append(*r.events, r.id+":end")
}

func TestMulti_FansOutInOrder(t *testing.T) {
	var events []string
	multi := Multi{
		&recordingReporter{id: "a", events: &events},
		&recordingReporter{id: "b", events: &events},
	}
	ctx := context.Background()

	multi.PipelineStarted(ctx, nil)
	multi.JobStarted(ctx, &model.Job{})
	multi.JobFinished(ctx, model.Result{})
	multi.PipelineFinished(ctx, nil)

	assert.Equal(t, []string{
		"a:start", "b:start",
		"a:job", "b:job",
		"a:done", "b:done",
		"a:end", "b:end",
	}, events)
}

package report

import (
	"context"
	"sync"

	"github.com/vk/jobgate/internal/model"
)

// JobSnapshot is one job's current state as exposed by the status server.
type JobSnapshot struct {
	Label      string `json:"label"`
	Status     string `json:"status"`
	CleanupRan bool   `json:"cleanup_ran,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Snapshot is a point-in-time view of the whole run.
type Snapshot struct {
	Done bool          `json:"done"`
	Jobs []JobSnapshot `json:"jobs"`
}

// Tracker is a Reporter that maintains a live snapshot of the run. The
// driver writes to it from the execution goroutine while the status server
// reads concurrently, so all access goes through a mutex.
type Tracker struct {
	mu   sync.RWMutex
	done bool
	// order preserves declaration order; index maps labels into it.
	order []JobSnapshot
	index map[string]int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{index: make(map[string]int)}
}

// PipelineStarted implements Reporter.
func (t *Tracker) PipelineStarted(ctx context.Context, jobs []*model.Job) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done = false
	t.order = make([]JobSnapshot, 0, len(jobs))
	t.index = make(map[string]int, len(jobs))
	for _, job := range jobs {
		t.index[job.Label] = len(t.order)
		t.order = append(t.order, JobSnapshot{Label: job.Label, Status: model.StatusPending.String()})
	}
}

// JobStarted implements Reporter.
func (t *Tracker) JobStarted(ctx context.Context, job *model.Job) {
	t.update(job.Label, func(s *JobSnapshot) {
		s.Status = model.StatusRunning.String()
	})
}

// JobFinished implements Reporter.
func (t *Tracker) JobFinished(ctx context.Context, result model.Result) {
	t.update(result.Label, func(s *JobSnapshot) {
		s.Status = result.Status.String()
		s.CleanupRan = result.CleanupRan
		if result.Err != nil {
			s.Error = result.Err.Error()
		}
	})
}

// PipelineFinished implements Reporter.
func (t *Tracker) PipelineFinished(ctx context.Context, results []model.Result) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done = true
}

// Current returns a copy of the live snapshot.
func (t *Tracker) Current() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	jobs := make([]JobSnapshot, len(t.order))
	copy(jobs, t.order)
	return Snapshot{Done: t.done, Jobs: jobs}
}

func (t *Tracker) update(label string, fn func(*JobSnapshot)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i, ok := t.index[label]; ok {
		fn(&t.order[i])
	}
}

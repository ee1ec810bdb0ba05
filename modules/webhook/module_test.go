package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/jobgate/internal/model"
	"github.com/vk/jobgate/internal/registry"
)

// recordingServer captures every JSON body posted to it.
type recordingServer struct {
	mu     sync.Mutex
	bodies []map[string]any
	auth   []string
	srv    *httptest.Server
}

func newRecordingServer(t *testing.T) *recordingServer {
	t.Helper()
	rs := &recordingServer{}
	rs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		rs.mu.Lock()
		rs.bodies = append(rs.bodies, body)
		rs.auth = append(rs.auth, r.Header.Get("Authorization"))
		rs.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(rs.srv.Close)
	return rs
}

func (rs *recordingServer) received() []map[string]any {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return append([]map[string]any(nil), rs.bodies...)
}

func TestNewReporter_RequiresURL(t *testing.T) {
	_, err := NewReporter(context.Background(), map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "url")
}

func TestNewReporter_RejectsNonHTTPScheme(t *testing.T) {
	_, err := NewReporter(context.Background(), map[string]string{"url": "ftp://reports.internal/hook"})
	require.Error(t, err)
}

func TestNewReporter_RejectsBadTimeout(t *testing.T) {
	_, err := NewReporter(context.Background(), map[string]string{
		"url":     "http://reports.internal/hook",
		"timeout": "fast",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestReporter_PostsLifecycleEvents(t *testing.T) {
	rs := newRecordingServer(t)
	reporter, err := NewReporter(context.Background(), map[string]string{
		"url":   rs.srv.URL,
		"token": "s3cr3t",
	})
	require.NoError(t, err)

	ctx := context.Background()
	jobs := []*model.Job{{Label: "build"}, {Label: "test"}}

	reporter.PipelineStarted(ctx, jobs)
	reporter.JobStarted(ctx, jobs[0])
	reporter.JobFinished(ctx, model.Result{Label: "build", Ran: true, Status: model.StatusSucceeded})
	reporter.PipelineFinished(ctx, []model.Result{{Label: "build", Status: model.StatusSucceeded}})

	bodies := rs.received()
	require.Len(t, bodies, 4)
	assert.Equal(t, "pipeline_started", bodies[0]["event"])
	assert.Equal(t, float64(2), bodies[0]["jobs"])
	assert.Equal(t, "job_started", bodies[1]["event"])
	assert.Equal(t, "build", bodies[1]["label"])
	assert.Equal(t, "job_finished", bodies[2]["event"])
	assert.Equal(t, "succeeded", bodies[2]["status"])
	assert.Equal(t, "pipeline_finished", bodies[3]["event"])
	assert.Equal(t, false, bodies[3]["failed"])

	rs.mu.Lock()
	defer rs.mu.Unlock()
	assert.Equal(t, "Bearer s3cr3t", rs.auth[0])
}

func TestReporter_FailureIncludesError(t *testing.T) {
	rs := newRecordingServer(t)
	reporter, err := NewReporter(context.Background(), map[string]string{"url": rs.srv.URL})
	require.NoError(t, err)

	reporter.JobFinished(context.Background(), model.Result{
		Label:  "deploy",
		Ran:    true,
		Status: model.StatusFailed,
		Err:    assert.AnError,
	})

	bodies := rs.received()
	require.Len(t, bodies, 1)
	assert.Equal(t, "failed", bodies[0]["status"])
	assert.Equal(t, assert.AnError.Error(), bodies[0]["error"])
}

func TestReporter_SurvivesUnreachableEndpoint(t *testing.T) {
	reporter, err := NewReporter(context.Background(), map[string]string{
		"url":     "http://127.0.0.1:1/hook",
		"timeout": "200ms",
	})
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		reporter.JobStarted(context.Background(), &model.Job{Label: "build"})
	})
}

func TestModule_Register(t *testing.T) {
	r := registry.New()
	(&Module{}).Register(r)

	assert.Panics(t, func() {
		(&Module{}).Register(r)
	})
}

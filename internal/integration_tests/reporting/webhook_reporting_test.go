package integration_tests

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/jobgate/internal/testutil"
)

// A pipeline that declares a webhook reporter delivers the full lifecycle
// to the endpoint, using the compiled-in module set.
func TestReporting_WebhookReceivesLifecycle(t *testing.T) {
	var mu sync.Mutex
	var events []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		mu.Lock()
		events = append(events, body["event"].(string))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	files := map[string]string{
		"pipeline.hcl": fmt.Sprintf(`
			reporter "webhook" {
				url = "%s"
			}

			job "build" {
				commands = ["true"]
			}
		`, srv.URL),
	}

	result := testutil.RunPipelineTest(t, files)
	require.NoError(t, result.Err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"pipeline_started",
		"job_started",
		"job_finished",
		"pipeline_finished",
	}, events)
}

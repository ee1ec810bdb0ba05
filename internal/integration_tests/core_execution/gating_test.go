package integration_tests

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/jobgate/internal/app"
	"github.com/vk/jobgate/internal/model"
	"github.com/vk/jobgate/internal/testutil"
)

// A condition naming a signal nobody declared resolves to false: the job
// skips, nothing executes, and the run still succeeds.
func TestGating_UnknownSignalSkipsJob(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "ran")
	recorder := &testutil.RecordingReporter{}
	files := map[string]string{
		"pipeline.hcl": fmt.Sprintf(`
			reporter "recorder" {}

			job "gated" {
				conditions = ["never_declared"]
				commands   = ["touch %s"]
			}
		`, marker),
	}

	result := testutil.RunPipelineTest(t, files, &testutil.RecorderModule{Reporter: recorder})

	require.NoError(t, result.Err, "skipped jobs are not failures")
	res, ok := recorder.ResultFor("gated")
	require.True(t, ok, "skipped jobs still report a terminal result")
	assert.Equal(t, model.StatusSkipped, res.Status)
	assert.False(t, res.Ran)
	assert.False(t, res.CleanupRan)

	_, err := os.Stat(marker)
	assert.True(t, os.IsNotExist(err))
}

// All conditions must hold; one false signal skips the job.
func TestGating_AllConditionsMustHold(t *testing.T) {
	recorder := &testutil.RecordingReporter{}
	files := map[string]string{
		"pipeline.hcl": `
			reporter "recorder" {}

			signals {
				unit_tests = true
				lint       = false
			}

			job "verify" {
				conditions = ["unit_tests", "lint"]
				commands   = ["true"]
			}
		`,
	}

	result := testutil.RunPipelineTest(t, files, &testutil.RecorderModule{Reporter: recorder})

	require.NoError(t, result.Err)
	res, _ := recorder.ResultFor("verify")
	assert.Equal(t, model.StatusSkipped, res.Status)
}

// --signal overrides beat the pipeline file's declared defaults.
func TestGating_SignalFlagOverridesFileDefault(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "ran")
	files := map[string]string{
		"pipeline.hcl": fmt.Sprintf(`
			signals {
				integration = false
			}

			job "it" {
				conditions = ["integration"]
				commands   = ["touch %s"]
			}
		`, marker),
	}

	result := testutil.RunPipelineTestWithConfig(t.Context(), t, files, func(cfg *app.Config) {
		cfg.SignalFlags = map[string]bool{"integration": true}
	})

	require.NoError(t, result.Err)
	assert.FileExists(t, marker)
}

// A run where every job is skipped is a successful run.
func TestGating_AllSkippedIsSuccess(t *testing.T) {
	files := map[string]string{
		"pipeline.hcl": `
			job "a" {
				conditions = ["off"]
				commands   = ["false"]
			}
			job "b" {
				conditions = ["off"]
				commands   = ["false"]
			}
		`,
	}

	result := testutil.RunPipelineTest(t, files)
	require.NoError(t, result.Err)
}

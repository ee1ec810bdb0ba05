package integration_tests

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/jobgate/internal/app"
	"github.com/vk/jobgate/internal/testutil"
)

// Malformed HCL fails the run before any job starts, with a load error
// rather than the aggregate job-failure error.
func TestErrorHandling_MalformedPipelineIsRejected(t *testing.T) {
	recorder := &testutil.RecordingReporter{}
	files := map[string]string{
		"pipeline.hcl": `
			job "broken {
				commands = ["true"]
		`,
	}

	result := testutil.RunPipelineTest(t, files, &testutil.RecorderModule{Reporter: recorder})

	require.Error(t, result.Err)
	assert.False(t, errors.Is(result.Err, app.ErrJobsFailed))
	assert.Empty(t, recorder.EventLog(), "no job may start for an unloadable pipeline")
}

func TestErrorHandling_JobWithoutCommandsIsRejected(t *testing.T) {
	files := map[string]string{
		"pipeline.hcl": `
			job "empty" {
				commands = []
			}
		`,
	}

	result := testutil.RunPipelineTest(t, files)

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "declares no commands")
}

func TestErrorHandling_DuplicateJobLabelIsRejected(t *testing.T) {
	files := map[string]string{
		"pipeline.hcl": `
			job "build" {
				commands = ["true"]
			}
			job "build" {
				commands = ["true"]
			}
		`,
	}

	result := testutil.RunPipelineTest(t, files)

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "duplicate job label")
}

// Declaring a reporter type no module registered fails the run up front.
func TestErrorHandling_UnknownReporterTypeIsRejected(t *testing.T) {
	recorder := &testutil.RecordingReporter{}
	files := map[string]string{
		"pipeline.hcl": `
			reporter "carrier_pigeon" {}

			job "build" {
				commands = ["true"]
			}
		`,
	}

	result := testutil.RunPipelineTest(t, files, &testutil.RecorderModule{Reporter: recorder})

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "unknown reporter type")
	assert.Empty(t, recorder.EventLog(), "reporter wiring is validated before any job runs")
}

func TestErrorHandling_NonBooleanSignalIsRejected(t *testing.T) {
	files := map[string]string{
		"pipeline.hcl": `
			signals {
				is_release = "yes"
			}

			job "build" {
				commands = ["true"]
			}
		`,
	}

	result := testutil.RunPipelineTest(t, files)

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "must be a boolean")
}

package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/vk/jobgate/internal/model"
)

// statusGlyphs give operators a one-glance distinction between "expected"
// (skipped) and "actionable" (failed) outcomes.
var statusGlyphs = map[model.Status]string{
	model.StatusSkipped:   "⏭",
	model.StatusSucceeded: "✅",
	model.StatusFailed:    "❌",
}

// Console renders per-job progress and a final summary to a writer.
type Console struct {
	w io.Writer
}

// NewConsole creates a console reporter writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// PipelineStarted implements Reporter.
func (c *Console) PipelineStarted(ctx context.Context, jobs []*model.Job) {
	fmt.Fprintf(c.w, "pipeline: %d job(s)\n", len(jobs))
}

// JobStarted implements Reporter.
func (c *Console) JobStarted(ctx context.Context, job *model.Job) {
	fmt.Fprintf(c.w, "▶️  %s\n", job.Label)
}

// JobFinished implements Reporter.
func (c *Console) JobFinished(ctx context.Context, result model.Result) {
	glyph := statusGlyphs[result.Status]
	switch result.Status {
	case model.StatusSkipped:
		fmt.Fprintf(c.w, "%s  %s (condition not met)\n", glyph, result.Label)
	case model.StatusFailed:
		fmt.Fprintf(c.w, "%s  %s (%s): %v\n", glyph, result.Label, result.Duration.Round(time.Millisecond), result.Err)
	default:
		fmt.Fprintf(c.w, "%s  %s (%s)\n", glyph, result.Label, result.Duration.Round(time.Millisecond))
	}
	if result.CleanupErr != nil {
		fmt.Fprintf(c.w, "⚠️  %s: cleanup failed: %v\n", result.Label, result.CleanupErr)
	}
}

// PipelineFinished implements Reporter.
func (c *Console) PipelineFinished(ctx context.Context, results []model.Result) {
	var succeeded, failed, skipped int
	for _, r := range results {
		switch r.Status {
		case model.StatusSucceeded:
			succeeded++
		case model.StatusFailed:
			failed++
		case model.StatusSkipped:
			skipped++
		}
	}
	fmt.Fprintf(c.w, "summary: %d succeeded, %d failed, %d skipped\n", succeeded, failed, skipped)
}

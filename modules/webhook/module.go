// Package webhook posts pipeline lifecycle events to an HTTP endpoint as
// JSON, one request per event. It is the reporting channel CI servers
// subscribe to for build results.
package webhook

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"resty.dev/v3"

	"github.com/vk/jobgate/internal/ctxlog"
	"github.com/vk/jobgate/internal/model"
	"github.com/vk/jobgate/internal/registry"
	"github.com/vk/jobgate/internal/report"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the reporter factory with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterReporter("webhook", NewReporter)
}

const defaultRequestTimeout = 10 * time.Second

// event is the JSON body posted for every lifecycle transition.
type event struct {
	Event   string `json:"event"`
	Label   string `json:"label,omitempty"`
	Status  string `json:"status,omitempty"`
	Error   string `json:"error,omitempty"`
	Failed  *bool  `json:"failed,omitempty"`
	JobsLen int    `json:"jobs,omitempty"`
}

// Reporter delivers events over HTTP. Each event is a fire-and-forget
// POST: a delivery failure is logged and never fails the pipeline.
type Reporter struct {
	client   *resty.Client
	endpoint string
	headers  map[string]string
}

// NewReporter builds a Reporter from a `reporter "webhook"` block.
// Recognized settings: url (required), token, timeout.
func NewReporter(ctx context.Context, settings map[string]string) (report.Reporter, error) {
	rawURL := settings["url"]
	if rawURL == "" {
		return nil, fmt.Errorf("webhook reporter requires a 'url' setting")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("webhook URL must be http or https, got %q", parsed.Scheme)
	}

	timeout := defaultRequestTimeout
	if raw := settings["timeout"]; raw != "" {
		timeout, err = time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", raw, err)
		}
	}

	headers := map[string]string{"Content-Type": "application/json"}
	if token := settings["token"]; token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	client := resty.New().SetTimeout(timeout)
	return &Reporter{client: client, endpoint: rawURL, headers: headers}, nil
}

// post delivers one event, logging and swallowing any failure.
func (r *Reporter) post(ctx context.Context, body event) {
	logger := ctxlog.FromContext(ctx).With("reporter", "webhook", "event", body.Event)

	res, err := r.client.R().
		SetContext(ctx).
		SetHeaders(r.headers).
		SetBody(body).
		Post(r.endpoint)
	if err != nil {
		logger.Warn("Webhook delivery failed", "error", err)
		return
	}
	if res.IsError() {
		logger.Warn("Webhook endpoint rejected event", "status", res.StatusCode())
		return
	}
	logger.Debug("Webhook delivered", "status", res.StatusCode())
}

// PipelineStarted implements report.Reporter.
func (r *Reporter) PipelineStarted(ctx context.Context, jobs []*model.Job) {
	r.post(ctx, event{Event: "pipeline_started", JobsLen: len(jobs)})
}

// JobStarted implements report.Reporter.
func (r *Reporter) JobStarted(ctx context.Context, job *model.Job) {
	r.post(ctx, event{Event: "job_started", Label: job.Label})
}

// JobFinished implements report.Reporter.
func (r *Reporter) JobFinished(ctx context.Context, result model.Result) {
	e := event{Event: "job_finished", Label: result.Label, Status: result.Status.String()}
	if result.Err != nil {
		e.Error = result.Err.Error()
	}
	r.post(ctx, e)
}

// PipelineFinished implements report.Reporter.
func (r *Reporter) PipelineFinished(ctx context.Context, results []model.Result) {
	failed := model.Failed(results)
	r.post(ctx, event{Event: "pipeline_finished", Failed: &failed})
	if err := r.client.Close(); err != nil {
		ctxlog.FromContext(ctx).Debug("Failed to close webhook client", "error", err)
	}
}

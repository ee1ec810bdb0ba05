// Package socketio streams pipeline lifecycle events to a Socket.IO
// server, for dashboards that want live progress instead of polling the
// status endpoint.
package socketio

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/vk/jobgate/internal/ctxlog"
	"github.com/vk/jobgate/internal/model"
	"github.com/vk/jobgate/internal/registry"
	"github.com/vk/jobgate/internal/report"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the reporter factory with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterReporter("socketio", NewReporter)
}

const defaultConnectTimeout = 10 * time.Second

// Reporter emits one event per lifecycle transition over a Socket.IO
// connection. Delivery is best-effort: emit failures are logged, never
// propagated to the pipeline.
type Reporter struct {
	io        *socket.Socket
	namespace string
	connected *atomic.Bool
}

// NewReporter builds a Reporter from a `reporter "socketio"` block.
// Recognized settings: url (required), namespace, connect_timeout,
// insecure_skip_verify.
func NewReporter(ctx context.Context, settings map[string]string) (report.Reporter, error) {
	logger := ctxlog.FromContext(ctx).With("reporter", "socketio")

	rawURL := settings["url"]
	if rawURL == "" {
		return nil, fmt.Errorf("socketio reporter requires a 'url' setting")
	}
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	timeout := defaultConnectTimeout
	if raw := settings["connect_timeout"]; raw != "" {
		timeout, err = time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid connect_timeout %q: %w", raw, err)
		}
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	opts.SetTransports(types.NewSet(transports.WebSocket))

	if raw := settings["insecure_skip_verify"]; raw != "" {
		skip, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid insecure_skip_verify %q: %w", raw, err)
		}
		if skip {
			logger.Warn("Skipping TLS certificate verification")
			opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
		}
	}

	namespace := settings["namespace"]
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)

	connected := &atomic.Bool{}
	ready := make(chan error, 1)
	io.On(types.EventName("connect"), func(...any) {
		if connected.CompareAndSwap(false, true) {
			logger.Info("Connected", "namespace", namespace, "sid", io.Id())
			ready <- nil
		}
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		if err, ok := errs[0].(error); ok {
			select {
			case ready <- err:
			default:
			}
		}
	})

	io.Connect()

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	select {
	case <-connectCtx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("timed out while waiting for initial connection to %s", baseURL)
	case err := <-ready:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("failed to connect to %s: %w", baseURL, err)
		}
	}

	return &Reporter{io: io, namespace: namespace, connected: connected}, nil
}

// emit pushes one event. Delivery past the connection check is left to
// the socket's own buffering.
func (r *Reporter) emit(ctx context.Context, event string, payload any) {
	if !r.connected.Load() {
		return
	}
	ctxlog.FromContext(ctx).Debug("Emitting event", "reporter", "socketio", "event", event)
	r.io.Emit(event, payload)
}

// PipelineStarted implements report.Reporter.
func (r *Reporter) PipelineStarted(ctx context.Context, jobs []*model.Job) {
	labels := make([]string, 0, len(jobs))
	for _, job := range jobs {
		labels = append(labels, job.Label)
	}
	r.emit(ctx, "pipeline:started", map[string]any{"jobs": labels})
}

// JobStarted implements report.Reporter.
func (r *Reporter) JobStarted(ctx context.Context, job *model.Job) {
	r.emit(ctx, "job:started", map[string]any{"label": job.Label})
}

// JobFinished implements report.Reporter.
func (r *Reporter) JobFinished(ctx context.Context, result model.Result) {
	payload := map[string]any{
		"label":       result.Label,
		"status":      result.Status.String(),
		"cleanup_ran": result.CleanupRan,
		"duration_ms": result.Duration.Milliseconds(),
	}
	if result.Err != nil {
		payload["error"] = result.Err.Error()
	}
	r.emit(ctx, "job:finished", payload)
}

// PipelineFinished implements report.Reporter.
func (r *Reporter) PipelineFinished(ctx context.Context, results []model.Result) {
	r.emit(ctx, "pipeline:finished", map[string]any{"failed": model.Failed(results)})
	r.io.Disconnect()
}

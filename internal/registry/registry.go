// Package registry provides the central glue for the reporter module
// system. It maps the type names used in `reporter` blocks to the compiled
// Go factories that build the corresponding sinks.
//
// The registry is populated at startup and then used to validate that
// every declared reporter has a matching factory, catching configuration
// drift before any job runs.
package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vk/jobgate/internal/config"
	"github.com/vk/jobgate/internal/report"
)

// Factory builds a reporter from the settings of one `reporter` block.
type Factory func(ctx context.Context, settings map[string]string) (report.Reporter, error)

// Module is the interface all reporter modules implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the reporter factories for a single application instance.
type Registry struct {
	factories map[string]Factory
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// RegisterReporter registers a factory under a type name. Registering the
// same name twice is a programmer error and panics.
func (r *Registry) RegisterReporter(name string, factory Factory) {
	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("reporter factory with name '%s' already registered", name))
	}
	slog.Debug("Registering reporter factory.", "name", name)
	r.factories[name] = factory
}

// Build instantiates every declared reporter, in declaration order.
func (r *Registry) Build(ctx context.Context, configs []config.ReporterConfig) (report.Multi, error) {
	reporters := make(report.Multi, 0, len(configs))
	for _, cfg := range configs {
		factory, ok := r.factories[cfg.Type]
		if !ok {
			return nil, fmt.Errorf("unknown reporter type '%s'", cfg.Type)
		}
		reporter, err := factory(ctx, cfg.Settings)
		if err != nil {
			return nil, fmt.Errorf("building reporter '%s': %w", cfg.Type, err)
		}
		reporters = append(reporters, reporter)
	}
	return reporters, nil
}

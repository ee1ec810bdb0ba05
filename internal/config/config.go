// Package config defines the format-agnostic pipeline configuration model
// and the Loader interface for reading it from various sources.
//
// The config.Model is the single source of truth for the app and the
// pipeline driver. Concrete loaders, such as for HCL and YAML, live in
// separate packages; the engine never touches a parser.
package config

import (
	"context"

	"github.com/vk/jobgate/internal/model"
)

// Model is the unified representation of one pipeline declaration.
type Model struct {
	// Env is the pipeline-level environment, the base every job's scope is
	// built on.
	Env map[string]string

	// Signals holds the inline signal defaults from the pipeline file.
	// They sit at the bottom of the resolution precedence; the environment
	// and CLI overrides are layered on top by the app.
	Signals model.SignalSet

	// Jobs is the ordered job list, in declaration order.
	Jobs []*model.Job

	// Reporters lists the declared reporter sinks.
	Reporters []ReporterConfig
}

// ReporterConfig is the format-agnostic representation of a `reporter`
// block. Settings are opaque to the core; each reporter module decodes the
// keys it understands.
type ReporterConfig struct {
	Type     string
	Settings map[string]string
}

// Loader is the interface for a format-specific pipeline loader.
type Loader interface {
	// Load reads the pipeline declaration from path and translates it into
	// the format-agnostic model.
	Load(ctx context.Context, path string) (*Model, error)
}

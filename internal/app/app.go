package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/vk/jobgate/internal/config"
	hclloader "github.com/vk/jobgate/internal/hcl"
	"github.com/vk/jobgate/internal/registry"
	yamlloader "github.com/vk/jobgate/internal/yaml"
)

// ErrJobsFailed is the aggregate failure: at least one job ran and failed.
// The entrypoint maps it to a non-zero process exit code.
var ErrJobsFailed = errors.New("one or more jobs failed")

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// When no modules are given, the compiled-in core modules are registered.
func NewApp(outW io.Writer, appConfig *Config, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All reporter modules registered.", "count", len(modules))

	return &App{
		outW:     outW,
		logger:   logger,
		config:   appConfig,
		registry: reg,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// loaderForPath picks the pipeline loader from the path's extension. A
// directory means a tree of .hcl files.
func loaderForPath(path string) (config.Loader, error) {
	switch filepath.Ext(path) {
	case ".hcl", "":
		return hclloader.NewLoader(), nil
	case ".yaml", ".yml":
		return yamlloader.NewLoader(), nil
	default:
		return nil, fmt.Errorf("unsupported pipeline format %q (expected .hcl, .yaml or .yml)", filepath.Ext(path))
	}
}

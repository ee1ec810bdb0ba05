// Package yaml is the YAML-specific implementation of the config.Loader
// interface, for pipelines declared in a single .yaml/.yml file.
package yaml

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vk/jobgate/internal/config"
	"github.com/vk/jobgate/internal/ctxlog"
	"github.com/vk/jobgate/internal/model"
)

// Loader loads pipeline declarations from a YAML file.
type Loader struct{}

// NewLoader creates a new YAML pipeline loader.
func NewLoader() *Loader {
	return &Loader{}
}

// yamlPipeline is the top-level document structure.
type yamlPipeline struct {
	Env       map[string]string `yaml:"env"`
	Signals   map[string]bool   `yaml:"signals"`
	Jobs      []yamlJob         `yaml:"jobs"`
	Reporters []yamlReporter    `yaml:"reporters"`
}

type yamlJob struct {
	Label      string            `yaml:"label"`
	Conditions []string          `yaml:"conditions"`
	Env        map[string]string `yaml:"env"`
	Timeout    string            `yaml:"timeout"`
	Commands   []string          `yaml:"commands"`
	Cleanup    *yamlCleanup      `yaml:"cleanup"`
}

type yamlCleanup struct {
	When     string   `yaml:"when"`
	Commands []string `yaml:"commands"`
}

type yamlReporter struct {
	Type     string            `yaml:"type"`
	Settings map[string]string `yaml:"settings"`
}

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pipeline file: %w", err)
	}

	var doc yamlPipeline
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing YAML pipeline %s: %w", path, err)
	}

	cfg := &config.Model{
		Env:     doc.Env,
		Signals: make(model.SignalSet, len(doc.Signals)),
	}
	if cfg.Env == nil {
		cfg.Env = make(map[string]string)
	}
	for name, value := range doc.Signals {
		cfg.Signals[name] = value
	}

	seenLabels := make(map[string]struct{}, len(doc.Jobs))
	for _, y := range doc.Jobs {
		job, err := translateJob(y)
		if err != nil {
			return nil, fmt.Errorf("in %s: %w", path, err)
		}
		if _, dup := seenLabels[job.Label]; dup {
			return nil, fmt.Errorf("duplicate job label %q in %s", job.Label, path)
		}
		seenLabels[job.Label] = struct{}{}
		cfg.Jobs = append(cfg.Jobs, job)
	}

	for _, r := range doc.Reporters {
		if r.Type == "" {
			return nil, fmt.Errorf("in %s: reporter with no type", path)
		}
		cfg.Reporters = append(cfg.Reporters, config.ReporterConfig{Type: r.Type, Settings: r.Settings})
	}

	logger.Debug("Pipeline loading complete.",
		"jobs", len(cfg.Jobs), "signals", len(cfg.Signals), "reporters", len(cfg.Reporters))
	return cfg, nil
}

func translateJob(y yamlJob) (*model.Job, error) {
	if y.Label == "" {
		return nil, fmt.Errorf("job with no label")
	}
	if len(y.Commands) == 0 {
		return nil, fmt.Errorf("job %q declares no commands", y.Label)
	}

	job := &model.Job{
		Label:      y.Label,
		Conditions: y.Conditions,
		Env:        y.Env,
		Commands:   y.Commands,
	}

	if y.Timeout != "" {
		timeout, err := time.ParseDuration(y.Timeout)
		if err != nil {
			return nil, fmt.Errorf("job %q: invalid timeout %q: %w", y.Label, y.Timeout, err)
		}
		job.Timeout = timeout
	}

	if y.Cleanup != nil {
		if len(y.Cleanup.Commands) == 0 {
			return nil, fmt.Errorf("job %q: cleanup block declares no commands", y.Label)
		}
		job.Cleanup = &model.Cleanup{When: y.Cleanup.When, Commands: y.Cleanup.Commands}
	}

	return job, nil
}

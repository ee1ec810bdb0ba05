// Package hcl is the HCL-specific implementation of the config.Loader
// interface. A pipeline path may be a single .hcl file or a directory;
// all discovered files are merged into one model, with job declaration
// order following sorted file order.
package hcl

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/jobgate/internal/config"
	"github.com/vk/jobgate/internal/ctxlog"
	"github.com/vk/jobgate/internal/fsutil"
	"github.com/vk/jobgate/internal/model"
)

// Loader loads pipeline declarations from .hcl files.
type Loader struct{}

// NewLoader creates a new HCL pipeline loader.
func NewLoader() *Loader {
	return &Loader{}
}

// signalsPhase extracts only the signals block so the full decode can
// evaluate expressions that reference `signals.*`.
type signalsPhase struct {
	Signals *signalsBlock `hcl:"signals,block"`
	Remain  hcl.Body      `hcl:",remain"`
}

type signalsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// fileRoot is the full top-level structure of a pipeline file.
type fileRoot struct {
	Env       map[string]string `hcl:"env,optional"`
	Signals   *signalsBlock     `hcl:"signals,block"`
	Jobs      []*jobBlock       `hcl:"job,block"`
	Reporters []*reporterBlock  `hcl:"reporter,block"`
}

type jobBlock struct {
	Label      string            `hcl:"label,label"`
	Conditions []string          `hcl:"conditions,optional"`
	Env        map[string]string `hcl:"env,optional"`
	Timeout    string            `hcl:"timeout,optional"`
	Commands   []string          `hcl:"commands"`
	Cleanup    *cleanupBlock     `hcl:"cleanup,block"`
}

type cleanupBlock struct {
	When     string   `hcl:"when,optional"`
	Commands []string `hcl:"commands"`
}

type reporterBlock struct {
	Type string   `hcl:"type,label"`
	Body hcl.Body `hcl:",remain"`
}

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("finding pipeline files in %s: %w", path, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl pipeline files found at %s", path)
	}
	logger.Debug("Discovered pipeline files.", "count", len(files))

	cfg := &config.Model{
		Env:     make(map[string]string),
		Signals: make(model.SignalSet),
	}
	parser := hclparse.NewParser()
	seenLabels := make(map[string]string)

	for _, file := range files {
		if err := l.loadFile(ctx, parser, file, cfg, seenLabels); err != nil {
			return nil, err
		}
	}

	logger.Debug("Pipeline loading complete.",
		"jobs", len(cfg.Jobs), "signals", len(cfg.Signals), "reporters", len(cfg.Reporters))
	return cfg, nil
}

// loadFile parses one file and merges its contents into cfg.
func (l *Loader) loadFile(ctx context.Context, parser *hclparse.Parser, file string, cfg *config.Model, seenLabels map[string]string) error {
	hclFile, diags := parser.ParseHCLFile(file)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
	}

	// Phase one: pull out the signals block, so the full decode can see
	// signals.* in expressions.
	var phase1 signalsPhase
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &phase1); diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
	}
	fileSignals, err := decodeSignals(phase1.Signals)
	if err != nil {
		return fmt.Errorf("in %s: %w", file, err)
	}
	evalCtx := signalsEvalContext(cfg.Signals.Merge(fileSignals))

	// Phase two: decode everything with signals in scope.
	var root fileRoot
	if diags := gohcl.DecodeBody(hclFile.Body, evalCtx, &root); diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
	}

	for name, value := range fileSignals {
		cfg.Signals[name] = value
	}
	for key, value := range root.Env {
		cfg.Env[key] = value
	}

	for _, block := range root.Jobs {
		job, err := translateJob(block)
		if err != nil {
			return fmt.Errorf("in %s: %w", file, err)
		}
		if prev, dup := seenLabels[job.Label]; dup {
			return fmt.Errorf("duplicate job label %q in %s (first declared in %s)", job.Label, file, prev)
		}
		seenLabels[job.Label] = file
		cfg.Jobs = append(cfg.Jobs, job)
	}

	for _, block := range root.Reporters {
		settings, err := decodeSettings(block.Body, evalCtx)
		if err != nil {
			return fmt.Errorf("in %s: reporter %q: %w", file, block.Type, err)
		}
		cfg.Reporters = append(cfg.Reporters, config.ReporterConfig{Type: block.Type, Settings: settings})
	}

	return nil
}

// decodeSignals reads a signals block into a SignalSet. Every attribute
// must be a statically known boolean.
func decodeSignals(block *signalsBlock) (model.SignalSet, error) {
	signals := make(model.SignalSet)
	if block == nil {
		return signals, nil
	}
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid signals block: %w", diags)
	}
	for name, attr := range attrs {
		value, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("signal %q: %w", name, diags)
		}
		if value.Type() != cty.Bool {
			return nil, fmt.Errorf("signal %q must be a boolean, got %s", name, value.Type().FriendlyName())
		}
		signals[name] = value.True()
	}
	return signals, nil
}

// signalsEvalContext exposes the resolved signals to job and reporter
// expressions as `signals.<NAME>`.
func signalsEvalContext(signals model.SignalSet) *hcl.EvalContext {
	values := make(map[string]cty.Value, len(signals))
	for name, value := range signals {
		values[name] = cty.BoolVal(value)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"signals": cty.ObjectVal(values),
		},
	}
}

// translateJob converts a decoded job block into the model, validating the
// parts gohcl cannot express.
func translateJob(block *jobBlock) (*model.Job, error) {
	if len(block.Commands) == 0 {
		return nil, fmt.Errorf("job %q declares no commands", block.Label)
	}

	job := &model.Job{
		Label:      block.Label,
		Conditions: block.Conditions,
		Env:        block.Env,
		Commands:   block.Commands,
	}

	if block.Timeout != "" {
		timeout, err := time.ParseDuration(block.Timeout)
		if err != nil {
			return nil, fmt.Errorf("job %q: invalid timeout %q: %w", block.Label, block.Timeout, err)
		}
		job.Timeout = timeout
	}

	if block.Cleanup != nil {
		if len(block.Cleanup.Commands) == 0 {
			return nil, fmt.Errorf("job %q: cleanup block declares no commands", block.Label)
		}
		job.Cleanup = &model.Cleanup{
			When:     block.Cleanup.When,
			Commands: block.Cleanup.Commands,
		}
	}

	return job, nil
}

// decodeSettings flattens a reporter block's attributes into strings.
func decodeSettings(body hcl.Body, evalCtx *hcl.EvalContext) (map[string]string, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid reporter settings: %w", diags)
	}
	settings := make(map[string]string, len(attrs))
	for name, attr := range attrs {
		value, diags := attr.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return nil, fmt.Errorf("setting %q: %w", name, diags)
		}
		str, err := convert.Convert(value, cty.String)
		if err != nil {
			return nil, fmt.Errorf("setting %q: %w", name, err)
		}
		settings[name] = str.AsString()
	}
	return settings, nil
}

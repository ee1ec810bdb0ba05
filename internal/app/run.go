package app

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/jobgate/internal/ctxlog"
	"github.com/vk/jobgate/internal/envscope"
	"github.com/vk/jobgate/internal/model"
	"github.com/vk/jobgate/internal/pipeline"
	"github.com/vk/jobgate/internal/report"
	"github.com/vk/jobgate/internal/runner"
)

// Run executes the full pipeline lifecycle: load the pipeline definition,
// resolve the run's signals, assemble reporters, and drive every job
// through the runner. It returns ErrJobsFailed when at least one job ran
// and failed.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Info("Starting pipeline run", "pipeline", a.config.PipelinePath)

	loader, err := loaderForPath(a.config.PipelinePath)
	if err != nil {
		return err
	}
	cfgModel, err := loader.Load(ctx, a.config.PipelinePath)
	if err != nil {
		return fmt.Errorf("failed to load pipeline %q: %w", a.config.PipelinePath, err)
	}
	a.logger.Debug("Pipeline loaded.", "jobs", len(cfgModel.Jobs), "reporters", len(cfgModel.Reporters))

	signals := a.resolveSignals(cfgModel.Signals, os.Environ())
	a.logger.Debug("Signals resolved.", "count", len(signals))

	reporters, err := a.registry.Build(ctx, cfgModel.Reporters)
	if err != nil {
		return fmt.Errorf("failed to build reporters: %w", err)
	}
	tracker := report.NewTracker()
	multi := append(report.Multi{report.NewConsole(a.outW), tracker}, reporters...)

	if a.config.StatusPort > 0 {
		stop := a.startStatusServer(a.config.StatusPort, tracker)
		defer stop()
	}

	baseEnv := envscope.Build(envscope.FromEnviron(os.Environ()), cfgModel.Env)

	jobRunner := runner.New(signals, baseEnv, multi)
	driver := pipeline.NewDriver(jobRunner, multi)
	results := driver.Execute(ctx, cfgModel.Jobs)

	if model.Failed(results) {
		return ErrJobsFailed
	}
	return nil
}

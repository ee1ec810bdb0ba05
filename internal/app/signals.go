package app

import (
	"strings"

	"github.com/vk/jobgate/internal/model"
)

// resolveSignals assembles the run's SignalSet. Precedence, lowest to
// highest: pipeline-file defaults, process environment (when enabled),
// explicit --signal flags.
func (a *App) resolveSignals(defaults model.SignalSet, environ []string) model.SignalSet {
	signals := defaults
	if signals == nil {
		signals = make(model.SignalSet)
	}

	if a.config.SignalsFromEnv {
		signals = signals.Merge(signalsFromEnviron(environ))
	}

	if len(a.config.SignalFlags) > 0 {
		overrides := make(model.SignalSet, len(a.config.SignalFlags))
		for name, value := range a.config.SignalFlags {
			overrides[name] = value
		}
		signals = signals.Merge(overrides)
	}

	return signals
}

// signalsFromEnviron derives signals from os.Environ-style entries. A set
// variable counts as true unless its value is "", "0" or "false".
func signalsFromEnviron(environ []string) model.SignalSet {
	signals := make(model.SignalSet)
	for _, entry := range environ {
		name, value, ok := strings.Cut(entry, "=")
		if !ok || name == "" {
			continue
		}
		signals[name] = value != "" && value != "0" && !strings.EqualFold(value, "false")
	}
	return signals
}

package app

import (
	"errors"
	"fmt"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// PipelinePath points at a pipeline file (.hcl, .yaml, .yml) or a
	// directory of .hcl files.
	PipelinePath string

	// SignalFlags are explicit --signal NAME=BOOL overrides. They win over
	// every other signal source.
	SignalFlags map[string]bool

	// SignalsFromEnv derives signals from the process environment: a
	// signal named X is true when env var X is set and not "0"/"false".
	SignalsFromEnv bool

	// StatusPort enables the HTTP status server when positive.
	StatusPort int

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.PipelinePath == "" {
		return nil, errors.New("PipelinePath is a required configuration field and cannot be empty")
	}
	if cfg.StatusPort < 0 || cfg.StatusPort > 65535 {
		return nil, fmt.Errorf("invalid status port %d", cfg.StatusPort)
	}
	return &cfg, nil
}

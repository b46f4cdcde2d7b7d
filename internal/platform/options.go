package platform

import (
	"log/slog"

	"github.com/aretw0/galaxies/pkg/core"
)

// options holds the internal configuration of a Service.
type options struct {
	logger    *slog.Logger
	manualDir string
	policy    core.DuplicatePolicy
	config    *Config
	builders  []*core.Builder
}

// Option defines a functional option for configuring a Service.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		policy: core.DuplicateError,
	}
}

// WithManualDir sets the manual download directory. It takes precedence
// over the environment and the config file.
func WithManualDir(dir string) Option {
	return func(o *options) {
		o.manualDir = dir
	}
}

// WithLogger sets the logger for the service and every builder.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDuplicatePolicy selects how repeated keys are handled by Generate.
// Defaults to core.DuplicateError.
func WithDuplicatePolicy(policy core.DuplicatePolicy) Option {
	return func(o *options) {
		o.policy = policy
	}
}

// WithConfig supplies a loaded config file.
func WithConfig(cfg *Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithBuilders replaces the built-in datasets (e.g. custom or fake builders).
func WithBuilders(builders ...*core.Builder) Option {
	return func(o *options) {
		o.builders = builders
	}
}

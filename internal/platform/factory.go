package platform

import (
	"log/slog"

	"github.com/aretw0/galaxies/pkg/core"
	"github.com/aretw0/galaxies/pkg/datasets"
)

// New wires the dataset registry, the manual directory and the config.
//
//	svc, err := galaxies.New(galaxies.WithManualDir("./manual"))
func New(opts ...Option) (*Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if o.config == nil {
		o.config = DefaultConfig()
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if _, err := core.ParseDuplicatePolicy(string(o.policy)); err != nil {
		return nil, err
	}

	manualDir, err := ResolveManualDir(o.manualDir, o.config)
	if err != nil {
		return nil, err
	}

	var registry *datasets.Registry
	if o.builders != nil {
		registry = datasets.NewRegistry(o.builders...)
	} else {
		registry = datasets.New(o.logger)
	}

	o.logger.Debug("service ready", "manual_dir", manualDir, "datasets", len(registry.All()), "on_duplicate", o.policy)
	return &Service{
		registry:  registry,
		manualDir: manualDir,
		policy:    o.policy,
		config:    o.config,
		logger:    o.logger,
	}, nil
}

package galaxies

import (
	"iter"
	"log/slog"

	"github.com/aretw0/galaxies/internal/platform"
	"github.com/aretw0/galaxies/pkg/core"
	"github.com/aretw0/galaxies/pkg/typed"
)

// --- Types ---

// Service runs dataset builders against a manual download directory.
type Service = platform.Service

// Config is the optional YAML config file.
type Config = platform.Config

// Example is one keyed record of a dataset.
type Example = core.Example

// Builder describes one dataset variant.
type Builder = core.Builder

// Model is a typed view of an example.
type Model[T any] = typed.Model[T]

// --- Configuration ---

// Option defines a functional option for configuring the Service.
type Option = platform.Option

// WithManualDir sets the manual download directory.
func WithManualDir(dir string) Option {
	return platform.WithManualDir(dir)
}

// WithLogger sets the logger for the service and every builder.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithDuplicatePolicy selects how repeated keys are handled.
func WithDuplicatePolicy(policy core.DuplicatePolicy) Option {
	return platform.WithDuplicatePolicy(policy)
}

// WithConfig supplies a loaded config file.
func WithConfig(cfg *Config) Option {
	return platform.WithConfig(cfg)
}

// WithBuilders replaces the built-in datasets.
func WithBuilders(builders ...*Builder) Option {
	return platform.WithBuilders(builders...)
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (*Config, error) {
	return platform.LoadConfig(path)
}

// --- Factory ---

// New creates a Service over the built-in datasets.
func New(opts ...Option) (*Service, error) {
	return platform.New(opts...)
}

// --- Typed access ---

// Decode maps the features of an example onto T.
func Decode[T any](ex Example) (*Model[T], error) {
	return typed.Decode[T](ex)
}

// Typed decodes every example of seq into T.
func Typed[T any](seq iter.Seq2[Example, error]) iter.Seq2[*Model[T], error] {
	return typed.Seq[T](seq)
}

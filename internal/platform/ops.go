package platform

import (
	"context"
	"iter"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/galaxies/pkg/adapters/fs"
	"github.com/aretw0/galaxies/pkg/core"
	"github.com/aretw0/galaxies/pkg/datasets"
	"github.com/aretw0/galaxies/pkg/download"
)

// Service runs the dataset builders against one manual directory.
type Service struct {
	registry  *datasets.Registry
	manualDir string
	policy    core.DuplicatePolicy
	config    *Config
	logger    *slog.Logger
}

// ManualDir returns the resolved manual download directory.
func (s *Service) ManualDir() string {
	return s.manualDir
}

// Config returns the active configuration.
func (s *Service) Config() *Config {
	return s.config
}

// Datasets returns every registered builder.
func (s *Service) Datasets() []*core.Builder {
	return s.registry.All()
}

// Names returns the full names of every registered builder.
func (s *Service) Names() []string {
	return s.registry.Names()
}

// Lookup resolves "name" or "name/config".
func (s *Service) Lookup(name string) (*core.Builder, error) {
	return s.registry.Lookup(name)
}

// Generate streams the examples of a dataset with the duplicate policy applied.
func (s *Service) Generate(ctx context.Context, name string) iter.Seq2[core.Example, error] {
	b, err := s.Lookup(name)
	if err != nil {
		return func(yield func(core.Example, error) bool) {
			yield(core.Example{}, err)
		}
	}
	s.logger.Debug("generating", "dataset", b.FullName(), "manual_dir", s.manualDir)
	return core.Dedupe(b.Generate(ctx, s.manualDir), s.policy)
}

// Count drains a dataset and returns the counters of the pass.
func (s *Service) Count(ctx context.Context, name string) (core.Stats, error) {
	b, err := s.Lookup(name)
	if err != nil {
		return core.Stats{}, err
	}
	var genErr error
	for _, err := range core.Dedupe(b.Generate(ctx, s.manualDir), s.policy) {
		if err != nil {
			genErr = err
			break
		}
	}
	stats := b.LastStats()
	if genErr != nil {
		return stats, genErr
	}
	s.logger.Info("counted", "dataset", b.FullName(), "yielded", stats.Yielded, "skipped", stats.Skipped, "filtered", stats.Filtered)
	return stats, nil
}

// DatasetDir returns the folder of the manual directory a dataset reads.
func (s *Service) DatasetDir(b *core.Builder) string {
	return filepath.Join(s.manualDir, b.Dir)
}

// Watch observes the raw data folder of a dataset.
func (s *Service) Watch(ctx context.Context, name string) (*core.Builder, <-chan core.Event, error) {
	b, err := s.Lookup(name)
	if err != nil {
		return nil, nil, err
	}
	events, err := fs.Watch(ctx, s.DatasetDir(b), "**", s.logger.With("dataset", b.FullName()))
	if err != nil {
		return nil, nil, err
	}
	return b, events, nil
}

// DownloadClient builds an HTTP client from the download settings.
func (s *Service) DownloadClient() *download.Client {
	d := s.config.Download
	return download.NewClient(
		download.WithRetries(d.Retries),
		download.WithBackoff(d.Backoff),
		download.WithTimeout(d.Timeout),
		download.WithInsecureSkipVerify(d.InsecureSkipVerify),
		download.WithLogger(s.logger),
	)
}

package core

import (
	"context"
	"errors"
	"iter"
	"sync"
	"time"
)

type contextKey string

// statsKey carries the Stats of the current generation pass.
const statsKey contextKey = "generation_stats"

// WithStats attaches stats to ctx so that joins running under it report there.
func WithStats(ctx context.Context, stats *Stats) context.Context {
	return context.WithValue(ctx, statsKey, stats)
}

func statsFor(ctx context.Context, explicit *Stats) *Stats {
	if explicit != nil {
		return explicit
	}
	if s, ok := ctx.Value(statsKey).(*Stats); ok && s != nil {
		return s
	}
	return &Stats{}
}

// SupervisedKeys names the (input, target) features of a supervised dataset.
type SupervisedKeys struct {
	Input  string `json:"input" yaml:"input"`
	Target string `json:"target" yaml:"target"`
}

// Builder is the declarative description of one dataset variant together
// with the generator that produces its examples. Dir is the folder under
// the manual directory that holds its raw data.
type Builder struct {
	Name                       string
	Config                     string
	Dir                        string
	Version                    string
	ReleaseNotes               map[string]string
	Description                string
	Homepage                   string
	Citation                   string
	ManualDownloadInstructions string
	Schema                     Dict
	SupervisedKeys             *SupervisedKeys
	Generator                  Generator

	mu      sync.RWMutex
	runs    int
	running bool
	last    Stats
	lastDir string
	lastRun *time.Time
}

// FullName returns "name/config", or just the name for single-variant datasets.
func (b *Builder) FullName() string {
	if b.Config == "" {
		return b.Name
	}
	return b.Name + "/" + b.Config
}

// Generate runs the generator over manualDir. Examples are produced lazily;
// counters are recorded when the consumer stops pulling.
func (b *Builder) Generate(ctx context.Context, manualDir string) iter.Seq2[Example, error] {
	return func(yield func(Example, error) bool) {
		if b.Generator == nil {
			yield(Example{}, errors.New("builder has no generator"))
			return
		}

		stats := &Stats{}
		b.begin(manualDir)
		defer b.finish(stats)

		for ex, err := range b.Generator.Generate(WithStats(ctx, stats), manualDir) {
			if !yield(ex, err) || err != nil {
				return
			}
		}
	}
}

func (b *Builder) begin(dir string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.running = true
	b.lastDir = dir
}

func (b *Builder) finish(stats *Stats) {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now()
	b.running = false
	b.runs++
	b.last = *stats
	b.lastRun = &now
}

// LastStats returns the counters of the most recent pass.
func (b *Builder) LastStats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.last
}

// Info describes a builder for display and documentation.
type Info struct {
	Name                       string            `json:"name" yaml:"name"`
	Config                     string            `json:"config,omitempty" yaml:"config,omitempty"`
	Dir                        string            `json:"dir,omitempty" yaml:"dir,omitempty"`
	Version                    string            `json:"version" yaml:"version"`
	ReleaseNotes               map[string]string `json:"release_notes,omitempty" yaml:"release_notes,omitempty"`
	Description                string            `json:"description" yaml:"description"`
	Homepage                   string            `json:"homepage,omitempty" yaml:"homepage,omitempty"`
	Citation                   string            `json:"citation,omitempty" yaml:"citation,omitempty"`
	ManualDownloadInstructions string            `json:"manual_download_instructions,omitempty" yaml:"manual_download_instructions,omitempty"`
	SupervisedKeys             *SupervisedKeys   `json:"supervised_keys,omitempty" yaml:"supervised_keys,omitempty"`
	Features                   FeatureInfo       `json:"features" yaml:"features"`
}

// Info returns the description of the builder.
func (b *Builder) Info() Info {
	return Info{
		Name:                       b.Name,
		Config:                     b.Config,
		Dir:                        b.Dir,
		Version:                    b.Version,
		ReleaseNotes:               b.ReleaseNotes,
		Description:                b.Description,
		Homepage:                   b.Homepage,
		Citation:                   b.Citation,
		ManualDownloadInstructions: b.ManualDownloadInstructions,
		SupervisedKeys:             b.SupervisedKeys,
		Features:                   b.Schema.Info(),
	}
}

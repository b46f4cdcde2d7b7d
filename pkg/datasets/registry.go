// Package datasets registers the builders of every galaxy dataset.
package datasets

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/aretw0/galaxies/pkg/core"
	"github.com/aretw0/galaxies/pkg/datasets/challenge"
	"github.com/aretw0/galaxies/pkg/datasets/decals"
	"github.com/aretw0/galaxies/pkg/datasets/eagle"
	"github.com/aretw0/galaxies/pkg/datasets/galaxyzoo2"
	"github.com/aretw0/galaxies/pkg/datasets/galaxyzoo3d"
	"github.com/aretw0/galaxies/pkg/datasets/gama"
)

// Registry resolves dataset names to builders. A bare name resolves to the
// first configuration of a multi-variant dataset.
type Registry struct {
	builders []*core.Builder
	byName   map[string]*core.Builder
}

// New builds every dataset with logger.
func New(logger *slog.Logger) *Registry {
	var builders []*core.Builder
	builders = append(builders, eagle.Builders(logger)...)
	builders = append(builders, galaxyzoo2.New(logger), galaxyzoo3d.New(logger))
	builders = append(builders, challenge.Builders(logger)...)
	builders = append(builders, decals.Builders(logger)...)
	builders = append(builders, gama.New(logger))
	return NewRegistry(builders...)
}

// NewRegistry indexes builders by full name and by bare name.
func NewRegistry(builders ...*core.Builder) *Registry {
	r := &Registry{byName: make(map[string]*core.Builder)}
	for _, b := range builders {
		r.builders = append(r.builders, b)
		r.byName[b.FullName()] = b
		if _, ok := r.byName[b.Name]; !ok {
			r.byName[b.Name] = b
		}
	}
	return r
}

// All returns the builders in registration order.
func (r *Registry) All() []*core.Builder {
	return append([]*core.Builder(nil), r.builders...)
}

// Names returns the full name of every builder, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for _, b := range r.builders {
		names = append(names, b.FullName())
	}
	sort.Strings(names)
	return names
}

// Lookup resolves "name" or "name/config".
func (r *Registry) Lookup(name string) (*core.Builder, error) {
	if b, ok := r.byName[strings.TrimSpace(name)]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("%w: %q", core.ErrUnknownDataset, name)
}

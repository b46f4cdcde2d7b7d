package core

import (
	"time"

	"github.com/aretw0/introspection"
)

// BuilderState exposes internal state for observability.
type BuilderState struct {
	Name      string     `json:"name"`
	Fields    int        `json:"fields"`
	Runs      int        `json:"runs"`
	Running   bool       `json:"running"`
	ManualDir string     `json:"manual_dir,omitempty"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	Last      Stats      `json:"last"`
}

// State implements introspection.Introspectable.
func (b *Builder) State() any {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return BuilderState{
		Name:      b.FullName(),
		Fields:    len(b.Schema.Fields),
		Runs:      b.runs,
		Running:   b.running,
		ManualDir: b.lastDir,
		LastRun:   b.lastRun,
		Last:      b.last,
	}
}

// ComponentType implements introspection.Component.
func (b *Builder) ComponentType() string {
	return "builder"
}

var _ introspection.Introspectable = (*Builder)(nil)
var _ introspection.Component = (*Builder)(nil)

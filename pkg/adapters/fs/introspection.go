package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// WatcherState exposes internal state for observability.
type WatcherState struct {
	Root      string     `json:"root"`
	Pattern   string     `json:"pattern"`
	Active    bool       `json:"active"`
	Workers   int        `json:"workers"`
	Emitted   int        `json:"emitted"`
	LastEvent *time.Time `json:"last_event,omitempty"`
}

// State implements introspection.Introspectable.
func (w *Watcher) State() any {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return WatcherState{
		Root:      w.Root,
		Pattern:   w.Pattern,
		Active:    w.active,
		Workers:   w.workers,
		Emitted:   w.emitted,
		LastEvent: w.lastEvent,
	}
}

// ComponentType implements introspection.Component.
func (w *Watcher) ComponentType() string {
	return "watcher"
}

var _ introspection.Introspectable = (*Watcher)(nil)
var _ introspection.Component = (*Watcher)(nil)

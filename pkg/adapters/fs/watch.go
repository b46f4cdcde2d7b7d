package fs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/lifecycle/pkg/core/supervisor"
	"github.com/aretw0/lifecycle/pkg/core/worker"

	"github.com/aretw0/galaxies/pkg/core"
)

// DefaultDebounce is the quiet period before a burst on one path is reported.
const DefaultDebounce = 50 * time.Millisecond

// Watcher reports changes below a manual download directory. The fsnotify
// worker runs under a supervisor and is restarted if it fails.
type Watcher struct {
	Root     string
	Pattern  string
	Logger   *slog.Logger
	Debounce time.Duration

	mu        sync.RWMutex
	active    bool
	workers   int
	emitted   int
	lastEvent *time.Time
}

// NewWatcher returns a watcher for root. An empty pattern matches everything.
func NewWatcher(root, pattern string, logger *slog.Logger) *Watcher {
	if pattern == "" {
		pattern = "**"
	}
	return &Watcher{Root: root, Pattern: pattern, Logger: logger}
}

// Watch starts watching and returns the event channel. The channel is
// closed after ctx is cancelled and the worker has stopped.
func (w *Watcher) Watch(ctx context.Context) (<-chan core.Event, error) {
	if !isDir(w.Root) {
		return nil, fmt.Errorf("%w: %s", core.ErrNoManualData, w.Root)
	}

	events := make(chan core.Event)
	spec := supervisor.Spec{
		Name: "fs-watcher",
		Type: string(worker.TypeGoroutine),
		Factory: func() (worker.Worker, error) {
			w.mu.Lock()
			w.workers++
			w.mu.Unlock()
			return newWatchWorker(w, events), nil
		},
		Backoff: supervisor.Backoff{
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     2 * time.Second,
			Multiplier:      2,
			ResetDuration:   time.Minute,
			MaxRestarts:     5,
			MaxDuration:     5 * time.Minute,
		},
		RestartPolicy: supervisor.RestartOnFailure,
	}

	sup := supervisor.New("watch:"+w.Root, supervisor.StrategyOneForOne, spec)
	if err := sup.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start watcher: %w", err)
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := sup.Stop(stopCtx)
		close(events)
		return err
	}, lifecycle.WithErrorHandler(func(err error) {
		w.logger().Error("watcher shutdown failed", "root", w.Root, "error", err)
	}))

	return events, nil
}

// Watch is a shorthand for NewWatcher(root, pattern, logger).Watch(ctx).
func Watch(ctx context.Context, root, pattern string, logger *slog.Logger) (<-chan core.Event, error) {
	return NewWatcher(root, pattern, logger).Watch(ctx)
}

func (w *Watcher) debounce() time.Duration {
	if w.Debounce <= 0 {
		return DefaultDebounce
	}
	return w.Debounce
}

func (w *Watcher) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return w.Logger
}

func (w *Watcher) setActive(active bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active = active
}

func (w *Watcher) recordEvent() {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := time.Now()
	w.emitted++
	w.lastEvent = &now
}

package fs

import (
	"sync"
	"time"

	"github.com/aretw0/galaxies/pkg/core"
)

// debouncer coalesces bursts of events per path and fires the latest one
// once the path has been quiet for delay.
type debouncer struct {
	delay   time.Duration
	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending map[string]core.Event
	stopped bool
	wg      sync.WaitGroup
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:   delay,
		timers:  make(map[string]*time.Timer),
		pending: make(map[string]core.Event),
	}
}

func (d *debouncer) add(e core.Event, fire func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.pending[e.Path] = merge(d.pending[e.Path], e)
	if t, ok := d.timers[e.Path]; ok {
		if t.Stop() {
			t.Reset(d.delay)
			return
		}
		// The timer already fired and its callback owns the WaitGroup slot.
	}

	d.wg.Add(1)
	d.timers[e.Path] = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.mu.Lock()
		ev, ok := d.pending[e.Path]
		delete(d.pending, e.Path)
		delete(d.timers, e.Path)
		stopped := d.stopped
		d.mu.Unlock()
		if ok && !stopped {
			fire(ev)
		}
	})
}

// merge keeps a CREATE followed by writes as a CREATE.
func merge(prev, next core.Event) core.Event {
	if prev.Type == core.EventCreate && next.Type == core.EventModify {
		next.Type = core.EventCreate
	}
	return next
}

// stopAndWait drops pending events and waits for in-flight callbacks.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for path, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, path)
	}
	d.pending = make(map[string]core.Event)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}

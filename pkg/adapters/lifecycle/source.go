package lifecycle

import (
	"context"
	"fmt"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/galaxies/pkg/core"
)

// Change is the batch of manual directory events that arrived together for
// one dataset.
type Change struct {
	Dataset string
	Events  []core.Event
}

func (c Change) String() string {
	if len(c.Events) == 1 {
		return fmt.Sprintf("%s: %s", c.Dataset, c.Events[0])
	}
	return fmt.Sprintf("%s: %d changes, last %s", c.Dataset, len(c.Events), c.Events[len(c.Events)-1])
}

type changeSource struct {
	dataset string
	events  <-chan core.Event
	out     chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits a Change per burst of
// events. Events already queued when one arrives join the same Change.
func NewSource(dataset string, events <-chan core.Event) lifecycle.Source {
	return &changeSource{
		dataset: dataset,
		events:  events,
		out:     make(chan lifecycle.Event),
	}
}

func (s *changeSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *changeSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				batch, open := s.drain([]core.Event{e})
				select {
				case s.out <- Change{Dataset: s.dataset, Events: batch}:
				case <-ctx.Done():
					return nil
				}
				if !open {
					return nil
				}
			}
		}
	})
	return nil
}

// drain appends every event that is ready without blocking.
func (s *changeSource) drain(batch []core.Event) ([]core.Event, bool) {
	for {
		select {
		case e, ok := <-s.events:
			if !ok {
				return batch, false
			}
			batch = append(batch, e)
		default:
			return batch, true
		}
	}
}

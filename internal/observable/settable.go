package observable

import (
	"context"
	"slices"
	"sync"

	"github.com/Iron-Ham/gamedex/internal/errors"
	"github.com/Iron-Ham/gamedex/internal/stream"
)

// SettableList is the view-side mirror of a List. It is seeded once and then
// kept in sync by replaying structural events, so a view never needs the
// full content re-sent on every change.
type SettableList[T any] struct {
	mu       sync.Mutex
	items    []T
	eq       func(a, b T) bool
	onChange func(ev ListEvent[T], items []T)
}

// NewSettableList creates an empty mirror using eq for item identity.
func NewSettableList[T any](eq func(a, b T) bool) *SettableList[T] {
	return &SettableList[T]{eq: eq}
}

// OnChange registers a callback invoked after every applied event with the
// event and the new content. Typically used by a view to schedule a redraw.
func (s *SettableList[T]) OnChange(fn func(ev ListEvent[T], items []T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Items returns the current mirrored content. The caller must not modify it.
func (s *SettableList[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items
}

// SetAll replaces the mirrored content.
func (s *SettableList[T]) SetAll(items []T) {
	_ = s.Apply(ItemsSet[T]{Items: slices.Clone(items)}) // ItemsSet cannot fail
}

// Apply replays one structural event on the mirror.
func (s *SettableList[T]) Apply(ev ListEvent[T]) error {
	s.mu.Lock()
	next, err := Apply(s.items, ev, s.eq)
	if err != nil {
		s.mu.Unlock()
		return errors.Wrap(err, "settable list out of sync")
	}
	s.items = next
	onChange := s.onChange
	s.mu.Unlock()

	if onChange != nil {
		onChange(ev, next)
	}
	return nil
}

// Bind seeds the mirror from src and applies every later change until ctx is
// done or src is closed. It returns once seeding is complete; events are
// applied on a goroutine owned by the binding. The returned channel carries
// the first replay error, if any, and is closed when the binding stops.
func (s *SettableList[T]) Bind(ctx context.Context, src *List[T]) <-chan error {
	snapshot, sub := src.SnapshotAndSubscribe()
	s.SetAll(snapshot)

	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		defer sub.Close()
		for {
			ev, err := sub.Next(ctx)
			if err != nil {
				return
			}
			if err := s.Apply(ev); err != nil {
				errc <- err
				return
			}
		}
	}()
	return errc
}

// Seed is Bind without the goroutine: it seeds the mirror and hands back the
// subscription so the caller can apply events on its own schedule.
func (s *SettableList[T]) Seed(src *List[T], opts ...stream.Option) *stream.Subscription[ListEvent[T]] {
	snapshot, sub := src.SnapshotAndSubscribe(opts...)
	s.SetAll(snapshot)
	return sub
}

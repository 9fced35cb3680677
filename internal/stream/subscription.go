package stream

import (
	"context"
	"sync"

	"github.com/Iron-Ham/gamedex/internal/errors"
)

// Option configures a subscription.
type Option func(*options)

type options struct {
	conflate bool
}

// Conflate keeps only the newest undelivered value. A slow consumer observes
// the latest state and never accumulates a backlog.
func Conflate() Option {
	return func(o *options) { o.conflate = true }
}

// sink receives values pushed by a source. push returns false once the sink
// no longer accepts values; end is called when the source finishes.
type sink[T any] interface {
	push(v T) bool
	end()
}

// Subscription is one consumer's view of a stream. It is safe for concurrent
// use, but values are meant to be consumed by a single reader.
type Subscription[T any] struct {
	mu       sync.Mutex
	queue    []T
	conflate bool
	closed   bool // closed by the consumer; pending values are dropped
	ended    bool // ended by the source; pending values remain readable
	notify   chan struct{}
	done     chan struct{}
	doneOnce sync.Once
	detach   func()
}

func newSubscription[T any](opts []Option) *Subscription[T] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	return &Subscription[T]{
		conflate: o.conflate,
		notify:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// subscribe attaches a fresh subscription to a source.
func subscribe[T any](src Stream[T], opts []Option) *Subscription[T] {
	sub := newSubscription[T](opts)
	detach := src.attach(sub)
	sub.mu.Lock()
	sub.detach = detach
	sub.mu.Unlock()
	return sub
}

func (s *Subscription[T]) push(v T) bool {
	s.mu.Lock()
	if s.closed || s.ended {
		s.mu.Unlock()
		return false
	}
	if s.conflate {
		var zero T
		for i := range s.queue {
			s.queue[i] = zero
		}
		s.queue = append(s.queue[:0], v)
	} else {
		s.queue = append(s.queue, v)
	}
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
	return true
}

// end marks the subscription as finished by its source. Values already queued
// are still delivered before Next reports closure.
func (s *Subscription[T]) end() {
	s.mu.Lock()
	s.ended = true
	s.mu.Unlock()
	s.doneOnce.Do(func() { close(s.done) })
}

// Next blocks until a value is available, the subscription is closed, or ctx
// is done. It returns errors.ErrSubscriptionClosed once no more values will
// arrive.
func (s *Subscription[T]) Next(ctx context.Context) (T, error) {
	var zero T
	for {
		if v, ok := s.TryNext(); ok {
			return v, nil
		}
		s.mu.Lock()
		finished := s.closed || s.ended
		s.mu.Unlock()
		if finished {
			// A value may have raced in between TryNext and the check.
			if v, ok := s.TryNext(); ok {
				return v, nil
			}
			return zero, errors.ErrSubscriptionClosed
		}

		select {
		case <-s.notify:
		case <-s.done:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// TryNext returns the next queued value without blocking.
func (s *Subscription[T]) TryNext() (T, bool) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || len(s.queue) == 0 {
		return zero, false
	}
	v := s.queue[0]
	s.queue[0] = zero
	s.queue = s.queue[1:]
	return v, true
}

// Ready returns a channel that receives a signal whenever new values were
// queued. Intended for select loops combined with TryNext.
func (s *Subscription[T]) Ready() <-chan struct{} {
	return s.notify
}

// Done is closed when the subscription is closed by either side.
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}

// Pending returns the number of queued, undelivered values.
func (s *Subscription[T]) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Close detaches the subscription from its source and drops pending values.
// It is idempotent.
func (s *Subscription[T]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.queue = nil
	detach := s.detach
	s.detach = nil
	s.mu.Unlock()

	if detach != nil {
		detach()
	}
	s.doneOnce.Do(func() { close(s.done) })
}

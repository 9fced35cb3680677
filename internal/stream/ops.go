package stream

import (
	"sync"

	"golang.org/x/time/rate"
)

// sinkFunc adapts a push function and an end function into a sink.
type sinkFunc[T any] struct {
	pushFn func(T) bool
	endFn  func()
}

func (s sinkFunc[T]) push(v T) bool { return s.pushFn(v) }
func (s sinkFunc[T]) end()          { s.endFn() }

// derived is a stream defined by how it attaches to upstream sources.
type derived[T any] struct {
	attachFn func(sink[T]) func()
}

func (d derived[T]) Subscribe(opts ...Option) *Subscription[T] {
	return subscribe[T](d, opts)
}

func (d derived[T]) attach(s sink[T]) func() {
	return d.attachFn(s)
}

// FilterMap derives a stream that forwards f(v) for every upstream value for
// which f reports true. f runs on the publisher's goroutine.
func FilterMap[T, U any](src Stream[T], f func(T) (U, bool)) Stream[U] {
	return derived[U]{attachFn: func(down sink[U]) func() {
		return src.attach(sinkFunc[T]{
			pushFn: func(v T) bool {
				u, ok := f(v)
				if !ok {
					return true
				}
				return down.push(u)
			},
			endFn: down.end,
		})
	}}
}

// Map derives a stream of f(v) for every upstream value.
func Map[T, U any](src Stream[T], f func(T) U) Stream[U] {
	return FilterMap(src, func(v T) (U, bool) { return f(v), true })
}

// Filter derives a stream of the upstream values satisfying pred.
func Filter[T any](src Stream[T], pred func(T) bool) Stream[T] {
	return FilterMap(src, func(v T) (T, bool) { return v, pred(v) })
}

// Merge derives a stream carrying the values of every source. Order is
// preserved per source; no order is defined across sources. The merged
// stream ends when every source has ended.
func Merge[T any](srcs ...Stream[T]) Stream[T] {
	return derived[T]{attachFn: func(down sink[T]) func() {
		var (
			mu        sync.Mutex
			remaining = len(srcs)
		)
		if remaining == 0 {
			down.end()
			return func() {}
		}

		detaches := make([]func(), 0, len(srcs))
		for _, src := range srcs {
			detaches = append(detaches, src.attach(sinkFunc[T]{
				pushFn: down.push,
				endFn: func() {
					mu.Lock()
					remaining--
					last := remaining == 0
					mu.Unlock()
					if last {
						down.end()
					}
				},
			}))
		}
		return func() {
			for _, detach := range detaches {
				detach()
			}
		}
	}}
}

// Throttle derives a stream that drops values arriving faster than limit
// allows. Each subscription gets its own token bucket of the given burst.
// Dropped values are discarded, never queued.
func Throttle[T any](src Stream[T], limit rate.Limit, burst int) Stream[T] {
	if burst < 1 {
		burst = 1
	}
	return derived[T]{attachFn: func(down sink[T]) func() {
		limiter := rate.NewLimiter(limit, burst)
		return src.attach(sinkFunc[T]{
			pushFn: func(v T) bool {
				if !limiter.Allow() {
					return true
				}
				return down.push(v)
			},
			endFn: down.end,
		})
	}}
}

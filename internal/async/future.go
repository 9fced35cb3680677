// Package async provides Future, the deferred result returned by domain
// mutations.
//
// A mutation commits its change and publishes its events inside the domain
// service. The Future only reports the outcome, so a caller that stops
// waiting never leaves the service half-updated.
package async

import (
	"context"

	"github.com/sourcegraph/conc/panics"

	"github.com/Iron-Ham/gamedex/internal/errors"
)

// Future is the result of a computation that completes at most once.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Go runs fn on a new goroutine and returns its Future. A panic in fn
// completes the Future with an error wrapping errors.ErrHandlerPanic.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		var (
			v   T
			err error
		)
		if r := panics.Try(func() { v, err = fn(ctx) }); r != nil {
			var zero T
			v, err = zero, errors.PanicError(r.Value)
		}
		f.complete(v, err)
	}()
	return f
}

// Failed returns a Future already completed with err.
func Failed[T any](err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	var zero T
	f.complete(zero, err)
	return f
}

func (f *Future[T]) complete(v T, err error) {
	f.value, f.err = v, err
	close(f.done)
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the result is available or ctx is done. Giving up on the
// wait does not cancel the computation.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

package viewsession

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/panics"

	"github.com/Iron-Ham/gamedex/internal/async"
	"github.com/Iron-Ham/gamedex/internal/errors"
	"github.com/Iron-Ham/gamedex/internal/event"
	"github.com/Iron-Ham/gamedex/internal/stream"
)

// Handler processes one stream element inside the session turn.
type Handler[T any] func(ctx context.Context, v T) error

// turn is held by exactly one running handler invocation.
type turn struct {
	session *Session
	held    bool
}

type turnKey struct{}

func withTurn(ctx context.Context, t *turn) context.Context {
	return context.WithValue(ctx, turnKey{}, t)
}

func turnFrom(ctx context.Context) *turn {
	t, _ := ctx.Value(turnKey{}).(*turn)
	return t
}

func (t *turn) end() {
	if t.held {
		t.held = false
		t.session.exec.release()
	}
}

// FromContext returns the session whose handler ctx belongs to, or nil.
func FromContext(ctx context.Context) *Session {
	if t := turnFrom(ctx); t != nil {
		return t.session
	}
	return nil
}

// invoke runs fn with supervisor isolation: an error or panic becomes a
// HandlerFailure and nothing else is affected.
func (s *Session) invoke(ctx context.Context, name string, fn func(context.Context) error) {
	var (
		err     error
		catcher panics.Catcher
	)
	catcher.Try(func() { err = fn(ctx) })

	if r := catcher.Recovered(); r != nil {
		s.report(errors.NewHandlerFailure(s.String(), name, errors.PanicError(r.Value)).
			WithStack(string(r.Stack)).
			WithSeverity(errors.SeverityCritical))
		return
	}
	if err == nil {
		return
	}
	if s.ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, errors.ErrSessionDestroyed)) {
		// The session is going away; the handler only observed that.
		return
	}
	s.report(errors.NewHandlerFailure(s.String(), name, err))
}

// runTurn waits for the turn and runs fn while holding it.
func (s *Session) runTurn(name string, fn func(context.Context) error) {
	if err := s.exec.acquire(s.ctx); err != nil {
		return
	}
	t := &turn{session: s, held: true}
	defer t.end()
	s.invoke(withTurn(s.ctx, t), name, fn)
}

// Collect runs handler for every element src publishes after the call, in
// order, inside the session turn. A failing handler is reported and the
// subscription keeps receiving. Collecting stops when the session is
// destroyed or src ends.
func Collect[T any](s *Session, name string, src stream.Stream[T], handler Handler[T]) error {
	return collect(s, name, src.Subscribe(), handler)
}

// CollectLatest is Collect for state streams: while handler runs, only the
// newest pending element is kept.
func CollectLatest[T any](s *Session, name string, src stream.Stream[T], handler Handler[T]) error {
	return collect(s, name, src.Subscribe(stream.Conflate()), handler)
}

func collect[T any](s *Session, name string, sub *stream.Subscription[T], handler Handler[T]) error {
	err := s.spawn("Collect", func() {
		defer sub.Close()
		for {
			v, err := sub.Next(s.ctx)
			if err != nil {
				return
			}
			s.runTurn(name, func(ctx context.Context) error { return handler(ctx, v) })
		}
	})
	if err != nil {
		sub.Close()
	}
	return err
}

// Launch runs job once inside the session turn. Jobs launched from the same
// goroutine start in launch order.
func Launch(s *Session, name string, job func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateDestroyed {
		return s.precondition("Launch", errors.ErrSessionDestroyed)
	}
	s.scheduleLocked(name, []Hook{job})
	return nil
}

// Await runs fn with the session turn released, so other handlers of the
// session proceed while fn blocks, and takes the turn back before returning.
// Outside a handler it simply calls fn.
//
// Await must be called from the handler's own goroutine. When the session
// is destroyed while fn runs, Await returns the cancellation error.
func Await[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	t := turnFrom(ctx)
	if t == nil || !t.held {
		return fn(ctx)
	}

	t.held = false
	t.session.exec.release()

	v, err := fn(ctx)

	if aerr := t.session.exec.acquire(ctx); aerr != nil {
		var zero T
		return zero, errors.Wrap(aerr, "resume after await")
	}
	t.held = true
	return v, err
}

// Pending is an event wait registered with ExpectEvent.
type Pending[E event.Event] struct {
	wait   func(context.Context) (E, error)
	cancel func()
}

// ExpectEvent subscribes to the next event of type E matching pred without
// waiting for it. Register the expectation before triggering whatever
// answers it, then suspend with Wait. The session's AwaitTimeout applies
// when ctx belongs to a session handler.
func ExpectEvent[E event.Event](ctx context.Context, bus *event.Bus, pred func(E) bool) *Pending[E] {
	if s := FromContext(ctx); s != nil && s.config.AwaitTimeout > 0 {
		x := event.ExpectWithin(bus, s.config.AwaitTimeout, pred)
		return &Pending[E]{wait: x.Wait, cancel: x.Cancel}
	}
	x := event.Expect(bus, pred)
	return &Pending[E]{wait: x.Wait, cancel: x.Cancel}
}

// Wait suspends the handler until the event arrives.
func (p *Pending[E]) Wait(ctx context.Context) (E, error) {
	return Await(ctx, p.wait)
}

// Cancel drops the expectation without waiting.
func (p *Pending[E]) Cancel() {
	p.cancel()
}

// AwaitEvent suspends the handler until the next event of type E matching
// pred is published. The subscription is made before the turn is released,
// so an event published by another handler of the session is not missed.
func AwaitEvent[E event.Event](ctx context.Context, bus *event.Bus, pred func(E) bool) (E, error) {
	return ExpectEvent(ctx, bus, pred).Wait(ctx)
}

// AwaitFuture suspends the handler until f completes.
func AwaitFuture[T any](ctx context.Context, f *async.Future[T]) (T, error) {
	return Await(ctx, f.Await)
}

// Sleep suspends the handler for d.
func Sleep(ctx context.Context, d time.Duration) error {
	_, err := Await(ctx, func(ctx context.Context) (struct{}, error) {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			return struct{}{}, nil
		case <-ctx.Done():
			return struct{}{}, ctx.Err()
		}
	})
	return err
}

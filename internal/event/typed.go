package event

import (
	"context"
	"time"

	"github.com/Iron-Ham/gamedex/internal/errors"
	"github.com/Iron-Ham/gamedex/internal/stream"
)

// TypeOf returns the key of the concrete event type E.
// E must be a concrete event type, not a family interface.
func TypeOf[E Event]() string {
	var zero E
	return zero.EventType()
}

// StreamOf returns the events of exactly type E.
func StreamOf[E Event](b *Bus) stream.Stream[E] {
	return stream.FilterMap(b.Stream(TypeOf[E]()), func(ev Event) (E, bool) {
		e, ok := ev.(E)
		return e, ok
	})
}

// StreamOfFamily merges the streams of the given event types and presents
// them as the family interface F. Events that do not implement F are dropped.
func StreamOfFamily[F Event](b *Bus, types ...string) stream.Stream[F] {
	srcs := make([]stream.Stream[F], 0, len(types))
	for _, t := range types {
		srcs = append(srcs, stream.FilterMap(b.Stream(t), func(ev Event) (F, bool) {
			f, ok := ev.(F)
			return f, ok
		}))
	}
	return stream.Merge(srcs...)
}

// GameEvents returns the GameEvent family stream.
func GameEvents(b *Bus) stream.Stream[GameEvent] {
	return StreamOfFamily[GameEvent](b, GameEventTypes...)
}

// LibraryEvents returns the LibraryEvent family stream.
func LibraryEvents(b *Bus) stream.Stream[LibraryEvent] {
	return StreamOfFamily[LibraryEvent](b, LibraryEventTypes...)
}

// ViewEvents returns the ViewEvent family stream.
func ViewEvents(b *Bus) stream.Stream[ViewEvent] {
	return StreamOfFamily[ViewEvent](b, ViewEventTypes...)
}

// Expectation is a pending wait for the next event of type E matching a
// predicate. It starts observing the bus when created, so an event published
// between Expect and Wait is not missed.
type Expectation[E Event] struct {
	sub  *stream.Subscription[E]
	pred func(E) bool
}

// Expect starts observing b for the next E satisfying pred. A nil pred
// matches every E. Call Wait to receive the event or Cancel to give up.
func Expect[E Event](b *Bus, pred func(E) bool) *Expectation[E] {
	if pred == nil {
		pred = func(E) bool { return true }
	}
	return &Expectation[E]{
		sub:  StreamOf[E](b).Subscribe(),
		pred: pred,
	}
}

// Wait blocks until a matching event arrives, ctx is done or the bus is
// closed. Non-matching events are discarded. The expectation is spent after
// Wait returns.
func (x *Expectation[E]) Wait(ctx context.Context) (E, error) {
	defer x.sub.Close()

	var zero E
	for {
		ev, err := x.sub.Next(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return zero, errors.Wrapf(ctxErr, "await %s", TypeOf[E]())
			}
			return zero, errors.Wrapf(errors.ErrBusClosed, "await %s", TypeOf[E]())
		}
		if x.pred(ev) {
			return ev, nil
		}
	}
}

// Cancel stops observing the bus.
func (x *Expectation[E]) Cancel() {
	x.sub.Close()
}

// AwaitEvent blocks until the next E satisfying pred is published after the
// call. The bus imposes no timeout; pass a ctx with a deadline, or use
// AwaitEventTimeout, when the event may never come.
func AwaitEvent[E Event](ctx context.Context, b *Bus, pred func(E) bool) (E, error) {
	return Expect(b, pred).Wait(ctx)
}

// AwaitEventTimeout is AwaitEvent bounded by d. When d elapses first it
// returns a *errors.TimeoutError.
func AwaitEventTimeout[E Event](ctx context.Context, b *Bus, d time.Duration, pred func(E) bool) (E, error) {
	return ExpectWithin(b, d, pred).Wait(ctx)
}

// TimedExpectation is an Expectation bounded by a duration measured from its
// creation.
type TimedExpectation[E Event] struct {
	*Expectation[E]
	timeout  time.Duration
	deadline time.Time
}

// ExpectWithin is Expect with a timeout. A non-positive d means no timeout.
func ExpectWithin[E Event](b *Bus, d time.Duration, pred func(E) bool) *TimedExpectation[E] {
	return &TimedExpectation[E]{
		Expectation: Expect(b, pred),
		timeout:     d,
		deadline:    time.Now().Add(d),
	}
}

// Wait is Expectation.Wait that fails with a *errors.TimeoutError once the
// timeout has elapsed.
func (x *TimedExpectation[E]) Wait(ctx context.Context) (E, error) {
	if x.timeout <= 0 {
		return x.Expectation.Wait(ctx)
	}

	waitCtx, cancel := context.WithDeadline(ctx, x.deadline)
	defer cancel()

	ev, err := x.Expectation.Wait(waitCtx)
	if err != nil && ctx.Err() == nil && errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
		var zero E
		return zero, errors.NewTimeoutError("await "+TypeOf[E](), x.timeout).WithCause(err)
	}
	return ev, err
}

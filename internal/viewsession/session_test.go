package viewsession

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/gamedex/internal/errors"
	"github.com/Iron-Ham/gamedex/internal/event"
	"github.com/Iron-Ham/gamedex/internal/logging"
	"github.com/Iron-Ham/gamedex/internal/stream"
)

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for value")
		panic("unreachable")
	}
}

func newSession(t *testing.T, name string, cfg Config) *Session {
	t.Helper()
	s := New(name, cfg)
	t.Cleanup(func() { _ = s.Destroy() })
	return s
}

func collectFailures(ch chan<- *errors.HandlerFailure) ErrorHandler {
	return func(_ *Session, f *errors.HandlerFailure) { ch <- f }
}

func TestSession_LifecycleSequence(t *testing.T) {
	s := New("library", Config{})
	assert.Equal(t, StateNotShown, s.State())

	require.NoError(t, s.OnShow())
	assert.Equal(t, StateShowing, s.State())
	require.NoError(t, s.OnHide())
	assert.Equal(t, StateHidden, s.State())
	require.NoError(t, s.OnShow())
	require.NoError(t, s.Destroy())
	assert.Equal(t, StateDestroyed, s.State())

	err := s.Destroy()
	assert.True(t, errors.IsPrecondition(err))
	assert.ErrorIs(t, err, errors.ErrSessionDestroyed)

	err = s.OnShow()
	assert.True(t, errors.IsPrecondition(err))
	assert.ErrorIs(t, err, errors.ErrSessionDestroyed)
}

func TestSession_LifecycleGuard(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *Session)
		call  func(s *Session) error
		want  error
	}{
		{"show twice", func(s *Session) { _ = s.OnShow() }, (*Session).OnShow, errors.ErrAlreadyShowing},
		{"hide before show", func(*Session) {}, (*Session).OnHide, errors.ErrNotShowing},
		{"hide twice", func(s *Session) { _ = s.OnShow(); _ = s.OnHide() }, (*Session).OnHide, errors.ErrNotShowing},
		{"hide after destroy", func(s *Session) { _ = s.Destroy() }, (*Session).OnHide, errors.ErrSessionDestroyed},
		{"collect after destroy", func(s *Session) { _ = s.Destroy() }, func(s *Session) error {
			return Collect(s, "late", stream.NewHub[int](), func(context.Context, int) error { return nil })
		}, errors.ErrSessionDestroyed},
		{"launch after destroy", func(s *Session) { _ = s.Destroy() }, func(s *Session) error {
			return Launch(s, "late", func(context.Context) error { return nil })
		}, errors.ErrSessionDestroyed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(t, "guard", Config{})
			tt.setup(s)
			before := s.State()

			err := tt.call(s)
			require.Error(t, err)
			assert.True(t, errors.IsPrecondition(err))
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, s.State(), "a rejected call must not change state")
		})
	}
}

func TestSession_HooksRunOncePerTransitionInOrder(t *testing.T) {
	s := newSession(t, "hooks", Config{})
	calls := make(chan string, 8)
	s.OnShowHook(func(context.Context) error { calls <- "show"; return nil })
	s.OnHideHook(func(context.Context) error { calls <- "hide"; return nil })

	require.NoError(t, s.OnShow())
	require.NoError(t, s.OnHide())
	require.NoError(t, s.OnShow())

	assert.Equal(t, "show", recv(t, calls))
	assert.Equal(t, "hide", recv(t, calls))
	assert.Equal(t, "show", recv(t, calls))
	assert.Len(t, calls, 0)
}

func TestSession_FaultIsolation(t *testing.T) {
	failures := make(chan *errors.HandlerFailure, 8)
	s := newSession(t, "isolation", Config{ErrorHandler: collectFailures(failures)})

	a := stream.NewHub[int]()
	b := stream.NewHub[string]()
	gotA := make(chan int, 8)
	gotB := make(chan string, 8)

	require.NoError(t, Collect(s, "a", a, func(_ context.Context, v int) error {
		switch v {
		case 1:
			panic("a exploded")
		case 2:
			return errors.New("a failed")
		}
		gotA <- v
		return nil
	}))
	require.NoError(t, Collect(s, "b", b, func(_ context.Context, v string) error {
		gotB <- v
		return nil
	}))

	a.Publish(1)
	b.Publish("still here")
	assert.Equal(t, "still here", recv(t, gotB))

	f := recv(t, failures)
	assert.Equal(t, "a", f.Handler)
	assert.True(t, f.Panicked())
	assert.NotEmpty(t, f.Stack)

	a.Publish(2)
	f = recv(t, failures)
	assert.False(t, f.Panicked())
	assert.Contains(t, f.Error(), "a failed")

	a.Publish(3)
	assert.Equal(t, 3, recv(t, gotA), "the failing subscription keeps receiving")
	assert.Equal(t, 2, s.Failures().Len())
}

func TestSession_OneHandlerAtATime(t *testing.T) {
	s := newSession(t, "turn", Config{})
	src := stream.NewHub[int]()

	var running, peak atomic.Int32
	done := make(chan struct{}, 128)
	handler := func(context.Context, int) error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(50 * time.Microsecond)
		running.Add(-1)
		done <- struct{}{}
		return nil
	}
	for i := range 4 {
		require.NoError(t, Collect(s, fmt.Sprintf("c%d", i), src, handler))
	}

	for i := range 25 {
		src.Publish(i)
	}
	for range 100 {
		recv(t, done)
	}
	assert.Equal(t, int32(1), peak.Load())
}

func TestSession_CollectPreservesOrder(t *testing.T) {
	s := newSession(t, "order", Config{})
	src := stream.NewHub[int]()
	got := make(chan int, 100)

	require.NoError(t, Collect(s, "ordered", src, func(_ context.Context, v int) error {
		got <- v
		return nil
	}))
	for i := range 100 {
		src.Publish(i)
	}
	for i := range 100 {
		assert.Equal(t, i, recv(t, got))
	}
}

func TestAwait_ReleasesTurn(t *testing.T) {
	s := newSession(t, "await", Config{})
	release := make(chan struct{})
	resumed := make(chan error, 1)
	other := make(chan struct{})

	require.NoError(t, Launch(s, "waiter", func(ctx context.Context) error {
		_, err := Await(ctx, func(context.Context) (struct{}, error) {
			<-release
			return struct{}{}, nil
		})
		resumed <- err
		return err
	}))
	require.NoError(t, Launch(s, "other", func(context.Context) error {
		close(other)
		return nil
	}))

	recv(t, other)
	close(release)
	assert.NoError(t, recv(t, resumed))
}

func TestAwait_OutsideHandler(t *testing.T) {
	v, err := Await(context.Background(), func(context.Context) (int, error) { return 3, nil })
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.Nil(t, FromContext(context.Background()))
}

func TestAwaitEvent_AnsweredBySibling(t *testing.T) {
	bus := event.NewBus()
	defer bus.Close()
	s := newSession(t, "confirm-flow", Config{Bus: bus})
	answered := make(chan event.ConfirmAnswered, 1)

	require.NoError(t, Launch(s, "ask", func(ctx context.Context) error {
		ans, err := AwaitEvent(ctx, bus, func(e event.ConfirmAnswered) bool { return e.RequestID == "r1" })
		if err != nil {
			return err
		}
		answered <- ans
		return nil
	}))
	require.NoError(t, Launch(s, "answer", func(context.Context) error {
		bus.Publish(event.NewConfirmAnswered("r0", false))
		bus.Publish(event.NewConfirmAnswered("r1", true))
		return nil
	}))

	ans := recv(t, answered)
	assert.Equal(t, "r1", ans.RequestID)
	assert.True(t, ans.Confirmed)
}

func TestAwaitEvent_SessionTimeout(t *testing.T) {
	bus := event.NewBus()
	defer bus.Close()
	failures := make(chan *errors.HandlerFailure, 1)
	s := newSession(t, "starved", Config{
		Bus:          bus,
		AwaitTimeout: 20 * time.Millisecond,
		ErrorHandler: collectFailures(failures),
	})

	require.NoError(t, Launch(s, "never-answered", func(ctx context.Context) error {
		_, err := AwaitEvent(ctx, bus, func(event.ConfirmAnswered) bool { return true })
		return err
	}))

	f := recv(t, failures)
	assert.ErrorIs(t, f, errors.ErrTimeout)
}

func TestDestroy_CancelsPendingAwaitsAndRunsCleanups(t *testing.T) {
	failures := make(chan *errors.HandlerFailure, 1)
	s := New("teardown", Config{ErrorHandler: collectFailures(failures)})
	started := make(chan struct{})
	exited := make(chan error, 1)

	require.NoError(t, Launch(s, "forever", func(ctx context.Context) error {
		close(started)
		err := Sleep(ctx, time.Hour)
		exited <- err
		return err
	}))
	recv(t, started)

	var order []int
	s.Cleanup(func() { order = append(order, 1) })
	s.Cleanup(func() { order = append(order, 2) })

	require.NoError(t, s.Destroy())
	assert.ErrorIs(t, recv(t, exited), context.Canceled)
	assert.Equal(t, []int{2, 1}, order)
	assert.Len(t, failures, 0, "cancellation by Destroy is not a failure")
	assert.ErrorIs(t, s.Context().Err(), context.Canceled)
}

func TestSession_ErrorBufferKeepsNewest(t *testing.T) {
	failures := make(chan *errors.HandlerFailure, 8)
	s := newSession(t, "buffer", Config{ErrorBuffer: 2, ErrorHandler: collectFailures(failures)})

	for i := range 3 {
		require.NoError(t, Launch(s, fmt.Sprintf("job%d", i), func(context.Context) error {
			return errors.New("nope")
		}))
	}
	for range 3 {
		recv(t, failures)
	}

	kept := s.Failures().Items()
	require.Len(t, kept, 2)
	assert.Equal(t, "job1", kept[0].Handler)
	assert.Equal(t, "job2", kept[1].Handler)
}

func TestDefaultErrorHandler_PublishesHandlerFailed(t *testing.T) {
	bus := event.NewBus()
	defer bus.Close()
	s := newSession(t, "status", Config{Bus: bus})

	reported := event.Expect(bus, func(e event.HandlerFailed) bool { return e.SessionID == s.ID() })
	defer reported.Cancel()

	require.NoError(t, Launch(s, "explode", func(context.Context) error { panic("boom") }))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ev, err := reported.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "status", ev.Session)
	assert.Equal(t, "explode", ev.Handler)
	assert.True(t, ev.Panicked)
	assert.ErrorIs(t, ev.Err, errors.ErrHandlerPanic)
}

func TestDefaultErrorHandler_FollowsSeverity(t *testing.T) {
	bus := event.NewBus()
	defer bus.Close()
	var buf bytes.Buffer
	logger := logging.FromHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := newSession(t, "status", Config{})

	failed := event.StreamOf[event.HandlerFailed](bus).Subscribe()
	defer failed.Close()
	handle := DefaultErrorHandler(logger, bus, nil)

	handle(s, errors.NewHandlerFailure(s.String(), "refresh", errors.New("stale")).WithSeverity(errors.SeverityInfo))
	_, ok := failed.TryNext()
	assert.False(t, ok, "informational failures are only logged")
	assert.Contains(t, buf.String(), `"level":"INFO"`)

	buf.Reset()
	handle(s, errors.NewHandlerFailure(s.String(), "save", errors.NewTimeoutError("save", time.Second)))
	ev, ok := failed.TryNext()
	require.True(t, ok)
	assert.Equal(t, "save", ev.Handler)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
	assert.Contains(t, buf.String(), `"retryable":true`)
}

func TestSession_String(t *testing.T) {
	s := newSession(t, "game-edit", Config{})
	assert.Regexp(t, `^game-edit#[0-9a-f]{8}$`, s.String())
	assert.NotEqual(t, s.ID(), newSession(t, "game-edit", Config{}).ID())
}

package viewsession

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	"github.com/Iron-Ham/gamedex/internal/errors"
	"github.com/Iron-Ham/gamedex/internal/event"
	"github.com/Iron-Ham/gamedex/internal/logging"
	"github.com/Iron-Ham/gamedex/internal/metrics"
	"github.com/Iron-Ham/gamedex/internal/observable"
)

// DefaultErrorBuffer is the number of handler failures a session retains
// when Config.ErrorBuffer is not set.
const DefaultErrorBuffer = 32

// Hook is a lifecycle callback. It runs inside the session turn.
type Hook func(ctx context.Context) error

// Config holds the collaborators shared by sessions.
type Config struct {
	// Bus receives HandlerFailed events from the default error handler.
	Bus *event.Bus
	// Logger is the parent logger; each session derives a child tagged with
	// its id and name. Nil means no logging.
	Logger *logging.Logger
	// Metrics may be nil.
	Metrics *metrics.Metrics
	// ErrorHandler receives every handler failure. Nil selects
	// DefaultErrorHandler.
	ErrorHandler ErrorHandler
	// AwaitTimeout bounds AwaitEvent calls made from handlers. Zero means
	// only the session lifetime bounds them.
	AwaitTimeout time.Duration
	// ErrorBuffer is how many failures Failures retains.
	ErrorBuffer int
}

// Session is the cancellable scope of one view instance. Work started
// through Collect, Launch and the lifecycle hooks belongs to the session and
// is cancelled and joined by Destroy.
//
// Handlers of one session never run concurrently: each holds the session
// turn from start to finish, except while suspended in Await. Distinct
// sessions run independently.
type Session struct {
	id     string
	name   string
	logger *logging.Logger
	config Config

	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup
	exec   *executor

	mu       sync.Mutex
	state    State
	onShow   []Hook
	onHide   []Hook
	cleanups []func()

	failMu   sync.Mutex
	failures *observable.List[*errors.HandlerFailure]

	onDestroyed func(*Session)
}

// New creates a session in StateNotShown. name is the base debug name,
// usually the screen name.
func New(name string, cfg Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = logging.NopLogger()
	}
	if cfg.ErrorBuffer <= 0 {
		cfg.ErrorBuffer = DefaultErrorBuffer
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = DefaultErrorHandler(cfg.Logger, cfg.Bus, cfg.Metrics)
	}

	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:       id,
		name:     name,
		logger:   cfg.Logger.WithSession(id).WithView(name),
		config:   cfg,
		ctx:      ctx,
		cancel:   cancel,
		exec:     newExecutor(ctx.Done()),
		failures: observable.NewList[*errors.HandlerFailure](),
	}
	s.wg.Go(func() { s.exec.run(ctx) })

	cfg.Metrics.SessionCreated(name)
	s.logger.Debug("session created")
	return s
}

// ID returns the unique session id.
func (s *Session) ID() string { return s.id }

// Name returns the base debug name.
func (s *Session) Name() string { return s.name }

// String returns the debug name with a short id suffix, e.g. "game-edit#1b4e28ba".
func (s *Session) String() string {
	return fmt.Sprintf("%s#%s", s.name, s.id[:8])
}

// Logger returns the session logger.
func (s *Session) Logger() *logging.Logger { return s.logger }

// Context returns the session scope. It is cancelled by Destroy.
func (s *Session) Context() context.Context { return s.ctx }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Failures lists the most recent handler failures, oldest first.
func (s *Session) Failures() *observable.List[*errors.HandlerFailure] {
	return s.failures
}

// OnShowHook registers fn to run on every transition to StateShowing.
// Hooks registered while the session is already showing run from the next
// transition on.
func (s *Session) OnShowHook(fn Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onShow = append(s.onShow, fn)
}

// OnHideHook registers fn to run on every transition from StateShowing to
// StateHidden.
func (s *Session) OnHideHook(fn Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onHide = append(s.onHide, fn)
}

// Cleanup registers fn to run after Destroy has joined every goroutine of the
// session. Cleanups run in reverse registration order.
func (s *Session) Cleanup(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanups = append(s.cleanups, fn)
}

// OnShow moves the session to StateShowing and schedules the show hooks.
// It fails when the session is already showing or destroyed.
func (s *Session) OnShow() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateDestroyed:
		return s.precondition("OnShow", errors.ErrSessionDestroyed)
	case StateShowing:
		return s.precondition("OnShow", errors.ErrAlreadyShowing)
	}

	s.state = StateShowing
	s.scheduleLocked("on-show", slices.Clone(s.onShow))
	return nil
}

// OnHide moves the session from StateShowing to StateHidden and schedules the
// hide hooks.
func (s *Session) OnHide() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateDestroyed:
		return s.precondition("OnHide", errors.ErrSessionDestroyed)
	case StateNotShown, StateHidden:
		return s.precondition("OnHide", errors.ErrNotShowing)
	}

	s.state = StateHidden
	s.scheduleLocked("on-hide", slices.Clone(s.onHide))
	return nil
}

// Destroy cancels the session scope, waits for every handler and job to
// return, then runs the cleanups. Pending Await calls fail with the scope's
// cancellation. A second Destroy fails.
//
// Destroy must not be called from one of the session's own handlers.
func (s *Session) Destroy() error {
	s.mu.Lock()
	if s.state == StateDestroyed {
		s.mu.Unlock()
		return s.precondition("Destroy", errors.ErrSessionDestroyed)
	}
	prev := s.state
	s.state = StateDestroyed
	cleanups := s.cleanups
	s.cleanups = nil
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	s.exec.close()

	for _, fn := range slices.Backward(cleanups) {
		fn()
	}
	s.failures.Close()

	s.config.Metrics.SessionDestroyed()
	s.logger.Debug("session destroyed", "previous_state", prev.String())

	if s.onDestroyed != nil {
		s.onDestroyed(s)
	}
	return nil
}

func (s *Session) precondition(op string, cause error) error {
	return errors.NewPreconditionError(op, cause).
		WithSession(s.String()).
		WithState(s.state.String())
}

// spawn starts fn as a goroutine owned by the session. It fails once the
// session is destroyed.
func (s *Session) spawn(op string, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateDestroyed {
		return s.precondition(op, errors.ErrSessionDestroyed)
	}
	s.wg.Go(fn)
	return nil
}

// scheduleLocked queues fns for the turn immediately, so work scheduled by
// successive calls runs in call order. The caller must hold s.mu.
func (s *Session) scheduleLocked(name string, fns []Hook) {
	if len(fns) == 0 {
		return
	}
	req := s.exec.request()
	s.wg.Go(func() {
		if err := s.exec.wait(s.ctx, req); err != nil {
			return
		}
		t := &turn{session: s, held: true}
		ctx := withTurn(s.ctx, t)
		defer t.end()

		for _, fn := range fns {
			s.invoke(ctx, name, fn)
		}
	})
}

// report records a failure and hands it to the error handler.
func (s *Session) report(failure *errors.HandlerFailure) {
	s.failMu.Lock()
	s.failures.Add(failure)
	if excess := s.failures.Len() - s.config.ErrorBuffer; excess > 0 {
		_ = s.failures.RemoveAll(s.failures.Items()[:excess]...)
	}
	s.failMu.Unlock()

	s.config.ErrorHandler(s, failure)
}

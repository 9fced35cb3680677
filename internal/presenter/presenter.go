// Package presenter connects views to domain services through view sessions.
//
// A presenter is stateless. Present creates a session for one view instance
// and wires, in this order: view actions to domain calls, domain and bus
// streams to view state, then derived state. All per-view state lives in the
// session and dies with it.
package presenter

import (
	"github.com/Iron-Ham/gamedex/internal/config"
	"github.com/Iron-Ham/gamedex/internal/event"
	"github.com/Iron-Ham/gamedex/internal/logging"
	"github.com/Iron-Ham/gamedex/internal/metrics"
	"github.com/Iron-Ham/gamedex/internal/viewsession"
)

// Presenter wires a view of type V.
type Presenter[V any] interface {
	Present(view V) (*viewsession.Session, error)
}

// Func adapts a function to a Presenter.
type Func[V any] func(view V) (*viewsession.Session, error)

// Present calls f(view).
func (f Func[V]) Present(view V) (*viewsession.Session, error) {
	return f(view)
}

// Deps carries the process-wide collaborators every presenter may use.
type Deps struct {
	Bus      *event.Bus
	Logger   *logging.Logger
	Config   *config.Store
	Sessions *viewsession.Manager
	Metrics  *metrics.Metrics
}

// NewSession creates a tracked session for the view named name. Without a
// manager the session is untracked but shares the same settings.
func (d Deps) NewSession(name string) *viewsession.Session {
	if d.Sessions != nil {
		return d.Sessions.New(name)
	}
	return viewsession.New(name, d.SessionConfig())
}

// Settings returns the configuration in effect, or the defaults.
func (d Deps) Settings() *config.Config {
	if d.Config == nil {
		return config.Default()
	}
	return d.Config.Get()
}

// Log returns the logger, never nil.
func (d Deps) Log() *logging.Logger {
	if d.Logger == nil {
		return logging.NopLogger()
	}
	return d.Logger
}

// SessionConfig derives the session configuration from the current settings.
func (d Deps) SessionConfig() viewsession.Config {
	cfg := d.Settings()
	return viewsession.Config{
		Bus:          d.Bus,
		Logger:       d.Logger,
		Metrics:      d.Metrics,
		AwaitTimeout: cfg.Session.AwaitTimeout,
		ErrorBuffer:  cfg.Session.ErrorBuffer,
	}
}

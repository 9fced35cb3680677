package presenter

import (
	"maps"
	"slices"
	"sync"

	"github.com/Iron-Ham/gamedex/internal/errors"
	"github.com/Iron-Ham/gamedex/internal/logging"
	"github.com/Iron-Ham/gamedex/internal/viewsession"
)

// Host owns the sessions of the presented views and drives their
// visibility: at most one view is showing at a time.
type Host struct {
	logger *logging.Logger

	mu       sync.Mutex
	sessions map[string]*viewsession.Session
	current  string
	history  []string
}

// NewHost creates an empty Host.
func NewHost(logger *logging.Logger) *Host {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Host{
		logger:   logger,
		sessions: make(map[string]*viewsession.Session),
	}
}

// Present asks p to wire view and registers the resulting session as name.
func Present[V any](h *Host, name string, p Presenter[V], view V) (*viewsession.Session, error) {
	s, err := p.Present(view)
	if err != nil {
		return nil, errors.Wrapf(err, "present %s", name)
	}
	if err := h.Add(name, s); err != nil {
		_ = s.Destroy()
		return nil, err
	}
	return s, nil
}

// Add registers a session under name.
func (h *Host) Add(name string, s *viewsession.Session) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[name]; ok {
		return errors.NewValidationError("view already registered").WithField("name").WithValue(name)
	}
	h.sessions[name] = s
	return nil
}

// Session returns the session registered as name.
func (h *Host) Session(name string) (*viewsession.Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[name]
	return s, ok
}

// Current returns the name of the showing view, or "".
func (h *Host) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Show hides the current view and shows name. The hidden view is remembered
// so Back can return to it. Showing the current view is a no-op.
func (h *Host) Show(name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if name == h.current {
		return nil
	}
	return h.switchLocked(name)
}

// Back hides the current view and shows the one it replaced. It reports
// false when there is nothing to go back to.
func (h *Host) Back() (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for len(h.history) > 0 {
		prev := h.history[len(h.history)-1]
		h.history = h.history[:len(h.history)-1]
		if _, ok := h.sessions[prev]; !ok {
			continue // removed meanwhile
		}
		depth := len(h.history)
		if err := h.switchLocked(prev); err != nil {
			return false, err
		}
		// Going back does not record the view we left.
		h.history = h.history[:depth]
		return true, nil
	}
	return false, nil
}

func (h *Host) switchLocked(name string) error {
	target, ok := h.sessions[name]
	if !ok {
		return errors.NewNotFoundError("view", name)
	}

	cur, hid := h.sessions[h.current]
	if hid {
		if err := cur.OnHide(); err != nil {
			return err
		}
		h.history = append(h.history, h.current)
	}
	if err := target.OnShow(); err != nil {
		// Restore the view we just hid.
		if hid {
			h.history = h.history[:len(h.history)-1]
			if rerr := cur.OnShow(); rerr != nil {
				return errors.Join(err, rerr)
			}
		}
		return err
	}

	h.logger.Debug("view shown", "view", name, "previous", h.current)
	h.current = name
	return nil
}

// Remove destroys the session registered as name. When it was showing, the
// previous view is shown again.
func (h *Host) Remove(name string) error {
	h.mu.Lock()
	s, ok := h.sessions[name]
	if !ok {
		h.mu.Unlock()
		return errors.NewNotFoundError("view", name)
	}
	delete(h.sessions, name)
	h.history = slices.DeleteFunc(h.history, func(n string) bool { return n == name })
	wasCurrent := h.current == name
	if wasCurrent {
		h.current = ""
	}
	h.mu.Unlock()

	err := s.Destroy()

	if wasCurrent {
		if _, berr := h.Back(); berr != nil {
			return errors.Join(err, berr)
		}
	}
	return err
}

// Names returns the registered view names, sorted.
func (h *Host) Names() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := make([]string, 0, len(h.sessions))
	for name := range h.sessions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Close destroys every registered session.
func (h *Host) Close() error {
	h.mu.Lock()
	sessions := h.sessions
	h.sessions = make(map[string]*viewsession.Session)
	h.current = ""
	h.history = nil
	h.mu.Unlock()

	var errs []error
	for _, name := range slices.Sorted(maps.Keys(sessions)) {
		if err := sessions[name].Destroy(); err != nil && !errors.Is(err, errors.ErrSessionDestroyed) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package viewsession

import (
	"slices"
	"sync"

	"github.com/Iron-Ham/gamedex/internal/errors"
)

// Info describes a live session for diagnostics.
type Info struct {
	ID       string
	Name     string
	State    State
	Failures int
}

// Manager creates sessions with a shared Config and tracks them until they
// are destroyed.
type Manager struct {
	config Config

	mu       sync.Mutex
	sessions []*Session
}

// NewManager creates a Manager. cfg is applied to every session it creates.
func NewManager(cfg Config) *Manager {
	return &Manager{config: cfg}
}

// Config returns the configuration applied to new sessions.
func (m *Manager) Config() Config {
	return m.config
}

// New creates and tracks a session named name.
func (m *Manager) New(name string) *Session {
	s := New(name, m.config)
	s.onDestroyed = m.forget

	m.mu.Lock()
	m.sessions = append(m.sessions, s)
	m.mu.Unlock()
	return s
}

func (m *Manager) forget(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = slices.DeleteFunc(m.sessions, func(other *Session) bool { return other == s })
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ActiveSessions describes the live sessions in creation order.
func (m *Manager) ActiveSessions() []Info {
	m.mu.Lock()
	sessions := slices.Clone(m.sessions)
	m.mu.Unlock()

	infos := make([]Info, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, Info{
			ID:       s.ID(),
			Name:     s.Name(),
			State:    s.State(),
			Failures: s.Failures().Len(),
		})
	}
	return infos
}

// DestroyAll destroys every live session, newest first. Sessions destroyed
// concurrently by their owners are skipped.
func (m *Manager) DestroyAll() error {
	m.mu.Lock()
	sessions := slices.Clone(m.sessions)
	m.mu.Unlock()

	var errs []error
	for _, s := range slices.Backward(sessions) {
		if err := s.Destroy(); err != nil && !errors.Is(err, errors.ErrSessionDestroyed) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

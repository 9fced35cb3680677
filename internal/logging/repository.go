package logging

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Iron-Ham/gamedex/internal/event"
	"github.com/Iron-Ham/gamedex/internal/observable"
)

// DefaultBufferEntries is the repository capacity used when none is given.
const DefaultBufferEntries = 500

// Entry is one structured log record.
type Entry struct {
	// Seq orders entries recorded by one Repository. It is zero for entries
	// read back from a file.
	Seq       uint64         `json:"-"`
	Time      time.Time      `json:"time"`
	Level     string         `json:"level"`
	Message   string         `json:"msg"`
	SessionID string         `json:"session_id,omitempty"`
	View      string         `json:"view,omitempty"`
	Attrs     map[string]any `json:"attrs,omitempty"`
}

// set stores a record attribute, lifting the context keys into fields.
func (e *Entry) set(key string, v slog.Value) {
	switch key {
	case "session_id":
		e.SessionID = v.String()
	case "view":
		e.View = v.String()
	default:
		e.Attrs[key] = v.Resolve().Any()
	}
}

// Repository is the process log repository: the most recent entries, kept in
// an observable list so a view can follow them live. It is created once at
// startup and handed to whoever needs it.
type Repository struct {
	mu       sync.Mutex
	entries  *observable.List[Entry]
	capacity int
	seq      uint64
	bus      *event.Bus
}

// NewRepository creates a repository keeping at most capacity entries.
// bus may be nil; otherwise every recorded entry is announced with a
// LogRecorded event.
func NewRepository(capacity int, bus *event.Bus) *Repository {
	if capacity <= 0 {
		capacity = DefaultBufferEntries
	}
	return &Repository{
		entries:  observable.NewListFunc(func(a, b Entry) bool { return a.Seq == b.Seq }),
		capacity: capacity,
		bus:      bus,
	}
}

// Entries returns the observable list of retained entries, oldest first.
func (r *Repository) Entries() *observable.List[Entry] {
	return r.entries
}

// Capacity returns the maximum number of retained entries.
func (r *Repository) Capacity() int {
	return r.capacity
}

// Record appends an entry, dropping the oldest ones beyond capacity.
func (r *Repository) Record(e Entry) {
	r.mu.Lock()
	r.seq++
	e.Seq = r.seq
	r.entries.Add(e)
	if excess := r.entries.Len() - r.capacity; excess > 0 {
		// Entries are only removed here, under r.mu, so the oldest are present.
		_ = r.entries.RemoveAll(r.entries.Items()[:excess]...)
	}
	r.mu.Unlock()

	if r.bus != nil {
		r.bus.Publish(event.NewLogRecorded(e.Level, e.Message))
	}
}

// Clear drops every retained entry.
func (r *Repository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries.Clear()
}

// Handler returns a slog.Handler that records entries at or above level.
func (r *Repository) Handler(level string) slog.Handler {
	return &repoHandler{repo: r, level: parseLevel(level)}
}

// Close ends the entries change stream.
func (r *Repository) Close() {
	r.entries.Close()
}

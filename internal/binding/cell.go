package binding

import (
	"sync"

	"github.com/Iron-Ham/gamedex/internal/stream"
)

// Cell is a two-way bound state cell. Presenter logic writes it with Set and
// the view writes it with Edit; both land in the same current value and the
// same update stream, tagged with their origin.
//
// A presenter that reacts to OnlyChangesFromView never sees its own writes,
// even though the view observes them through Updates.
type Cell[T any] struct {
	mu      sync.RWMutex
	current Value[T]
	eq      func(a, b T) bool
	updates *stream.Hub[Value[T]]
}

// NewCell creates a cell holding initial, tagged FromPresenter.
func NewCell[T comparable](initial T) *Cell[T] {
	return NewCellFunc(initial, func(a, b T) bool { return a == b })
}

// NewCellFunc creates a cell whose SetIfChanged compares values with eq.
func NewCellFunc[T any](initial T, eq func(a, b T) bool) *Cell[T] {
	return &Cell[T]{
		current: PresenterValue(initial),
		eq:      eq,
		updates: stream.NewHub[Value[T]](),
	}
}

// Set assigns v as an authoritative presenter value and notifies every
// observer, the view included.
func (c *Cell[T]) Set(v T) {
	c.write(PresenterValue(v))
}

// Edit records a user edit made through the view.
func (c *Cell[T]) Edit(v T) {
	c.write(ViewValue(v))
}

// SetIfChanged is Set that does nothing when v equals the current value.
// It reports whether a write happened.
func (c *Cell[T]) SetIfChanged(v T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.eq != nil && c.eq(c.current.V, v) {
		return false
	}
	c.current = PresenterValue(v)
	c.updates.Publish(c.current)
	return true
}

// Write stores an already tagged value.
func (c *Cell[T]) Write(v Value[T]) {
	c.write(v)
}

func (c *Cell[T]) write(v Value[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = v
	c.updates.Publish(v)
}

// Get returns the current payload.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current.V
}

// Current returns the current value with its origin.
func (c *Cell[T]) Current() Value[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Updates streams every later write, whatever its origin.
func (c *Cell[T]) Updates() stream.Stream[Value[T]] {
	return c.updates
}

// OnlyChangesFromView streams the payloads of view edits only.
func (c *Cell[T]) OnlyChangesFromView() stream.Stream[T] {
	return OnlyFrom[T](c.updates, FromView)
}

// OnlyChangesFromPresenter streams the payloads of presenter writes only.
func (c *Cell[T]) OnlyChangesFromPresenter() stream.Stream[T] {
	return OnlyFrom[T](c.updates, FromPresenter)
}

// SnapshotAndSubscribe atomically reads the current value and subscribes to
// later writes.
func (c *Cell[T]) SnapshotAndSubscribe(opts ...stream.Option) (Value[T], *stream.Subscription[Value[T]]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.updates.Subscribe(opts...)
}

// ReadOnly returns a view of the cell without write access.
func (c *Cell[T]) ReadOnly() ReadOnly[T] {
	return ReadOnly[T]{c: c}
}

// Close ends the update stream. Later writes still change the value.
func (c *Cell[T]) Close() {
	c.updates.Close()
}

// ReadOnly exposes a cell to code that may observe it but not write it, such
// as a view rendering presenter-derived state.
type ReadOnly[T any] struct {
	c *Cell[T]
}

// Get returns the current payload.
func (r ReadOnly[T]) Get() T { return r.c.Get() }

// Current returns the current value with its origin.
func (r ReadOnly[T]) Current() Value[T] { return r.c.Current() }

// Updates streams every later write.
func (r ReadOnly[T]) Updates() stream.Stream[Value[T]] { return r.c.Updates() }

package observable

import (
	"fmt"
	"slices"
	"sync"

	"github.com/Iron-Ham/gamedex/internal/errors"
	"github.com/Iron-Ham/gamedex/internal/stream"
)

// List is an ordered collection that publishes a ListEvent for every
// structural change.
//
// Snapshots returned by Items are never modified after they are handed out:
// every mutator builds a fresh slice, swaps it in, and then emits exactly one
// event while still holding the write lock. A subscriber that re-reads Items
// when handling an event therefore sees a snapshot that already contains the
// change.
type List[T any] struct {
	mu      sync.RWMutex
	items   []T
	eq      func(a, b T) bool
	changes *stream.Hub[ListEvent[T]]
}

// NewList creates a list of comparable items seeded with initial.
func NewList[T comparable](initial ...T) *List[T] {
	return NewListFunc(func(a, b T) bool { return a == b }, initial...)
}

// NewListFunc creates a list whose item identity is decided by eq.
func NewListFunc[T any](eq func(a, b T) bool, initial ...T) *List[T] {
	return &List[T]{
		items:   slices.Clone(initial),
		eq:      eq,
		changes: stream.NewHub[ListEvent[T]](),
	}
}

// Items returns the current snapshot. The caller must not modify it.
func (l *List[T]) Items() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.items
}

// Len returns the number of items.
func (l *List[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Get returns the item at index i.
func (l *List[T]) Get(i int) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i < 0 || i >= len(l.items) {
		var zero T
		return zero, false
	}
	return l.items[i], true
}

// IndexOf returns the index of the first item equal to v, or -1.
func (l *List[T]) IndexOf(v T) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.IndexFunc(l.items, func(item T) bool { return l.eq(item, v) })
}

// Equal exposes the item identity function of the list.
func (l *List[T]) Equal(a, b T) bool {
	return l.eq(a, b)
}

// Changes returns the stream of structural changes. History is not replayed.
func (l *List[T]) Changes() stream.Stream[ListEvent[T]] {
	return l.changes
}

// SnapshotAndSubscribe atomically captures the current snapshot and
// subscribes to later changes, so that folding the subscription over the
// snapshot never misses or duplicates an event.
func (l *List[T]) SnapshotAndSubscribe(opts ...stream.Option) ([]T, *stream.Subscription[ListEvent[T]]) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.items, l.changes.Subscribe(opts...)
}

// commit swaps in next and emits ev. Callers hold l.mu.
func (l *List[T]) commit(next []T, ev ListEvent[T]) {
	l.items = next
	l.changes.Publish(ev)
}

// Add appends item.
func (l *List[T]) Add(item T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.commit(append(slices.Clip(l.items), item), ItemAdded[T]{Item: item, Index: AtEnd})
}

// Insert places item at index, shifting later items.
func (l *List[T]) Insert(index int, item T) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 || index > len(l.items) {
		return outOfRange("insert", index, len(l.items))
	}
	l.commit(slices.Insert(slices.Clone(l.items), index, item), ItemAdded[T]{Item: item, Index: index})
	return nil
}

// AddAll appends items in order. An empty call is a valid no-op and emits
// nothing.
func (l *List[T]) AddAll(items ...T) {
	if len(items) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	added := slices.Clone(items)
	l.commit(slices.Concat(l.items, added), ItemsAdded[T]{Items: added})
}

// Remove removes the first occurrence of item. Removing an absent item is a
// PreconditionError and leaves the list untouched.
func (l *List[T]) Remove(item T) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := slices.IndexFunc(l.items, func(v T) bool { return l.eq(v, item) })
	if idx < 0 {
		return errors.NewPreconditionError("remove", errors.ErrItemNotPresent).
			WithState(fmt.Sprintf("item=%v", item))
	}
	removed := l.items[idx]
	l.commit(slices.Delete(slices.Clone(l.items), idx, idx+1), ItemRemoved[T]{Item: removed, Index: idx})
	return nil
}

// RemoveAll removes the first occurrence of each item, in order. Every item
// must be present (counting duplicates); otherwise nothing is removed and a
// PreconditionError is returned.
func (l *List[T]) RemoveAll(items ...T) error {
	if len(items) == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	next, err := removeEach(l.items, items, l.eq)
	if err != nil {
		return err
	}
	l.commit(next, ItemsRemoved[T]{Items: slices.Clone(items)})
	return nil
}

// Replace swaps the first occurrence of old for replacement.
func (l *List[T]) Replace(old, replacement T) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := slices.IndexFunc(l.items, func(v T) bool { return l.eq(v, old) })
	if idx < 0 {
		return errors.NewPreconditionError("replace", errors.ErrItemNotPresent).
			WithState(fmt.Sprintf("item=%v", old))
	}
	next := slices.Clone(l.items)
	next[idx] = replacement
	l.commit(next, ItemSet[T]{Item: replacement, Index: idx})
	return nil
}

// ReplaceFunc replaces the first item matching pred using update. It returns
// false when no item matched.
func (l *List[T]) ReplaceFunc(pred func(T) bool, update func(T) T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := slices.IndexFunc(l.items, pred)
	if idx < 0 {
		return false
	}
	next := slices.Clone(l.items)
	next[idx] = update(next[idx])
	l.commit(next, ItemSet[T]{Item: next[idx], Index: idx})
	return true
}

// SetAll replaces the entire content.
func (l *List[T]) SetAll(items ...T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	next := slices.Clone(items)
	l.commit(next, ItemsSet[T]{Items: slices.Clone(items)})
}

// Clear removes every item. It emits an empty ItemsSet.
func (l *List[T]) Clear() {
	l.SetAll()
}

// Close ends the change stream. Mutations after Close still update the
// snapshot but notify nobody.
func (l *List[T]) Close() {
	l.changes.Close()
}

package observable

import (
	"fmt"
	"slices"

	"github.com/Iron-Ham/gamedex/internal/errors"
)

// AtEnd is the ItemAdded index used when an item was appended.
const AtEnd = -1

// ListEvent is a structural change of a List. The variants form a closed set:
// ItemAdded, ItemsAdded, ItemRemoved, ItemsRemoved, ItemSet and ItemsSet.
type ListEvent[T any] interface {
	isListEvent()
	// Kind returns a short name for logging.
	Kind() string
}

// ItemAdded reports a single insertion. Index is AtEnd for an append.
type ItemAdded[T any] struct {
	Item  T
	Index int
}

// ItemsAdded reports items appended, in order, at the end of the list.
type ItemsAdded[T any] struct {
	Items []T
}

// ItemRemoved reports the removal of the item at Index.
type ItemRemoved[T any] struct {
	Item  T
	Index int
}

// ItemsRemoved reports removal of the first occurrence of each item, applied
// in order.
type ItemsRemoved[T any] struct {
	Items []T
}

// ItemSet reports that the element at Index was replaced by Item.
type ItemSet[T any] struct {
	Item  T
	Index int
}

// ItemsSet reports that the whole content was replaced by Items.
type ItemsSet[T any] struct {
	Items []T
}

func (ItemAdded[T]) isListEvent()    {}
func (ItemsAdded[T]) isListEvent()   {}
func (ItemRemoved[T]) isListEvent()  {}
func (ItemsRemoved[T]) isListEvent() {}
func (ItemSet[T]) isListEvent()      {}
func (ItemsSet[T]) isListEvent()     {}

func (ItemAdded[T]) Kind() string    { return "item_added" }
func (ItemsAdded[T]) Kind() string   { return "items_added" }
func (ItemRemoved[T]) Kind() string  { return "item_removed" }
func (ItemsRemoved[T]) Kind() string { return "items_removed" }
func (ItemSet[T]) Kind() string      { return "item_set" }
func (ItemsSet[T]) Kind() string     { return "items_set" }

// Apply returns the result of applying ev to items. items is never modified;
// the result is a fresh slice whenever the content changes. eq decides item
// identity for ItemsRemoved.
//
// Applying an event that could not have been emitted for items (removing an
// absent item, an index out of range) returns a PreconditionError.
func Apply[T any](items []T, ev ListEvent[T], eq func(a, b T) bool) ([]T, error) {
	switch e := ev.(type) {
	case ItemAdded[T]:
		if e.Index == AtEnd {
			return append(slices.Clip(items), e.Item), nil
		}
		if e.Index < 0 || e.Index > len(items) {
			return nil, outOfRange("apply item_added", e.Index, len(items))
		}
		return slices.Insert(slices.Clone(items), e.Index, e.Item), nil

	case ItemsAdded[T]:
		return slices.Concat(items, e.Items), nil

	case ItemRemoved[T]:
		if e.Index < 0 || e.Index >= len(items) {
			return nil, outOfRange("apply item_removed", e.Index, len(items))
		}
		return slices.Delete(slices.Clone(items), e.Index, e.Index+1), nil

	case ItemsRemoved[T]:
		return removeEach(items, e.Items, eq)

	case ItemSet[T]:
		if e.Index < 0 || e.Index >= len(items) {
			return nil, outOfRange("apply item_set", e.Index, len(items))
		}
		out := slices.Clone(items)
		out[e.Index] = e.Item
		return out, nil

	case ItemsSet[T]:
		return slices.Clone(e.Items), nil

	default:
		panic(fmt.Sprintf("observable: unknown list event %T", ev))
	}
}

// Replay folds events over initial and returns the resulting snapshot.
func Replay[T any](initial []T, events []ListEvent[T], eq func(a, b T) bool) ([]T, error) {
	items := slices.Clone(initial)
	for i, ev := range events {
		next, err := Apply(items, ev, eq)
		if err != nil {
			return nil, errors.Wrapf(err, "replay event %d (%s)", i, ev.Kind())
		}
		items = next
	}
	return items, nil
}

// removeEach removes the first occurrence of every target, in order. It fails
// without partial effect when a target is missing.
func removeEach[T any](items, targets []T, eq func(a, b T) bool) ([]T, error) {
	out := slices.Clone(items)
	for _, target := range targets {
		idx := slices.IndexFunc(out, func(v T) bool { return eq(v, target) })
		if idx < 0 {
			return nil, errors.NewPreconditionError("remove", errors.ErrItemNotPresent).
				WithState(fmt.Sprintf("item=%v", target))
		}
		out = slices.Delete(out, idx, idx+1)
	}
	return out, nil
}

func outOfRange(op string, index, length int) error {
	return errors.NewPreconditionError(op, errors.ErrIndexOutOfRange).
		WithState(fmt.Sprintf("index=%d len=%d", index, length))
}

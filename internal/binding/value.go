package binding

import "github.com/Iron-Ham/gamedex/internal/stream"

// Origin records which side of a binding produced a value.
type Origin uint8

const (
	// FromPresenter marks authoritative values written by presenter logic.
	FromPresenter Origin = iota
	// FromView marks edits made by the user through a view.
	FromView
)

// String returns the origin name used in logs.
func (o Origin) String() string {
	switch o {
	case FromPresenter:
		return "presenter"
	case FromView:
		return "view"
	default:
		return "unknown"
	}
}

// Value is a value tagged with its origin. The origin is fixed when the value
// is created; the operators in this package carry it through unchanged.
type Value[T any] struct {
	V      T
	Origin Origin
}

// PresenterValue tags v as written by a presenter.
func PresenterValue[T any](v T) Value[T] {
	return Value[T]{V: v, Origin: FromPresenter}
}

// ViewValue tags v as edited through a view.
func ViewValue[T any](v T) Value[T] {
	return Value[T]{V: v, Origin: FromView}
}

// FromView reports whether the value was produced by a view edit.
func (v Value[T]) FromView() bool {
	return v.Origin == FromView
}

// MapValues transforms the payload of every value and keeps its origin.
func MapValues[T, U any](src stream.Stream[Value[T]], f func(T) U) stream.Stream[Value[U]] {
	return stream.Map(src, func(v Value[T]) Value[U] {
		return Value[U]{V: f(v.V), Origin: v.Origin}
	})
}

// FilterValues keeps the values whose payload satisfies pred.
func FilterValues[T any](src stream.Stream[Value[T]], pred func(T) bool) stream.Stream[Value[T]] {
	return stream.Filter(src, func(v Value[T]) bool { return pred(v.V) })
}

// OnlyFrom keeps the values tagged with origin and unwraps them.
func OnlyFrom[T any](src stream.Stream[Value[T]], origin Origin) stream.Stream[T] {
	return stream.FilterMap(src, func(v Value[T]) (T, bool) {
		return v.V, v.Origin == origin
	})
}

// Retag rewrites the origin of every value. It is the only operator that
// changes provenance; use it when a stream crosses from one binding to
// another, for example when a view edit becomes a domain write.
func Retag[T any](src stream.Stream[Value[T]], origin Origin) stream.Stream[Value[T]] {
	return stream.Map(src, func(v Value[T]) Value[T] {
		return Value[T]{V: v.V, Origin: origin}
	})
}

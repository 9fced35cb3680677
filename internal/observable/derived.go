package observable

import (
	"context"

	"github.com/Iron-Ham/gamedex/internal/stream"
)

// Filter derives a list holding the items of src that satisfy the current
// predicate. The derived snapshot is recomputed whenever src changes or a new
// predicate arrives on predicates (which may be nil for a fixed predicate),
// and each recomputation emits a single ItemsSet.
//
// The derived list follows src until ctx is done, then its change stream is
// closed. A nil initial predicate keeps every item.
func Filter[T any](ctx context.Context, src *List[T], predicates stream.Stream[func(T) bool], initial func(T) bool) *List[T] {
	pred := initial
	if pred == nil {
		pred = func(T) bool { return true }
	}

	snapshot, changes := src.SnapshotAndSubscribe(stream.Conflate())
	out := NewListFunc(src.eq, keep(snapshot, pred)...)

	var preds *stream.Subscription[func(T) bool]
	if predicates != nil {
		preds = predicates.Subscribe(stream.Conflate())
	}

	go follow(ctx, changes, preds, out, func(p func(T) bool) {
		if p != nil {
			pred = p
		}
		out.SetAll(keep(src.Items(), pred)...)
	})

	return out
}

// Transform derives a list of f applied to every item of src, recomputed on
// every change of src with a single ItemsSet.
func Transform[T any, U comparable](ctx context.Context, src *List[T], f func(T) U) *List[U] {
	return TransformFunc(ctx, src, f, func(a, b U) bool { return a == b })
}

// TransformFunc is Transform for result types compared with eq.
func TransformFunc[T, U any](ctx context.Context, src *List[T], f func(T) U, eq func(a, b U) bool) *List[U] {
	snapshot, changes := src.SnapshotAndSubscribe(stream.Conflate())
	out := NewListFunc(eq, mapItems(snapshot, f)...)

	go follow[T, U](ctx, changes, nil, out, func(func(T) bool) {
		out.SetAll(mapItems(src.Items(), f)...)
	})

	return out
}

// follow drives a derived list. Both subscriptions are conflated: only the
// fact that something changed matters, since recompute re-reads src.
func follow[T, U any](
	ctx context.Context,
	changes *stream.Subscription[ListEvent[T]],
	preds *stream.Subscription[func(T) bool],
	out *List[U],
	recompute func(func(T) bool),
) {
	defer out.Close()
	defer changes.Close()

	var (
		predReady <-chan struct{}
		predDone  <-chan struct{}
	)
	if preds != nil {
		defer preds.Close()
		predReady = preds.Ready()
		predDone = preds.Done()
	}

	for {
		select {
		case <-ctx.Done():
			return

		case <-changes.Done():
			// src was closed; publish its final content once.
			recompute(nil)
			return

		case <-predDone:
			// The predicate source ended; keep following src with the last one.
			predReady, predDone = nil, nil

		case <-changes.Ready():
			if _, ok := changes.TryNext(); ok {
				recompute(nil)
			}

		case <-predReady:
			if p, ok := preds.TryNext(); ok {
				recompute(p)
			}
		}
	}
}

func keep[T any](items []T, pred func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}

func mapItems[T, U any](items []T, f func(T) U) []U {
	out := make([]U, 0, len(items))
	for _, item := range items {
		out = append(out, f(item))
	}
	return out
}

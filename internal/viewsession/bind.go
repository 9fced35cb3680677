package viewsession

import (
	"context"

	"github.com/Iron-Ham/gamedex/internal/binding"
	"github.com/Iron-Ham/gamedex/internal/observable"
	"github.com/Iron-Ham/gamedex/internal/stream"
)

// BindBidirectional keeps a view cell and a domain cell in sync for the
// lifetime of s. The view is seeded with the domain value. Domain updates
// reach the view as presenter writes; view edits reach the domain. Presenter
// writes to the view never flow back, so the binding cannot echo.
func BindBidirectional[T any](s *Session, view, domain *binding.Cell[T]) error {
	seed, updates := domain.SnapshotAndSubscribe(stream.Conflate())
	view.SetIfChanged(seed.V)

	err := collect(s, "bind:domain-to-view", updates, func(_ context.Context, v binding.Value[T]) error {
		view.SetIfChanged(v.V)
		return nil
	})
	if err != nil {
		return err
	}

	return Collect(s, "bind:view-to-domain", view.OnlyChangesFromView(), func(_ context.Context, v T) error {
		domain.Set(v)
		return nil
	})
}

// BindList mirrors src into dst for the lifetime of s. dst is seeded
// immediately; later structural events are applied inside the session turn.
func BindList[T any](s *Session, dst *observable.SettableList[T], src *observable.List[T]) error {
	sub := dst.Seed(src)
	return collect(s, "bind:list", sub, func(_ context.Context, ev observable.ListEvent[T]) error {
		return dst.Apply(ev)
	})
}

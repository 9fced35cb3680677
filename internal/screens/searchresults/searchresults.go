// Package searchresults is the game picker: a query narrows the catalog, the
// user moves a cursor through the matches and picks one.
package searchresults

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/Iron-Ham/gamedex/internal/binding"
	"github.com/Iron-Ham/gamedex/internal/event"
	"github.com/Iron-Ham/gamedex/internal/library"
	"github.com/Iron-Ham/gamedex/internal/observable"
	"github.com/Iron-Ham/gamedex/internal/presenter"
	"github.com/Iron-Ham/gamedex/internal/stream"
	"github.com/Iron-Ham/gamedex/internal/viewsession"
)

// Name is the view name used for sessions and ViewClosed events.
const Name = "search"

// View is the picker contract. Selected is an index into Results, -1 when
// there is nothing to select.
type View struct {
	Query    *binding.Cell[string]
	Results  *observable.SettableList[library.Game]
	Selected *binding.Cell[int]
	// Preview describes the selected game once the cursor rests.
	Preview *binding.Cell[string]

	Next   *stream.Hub[struct{}]
	Prev   *stream.Hub[struct{}]
	Choose *stream.Hub[struct{}]
}

// NewView creates an empty picker.
func NewView() *View {
	return &View{
		Query:    binding.NewCell(""),
		Results:  observable.NewSettableList(library.SameGame),
		Selected: binding.NewCell(-1),
		Preview:  binding.NewCell(""),
		Next:     stream.NewHub[struct{}](),
		Prev:     stream.NewHub[struct{}](),
		Choose:   stream.NewHub[struct{}](),
	}
}

// Close ends the action streams.
func (v *View) Close() {
	v.Next.Close()
	v.Prev.Close()
	v.Choose.Close()
}

// New returns the picker presenter.
func New(deps presenter.Deps, lib *library.Service) presenter.Presenter[*View] {
	return presenter.Func[*View](func(view *View) (*viewsession.Session, error) {
		s := deps.NewSession(Name)
		if err := wire(s, deps, lib, view); err != nil {
			_ = s.Destroy()
			return nil, err
		}
		return s, nil
	})
}

func matcher(query string) func(library.Game) bool {
	return func(g library.Game) bool { return g.Matches(query) }
}

func wire(s *viewsession.Session, deps presenter.Deps, lib *library.Service, v *View) error {
	settings := deps.Settings().Session

	results := observable.Filter(s.Context(), lib.Games(),
		stream.Map(v.Query.OnlyChangesFromView(), matcher),
		matcher(v.Query.Get()))

	// Cursor movement. Key repeat can outrun rendering, so moves beyond the
	// configured rate are dropped.
	moves := stream.Throttle(stream.Merge(
		stream.Map[struct{}](v.Next, func(struct{}) int { return 1 }),
		stream.Map[struct{}](v.Prev, func(struct{}) int { return -1 }),
	), rate.Limit(settings.NavigationRate), 1)
	if err := viewsession.Collect(s, "move", moves, func(_ context.Context, delta int) error {
		v.Selected.SetIfChanged(clamp(v.Selected.Get()+delta, results.Len()))
		return nil
	}); err != nil {
		return err
	}

	if err := viewsession.Collect(s, "choose", v.Choose, func(context.Context, struct{}) error {
		g, ok := at(results.Items(), v.Selected.Get())
		if !ok {
			return nil
		}
		deps.Bus.Publish(event.NewViewClosed(Name, s.ID(), g))
		return nil
	}); err != nil {
		return err
	}

	if err := viewsession.BindList(s, v.Results, results); err != nil {
		return err
	}

	// Keep the cursor inside the results whenever they change.
	v.Selected.SetIfChanged(clamp(0, results.Len()))
	if err := viewsession.CollectLatest(s, "clamp", results.Changes(), func(context.Context, observable.ListEvent[library.Game]) error {
		v.Selected.SetIfChanged(clamp(v.Selected.Get(), results.Len()))
		return nil
	}); err != nil {
		return err
	}

	if g, ok := at(results.Items(), v.Selected.Get()); ok {
		v.Preview.Set(describe(g))
	}
	preview := stream.Debounce(s.Context(), v.Selected.Updates(), settings.NavigationDebounce())
	return viewsession.CollectLatest(s, "preview", preview, func(context.Context, binding.Value[int]) error {
		g, ok := at(results.Items(), v.Selected.Get())
		if !ok {
			v.Preview.SetIfChanged("")
			return nil
		}
		v.Preview.SetIfChanged(describe(g))
		return nil
	})
}

func clamp(i, n int) int {
	switch {
	case n == 0:
		return -1
	case i < 0:
		return 0
	case i >= n:
		return n - 1
	}
	return i
}

func at(games []library.Game, i int) (library.Game, bool) {
	if i < 0 || i >= len(games) {
		return library.Game{}, false
	}
	return games[i], true
}

func describe(g library.Game) string {
	platform := g.Platform
	if platform == "" {
		platform = "unknown platform"
	}
	return fmt.Sprintf("%s on %s, %d in stock, added %s", g.Name, platform, g.Quantity, g.Added.Format("2006-01-02"))
}

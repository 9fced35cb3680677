// Package librarylist is the catalog screen: a filterable list of games with
// add, edit and confirmed delete.
package librarylist

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Iron-Ham/gamedex/internal/binding"
	"github.com/Iron-Ham/gamedex/internal/errors"
	"github.com/Iron-Ham/gamedex/internal/event"
	"github.com/Iron-Ham/gamedex/internal/library"
	"github.com/Iron-Ham/gamedex/internal/observable"
	"github.com/Iron-Ham/gamedex/internal/presenter"
	"github.com/Iron-Ham/gamedex/internal/stream"
	"github.com/Iron-Ham/gamedex/internal/viewsession"
)

// Name is the view name used for sessions.
const Name = "library"

// Navigator opens the screens this one leads to.
type Navigator interface {
	OpenConfirm(requestID, question string) error
	OpenEditor(gameID string) error
}

// NewGame is the payload of the add action.
type NewGame struct {
	Name     string
	Platform string
	Quantity int
}

// View is the list screen contract.
type View struct {
	Games  *observable.SettableList[library.Game]
	Filter *binding.Cell[string]
	Status *binding.Cell[string]

	Add    *stream.Hub[NewGame]
	Edit   *stream.Hub[string]
	Delete *stream.Hub[string]
}

// NewView creates an empty list view.
func NewView() *View {
	return &View{
		Games:  observable.NewSettableList(library.SameGame),
		Filter: binding.NewCell(""),
		Status: binding.NewCell(""),
		Add:    stream.NewHub[NewGame](),
		Edit:   stream.NewHub[string](),
		Delete: stream.NewHub[string](),
	}
}

// Close ends the action streams.
func (v *View) Close() {
	v.Add.Close()
	v.Edit.Close()
	v.Delete.Close()
}

// New returns the catalog presenter.
func New(deps presenter.Deps, lib *library.Service, nav Navigator) presenter.Presenter[*View] {
	return presenter.Func[*View](func(view *View) (*viewsession.Session, error) {
		s := deps.NewSession(Name)
		l := &list{deps: deps, lib: lib, nav: nav, view: view}
		if err := l.wire(s); err != nil {
			_ = s.Destroy()
			return nil, err
		}
		return s, nil
	})
}

type list struct {
	deps presenter.Deps
	lib  *library.Service
	nav  Navigator
	view *View
}

func matcher(query string) func(library.Game) bool {
	return func(g library.Game) bool { return g.Matches(query) }
}

func (l *list) wire(s *viewsession.Session) error {
	v := l.view

	if err := viewsession.Collect(s, "add", v.Add, l.add); err != nil {
		return err
	}
	if err := viewsession.Collect(s, "edit", v.Edit, func(_ context.Context, id string) error {
		return l.nav.OpenEditor(id)
	}); err != nil {
		return err
	}
	if err := viewsession.Collect(s, "delete", v.Delete, l.delete); err != nil {
		return err
	}

	filtered := observable.Filter(s.Context(), l.lib.Games(),
		stream.Map(v.Filter.OnlyChangesFromView(), matcher),
		matcher(v.Filter.Get()))
	if err := viewsession.BindList(s, v.Games, filtered); err != nil {
		return err
	}

	if err := viewsession.Collect(s, "game-events", event.GameEvents(l.deps.Bus), l.onGameEvent); err != nil {
		return err
	}
	return viewsession.Collect(s, "library-events", event.LibraryEvents(l.deps.Bus), l.onLibraryEvent)
}

func (l *list) add(ctx context.Context, ng NewGame) error {
	_, err := viewsession.AwaitFuture(ctx, l.lib.Create(ctx, ng.Name, ng.Platform, ng.Quantity))
	if errors.Is(err, errors.ErrInvalidInput) {
		l.view.Status.Set(err.Error())
		return nil
	}
	return err
}

// delete asks for confirmation and deletes only on a yes. The expectation is
// registered before the prompt opens so a fast answer is not lost.
func (l *list) delete(ctx context.Context, id string) error {
	g, err := l.lib.Get(id)
	if err != nil {
		l.view.Status.Set(err.Error())
		return nil
	}

	requestID := uuid.NewString()
	answer := viewsession.ExpectEvent(ctx, l.deps.Bus, func(e event.ConfirmAnswered) bool {
		return e.RequestID == requestID
	})
	if err := l.nav.OpenConfirm(requestID, fmt.Sprintf("Delete %s?", g.Name)); err != nil {
		answer.Cancel()
		return errors.Wrap(err, "open confirmation")
	}

	reply, err := answer.Wait(ctx)
	switch {
	case errors.Is(err, errors.ErrTimeout):
		l.view.Status.Set(fmt.Sprintf("No answer; kept %s", g.Name))
		return nil
	case err != nil:
		return err
	case !reply.Confirmed:
		l.view.Status.Set(fmt.Sprintf("Kept %s", g.Name))
		return nil
	}

	_, err = viewsession.AwaitFuture(ctx, l.lib.Delete(ctx, id))
	if errors.Is(err, errors.ErrNotFound) {
		l.view.Status.Set(fmt.Sprintf("%s was already gone", g.Name))
		return nil
	}
	return err
}

func (l *list) onGameEvent(_ context.Context, ev event.GameEvent) error {
	switch e := ev.(type) {
	case event.GameCreated:
		l.view.Status.Set(fmt.Sprintf("Added %s", e.Name))
	case event.GameUpdated:
		l.view.Status.Set(fmt.Sprintf("Updated %s (%d)", e.Name, e.Quantity))
	case event.GameDeleted:
		l.view.Status.Set("Deleted 1 game")
	}
	return nil
}

func (l *list) onLibraryEvent(_ context.Context, ev event.LibraryEvent) error {
	switch e := ev.(type) {
	case event.LibraryLoaded:
		l.view.Status.Set(fmt.Sprintf("Loaded %d games", e.Games))
	case event.LibrarySaved:
		l.view.Status.Set(fmt.Sprintf("Saved %d games", e.Games))
	}
	return nil
}

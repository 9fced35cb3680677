// Package gameedit is the form editing one game. Name and quantity are bound
// two ways; quantities are corrected up to whole packs as the user types.
package gameedit

import (
	"context"
	"fmt"

	"github.com/Iron-Ham/gamedex/internal/binding"
	"github.com/Iron-Ham/gamedex/internal/errors"
	"github.com/Iron-Ham/gamedex/internal/event"
	"github.com/Iron-Ham/gamedex/internal/library"
	"github.com/Iron-Ham/gamedex/internal/presenter"
	"github.com/Iron-Ham/gamedex/internal/stream"
	"github.com/Iron-Ham/gamedex/internal/viewsession"
)

// Name is the view name used for sessions and ViewClosed events.
const Name = "game-edit"

// View is the form contract.
type View struct {
	Name     *binding.Cell[string]
	Quantity *binding.Cell[int]
	// Valid is derived: the save action is enabled only while it holds.
	Valid  *binding.Cell[bool]
	Status *binding.Cell[string]

	Save   *stream.Hub[struct{}]
	Cancel *stream.Hub[struct{}]
}

// NewView creates an empty form.
func NewView() *View {
	return &View{
		Name:     binding.NewCell(""),
		Quantity: binding.NewCell(0),
		Valid:    binding.NewCell(false),
		Status:   binding.NewCell(""),
		Save:     stream.NewHub[struct{}](),
		Cancel:   stream.NewHub[struct{}](),
	}
}

// Close ends the action streams.
func (v *View) Close() {
	v.Save.Close()
	v.Cancel.Close()
}

// New returns a presenter editing the game with id gameID.
func New(deps presenter.Deps, lib *library.Service, gameID string) presenter.Presenter[*View] {
	return presenter.Func[*View](func(view *View) (*viewsession.Session, error) {
		s := deps.NewSession(Name)
		e := &editor{deps: deps, lib: lib, id: gameID, view: view, session: s}
		if err := e.wire(); err != nil {
			_ = s.Destroy()
			return nil, err
		}
		return s, nil
	})
}

// editor is the per-session wiring. Its handlers run one at a time in the
// session turn.
type editor struct {
	deps    presenter.Deps
	lib     *library.Service
	id      string
	view    *View
	session *viewsession.Session
}

func (e *editor) wire() error {
	s, v := e.session, e.view

	// View actions to domain calls.
	if err := viewsession.Collect(s, "save", v.Save, e.save); err != nil {
		return err
	}
	if err := viewsession.Collect(s, "cancel", v.Cancel, func(context.Context, struct{}) error {
		e.close(nil)
		return nil
	}); err != nil {
		return err
	}

	// Domain state to view.
	s.OnShowHook(e.reload)
	if err := viewsession.Collect(s, "game-events", event.GameEvents(e.deps.Bus), e.onGameEvent); err != nil {
		return err
	}

	// Derived state.
	if err := viewsession.Collect(s, "quantity", v.Quantity.OnlyChangesFromView(), e.correctQuantity); err != nil {
		return err
	}
	changed := stream.Merge(
		stream.Map(v.Name.Updates(), func(binding.Value[string]) struct{} { return struct{}{} }),
		stream.Map(v.Quantity.Updates(), func(binding.Value[int]) struct{} { return struct{}{} }),
	)
	return viewsession.CollectLatest(s, "valid", changed, func(context.Context, struct{}) error {
		g, err := e.current()
		v.Valid.SetIfChanged(err == nil && g.Validate() == nil)
		return nil
	})
}

// current builds the game from the stored version and the form fields. It
// fails once the game is gone from the library.
func (e *editor) current() (library.Game, error) {
	g, err := e.lib.Get(e.id)
	if err != nil {
		return library.Game{}, err
	}
	g.Name = e.view.Name.Get()
	g.Quantity = e.view.Quantity.Get()
	return g, nil
}

// inSync reports whether the stored game already matches the form, which is
// the case for the echo of our own save.
func (e *editor) inSync() bool {
	g, err := e.lib.Get(e.id)
	return err == nil && g.Name == e.view.Name.Get() && g.Quantity == e.view.Quantity.Get()
}

func (e *editor) reload(context.Context) error {
	g, err := e.lib.Get(e.id)
	if err != nil {
		return err
	}
	e.view.Name.Set(g.Name)
	e.view.Quantity.Set(g.Quantity)
	e.view.Status.Set("")
	return nil
}

func (e *editor) correctQuantity(_ context.Context, q int) error {
	pack := e.deps.Settings().Library.PackSize
	corrected := library.RoundUpToPack(q, pack)
	if corrected == q {
		return nil
	}
	e.view.Quantity.Set(corrected)
	e.view.Status.Set(fmt.Sprintf("Rounded %d up to %d (packs of %d)", q, corrected, pack))
	return nil
}

func (e *editor) save(ctx context.Context, _ struct{}) error {
	g, err := e.current()
	if errors.Is(err, errors.ErrNotFound) {
		e.view.Valid.SetIfChanged(false)
		e.view.Status.Set("Game no longer exists")
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "save game %s", e.id)
	}
	g.Quantity = library.RoundUpToPack(g.Quantity, e.deps.Settings().Library.PackSize)
	if err := g.Validate(); err != nil {
		e.view.Status.Set(err.Error())
		return nil
	}

	saved, err := viewsession.AwaitFuture(ctx, e.lib.Update(ctx, g))
	if err != nil {
		if errors.Is(err, errors.ErrInvalidInput) {
			e.view.Status.Set(err.Error())
			return nil
		}
		return errors.Wrapf(err, "save game %s", e.id)
	}

	e.view.Status.Set("Saved")
	e.close(saved)
	return nil
}

func (e *editor) onGameEvent(ctx context.Context, ev event.GameEvent) error {
	if ev.GameID() != e.id {
		return nil
	}
	// GameCreated cannot concern a game that is already being edited.
	switch ev.(type) {
	case event.GameUpdated:
		if e.session.State() == viewsession.StateShowing && !e.inSync() {
			if err := e.reload(ctx); err != nil {
				return err
			}
			e.view.Status.Set("Changed elsewhere; reloaded")
		}
	case event.GameDeleted:
		e.view.Status.Set("Deleted elsewhere")
		e.close(nil)
	}
	return nil
}

func (e *editor) close(result any) {
	e.deps.Bus.Publish(event.NewViewClosed(Name, e.session.ID(), result))
}

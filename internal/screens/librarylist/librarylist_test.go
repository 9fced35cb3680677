package librarylist

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/gamedex/internal/config"
	"github.com/Iron-Ham/gamedex/internal/event"
	"github.com/Iron-Ham/gamedex/internal/library"
	"github.com/Iron-Ham/gamedex/internal/presenter"
)

// fakeNav answers confirmations synchronously, from inside the handler that
// asked, when answer is set.
type fakeNav struct {
	bus    *event.Bus
	answer *bool

	mu        sync.Mutex
	questions []string
	edited    []string
}

func (n *fakeNav) OpenConfirm(requestID, question string) error {
	n.mu.Lock()
	n.questions = append(n.questions, question)
	n.mu.Unlock()
	if n.answer != nil {
		n.bus.Publish(event.NewConfirmAnswered(requestID, *n.answer))
	}
	return nil
}

func (n *fakeNav) OpenEditor(gameID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.edited = append(n.edited, gameID)
	return nil
}

func (n *fakeNav) Questions() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.questions)
}

func (n *fakeNav) Edited() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.edited)
}

type fixture struct {
	bus   *event.Bus
	lib   *library.Service
	nav   *fakeNav
	view  *View
	games map[string]library.Game
}

func setup(t *testing.T, answer *bool, awaitTimeout time.Duration) *fixture {
	t.Helper()
	bus := event.NewBus()
	t.Cleanup(bus.Close)
	lib := library.NewService(library.Options{Bus: bus})

	games := make(map[string]library.Game)
	for _, name := range []string{"Celeste", "Hades", "Hollow Knight"} {
		g, err := lib.Create(context.Background(), name, "PC", 1).Await(ctxTimeout(t))
		require.NoError(t, err)
		games[name] = g
	}

	cfg := config.Default()
	cfg.Session.AwaitTimeout = awaitTimeout
	deps := presenter.Deps{Bus: bus, Config: config.NewStore(cfg)}

	nav := &fakeNav{bus: bus, answer: answer}
	view := NewView()
	s, err := New(deps, lib, nav).Present(view)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Destroy()
		view.Close()
	})
	require.NoError(t, s.OnShow())

	return &fixture{bus: bus, lib: lib, nav: nav, view: view, games: games}
}

func ctxTimeout(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func names(v *View) []string {
	var out []string
	for _, g := range v.Games.Items() {
		out = append(out, g.Name)
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func TestList_SeededAndFiltered(t *testing.T) {
	f := setup(t, nil, 0)
	assert.Equal(t, []string{"Celeste", "Hades", "Hollow Knight"}, names(f.view))

	f.view.Filter.Edit("ho")
	assert.Eventually(t, func() bool {
		return slices.Equal(names(f.view), []string{"Hollow Knight"})
	}, 2*time.Second, 5*time.Millisecond)

	_, err := f.lib.Create(context.Background(), "Hotline Miami", "PC", 1).Await(ctxTimeout(t))
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		return slices.Equal(names(f.view), []string{"Hollow Knight", "Hotline Miami"})
	}, 2*time.Second, 5*time.Millisecond)

	f.view.Filter.Edit("")
	assert.Eventually(t, func() bool { return len(f.view.Games.Items()) == 4 }, 2*time.Second, 5*time.Millisecond)
}

func TestList_DeleteConfirmed(t *testing.T) {
	f := setup(t, ptr(true), 0)
	target := f.games["Hades"]

	f.view.Delete.Publish(target.ID)

	assert.Eventually(t, func() bool {
		_, err := f.lib.Get(target.ID)
		return err != nil
	}, 2*time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool {
		return slices.Equal(names(f.view), []string{"Celeste", "Hollow Knight"})
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"Delete Hades?"}, f.nav.Questions())
}

func TestList_DeleteDeclined(t *testing.T) {
	f := setup(t, ptr(false), 0)
	target := f.games["Celeste"]

	f.view.Delete.Publish(target.ID)

	assert.Eventually(t, func() bool { return f.view.Status.Get() == "Kept Celeste" }, 2*time.Second, 5*time.Millisecond)
	_, err := f.lib.Get(target.ID)
	assert.NoError(t, err)
}

func TestList_DeleteUnansweredTimesOut(t *testing.T) {
	f := setup(t, nil, 50*time.Millisecond)
	target := f.games["Celeste"]

	f.view.Delete.Publish(target.ID)

	assert.Eventually(t, func() bool {
		return f.view.Status.Get() == "No answer; kept Celeste"
	}, 2*time.Second, 5*time.Millisecond)
	_, err := f.lib.Get(target.ID)
	assert.NoError(t, err)
}

func TestList_EditOpensEditor(t *testing.T) {
	f := setup(t, nil, 0)
	id := f.games["Hollow Knight"].ID

	f.view.Edit.Publish(id)

	assert.Eventually(t, func() bool {
		return slices.Equal(f.nav.Edited(), []string{id})
	}, 2*time.Second, 5*time.Millisecond)
}

func TestList_AddReportsValidation(t *testing.T) {
	f := setup(t, nil, 0)

	f.view.Add.Publish(NewGame{Name: " ", Quantity: 1})
	assert.Eventually(t, func() bool {
		return f.view.Status.Get() != "" && f.lib.Games().Len() == 3
	}, 2*time.Second, 5*time.Millisecond)

	f.view.Add.Publish(NewGame{Name: "Tunic", Platform: "PC", Quantity: 2})
	assert.Eventually(t, func() bool { return f.view.Status.Get() == "Added Tunic" }, 2*time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return len(f.view.Games.Items()) == 4 }, 2*time.Second, 5*time.Millisecond)
}

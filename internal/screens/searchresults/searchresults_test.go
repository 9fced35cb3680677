package searchresults

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/gamedex/internal/config"
	"github.com/Iron-Ham/gamedex/internal/event"
	"github.com/Iron-Ham/gamedex/internal/library"
	"github.com/Iron-Ham/gamedex/internal/presenter"
	"github.com/Iron-Ham/gamedex/internal/viewsession"
)

var added = time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

type fixture struct {
	bus     *event.Bus
	view    *View
	session *viewsession.Session
}

func setup(t *testing.T, navRate float64, debounceMs int) *fixture {
	t.Helper()
	bus := event.NewBus()
	t.Cleanup(bus.Close)
	lib := library.NewService(library.Options{Bus: bus, Now: func() time.Time { return added }})
	for _, name := range []string{"Celeste", "Hades", "Hollow Knight", "Hotline Miami", "Tunic"} {
		_, err := lib.Create(context.Background(), name, "PC", 3).Await(ctxTimeout(t))
		require.NoError(t, err)
	}

	cfg := config.Default()
	cfg.Session.NavigationRate = navRate
	cfg.Session.NavigationDebounceMs = debounceMs
	deps := presenter.Deps{Bus: bus, Config: config.NewStore(cfg)}

	view := NewView()
	s, err := New(deps, lib).Present(view)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Destroy()
		view.Close()
	})
	require.NoError(t, s.OnShow())
	return &fixture{bus: bus, view: view, session: s}
}

func ctxTimeout(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestSearch_InitialSelection(t *testing.T) {
	f := setup(t, 1000, 10)
	assert.Equal(t, 0, f.view.Selected.Get())
	assert.Equal(t, "Celeste on PC, 3 in stock, added 2026-01-02", f.view.Preview.Get())
	assert.Len(t, f.view.Results.Items(), 5)
}

func TestSearch_CursorMovesAndClamps(t *testing.T) {
	f := setup(t, 1000, 10)

	f.view.Prev.Publish(struct{}{})
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, f.view.Selected.Get())

	f.view.Next.Publish(struct{}{})
	assert.Eventually(t, func() bool { return f.view.Selected.Get() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool {
		return f.view.Preview.Get() == "Hades on PC, 3 in stock, added 2026-01-02"
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSearch_QueryNarrowsAndClampsCursor(t *testing.T) {
	f := setup(t, 1000, 10)
	for range 4 {
		f.view.Next.Publish(struct{}{})
		time.Sleep(5 * time.Millisecond)
	}
	require.Eventually(t, func() bool { return f.view.Selected.Get() == 4 }, 2*time.Second, 5*time.Millisecond)

	f.view.Query.Edit("ho")
	assert.Eventually(t, func() bool { return len(f.view.Results.Items()) == 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return f.view.Selected.Get() == 1 }, 2*time.Second, 5*time.Millisecond)

	f.view.Query.Edit("zelda")
	assert.Eventually(t, func() bool { return f.view.Selected.Get() == -1 }, 2*time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return f.view.Preview.Get() == "" }, 2*time.Second, 5*time.Millisecond)
}

func TestSearch_ThrottleDropsBurst(t *testing.T) {
	f := setup(t, 1, 10)

	for range 4 {
		f.view.Next.Publish(struct{}{})
	}
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, f.view.Selected.Get(), "moves beyond the rate are dropped")
}

func TestSearch_PreviewWaitsForCursorToRest(t *testing.T) {
	f := setup(t, 1000, 150)
	previews := f.view.Preview.Updates().Subscribe()
	defer previews.Close()

	f.view.Next.Publish(struct{}{})
	f.view.Next.Publish(struct{}{})
	f.view.Next.Publish(struct{}{})
	require.Eventually(t, func() bool { return f.view.Selected.Get() == 3 }, time.Second, time.Millisecond)

	v, err := previews.Next(ctxTimeout(t))
	require.NoError(t, err)
	assert.Equal(t, "Hotline Miami on PC, 3 in stock, added 2026-01-02", v.V)

	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, previews.Pending(), "intermediate positions are not previewed")
}

func TestSearch_ChoosePublishesSelectedGame(t *testing.T) {
	f := setup(t, 1000, 10)
	closed := event.Expect(f.bus, func(e event.ViewClosed) bool { return e.SessionID == f.session.ID() })

	f.view.Next.Publish(struct{}{})
	require.Eventually(t, func() bool { return f.view.Selected.Get() == 1 }, 2*time.Second, 5*time.Millisecond)
	f.view.Choose.Publish(struct{}{})

	vc, err := closed.Wait(ctxTimeout(t))
	require.NoError(t, err)
	g, ok := vc.Result.(library.Game)
	require.True(t, ok)
	assert.Equal(t, "Hades", g.Name)
}

func TestClamp(t *testing.T) {
	tests := []struct {
		i, n, want int
	}{
		{0, 0, -1},
		{3, 0, -1},
		{-1, 3, 0},
		{5, 3, 2},
		{1, 3, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, clamp(tt.i, tt.n), "clamp(%d, %d)", tt.i, tt.n)
	}
}

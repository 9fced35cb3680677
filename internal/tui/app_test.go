package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/gamedex/internal/errors"
	"github.com/Iron-Ham/gamedex/internal/event"
	"github.com/Iron-Ham/gamedex/internal/library"
	"github.com/Iron-Ham/gamedex/internal/logging"
	"github.com/Iron-Ham/gamedex/internal/presenter"
	"github.com/Iron-Ham/gamedex/internal/screens/confirm"
	"github.com/Iron-Ham/gamedex/internal/screens/gameedit"
	"github.com/Iron-Ham/gamedex/internal/screens/librarylist"
	"github.com/Iron-Ham/gamedex/internal/screens/logview"
	"github.com/Iron-Ham/gamedex/internal/screens/searchresults"
)

func newTestModel(t *testing.T, names ...string) (*Model, *library.Service) {
	t.Helper()
	bus := event.NewBus()
	t.Cleanup(bus.Close)
	lib := library.NewService(library.Options{Bus: bus})
	for _, name := range names {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := lib.Create(ctx, name, "PC", 1).Await(ctx)
		cancel()
		require.NoError(t, err)
	}

	m := NewModel(Options{
		Deps:    presenter.Deps{Bus: bus},
		Library: lib,
		Logs:    logging.NewRepository(10, nil),
	})
	t.Cleanup(m.Close)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, lib
}

// pump runs a blocking command and feeds its message back to the model.
func pump(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		require.NotNil(t, msg)
		m.Update(msg)
	case <-time.After(2 * time.Second):
		t.Fatal("command produced no message")
	}
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "ctrl+c":
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m.Update(msg)
	}
}

func TestModel_StartsOnLibrary(t *testing.T) {
	m, _ := newTestModel(t, "Celeste", "Hades")
	assert.Equal(t, librarylist.Name, m.Current())

	out := m.View()
	assert.Contains(t, out, "Library (2)")
	assert.Contains(t, out, "Celeste")
}

func TestModel_DeleteAsksForConfirmation(t *testing.T) {
	m, lib := newTestModel(t, "Celeste", "Hades")
	first := lib.Games().Items()[0]

	press(m, "d")
	pump(t, m, m.waitNav())
	require.Equal(t, confirm.Name, m.Current())
	assert.Eventually(t, func() bool {
		return strings.Contains(m.View(), "Delete "+first.Name+"?")
	}, 2*time.Second, 5*time.Millisecond)

	press(m, "y")
	pump(t, m, m.waitClosed())
	assert.Equal(t, librarylist.Name, m.Current())

	assert.Eventually(t, func() bool {
		_, err := lib.Get(first.ID)
		return err != nil
	}, 2*time.Second, 5*time.Millisecond)
}

func TestModel_PickOpensEditor(t *testing.T) {
	m, _ := newTestModel(t, "Celeste", "Hades")

	press(m, "s")
	require.Equal(t, searchresults.Name, m.Current())

	press(m, "enter")
	pump(t, m, m.waitClosed())
	assert.Equal(t, gameedit.Name, m.Current())
	assert.NotContains(t, m.host.Names(), searchresults.Name)

	press(m, "esc")
	pump(t, m, m.waitClosed())
	assert.Equal(t, librarylist.Name, m.Current())
}

func TestModel_EditFromList(t *testing.T) {
	m, _ := newTestModel(t, "Celeste")

	press(m, "enter")
	pump(t, m, m.waitNav())
	assert.Equal(t, gameedit.Name, m.Current())
}

func TestModel_LogsOpenAndClose(t *testing.T) {
	m, _ := newTestModel(t)

	press(m, "L")
	require.Equal(t, logview.Name, m.Current())
	assert.Contains(t, m.View(), "Logs")

	press(m, "esc")
	assert.Equal(t, librarylist.Name, m.Current())
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestModel_HandlerFailureIsShown(t *testing.T) {
	m, _ := newTestModel(t)

	m.deps.Bus.Publish(event.NewHandlerFailed("id", "library", "add", assert.AnError, false))
	pump(t, m, m.waitFailure())
	assert.Contains(t, m.View(), "library/add")
}

func TestModel_UserFacingFailureShowsCause(t *testing.T) {
	m, _ := newTestModel(t)

	failure := errors.NewHandlerFailure("library", "save", errors.NewValidationError("name is required"))
	m.deps.Bus.Publish(event.NewHandlerFailed("id", "library", "save", failure, false))
	pump(t, m, m.waitFailure())
	assert.Contains(t, m.View(), "name is required")

	panicked := errors.NewHandlerFailure("library", "load", errors.PanicError("nil map"))
	m.deps.Bus.Publish(event.NewHandlerFailed("id", "library", "load", panicked, true))
	pump(t, m, m.waitFailure())
	assert.Contains(t, m.View(), "internal error, see logs")
	assert.NotContains(t, m.View(), "nil map")
}

func TestModel_CloseDestroysSessions(t *testing.T) {
	m, _ := newTestModel(t)
	s, ok := m.host.Session(librarylist.Name)
	require.True(t, ok)

	m.Close()
	assert.Empty(t, m.host.Names())
	select {
	case <-s.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("library session still alive")
	}
}

func TestParseNewGame(t *testing.T) {
	tests := []struct {
		input   string
		want    librarylist.NewGame
		wantErr bool
	}{
		{"Celeste", librarylist.NewGame{Name: "Celeste", Quantity: 1}, false},
		{"Celeste, Switch", librarylist.NewGame{Name: "Celeste", Platform: "Switch", Quantity: 1}, false},
		{"Celeste, Switch, 4", librarylist.NewGame{Name: "Celeste", Platform: "Switch", Quantity: 4}, false},
		{"Celeste, Switch, many", librarylist.NewGame{}, true},
		{"a, b, 1, d", librarylist.NewGame{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseNewGame(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextLevel(t *testing.T) {
	assert.Equal(t, logging.LevelWarn, nextLevel(logging.LevelInfo))
	assert.Equal(t, logging.LevelDebug, nextLevel(logging.LevelError))
	assert.Equal(t, logging.LevelWarn, nextLevel("bogus"))
}

package logview

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/gamedex/internal/event"
	"github.com/Iron-Ham/gamedex/internal/logging"
	"github.com/Iron-Ham/gamedex/internal/presenter"
)

func setup(t *testing.T) (*logging.Repository, *View) {
	t.Helper()
	bus := event.NewBus()
	t.Cleanup(bus.Close)
	repo := logging.NewRepository(10, nil)
	t.Cleanup(repo.Close)

	repo.Record(logging.Entry{Level: logging.LevelDebug, Message: "tick"})
	repo.Record(logging.Entry{Level: logging.LevelInfo, Message: "library loaded"})
	repo.Record(logging.Entry{Level: logging.LevelError, Message: "save failed"})

	view := NewView()
	s, err := New(presenter.Deps{Bus: bus}, repo).Present(view)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Destroy()
		view.Close()
	})
	return repo, view
}

func messages(v *View) []string {
	var out []string
	for _, e := range v.Entries.Items() {
		out = append(out, e.Message)
	}
	return out
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	assert.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}

func TestLogView_DefaultLevelHidesDebug(t *testing.T) {
	_, v := setup(t)
	assert.Equal(t, []string{"library loaded", "save failed"}, messages(v))
	assert.Equal(t, "2 of 3", v.Summary.Get())
}

func TestLogView_LevelAndSearch(t *testing.T) {
	repo, v := setup(t)

	v.Level.Edit(logging.LevelError)
	eventually(t, func() bool { return slices.Equal(messages(v), []string{"save failed"}) })

	v.Level.Edit(logging.LevelDebug)
	v.Search.Edit("a")
	eventually(t, func() bool {
		return slices.Equal(messages(v), []string{"library loaded", "save failed"})
	})

	repo.Record(logging.Entry{Level: logging.LevelWarn, Message: "autosave slow"})
	eventually(t, func() bool { return len(v.Entries.Items()) == 3 })
	eventually(t, func() bool { return v.Summary.Get() == "3 of 4" })
}

func TestLogView_UnknownLevelIsCorrected(t *testing.T) {
	_, v := setup(t)

	v.Level.Edit("verbose")
	eventually(t, func() bool { return v.Level.Get() == logging.LevelInfo })

	v.Level.Edit("warn")
	eventually(t, func() bool { return v.Level.Get() == logging.LevelWarn })
	eventually(t, func() bool { return slices.Equal(messages(v), []string{"save failed"}) })
}

func TestLogView_Clear(t *testing.T) {
	repo, v := setup(t)

	v.Clear.Publish(struct{}{})
	eventually(t, func() bool { return repo.Entries().Len() == 0 })
	eventually(t, func() bool { return len(v.Entries.Items()) == 0 })
	eventually(t, func() bool { return v.Summary.Get() == "0 of 0" })
}

package tui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/gamedex/internal/logging"
	"github.com/Iron-Ham/gamedex/internal/screens/logview"
	"github.com/Iron-Ham/gamedex/internal/tui/keymap"
	"github.com/Iron-Ham/gamedex/internal/tui/styles"
)

// logChrome is the number of lines around the entries: tabs, title,
// summary, error and help.
const logChrome = 8

type logScreen struct {
	view      *logview.View
	km        keymap.Logs
	search    textinput.Model
	searching bool
}

func newLogScreen(view *logview.View, km keymap.Logs) *logScreen {
	in := textinput.New()
	in.Prompt = "/"
	in.CharLimit = 64
	return &logScreen{view: view, km: km, search: in}
}

func (l *logScreen) keys() help.KeyMap { return l.km }

func (l *logScreen) typing() bool { return l.searching }

func (l *logScreen) close() { l.view.Close() }

func (l *logScreen) sync() {}

// nextLevel cycles through the levels, wrapping after ERROR.
func nextLevel(level string) string {
	levels := logging.ValidLevels()
	i := slices.Index(levels, logging.ParseLevel(level))
	return levels[(i+1)%len(levels)]
}

func (l *logScreen) update(msg tea.KeyMsg) (tea.Cmd, intent) {
	if l.searching {
		switch msg.Type {
		case tea.KeyEnter, tea.KeyEsc:
			l.searching = false
			l.search.Blur()
			return nil, intentNone
		}
		var cmd tea.Cmd
		l.search, cmd = l.search.Update(msg)
		if l.search.Value() != l.view.Search.Get() {
			l.view.Search.Edit(l.search.Value())
		}
		return cmd, intentNone
	}

	switch {
	case key.Matches(msg, l.km.Back):
		return nil, intentClose
	case key.Matches(msg, l.km.Level):
		l.view.Level.Edit(nextLevel(l.view.Level.Get()))
	case key.Matches(msg, l.km.Clear):
		l.view.Clear.Publish(struct{}{})
	case key.Matches(msg, l.km.Search):
		l.searching = true
		return l.search.Focus(), intentNone
	}
	return nil, intentNone
}

func (l *logScreen) render(m *Model) string {
	st := m.styles
	entries := l.view.Entries.Items()
	if room := max(m.height-logChrome, 1); len(entries) > room {
		entries = entries[len(entries)-room:]
	}

	var b strings.Builder
	b.WriteString(st.Title.Render("Logs ≥ " + l.view.Level.Get() + "  " + l.view.Summary.Get()))
	b.WriteString("\n")
	if l.searching || l.view.Search.Get() != "" {
		b.WriteString(l.search.View() + "\n")
	}
	for _, e := range entries {
		line := e.Time.Format("15:04:05") + " " + st.Level(e.Level).Render(e.Level) + " " + e.Message
		if e.View != "" {
			line += st.Muted.Render(" [" + e.View + "]")
		}
		b.WriteString(styles.Truncate(line, m.width) + "\n")
	}
	return b.String()
}

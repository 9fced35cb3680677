package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/gamedex/internal/screens/searchresults"
	"github.com/Iron-Ham/gamedex/internal/tui/keymap"
)

type searchScreen struct {
	view     *searchresults.View
	km       keymap.Picker
	pageSize int
	query    textinput.Model
}

func newSearchScreen(view *searchresults.View, km keymap.Picker, pageSize int) *searchScreen {
	q := textinput.New()
	q.Prompt = "search: "
	q.CharLimit = 64
	q.Focus()
	return &searchScreen{view: view, km: km, pageSize: max(pageSize, 1), query: q}
}

func (s *searchScreen) keys() help.KeyMap { return s.km }

func (s *searchScreen) typing() bool { return true }

func (s *searchScreen) close() { s.view.Close() }

func (s *searchScreen) sync() {}

func (s *searchScreen) update(msg tea.KeyMsg) (tea.Cmd, intent) {
	switch {
	case key.Matches(msg, s.km.Cancel):
		return nil, intentClose
	case key.Matches(msg, s.km.Up):
		s.view.Prev.Publish(struct{}{})
		return nil, intentNone
	case key.Matches(msg, s.km.Down):
		s.view.Next.Publish(struct{}{})
		return nil, intentNone
	case key.Matches(msg, s.km.Choose):
		s.view.Choose.Publish(struct{}{})
		return nil, intentNone
	}

	var cmd tea.Cmd
	s.query, cmd = s.query.Update(msg)
	if s.query.Value() != s.view.Query.Get() {
		s.view.Query.Edit(s.query.Value())
	}
	return cmd, intentNone
}

func (s *searchScreen) render(m *Model) string {
	st := m.styles
	results := s.view.Results.Items()
	selected := s.view.Selected.Get()

	var b strings.Builder
	b.WriteString(st.Title.Render(fmt.Sprintf("Pick a game (%d)", len(results))))
	b.WriteString("\n")
	b.WriteString(s.query.View() + "\n")

	start := max(selected, 0) / s.pageSize * s.pageSize
	for i := start; i < min(start+s.pageSize, len(results)); i++ {
		if i == selected {
			b.WriteString(st.SelectedRow.Render(results[i].Name))
		} else {
			b.WriteString(st.Row.Render(results[i].Name))
		}
		b.WriteString("\n")
	}
	if preview := s.view.Preview.Get(); preview != "" {
		b.WriteString("\n" + st.Subtitle.Render(preview))
	}
	return b.String()
}

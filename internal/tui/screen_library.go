package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/gamedex/internal/errors"
	"github.com/Iron-Ham/gamedex/internal/screens/librarylist"
	"github.com/Iron-Ham/gamedex/internal/tui/keymap"
	"github.com/Iron-Ham/gamedex/internal/tui/styles"
)

type libraryMode int

const (
	libraryBrowse libraryMode = iota
	libraryFiltering
	libraryAdding
)

type libraryScreen struct {
	view     *librarylist.View
	km       keymap.Library
	pageSize int

	mode   libraryMode
	cursor int
	filter textinput.Model
	add    textinput.Model
	hint   string
}

func newLibraryScreen(view *librarylist.View, km keymap.Library, pageSize int) *libraryScreen {
	filter := textinput.New()
	filter.Prompt = "/"
	filter.Placeholder = "filter by name or platform"
	filter.CharLimit = 64

	add := textinput.New()
	add.Prompt = "+ "
	add.Placeholder = "name, platform, quantity"
	add.CharLimit = 128

	return &libraryScreen{view: view, km: km, pageSize: max(pageSize, 1), filter: filter, add: add}
}

func (l *libraryScreen) keys() help.KeyMap { return l.km }

func (l *libraryScreen) typing() bool { return l.mode != libraryBrowse }

func (l *libraryScreen) close() { l.view.Close() }

func (l *libraryScreen) sync() {
	l.cursor = min(l.cursor, max(len(l.view.Games.Items())-1, 0))
}

func (l *libraryScreen) update(msg tea.KeyMsg) (tea.Cmd, intent) {
	switch l.mode {
	case libraryFiltering:
		return l.updateFilter(msg), intentNone
	case libraryAdding:
		return l.updateAdd(msg), intentNone
	}

	games := l.view.Games.Items()
	switch {
	case key.Matches(msg, l.km.Up):
		l.cursor = max(l.cursor-1, 0)
	case key.Matches(msg, l.km.Down):
		l.cursor = min(l.cursor+1, max(len(games)-1, 0))
	case key.Matches(msg, l.km.Edit):
		if l.cursor < len(games) {
			l.view.Edit.Publish(games[l.cursor].ID)
		}
	case key.Matches(msg, l.km.Delete):
		if l.cursor < len(games) {
			l.view.Delete.Publish(games[l.cursor].ID)
		}
	case key.Matches(msg, l.km.Add):
		l.mode = libraryAdding
		l.hint = ""
		return l.add.Focus(), intentNone
	case key.Matches(msg, l.km.Filter):
		l.mode = libraryFiltering
		return l.filter.Focus(), intentNone
	case key.Matches(msg, l.km.Search):
		return nil, intentSearch
	case key.Matches(msg, l.km.Logs):
		return nil, intentLogs
	}
	return nil, intentNone
}

func (l *libraryScreen) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		l.mode = libraryBrowse
		l.filter.Blur()
		return nil
	}
	var cmd tea.Cmd
	l.filter, cmd = l.filter.Update(msg)
	if l.filter.Value() != l.view.Filter.Get() {
		l.view.Filter.Edit(l.filter.Value())
		l.cursor = 0
	}
	return cmd
}

func (l *libraryScreen) updateAdd(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		l.mode = libraryBrowse
		l.add.Blur()
		l.add.Reset()
		return nil
	case tea.KeyEnter:
		ng, err := parseNewGame(l.add.Value())
		if err != nil {
			l.hint = err.Error()
			return nil
		}
		l.view.Add.Publish(ng)
		l.mode = libraryBrowse
		l.add.Blur()
		l.add.Reset()
		return nil
	}
	var cmd tea.Cmd
	l.add, cmd = l.add.Update(msg)
	return cmd
}

// parseNewGame reads "name, platform, quantity". Platform and quantity are
// optional; quantity defaults to 1.
func parseNewGame(input string) (librarylist.NewGame, error) {
	fields := strings.Split(input, ",")
	ng := librarylist.NewGame{Name: strings.TrimSpace(fields[0]), Quantity: 1}
	if len(fields) > 1 {
		ng.Platform = strings.TrimSpace(fields[1])
	}
	if len(fields) > 2 {
		q, err := strconv.Atoi(strings.TrimSpace(fields[2]))
		if err != nil {
			return librarylist.NewGame{}, errors.NewValidationError("quantity must be a number").
				WithField("quantity").WithValue(fields[2])
		}
		ng.Quantity = q
	}
	if len(fields) > 3 {
		return librarylist.NewGame{}, errors.NewValidationError("expected name, platform, quantity")
	}
	return ng, nil
}

func (l *libraryScreen) render(m *Model) string {
	st := m.styles
	games := l.view.Games.Items()

	var b strings.Builder
	b.WriteString(st.Title.Render(fmt.Sprintf("Library (%d)", len(games))))
	b.WriteString("\n")

	if l.mode == libraryFiltering || l.view.Filter.Get() != "" {
		b.WriteString(l.filter.View() + "\n")
	}

	start := l.cursor / l.pageSize * l.pageSize
	end := min(start+l.pageSize, len(games))
	if len(games) == 0 {
		b.WriteString(st.Muted.Render("  no games") + "\n")
	}
	for i := start; i < end; i++ {
		g := games[i]
		row := fmt.Sprintf("%-32s %-12s %4d", styles.Truncate(g.Name, 32), g.Platform, g.Quantity)
		if i == l.cursor {
			b.WriteString(st.SelectedRow.Render(row))
		} else {
			b.WriteString(st.Row.Render(row))
		}
		b.WriteString("\n")
	}
	if len(games) > l.pageSize {
		b.WriteString(st.Muted.Render(fmt.Sprintf("  page %d/%d", start/l.pageSize+1, (len(games)-1)/l.pageSize+1)))
		b.WriteString("\n")
	}

	if l.mode == libraryAdding {
		b.WriteString(l.add.View() + "\n")
		if l.hint != "" {
			b.WriteString(st.Warning.Render(l.hint) + "\n")
		}
	}
	if status := l.view.Status.Get(); status != "" {
		b.WriteString(st.Status.Render(status))
	}
	return lipgloss.NewStyle().Width(max(m.width, 0)).Render(b.String())
}

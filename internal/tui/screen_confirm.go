package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/gamedex/internal/screens/confirm"
	"github.com/Iron-Ham/gamedex/internal/tui/keymap"
)

type confirmScreen struct {
	view *confirm.View
	km   keymap.Confirm
}

func newConfirmScreen(view *confirm.View, km keymap.Confirm) *confirmScreen {
	return &confirmScreen{view: view, km: km}
}

func (c *confirmScreen) keys() help.KeyMap { return c.km }

func (c *confirmScreen) typing() bool { return true }

func (c *confirmScreen) close() { c.view.Close() }

func (c *confirmScreen) sync() {}

func (c *confirmScreen) update(msg tea.KeyMsg) (tea.Cmd, intent) {
	switch {
	case key.Matches(msg, c.km.Yes):
		c.view.Answer.Publish(true)
	case key.Matches(msg, c.km.No):
		c.view.Answer.Publish(false)
	}
	return nil, intentNone
}

func (c *confirmScreen) render(m *Model) string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		m.styles.Warning.Render(c.view.Question.Get()),
		"",
		m.styles.Muted.Render("y / n"),
	)
	return lipgloss.Place(max(m.width, 20), max(m.height-6, 5), lipgloss.Center, lipgloss.Center, m.styles.Dialog.Render(body))
}

package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDefault_Matches(t *testing.T) {
	km := Default()

	tests := []struct {
		name    string
		msg     tea.KeyMsg
		binding key.Binding
	}{
		{"down j", runes("j"), km.Library.Down},
		{"down arrow", tea.KeyMsg{Type: tea.KeyDown}, km.Library.Down},
		{"edit enter", tea.KeyMsg{Type: tea.KeyEnter}, km.Library.Edit},
		{"delete", runes("d"), km.Library.Delete},
		{"save ctrl+s", tea.KeyMsg{Type: tea.KeyCtrlS}, km.Editor.Save},
		{"cancel esc", tea.KeyMsg{Type: tea.KeyEsc}, km.Editor.Cancel},
		{"confirm yes", runes("y"), km.Confirm.Yes},
		{"quit", tea.KeyMsg{Type: tea.KeyCtrlC}, km.Global.Quit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, key.Matches(tt.msg, tt.binding))
		})
	}
	assert.False(t, key.Matches(runes("x"), km.Library.Delete))
}

func TestGroupsImplementHelp(t *testing.T) {
	km := Default()
	for _, group := range []help.KeyMap{km.Library, km.Editor, km.Picker, km.Logs, km.Confirm} {
		assert.NotEmpty(t, group.ShortHelp())
		assert.NotEmpty(t, group.FullHelp())
	}
}

func TestBindingsHaveHelp(t *testing.T) {
	km := Default()
	for _, b := range km.Library.ShortHelp() {
		assert.NotEmpty(t, b.Help().Key)
		assert.NotEmpty(t, b.Help().Desc)
	}
}

package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/gamedex/internal/screens/gameedit"
	"github.com/Iron-Ham/gamedex/internal/tui/keymap"
)

const (
	fieldName = iota
	fieldQuantity
)

type editorScreen struct {
	view   *gameedit.View
	km     keymap.Editor
	inputs [2]textinput.Model
	focus  int
}

func newEditorScreen(view *gameedit.View, km keymap.Editor) *editorScreen {
	name := textinput.New()
	name.CharLimit = 128
	name.Focus()

	qty := textinput.New()
	qty.CharLimit = 9
	qty.Validate = func(s string) error {
		if s == "" {
			return nil
		}
		_, err := strconv.Atoi(s)
		return err
	}

	return &editorScreen{view: view, km: km, inputs: [2]textinput.Model{name, qty}}
}

func (e *editorScreen) keys() help.KeyMap { return e.km }

func (e *editorScreen) typing() bool { return true }

func (e *editorScreen) close() { e.view.Close() }

// sync shows values the presenter wrote, such as the loaded game or a
// corrected quantity, in the inputs.
func (e *editorScreen) sync() {
	if name := e.view.Name.Current(); !name.FromView() && e.inputs[fieldName].Value() != name.V {
		e.inputs[fieldName].SetValue(name.V)
	}
	if qty := e.view.Quantity.Current(); !qty.FromView() {
		if s := strconv.Itoa(qty.V); e.inputs[fieldQuantity].Value() != s {
			e.inputs[fieldQuantity].SetValue(s)
		}
	}
}

// commitQuantity hands the typed quantity to the presenter. It is done when
// the field is left rather than per keystroke, so a half-typed number is not
// corrected under the user's fingers.
func (e *editorScreen) commitQuantity() {
	n, err := strconv.Atoi(strings.TrimSpace(e.inputs[fieldQuantity].Value()))
	if err != nil || n == e.view.Quantity.Get() {
		return
	}
	e.view.Quantity.Edit(n)
}

func (e *editorScreen) update(msg tea.KeyMsg) (tea.Cmd, intent) {
	switch {
	case key.Matches(msg, e.km.Cancel):
		e.view.Cancel.Publish(struct{}{})
		return nil, intentNone
	case key.Matches(msg, e.km.Save):
		e.commitQuantity()
		if e.view.Valid.Get() {
			e.view.Save.Publish(struct{}{})
		}
		return nil, intentNone
	case key.Matches(msg, e.km.NextField):
		if e.focus == fieldQuantity {
			e.commitQuantity()
		}
		e.inputs[e.focus].Blur()
		e.focus = (e.focus + 1) % len(e.inputs)
		return e.inputs[e.focus].Focus(), intentNone
	}

	var cmd tea.Cmd
	e.inputs[e.focus], cmd = e.inputs[e.focus].Update(msg)
	if e.focus == fieldName && e.inputs[fieldName].Value() != e.view.Name.Get() {
		e.view.Name.Edit(e.inputs[fieldName].Value())
	}
	return cmd, intentNone
}

func (e *editorScreen) render(m *Model) string {
	st := m.styles
	var b strings.Builder
	b.WriteString(st.Title.Render("Edit game"))
	b.WriteString("\n")

	for i, label := range []string{"Name", "Quantity"} {
		style := st.Label
		if i == e.focus {
			style = st.FocusedLabel
		}
		b.WriteString(style.Render(label) + e.inputs[i].View() + "\n")
	}

	if e.view.Valid.Get() {
		b.WriteString(st.Success.Render("ready to save"))
	} else {
		b.WriteString(st.Muted.Render("fix the fields to save"))
	}
	b.WriteString("\n")
	if status := e.view.Status.Get(); status != "" {
		b.WriteString(st.Status.Render(status))
	}
	return st.ContentBox.Render(b.String())
}

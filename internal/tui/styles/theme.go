package styles

import "github.com/charmbracelet/lipgloss"

// Tabs renders a tab bar with active highlighted.
func (s Styles) Tabs(names []string, active string) string {
	tabs := make([]string, 0, len(names))
	for _, name := range names {
		if name == active {
			tabs = append(tabs, s.TabActive.Render(name))
			continue
		}
		tabs = append(tabs, s.TabInactive.Render(name))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

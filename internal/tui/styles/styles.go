// Package styles holds the lipgloss styles of the terminal UI, built from a
// named color palette.
package styles

import "github.com/charmbracelet/lipgloss"

// Styles is the full set of styles used by the screens.
type Styles struct {
	Palette *ColorPalette

	Title    lipgloss.Style
	Subtitle lipgloss.Style

	Row         lipgloss.Style
	SelectedRow lipgloss.Style
	Muted       lipgloss.Style

	Status  lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style

	// Input labels and the focused label
	Label        lipgloss.Style
	FocusedLabel lipgloss.Style

	TabActive   lipgloss.Style
	TabInactive lipgloss.Style

	ContentBox lipgloss.Style
	Dialog     lipgloss.Style

	// Log levels
	LevelDebug lipgloss.Style
	LevelInfo  lipgloss.Style
	LevelWarn  lipgloss.Style
	LevelError lipgloss.Style
}

// New builds the styles of the named theme.
func New(theme string) Styles {
	return FromPalette(PaletteFor(theme))
}

// FromPalette builds styles from p.
func FromPalette(p *ColorPalette) Styles {
	return Styles{
		Palette: p,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary).
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(p.Muted).
			Italic(true),

		Row: lipgloss.NewStyle().
			Foreground(p.Text).
			PaddingLeft(2),
		SelectedRow: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary).
			PaddingLeft(1).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(p.Primary),
		Muted: lipgloss.NewStyle().Foreground(p.Muted),

		Status:  lipgloss.NewStyle().Foreground(p.Text).Italic(true),
		Warning: lipgloss.NewStyle().Foreground(p.Warning),
		Error:   lipgloss.NewStyle().Foreground(p.Error).Bold(true),
		Success: lipgloss.NewStyle().Foreground(p.Secondary),

		Label:        lipgloss.NewStyle().Foreground(p.Muted).Width(10),
		FocusedLabel: lipgloss.NewStyle().Foreground(p.Primary).Bold(true).Width(10),

		TabActive: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Text).
			Background(p.Primary).
			Padding(0, 2),
		TabInactive: lipgloss.NewStyle().
			Foreground(p.Muted).
			Padding(0, 2),

		ContentBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(1, 2),
		Dialog: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(p.Warning).
			Padding(1, 3),

		LevelDebug: lipgloss.NewStyle().Foreground(p.Muted),
		LevelInfo:  lipgloss.NewStyle().Foreground(p.Text),
		LevelWarn:  lipgloss.NewStyle().Foreground(p.Warning),
		LevelError: lipgloss.NewStyle().Foreground(p.Error).Bold(true),
	}
}

// Level returns the style of a log level.
func (s Styles) Level(level string) lipgloss.Style {
	switch level {
	case "DEBUG":
		return s.LevelDebug
	case "WARN":
		return s.LevelWarn
	case "ERROR":
		return s.LevelError
	default:
		return s.LevelInfo
	}
}

// Truncate shortens text to width columns, marking the cut with an ellipsis.
func Truncate(text string, width int) string {
	if width <= 0 || lipgloss.Width(text) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

package styles

import (
	"slices"

	"github.com/charmbracelet/lipgloss"
)

// ThemeName represents a named color theme.
type ThemeName string

// Available theme names.
const (
	ThemeDefault       ThemeName = "default"        // Purple/green dark theme
	ThemeMonokai       ThemeName = "monokai"        // Classic Monokai editor colors
	ThemeDracula       ThemeName = "dracula"        // Dracula theme colors
	ThemeNord          ThemeName = "nord"           // Nord theme - cool blue-gray
	ThemeSolarizedDark ThemeName = "solarized-dark" // Solarized Dark by Ethan Schoonover
	ThemeHighContrast  ThemeName = "high-contrast"  // Pure colors on black
)

// BuiltinThemes returns all built-in theme names.
func BuiltinThemes() []string {
	return []string{
		string(ThemeDefault),
		string(ThemeMonokai),
		string(ThemeDracula),
		string(ThemeNord),
		string(ThemeSolarizedDark),
		string(ThemeHighContrast),
	}
}

// IsValidTheme checks if a theme name is built in.
func IsValidTheme(name string) bool {
	return slices.Contains(BuiltinThemes(), name)
}

// ColorPalette defines the color scheme for a theme.
type ColorPalette struct {
	// Primary accent color (titles, the selected row)
	Primary lipgloss.Color
	// Secondary accent color (success states)
	Secondary lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	// Muted color (help text, de-emphasized rows)
	Muted   lipgloss.Color
	Surface lipgloss.Color
	Text    lipgloss.Color
	Border  lipgloss.Color
}

// PaletteFor returns the palette of a theme. Unknown names get the default.
func PaletteFor(name string) *ColorPalette {
	switch ThemeName(name) {
	case ThemeMonokai:
		return MonokaiPalette()
	case ThemeDracula:
		return DraculaPalette()
	case ThemeNord:
		return NordPalette()
	case ThemeSolarizedDark:
		return SolarizedDarkPalette()
	case ThemeHighContrast:
		return HighContrastPalette()
	default:
		return DefaultPalette()
	}
}

// DefaultPalette returns the default purple/green dark theme palette.
func DefaultPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#A78BFA"), // Purple (violet-400)
		Secondary: lipgloss.Color("#10B981"), // Green
		Warning:   lipgloss.Color("#F59E0B"), // Amber
		Error:     lipgloss.Color("#F87171"), // Red (red-400)
		Muted:     lipgloss.Color("#9CA3AF"), // Gray
		Surface:   lipgloss.Color("#1F2937"), // Dark surface
		Text:      lipgloss.Color("#F9FAFB"), // Light text
		Border:    lipgloss.Color("#6B7280"), // Gray-500
	}
}

// MonokaiPalette returns the Monokai palette.
func MonokaiPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#F92672"), // Monokai pink/magenta
		Secondary: lipgloss.Color("#A6E22E"), // Monokai green
		Warning:   lipgloss.Color("#E6DB74"), // Monokai yellow
		Error:     lipgloss.Color("#F92672"),
		Muted:     lipgloss.Color("#75715E"), // Monokai comment gray
		Surface:   lipgloss.Color("#272822"),
		Text:      lipgloss.Color("#F8F8F2"),
		Border:    lipgloss.Color("#49483E"),
	}
}

// DraculaPalette returns the Dracula palette.
func DraculaPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#BD93F9"), // Dracula purple
		Secondary: lipgloss.Color("#50FA7B"), // Dracula green
		Warning:   lipgloss.Color("#F1FA8C"), // Dracula yellow
		Error:     lipgloss.Color("#FF5555"), // Dracula red
		Muted:     lipgloss.Color("#6272A4"), // Dracula comment
		Surface:   lipgloss.Color("#282A36"),
		Text:      lipgloss.Color("#F8F8F2"),
		Border:    lipgloss.Color("#44475A"),
	}
}

// NordPalette returns the Nord palette.
func NordPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#88C0D0"), // Nord frost (cyan)
		Secondary: lipgloss.Color("#A3BE8C"), // Nord aurora green
		Warning:   lipgloss.Color("#EBCB8B"), // Nord aurora yellow
		Error:     lipgloss.Color("#BF616A"), // Nord aurora red
		Muted:     lipgloss.Color("#4C566A"),
		Surface:   lipgloss.Color("#2E3440"),
		Text:      lipgloss.Color("#ECEFF4"),
		Border:    lipgloss.Color("#3B4252"),
	}
}

// SolarizedDarkPalette returns the Solarized Dark palette.
func SolarizedDarkPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#268BD2"), // Blue
		Secondary: lipgloss.Color("#859900"), // Green
		Warning:   lipgloss.Color("#B58900"), // Yellow
		Error:     lipgloss.Color("#DC322F"), // Red
		Muted:     lipgloss.Color("#586E75"), // base01
		Surface:   lipgloss.Color("#002B36"), // base03
		Text:      lipgloss.Color("#EEE8D5"), // base2
		Border:    lipgloss.Color("#073642"), // base02
	}
}

// HighContrastPalette returns a palette for low-vision use.
func HighContrastPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#FFFF00"),
		Secondary: lipgloss.Color("#00FF00"),
		Warning:   lipgloss.Color("#FFA500"),
		Error:     lipgloss.Color("#FF0000"),
		Muted:     lipgloss.Color("#C0C0C0"),
		Surface:   lipgloss.Color("#000000"),
		Text:      lipgloss.Color("#FFFFFF"),
		Border:    lipgloss.Color("#FFFFFF"),
	}
}

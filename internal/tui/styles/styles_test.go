package styles

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Iron-Ham/gamedex/internal/config"
)

func TestBuiltinThemesMatchConfig(t *testing.T) {
	assert.ElementsMatch(t, config.ValidThemes(), BuiltinThemes())
}

func TestPaletteFor(t *testing.T) {
	for _, name := range BuiltinThemes() {
		t.Run(name, func(t *testing.T) {
			p := PaletteFor(name)
			assert.NotEmpty(t, p.Primary)
			assert.NotEmpty(t, p.Text)
			assert.NotEmpty(t, p.Error)
		})
	}
	assert.Equal(t, DefaultPalette(), PaletteFor("no-such-theme"))
}

func TestIsValidTheme(t *testing.T) {
	assert.True(t, IsValidTheme("nord"))
	assert.False(t, IsValidTheme("gruvbox"))
}

func TestLevelStyle(t *testing.T) {
	s := New("dracula")
	assert.Equal(t, s.LevelError, s.Level("ERROR"))
	assert.Equal(t, s.LevelInfo, s.Level("SOMETHING"))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"Celeste", 10, "Celeste"},
		{"Celeste", 0, "Celeste"},
		{"Hollow Knight", 7, "Hollow…"},
		{"ab", 1, "…"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Truncate(tt.text, tt.width))
	}
}

func TestTabs(t *testing.T) {
	s := New("default")
	out := s.Tabs([]string{"library", "search"}, "search")
	assert.True(t, strings.Contains(out, "library"))
	assert.True(t, strings.Contains(out, "search"))
}

package config

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/gamedex/internal/tui/styles"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "List and preview color themes",
	Long: `List and preview the built-in color themes of the gamedex TUI.

Select one with 'gamedex config set tui.theme <name>'.`,
}

var themeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available themes",
	Args:  cobra.NoArgs,
	RunE:  runThemeList,
}

var themeShowCmd = &cobra.Command{
	Use:   "show <theme-name>",
	Short: "Show the colors of a theme",
	Args:  cobra.ExactArgs(1),
	RunE:  runThemeShow,
}

func init() {
	themeCmd.AddCommand(themeListCmd)
	themeCmd.AddCommand(themeShowCmd)
	configCmd.AddCommand(themeCmd)
}

func runThemeList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	current := viper.GetString("tui.theme")

	fmt.Fprintln(out, "Built-in themes:")
	for _, name := range styles.BuiltinThemes() {
		marker := " "
		if name == current {
			marker = "*"
		}
		fmt.Fprintf(out, " %s %s\n", marker, name)
	}
	return nil
}

func runThemeShow(cmd *cobra.Command, args []string) error {
	name := args[0]
	if !styles.IsValidTheme(name) {
		return fmt.Errorf("unknown theme: %s\nRun 'gamedex config theme list' to see available themes", name)
	}

	p := styles.PaletteFor(name)
	colors := []struct {
		role  string
		color lipgloss.Color
	}{
		{"primary", p.Primary},
		{"secondary", p.Secondary},
		{"warning", p.Warning},
		{"error", p.Error},
		{"muted", p.Muted},
		{"surface", p.Surface},
		{"text", p.Text},
		{"border", p.Border},
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Theme: %s\n\n", name)
	for _, c := range colors {
		swatch := lipgloss.NewStyle().Background(c.color).Render("    ")
		fmt.Fprintf(out, "  %-10s %s %s\n", c.role, swatch, string(c.color))
	}
	return nil
}

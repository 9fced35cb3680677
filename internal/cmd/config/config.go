// Package config provides CLI commands for managing gamedex configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	appconfig "github.com/Iron-Ham/gamedex/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify gamedex configuration",
	Long: `View or modify gamedex configuration.

Use 'config show' to display the configuration in effect.
Use subcommands to modify settings or create a config file.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  gamedex config set library.pack_size 12
  gamedex config set tui.theme nord
  gamedex config set session.await_timeout 30s

The whole configuration is validated before it is written; an invalid
value leaves the file untouched.

Valid keys:
` + keyHelp(),
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at $XDG_CONFIG_HOME/gamedex/config.yaml with all available options.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var configResetCmd = &cobra.Command{
	Use:   "reset [key]",
	Short: "Reset configuration to defaults",
	Long: `Reset configuration values to their defaults.

Without arguments, resets all configuration to defaults.
With a key argument, resets only that specific key.

Examples:
  gamedex config reset                     # Reset all to defaults
  gamedex config reset library.pack_size   # Reset only library.pack_size`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigReset,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configResetCmd)
}

// Register adds all config-related commands to the given parent command.
func Register(parent *cobra.Command) {
	parent.AddCommand(configCmd)
}

type keyKind int

const (
	kindString keyKind = iota
	kindBool
	kindInt
	kindFloat
	kindDuration
)

type settableKey struct {
	kind keyKind
	help string
}

// settableKeys lists what 'config set' and 'config reset' accept. Values
// are range-checked by the config validator, not here.
var settableKeys = map[string]settableKey{
	"session.await_timeout":          {kindDuration, "Bound on unanswered awaits, e.g. 30s (0 = none)"},
	"session.navigation_debounce_ms": {kindInt, "Quiet period before the selection preview updates"},
	"session.navigation_rate":        {kindFloat, "Navigation actions accepted per second"},
	"session.error_buffer":           {kindInt, "Handler failures kept per view"},
	"library.file":                   {kindString, "Catalog snapshot path (empty = data dir)"},
	"library.autosave":               {kindBool, "Save after every change (true/false)"},
	"library.autosave_delay_ms":      {kindInt, "Quiet period before an autosave"},
	"library.pack_size":              {kindInt, "Unit quantities are rounded up to"},
	"logging.enabled":                {kindBool, "Write the log file (true/false)"},
	"logging.level":                  {kindString, "Options: " + strings.Join(appconfig.ValidLogLevels(), ", ")},
	"logging.max_size_mb":            {kindInt, "Log size before rotation"},
	"logging.max_backups":            {kindInt, "Rotated log files kept"},
	"logging.compress":               {kindBool, "Gzip rotated logs (true/false)"},
	"logging.buffer_entries":         {kindInt, "Entries shown by the log view"},
	"tui.theme":                      {kindString, "Options: " + strings.Join(appconfig.ValidThemes(), ", ")},
	"tui.page_size":                  {kindInt, "Rows per page"},
	"metrics.enabled":                {kindBool, "Register collectors (true/false)"},
	"metrics.listen":                 {kindString, "host:port serving /metrics (empty = off)"},
	"paths.data_dir":                 {kindString, "Log and catalog directory"},
}

func sortedKeys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func keyHelp() string {
	var b strings.Builder
	for _, k := range sortedKeys() {
		fmt.Fprintf(&b, "  %-31s - %s\n", k, settableKeys[k].help)
	}
	return b.String()
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "# Config file: %s\n", used)
	} else {
		fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}

	if _, err := appconfig.Load(); err != nil {
		fmt.Fprintf(out, "# Warning: configuration is invalid and defaults will be used:\n")
		for _, line := range strings.Split(err.Error(), "\n") {
			fmt.Fprintf(out, "#   %s\n", line)
		}
	}

	data, err := yaml.Marshal(viper.AllSettings())
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	_, err = out.Write(data)
	return err
}

func parseValue(key, value string) (any, error) {
	spec, ok := settableKeys[key]
	if !ok {
		return nil, fmt.Errorf("unknown configuration key: %s\nRun 'gamedex config set --help' to see valid keys", key)
	}

	switch spec.kind {
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		return b, nil
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected integer", key)
		}
		return n, nil
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected number", key)
		}
		return f, nil
	case kindDuration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected a duration such as 30s", key)
		}
		return d.String(), nil
	default:
		return value, nil
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	typed, err := parseValue(key, value)
	if err != nil {
		return err
	}

	previous := viper.Get(key)
	viper.Set(key, typed)
	if _, err := appconfig.Load(); err != nil {
		viper.Set(key, previous)
		return fmt.Errorf("invalid value for %s:\n%w", key, err)
	}

	configFile, err := writeConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Set %s = %v\n", key, typed)
	fmt.Fprintf(out, "Config saved to %s\n", configFile)
	return nil
}

// writeConfig writes every viper setting to the user's config file.
func writeConfig() (string, error) {
	configFile := appconfig.ConfigFile()
	if used := viper.ConfigFileUsed(); used != "" {
		configFile = used
	}
	if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := viper.WriteConfigAs(configFile); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return configFile, nil
}

const defaultConfigContent = `# gamedex configuration

# View sessions
session:
  # Bound on awaits that are never answered, e.g. 30s. 0 means an await
  # lasts until its view closes.
  await_timeout: 0s
  # Quiet period before the search preview follows the selection
  navigation_debounce_ms: 120
  # Navigation actions accepted per second; extra key repeats are dropped
  navigation_rate: 20
  # Handler failures kept per view
  error_buffer: 32

# Game catalog
library:
  # Snapshot path; empty means {data dir}/library.yaml
  file: ""
  autosave: true
  autosave_delay_ms: 500
  # Quantities are rounded up to whole packs of this size
  pack_size: 10

logging:
  enabled: true
  # debug, info, warn or error
  level: info
  max_size_mb: 10
  max_backups: 3
  compress: false
  # Entries the log view can show
  buffer_entries: 500

tui:
  # default, monokai, dracula, nord, solarized-dark or high-contrast
  theme: default
  page_size: 20

metrics:
  enabled: true
  # host:port serving /metrics; empty disables the endpoint
  listen: ""

paths:
  # Empty means $XDG_DATA_HOME/gamedex
  data_dir: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configFile := appconfig.ConfigFile()

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'gamedex config set' to modify values", configFile)
	}
	if err := os.MkdirAll(appconfig.ConfigDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configFile, []byte(defaultConfigContent), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created config file at %s\n", configFile)
	fmt.Fprintln(out, "Edit this file to customize gamedex.")
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "Active config: %s\n", used)
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", appconfig.ConfigFile())
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", appconfig.ConfigFile())
	fmt.Fprintln(out, "  2. ./config.yaml (current directory)")
	fmt.Fprintln(out, "\nEnvironment variables: GAMEDEX_* (e.g., GAMEDEX_LIBRARY_PACK_SIZE)")
	return nil
}

// defaultValue reads key from a viper holding only the defaults.
func defaultValue(key string) any {
	v := viper.New()
	appconfig.SetDefaultsOn(v)
	return v.Get(key)
}

func runConfigReset(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		for _, key := range sortedKeys() {
			viper.Set(key, defaultValue(key))
		}
		fmt.Fprintln(out, "Reset all configuration to defaults.")
	} else {
		key := args[0]
		if _, ok := settableKeys[key]; !ok {
			return fmt.Errorf("unknown configuration key: %s\nRun 'gamedex config set --help' to see valid keys", key)
		}
		value := defaultValue(key)
		viper.Set(key, value)
		fmt.Fprintf(out, "Reset %s to default: %v\n", key, value)
	}

	configFile, err := writeConfig()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Config saved to %s\n", configFile)
	return nil
}

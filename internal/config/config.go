package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete gamedex configuration
type Config struct {
	Session SessionConfig `mapstructure:"session"`
	Library LibraryConfig `mapstructure:"library"`
	Logging LoggingConfig `mapstructure:"logging"`
	TUI     TUIConfig     `mapstructure:"tui"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Paths   PathsConfig   `mapstructure:"paths"`
}

// SessionConfig controls view session behavior
type SessionConfig struct {
	// AwaitTimeout bounds event awaits made through a session (0 = no bound).
	// An await that is never answered otherwise blocks until the session is
	// destroyed.
	AwaitTimeout time.Duration `mapstructure:"await_timeout"`
	// NavigationDebounceMs is the quiet period before a burst of next/prev
	// navigation actions is applied (default: 120)
	NavigationDebounceMs int `mapstructure:"navigation_debounce_ms"`
	// NavigationRate is the maximum number of navigation actions per second
	// accepted from a view; extra actions are dropped (default: 20)
	NavigationRate float64 `mapstructure:"navigation_rate"`
	// ErrorBuffer is how many handler failures a session keeps for display
	// (default: 32)
	ErrorBuffer int `mapstructure:"error_buffer"`
}

// LibraryConfig controls the game catalog
type LibraryConfig struct {
	// File is the YAML snapshot of the catalog. Empty means
	// {data dir}/library.yaml.
	File string `mapstructure:"file"`
	// Autosave writes the snapshot after every change (default: true)
	Autosave bool `mapstructure:"autosave"`
	// AutosaveDelayMs coalesces bursts of changes into one write (default: 500)
	AutosaveDelayMs int `mapstructure:"autosave_delay_ms"`
	// PackSize is the unit quantities are rounded up to (default: 10)
	PackSize int `mapstructure:"pack_size"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	// Enabled controls whether the log file is written (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
	// Compress gzips rotated log files (default: false)
	Compress bool `mapstructure:"compress"`
	// BufferEntries is how many recent entries the log view can show (default: 500)
	BufferEntries int `mapstructure:"buffer_entries"`
}

// TUIConfig controls the terminal UI
type TUIConfig struct {
	// Theme is the color theme (default: "default")
	Theme string `mapstructure:"theme"`
	// PageSize is how many rows a list shows per page (default: 20)
	PageSize int `mapstructure:"page_size"`
}

// MetricsConfig controls the prometheus collectors
type MetricsConfig struct {
	// Enabled registers the collectors (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Listen is a host:port serving /metrics; empty disables serving
	Listen string `mapstructure:"listen"`
}

// PathsConfig controls where gamedex stores data
type PathsConfig struct {
	// DataDir holds the log file and the default library snapshot.
	// Empty means $XDG_DATA_HOME/gamedex. Supports ~ expansion.
	DataDir string `mapstructure:"data_dir"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			AwaitTimeout:         0, // Awaits are bounded by the session lifetime only
			NavigationDebounceMs: 120,
			NavigationRate:       20,
			ErrorBuffer:          32,
		},
		Library: LibraryConfig{
			File:            "",
			Autosave:        true,
			AutosaveDelayMs: 500,
			PackSize:        10,
		},
		Logging: LoggingConfig{
			Enabled:       true,
			Level:         "info",
			MaxSizeMB:     10,
			MaxBackups:    3,
			Compress:      false,
			BufferEntries: 500,
		},
		TUI: TUIConfig{
			Theme:    "default",
			PageSize: 20,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Listen:  "",
		},
	}
}

// NavigationDebounce returns the navigation debounce as a time.Duration
func (c *SessionConfig) NavigationDebounce() time.Duration {
	return time.Duration(c.NavigationDebounceMs) * time.Millisecond
}

// AutosaveDelay returns the autosave delay as a time.Duration
func (c *LibraryConfig) AutosaveDelay() time.Duration {
	return time.Duration(c.AutosaveDelayMs) * time.Millisecond
}

// SetDefaults registers default values with viper
func SetDefaults() {
	SetDefaultsOn(viper.GetViper())
}

// SetDefaultsOn is SetDefaults for a specific viper instance.
func SetDefaultsOn(v *viper.Viper) {
	defaults := Default()

	// Session defaults
	v.SetDefault("session.await_timeout", defaults.Session.AwaitTimeout)
	v.SetDefault("session.navigation_debounce_ms", defaults.Session.NavigationDebounceMs)
	v.SetDefault("session.navigation_rate", defaults.Session.NavigationRate)
	v.SetDefault("session.error_buffer", defaults.Session.ErrorBuffer)

	// Library defaults
	v.SetDefault("library.file", defaults.Library.File)
	v.SetDefault("library.autosave", defaults.Library.Autosave)
	v.SetDefault("library.autosave_delay_ms", defaults.Library.AutosaveDelayMs)
	v.SetDefault("library.pack_size", defaults.Library.PackSize)

	// Logging defaults
	v.SetDefault("logging.enabled", defaults.Logging.Enabled)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	v.SetDefault("logging.compress", defaults.Logging.Compress)
	v.SetDefault("logging.buffer_entries", defaults.Logging.BufferEntries)

	// TUI defaults
	v.SetDefault("tui.theme", defaults.TUI.Theme)
	v.SetDefault("tui.page_size", defaults.TUI.PageSize)

	// Metrics defaults
	v.SetDefault("metrics.enabled", defaults.Metrics.Enabled)
	v.SetDefault("metrics.listen", defaults.Metrics.Listen)

	// Paths defaults
	v.SetDefault("paths.data_dir", defaults.Paths.DataDir)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom is Load for a specific viper instance.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// Store holds the configuration in effect. Readers always see a complete,
// validated Config; a reload swaps the whole value.
type Store struct {
	current atomic.Pointer[Config]
}

// NewStore creates a Store holding cfg, or the defaults when cfg is nil.
func NewStore(cfg *Config) *Store {
	if cfg == nil {
		cfg = Default()
	}
	s := &Store{}
	s.current.Store(cfg)
	return s
}

// Get returns the configuration in effect. Callers must not modify it.
func (s *Store) Get() *Config {
	return s.current.Load()
}

// Set replaces the configuration in effect.
func (s *Store) Set(cfg *Config) {
	s.current.Store(cfg)
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gamedex")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gamedex"
	}
	return filepath.Join(home, ".config", "gamedex")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ResolveDataDir returns the data directory, expanding ~ and applying the
// XDG default when DataDir is empty.
func (p *PathsConfig) ResolveDataDir() string {
	if p.DataDir != "" {
		return expandHome(p.DataDir)
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "gamedex")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gamedex"
	}
	return filepath.Join(home, ".local", "share", "gamedex")
}

// LibraryFile returns the resolved path of the catalog snapshot.
func (c *Config) LibraryFile() string {
	if c.Library.File != "" {
		return expandHome(c.Library.File)
	}
	return filepath.Join(c.Paths.ResolveDataDir(), "library.yaml")
}

func expandHome(path string) string {
	if path != "~" && !hasHomePrefix(path) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

func hasHomePrefix(path string) bool {
	return len(path) >= 2 && path[0] == '~' && path[1] == '/'
}

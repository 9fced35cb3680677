package config

import (
	"fmt"
	"net"
	"slices"
	"strings"
	"time"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "session.error_buffer")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// Strings returns each error as one line, for events and status bars.
func (e ValidationErrors) Strings() []string {
	out := make([]string, len(e))
	for i, err := range e {
		out[i] = err.Error()
	}
	return out
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidThemes returns the names of the built-in color themes
func ValidThemes() []string {
	return []string{"default", "monokai", "dracula", "nord", "solarized-dark", "high-contrast"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateSession()...)
	errors = append(errors, c.validateLibrary()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateTUI()...)
	errors = append(errors, c.validateMetrics()...)
	errors = append(errors, c.validatePaths()...)

	return errors
}

// validateSession validates the SessionConfig
func (c *Config) validateSession() []ValidationError {
	var errors []ValidationError

	if c.Session.AwaitTimeout < 0 {
		errors = append(errors, ValidationError{
			Field:   "session.await_timeout",
			Value:   c.Session.AwaitTimeout,
			Message: "must be non-negative (0 disables the bound)",
		})
	}

	const maxAwait = 24 * time.Hour
	if c.Session.AwaitTimeout > maxAwait {
		errors = append(errors, ValidationError{
			Field:   "session.await_timeout",
			Value:   c.Session.AwaitTimeout,
			Message: fmt.Sprintf("exceeds maximum of %s", maxAwait),
		})
	}

	if c.Session.NavigationDebounceMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "session.navigation_debounce_ms",
			Value:   c.Session.NavigationDebounceMs,
			Message: "must be non-negative",
		})
	}

	if c.Session.NavigationRate <= 0 {
		errors = append(errors, ValidationError{
			Field:   "session.navigation_rate",
			Value:   c.Session.NavigationRate,
			Message: "must be positive",
		})
	}

	if c.Session.ErrorBuffer < 1 {
		errors = append(errors, ValidationError{
			Field:   "session.error_buffer",
			Value:   c.Session.ErrorBuffer,
			Message: "must be at least 1",
		})
	}

	return errors
}

// validateLibrary validates the LibraryConfig
func (c *Config) validateLibrary() []ValidationError {
	var errors []ValidationError

	if c.Library.File != "" {
		errors = append(errors, validatePath("library.file", c.Library.File)...)
	}

	if c.Library.AutosaveDelayMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "library.autosave_delay_ms",
			Value:   c.Library.AutosaveDelayMs,
			Message: "must be non-negative",
		})
	}

	if c.Library.PackSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "library.pack_size",
			Value:   c.Library.PackSize,
			Message: "must be at least 1",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	// Validate log level
	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	// Max size must be positive
	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	// Reasonable upper bound for log file size
	const maxLogSizeMB = 1000 // 1GB
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	// Max backups must be non-negative
	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	if c.Logging.BufferEntries < 1 {
		errors = append(errors, ValidationError{
			Field:   "logging.buffer_entries",
			Value:   c.Logging.BufferEntries,
			Message: "must be at least 1",
		})
	}

	return errors
}

// validateTUI validates the TUIConfig
func (c *Config) validateTUI() []ValidationError {
	var errors []ValidationError

	if c.TUI.Theme != "" && !slices.Contains(ValidThemes(), c.TUI.Theme) {
		errors = append(errors, ValidationError{
			Field:   "tui.theme",
			Value:   c.TUI.Theme,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidThemes(), ", ")),
		})
	}

	if c.TUI.PageSize < 1 || c.TUI.PageSize > 500 {
		errors = append(errors, ValidationError{
			Field:   "tui.page_size",
			Value:   c.TUI.PageSize,
			Message: "must be between 1 and 500",
		})
	}

	return errors
}

// validateMetrics validates the MetricsConfig
func (c *Config) validateMetrics() []ValidationError {
	var errors []ValidationError

	if c.Metrics.Listen == "" {
		return errors
	}

	if _, _, err := net.SplitHostPort(c.Metrics.Listen); err != nil {
		errors = append(errors, ValidationError{
			Field:   "metrics.listen",
			Value:   c.Metrics.Listen,
			Message: "must be a host:port address",
		})
	} else if !c.Metrics.Enabled {
		errors = append(errors, ValidationError{
			Field:   "metrics.listen",
			Value:   c.Metrics.Listen,
			Message: "requires metrics.enabled",
		})
	}

	return errors
}

// validatePaths validates the PathsConfig
func (c *Config) validatePaths() []ValidationError {
	if c.Paths.DataDir == "" {
		return nil
	}
	return validatePath("paths.data_dir", c.Paths.DataDir)
}

func validatePath(field, path string) []ValidationError {
	var errors []ValidationError

	// Check for null bytes which are invalid in paths
	if strings.ContainsRune(path, '\x00') {
		errors = append(errors, ValidationError{
			Field:   field,
			Value:   path,
			Message: "path contains invalid null character",
		})
	}

	// Reasonable path length limit (most filesystems have limits around 4096)
	const maxPathLength = 4096
	if len(path) > maxPathLength {
		errors = append(errors, ValidationError{
			Field:   field,
			Value:   path,
			Message: fmt.Sprintf("path exceeds maximum length of %d characters", maxPathLength),
		})
	}

	return errors
}

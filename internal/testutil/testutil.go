// Package testutil provides testing utilities for gamedex tests.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/gamedex/internal/config"
)

// Dirs are the isolated directories of a test.
type Dirs struct {
	Config string
	Data   string
}

// Isolate points the XDG config and data directories at fresh temporary
// directories and resets the global viper to the defaults, so a test never
// reads or writes the user's real configuration.
func Isolate(t *testing.T) Dirs {
	t.Helper()

	root := t.TempDir()
	dirs := Dirs{
		Config: filepath.Join(root, "config"),
		Data:   filepath.Join(root, "data"),
	}
	t.Setenv("XDG_CONFIG_HOME", dirs.Config)
	t.Setenv("XDG_DATA_HOME", dirs.Data)

	viper.Reset()
	config.SetDefaults()
	t.Cleanup(viper.Reset)

	return dirs
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// ReadFile returns the content of path, failing the test if it is missing.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// ExecuteCommand runs root with args and returns everything written to its
// output and error streams.
func ExecuteCommand(root *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// NewRoot returns a bare root command with the given registrations applied,
// for testing a command subpackage on its own.
func NewRoot(register ...func(*cobra.Command)) *cobra.Command {
	root := &cobra.Command{Use: "gamedex", SilenceUsage: true, SilenceErrors: true}
	for _, r := range register {
		r(root)
	}
	return root
}

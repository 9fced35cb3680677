package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/gamedex/internal/config"
	"github.com/Iron-Ham/gamedex/internal/logging"
	"github.com/Iron-Ham/gamedex/internal/testutil"
)

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "gamedex", rootCmd.Use)

	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"config", "library", "logs", "version"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestVersionCommand(t *testing.T) {
	testutil.Isolate(t)

	out, err := testutil.ExecuteCommand(rootCmd, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "gamedex ")
	assert.Contains(t, out, "go: ")
}

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	config.SetDefaultsOn(v)
	v.Set("paths.data_dir", t.TempDir())

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	return v
}

func TestNewProcess_Wiring(t *testing.T) {
	v := newTestViper(t)
	v.Set("metrics.enabled", false)

	proc, err := newProcess(v)
	require.NoError(t, err)
	t.Cleanup(func() {
		proc.logs.Close()
		proc.bus.Close()
		_ = proc.logger.Close()
	})

	assert.Nil(t, proc.metrics)
	assert.Equal(t, filepath.Join(v.GetString("paths.data_dir"), "library.yaml"), proc.libPath)

	slog.Info("routed through the default logger")
	assert.Eventually(t, func() bool {
		for _, e := range proc.logs.Entries().Items() {
			if e.Message == "routed through the default logger" {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond, "log view repository should see default slog records")

	require.NoError(t, proc.logger.Close())
	logFile := filepath.Join(v.GetString("paths.data_dir"), logging.LogFileName)
	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "routed through the default logger")

	deps := proc.deps()
	assert.Same(t, proc.sessions, deps.Sessions)
	s := deps.NewSession("probe")
	assert.Equal(t, 1, proc.sessions.Len())
	require.NoError(t, s.Destroy())
	assert.Equal(t, 0, proc.sessions.Len())
}

func TestNewProcess_LoggingDisabled(t *testing.T) {
	v := newTestViper(t)
	v.Set("logging.enabled", false)

	proc, err := newProcess(v)
	require.NoError(t, err)
	t.Cleanup(func() {
		proc.logs.Close()
		proc.bus.Close()
	})

	assert.NotNil(t, proc.metrics)
	_, err = os.Stat(filepath.Join(v.GetString("paths.data_dir"), logging.LogFileName))
	assert.True(t, os.IsNotExist(err), "no log file when logging is disabled")
}

func TestNewProcess_InvalidConfig(t *testing.T) {
	v := newTestViper(t)
	v.Set("library.pack_size", 0)

	_, err := newProcess(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "library.pack_size")
}

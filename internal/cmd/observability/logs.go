// Package observability provides CLI commands for reading gamedex logs.
package observability

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	appconfig "github.com/Iron-Ham/gamedex/internal/config"
	"github.com/Iron-Ham/gamedex/internal/logging"
	"github.com/Iron-Ham/gamedex/internal/tui/styles"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View and export the gamedex log",
	Long: `View and filter the gamedex log file.

Examples:
  # Show the last 50 entries
  gamedex logs

  # Warnings and errors of the last hour
  gamedex logs --level warn --since 1h

  # Everything one view session logged
  gamedex logs --session 3f2a... -n 0

  # Follow new entries as they are written
  gamedex logs -f`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

var logsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export filtered log entries",
	Long: `Export log entries as json, text or csv.

The same filters as 'gamedex logs' apply. Output goes to stdout unless
--output is given.`,
	Args: cobra.NoArgs,
	RunE: runLogsExport,
}

type logsOptions struct {
	dir     string
	tail    int
	follow  bool
	level   string
	since   string
	session string
	view    string
	grep    string
	format  string
	output  string
}

var logsOpts logsOptions

func init() {
	pf := logsCmd.PersistentFlags()
	pf.StringVar(&logsOpts.dir, "dir", "", "Data directory holding the log (default: from config)")
	pf.StringVar(&logsOpts.level, "level", "", "Minimum level (debug/info/warn/error)")
	pf.StringVar(&logsOpts.since, "since", "", "Only entries newer than this duration (e.g., 1h, 30m)")
	pf.StringVarP(&logsOpts.session, "session", "s", "", "Only entries of this view session ID")
	pf.StringVar(&logsOpts.view, "view", "", "Only entries of this view (library, game-edit, search, logs, confirm)")
	pf.StringVar(&logsOpts.grep, "grep", "", "Only entries whose message contains this text")

	logsCmd.Flags().IntVarP(&logsOpts.tail, "tail", "n", 50, "Number of entries to show (0 for all)")
	logsCmd.Flags().BoolVarP(&logsOpts.follow, "follow", "f", false, "Follow log output (like tail -f)")

	logsExportCmd.Flags().StringVar(&logsOpts.format, "format", "json",
		"Output format ("+strings.Join(logging.ExportFormats(), ", ")+")")
	logsExportCmd.Flags().StringVarP(&logsOpts.output, "output", "o", "", "Write to this file instead of stdout")

	logsCmd.AddCommand(logsExportCmd)
}

// RegisterLogsCmd registers the logs command with the given parent command.
func RegisterLogsCmd(parent *cobra.Command) {
	parent.AddCommand(logsCmd)
}

func (o logsOptions) logDir() string {
	if o.dir != "" {
		return o.dir
	}
	cfg := appconfig.Get()
	return cfg.Paths.ResolveDataDir()
}

func (o logsOptions) filter(now time.Time) (logging.LogFilter, error) {
	f := logging.LogFilter{
		SessionID:       o.session,
		View:            o.view,
		MessageContains: o.grep,
	}
	if o.level != "" {
		level := strings.ToUpper(o.level)
		if logging.ParseLevel(level) != level {
			return f, fmt.Errorf("invalid level %q (valid: %s)", o.level, strings.Join(logging.ValidLevels(), ", "))
		}
		f.Level = level
	}
	if o.since != "" {
		d, err := time.ParseDuration(o.since)
		if err != nil {
			return f, fmt.Errorf("invalid --since duration: %w", err)
		}
		f.Since = now.Add(-d)
	}
	return f, nil
}

func runLogs(cmd *cobra.Command, args []string) error {
	f, err := logsOpts.filter(time.Now())
	if err != nil {
		return err
	}

	dir := logsOpts.logDir()
	entries, err := logging.ReadLogs(dir)
	if err != nil {
		return err
	}
	entries = logging.FilterEntries(entries, f)
	if logsOpts.tail > 0 && len(entries) > logsOpts.tail {
		entries = entries[len(entries)-logsOpts.tail:]
	}

	out := cmd.OutOrStdout()
	printer := newPrinter(out)
	for _, e := range entries {
		printer.print(e)
	}

	if !logsOpts.follow {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return follow(ctx, filepath.Join(dir, logging.LogFileName), f, printer)
}

func runLogsExport(cmd *cobra.Command, args []string) error {
	f, err := logsOpts.filter(time.Now())
	if err != nil {
		return err
	}

	entries, err := logging.ReadLogs(logsOpts.logDir())
	if err != nil {
		return err
	}
	entries = logging.FilterEntries(entries, f)

	var w io.Writer = cmd.OutOrStdout()
	if logsOpts.output != "" {
		file, err := os.Create(logsOpts.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = file.Close() }()
		w = file
	}

	if err := logging.Export(w, entries, logsOpts.format); err != nil {
		return err
	}
	if logsOpts.output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d entries to %s\n", len(entries), logsOpts.output)
	}
	return nil
}

// printer writes entries as text lines, colored by level on a terminal.
type printer struct {
	w      io.Writer
	styles *styles.Styles
}

func newPrinter(w io.Writer) *printer {
	p := &printer{w: w}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		s := styles.New(appconfig.Get().TUI.Theme)
		p.styles = &s
	}
	return p
}

func (p *printer) print(e logging.Entry) {
	line := logging.FormatText(e)
	if p.styles != nil {
		line = p.styles.Level(e.Level).Render(line)
	}
	fmt.Fprintln(p.w, line)
}

// follow prints entries appended to path until ctx is done. The directory is
// watched rather than the file so a rotation is picked up.
func follow(ctx context.Context, path string, f logging.LogFilter, p *printer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to watch log: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch log directory: %w", err)
	}

	seen := 0
	if entries, err := logging.ReadLogFile(path); err == nil {
		seen = len(entries)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("log watch failed: %w", err)

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}

			entries, err := logging.ReadLogFile(path)
			if err != nil {
				continue
			}
			if len(entries) < seen {
				// Rotated: the live file started over.
				seen = 0
			}
			for _, e := range entries[seen:] {
				if f.Matches(e) {
					p.print(e)
				}
			}
			seen = len(entries)
		}
	}
}

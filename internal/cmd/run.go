package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/Iron-Ham/gamedex/internal/config"
	"github.com/Iron-Ham/gamedex/internal/event"
	"github.com/Iron-Ham/gamedex/internal/library"
	"github.com/Iron-Ham/gamedex/internal/logging"
	"github.com/Iron-Ham/gamedex/internal/metrics"
	"github.com/Iron-Ham/gamedex/internal/presenter"
	"github.com/Iron-Ham/gamedex/internal/tui"
	"github.com/Iron-Ham/gamedex/internal/viewsession"
)

func runApp(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("gamedex needs an interactive terminal; see 'gamedex --help' for non-interactive commands")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	proc, err := newProcess(viper.GetViper())
	if err != nil {
		return err
	}
	return proc.run(ctx)
}

// process holds the process-wide collaborators of an interactive run.
type process struct {
	store    *config.Store
	bus      *event.Bus
	metrics  *metrics.Metrics
	logs     *logging.Repository
	logger   *logging.Logger
	library  *library.Service
	sessions *viewsession.Manager
	libPath  string
	viper    *viper.Viper
}

// newProcess builds every collaborator from v. Nothing is started yet.
func newProcess(v *viper.Viper) (*process, error) {
	cfg, err := config.LoadFrom(v)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	p := &process{
		store:   config.NewStore(cfg),
		libPath: cfg.LibraryFile(),
		viper:   v,
	}

	if cfg.Metrics.Enabled {
		p.metrics = metrics.New()
	}
	p.bus = event.NewBus(event.WithObserver(p.metrics.BusObserver()))
	p.logs = logging.NewRepository(cfg.Logging.BufferEntries, p.bus)

	logOpts := logging.Options{
		Level: cfg.Logging.Level,
		Rotation: logging.RotationConfig{
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			Compress:   cfg.Logging.Compress,
		},
		Tee: []slog.Handler{p.logs.Handler(cfg.Logging.Level)},
	}
	if cfg.Logging.Enabled {
		logOpts.Dir = cfg.Paths.ResolveDataDir()
		p.logger, err = logging.New(logOpts)
		if err != nil {
			return nil, err
		}
	} else {
		p.logger = logging.FromHandler(p.logs.Handler(cfg.Logging.Level))
	}
	slog.SetDefault(p.logger.Slog())

	p.library = library.NewService(library.Options{
		Bus:     p.bus,
		Logger:  p.logger,
		Metrics: p.metrics,
	})

	sessionCfg := presenter.Deps{
		Bus:     p.bus,
		Logger:  p.logger,
		Config:  p.store,
		Metrics: p.metrics,
	}.SessionConfig()
	sessionCfg.ErrorHandler = viewsession.DefaultErrorHandler(p.logger, p.bus, p.metrics)
	p.sessions = viewsession.NewManager(sessionCfg)

	return p, nil
}

func (p *process) deps() presenter.Deps {
	return presenter.Deps{
		Bus:      p.bus,
		Logger:   p.logger,
		Config:   p.store,
		Sessions: p.sessions,
		Metrics:  p.metrics,
	}
}

// run loads the catalog, starts background work and blocks in the TUI.
// On the way out every session is destroyed and the catalog saved.
func (p *process) run(ctx context.Context) (err error) {
	defer func() {
		p.logs.Close()
		p.bus.Close()
		_ = p.logger.Close()
	}()

	cfg := p.store.Get()
	if err := p.library.Load(p.libPath); err != nil {
		return fmt.Errorf("failed to load library: %w", err)
	}
	p.logger.Info("gamedex starting", "version", version(), "library", p.libPath)

	if p.viper.ConfigFileUsed() != "" {
		p.store.Watch(p.viper, p.bus, p.logger, nil)
	}

	bgCtx, cancel := context.WithCancel(ctx)
	var wg conc.WaitGroup
	defer wg.Wait()
	defer cancel()

	if p.metrics != nil && cfg.Metrics.Listen != "" {
		errc, err := p.metrics.Serve(bgCtx, cfg.Metrics.Listen)
		if err != nil {
			return fmt.Errorf("failed to serve metrics: %w", err)
		}
		wg.Go(func() {
			for err := range errc {
				p.logger.Error("metrics server stopped", "error", err)
			}
		})
	}

	if cfg.Library.Autosave {
		wg.Go(func() {
			p.library.Autosave(bgCtx, p.libPath, cfg.Library.AutosaveDelay())
		})
	}

	defer func() {
		if derr := p.sessions.DestroyAll(); derr != nil {
			p.logger.Warn("destroying sessions", "error", derr)
		}
		// Autosave flushes on its own once cancelled.
		if cfg.Library.Autosave {
			return
		}
		if serr := p.library.Save(p.libPath); serr != nil && err == nil {
			err = fmt.Errorf("failed to save library: %w", serr)
		}
	}()

	app := tui.New(tui.Options{
		Deps:    p.deps(),
		Library: p.library,
		Logs:    p.logs,
	})
	return app.Run(ctx)
}

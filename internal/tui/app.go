// Package tui is the terminal front end of gamedex. It renders the views
// the presenters drive and turns key presses into view edits and actions.
package tui

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
)

// App wraps the Bubbletea program
type App struct {
	program *tea.Program
	model   *Model
}

// New creates a new TUI application
func New(opts Options) *App {
	return &App{model: NewModel(opts)}
}

// Model returns the root model.
func (a *App) Model() *Model {
	return a.model
}

// Run starts the TUI and blocks until the user quits or ctx is done. Every
// view session is destroyed before Run returns.
func (a *App) Run(ctx context.Context) error {
	defer a.model.Close()

	a.program = tea.NewProgram(
		a.model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	// Quit cleanly on termination signals so the library gets its final save.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			a.program.Send(tea.Quit())
		case <-ctx.Done():
		}
	}()

	_, err := a.program.Run()
	return err
}

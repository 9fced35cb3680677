package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/gamedex/internal/event"
	"github.com/Iron-Ham/gamedex/internal/stream"
)

// redrawMsg reports that some view state changed.
type redrawMsg struct{}

// navMsg asks the model to open a screen on behalf of a presenter.
type navMsg struct {
	req navRequest
}

type closedMsg struct {
	ev event.ViewClosed
}

type failedMsg struct {
	ev event.HandlerFailed
}

type reloadedMsg struct {
	ev event.ConfigReloaded
}

// errMsg carries an error the model could not handle inline.
type errMsg struct {
	err error
}

// waitFor returns a command that blocks for the next value of sub. It yields
// no message once sub or ctx ends.
func waitFor[T any](ctx context.Context, sub *stream.Subscription[T], wrap func(T) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		v, err := sub.Next(ctx)
		if err != nil {
			return nil
		}
		return wrap(v)
	}
}

// touched turns any stream into a change signal.
func touched[T any](src stream.Stream[T]) stream.Stream[struct{}] {
	return stream.Map(src, func(T) struct{} { return struct{}{} })
}

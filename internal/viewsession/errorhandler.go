package viewsession

import (
	"log/slog"

	"github.com/Iron-Ham/gamedex/internal/errors"
	"github.com/Iron-Ham/gamedex/internal/event"
	"github.com/Iron-Ham/gamedex/internal/logging"
	"github.com/Iron-Ham/gamedex/internal/metrics"
)

// ErrorHandler receives the failures of a session's handlers. It runs on the
// failing handler's goroutine and must not block.
type ErrorHandler func(s *Session, failure *errors.HandlerFailure)

// DefaultErrorHandler logs each failure at a level matching its severity,
// counts it, and publishes event.HandlerFailed on bus so a status surface can
// show it. Failures below SeverityWarning are only logged. bus and m may be
// nil.
func DefaultErrorHandler(logger *logging.Logger, bus *event.Bus, m *metrics.Metrics) ErrorHandler {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return func(s *Session, failure *errors.HandlerFailure) {
		severity := errors.GetSeverity(failure)
		args := []any{
			"session_id", s.ID(),
			"view", s.Name(),
			"handler", failure.Handler,
			"error", failure.Unwrap(),
			"severity", severity.String(),
			"retryable", errors.IsRetryable(failure),
		}
		if failure.Panicked() {
			args = append(args, "stack", failure.Stack)
		}
		logger.Log(slogLevel(severity), "handler failed", args...)

		m.RecordHandlerFailure(s.Name())

		if bus != nil && severity >= errors.SeverityWarning {
			bus.Publish(event.NewHandlerFailed(s.ID(), s.Name(), failure.Handler, failure, failure.Panicked()))
		}
	}
}

func slogLevel(s errors.Severity) slog.Level {
	switch s {
	case errors.SeverityDebug:
		return slog.LevelDebug
	case errors.SeverityInfo:
		return slog.LevelInfo
	case errors.SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

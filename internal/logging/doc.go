// Package logging provides structured logging for gamedex.
//
// The [Logger] wraps log/slog with a JSON handler. Child loggers carry the
// session ID or view name of the code that logs, so entries from one view
// session can be told apart after the fact.
//
// # Features
//
//   - JSON-formatted structured logging via slog
//   - Configurable log levels (DEBUG, INFO, WARN, ERROR)
//   - Size-based rotation with optional gzip compression
//   - An in-memory [Repository] exposing recent entries as an observable list
//   - Reading, filtering and exporting log files (JSON, text, CSV)
//
// # Basic Usage
//
//	repo := logging.NewRepository(500, bus)
//	logger, err := logging.New(logging.Options{
//	    Dir:      dataDir,
//	    Level:    "INFO",
//	    Rotation: logging.DefaultRotationConfig(),
//	    Tee:      []slog.Handler{repo.Handler("INFO")},
//	})
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.WithSession(id).WithView("game-edit").Info("saved", "game", name)
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"saved","session_id":"...","view":"game-edit","game":"Celeste"}
//
// # Log Repository
//
// The repository is constructed once at startup and injected into whoever
// needs it. Each recorded entry is appended to [Repository.Entries] and the
// oldest entries are dropped past capacity. When a bus is attached, a
// LogRecorded event is published per entry.
package logging

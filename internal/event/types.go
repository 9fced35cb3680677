package event

import "time"

// Event is the interface that all events must implement.
// It provides a common way to identify and timestamp events.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "game.deleted", "view.closed").
	// Concrete types return a constant from a value receiver, so the zero
	// value of a type already reports its key.
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type keys.
const (
	TypeGameCreated     = "game.created"
	TypeGameUpdated     = "game.updated"
	TypeGameDeleted     = "game.deleted"
	TypeLibraryLoaded   = "library.loaded"
	TypeLibrarySaved    = "library.saved"
	TypeViewClosed      = "view.closed"
	TypeConfirmAnswered = "confirm.answered"
	TypeHandlerFailed   = "session.handler_failed"
	TypeLogRecorded     = "log.recorded"
	TypeConfigReloaded  = "config.reloaded"

	// wildcard is the key of subscriptions receiving every event.
	wildcard = "*"
)

// baseEvent carries the publication time.
// Embed this in concrete event types to satisfy the Timestamp half of Event.
type baseEvent struct {
	timestamp time.Time
}

func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func now() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// -----------------------------------------------------------------------------
// Game Events
// -----------------------------------------------------------------------------

// GameEvent is the closed family of catalog entity events. Consumers switch
// over GameCreated, GameUpdated and GameDeleted.
type GameEvent interface {
	Event
	GameID() string
	isGameEvent()
}

// GameCreated is emitted after a game was committed to the catalog.
type GameCreated struct {
	baseEvent
	ID   string
	Name string
}

// GameUpdated is emitted after a game's fields were committed.
type GameUpdated struct {
	baseEvent
	ID       string
	Name     string
	Quantity int
}

// GameDeleted is emitted after a game was removed from the catalog.
type GameDeleted struct {
	baseEvent
	ID string
}

// NewGameCreated creates a GameCreated event.
func NewGameCreated(id, name string) GameCreated {
	return GameCreated{baseEvent: now(), ID: id, Name: name}
}

// NewGameUpdated creates a GameUpdated event.
func NewGameUpdated(id, name string, quantity int) GameUpdated {
	return GameUpdated{baseEvent: now(), ID: id, Name: name, Quantity: quantity}
}

// NewGameDeleted creates a GameDeleted event.
func NewGameDeleted(id string) GameDeleted {
	return GameDeleted{baseEvent: now(), ID: id}
}

func (GameCreated) EventType() string { return TypeGameCreated }
func (GameUpdated) EventType() string { return TypeGameUpdated }
func (GameDeleted) EventType() string { return TypeGameDeleted }

func (e GameCreated) GameID() string { return e.ID }
func (e GameUpdated) GameID() string { return e.ID }
func (e GameDeleted) GameID() string { return e.ID }

func (GameCreated) isGameEvent() {}
func (GameUpdated) isGameEvent() {}
func (GameDeleted) isGameEvent() {}

// GameEventTypes lists the keys of the GameEvent family.
var GameEventTypes = []string{TypeGameCreated, TypeGameUpdated, TypeGameDeleted}

// -----------------------------------------------------------------------------
// Library Events
// -----------------------------------------------------------------------------

// LibraryEvent is the closed family of catalog persistence events.
type LibraryEvent interface {
	Event
	isLibraryEvent()
}

// LibraryLoaded is emitted after a catalog snapshot was read from disk.
type LibraryLoaded struct {
	baseEvent
	Path  string
	Games int
}

// LibrarySaved is emitted after a catalog snapshot was written to disk.
type LibrarySaved struct {
	baseEvent
	Path  string
	Games int
}

// NewLibraryLoaded creates a LibraryLoaded event.
func NewLibraryLoaded(path string, games int) LibraryLoaded {
	return LibraryLoaded{baseEvent: now(), Path: path, Games: games}
}

// NewLibrarySaved creates a LibrarySaved event.
func NewLibrarySaved(path string, games int) LibrarySaved {
	return LibrarySaved{baseEvent: now(), Path: path, Games: games}
}

func (LibraryLoaded) EventType() string { return TypeLibraryLoaded }
func (LibrarySaved) EventType() string  { return TypeLibrarySaved }

func (LibraryLoaded) isLibraryEvent() {}
func (LibrarySaved) isLibraryEvent()  {}

// LibraryEventTypes lists the keys of the LibraryEvent family.
var LibraryEventTypes = []string{TypeLibraryLoaded, TypeLibrarySaved}

// -----------------------------------------------------------------------------
// View Events
// -----------------------------------------------------------------------------

// ViewEvent is the closed family of events a view publishes about itself,
// usually awaited by the flow that opened it.
type ViewEvent interface {
	Event
	isViewEvent()
}

// ViewClosed is emitted when a view finishes. Result is the value the view
// produced, or nil when it was dismissed.
type ViewClosed struct {
	baseEvent
	View      string
	SessionID string
	Result    any
}

// ConfirmAnswered is emitted when a confirmation prompt is answered.
// RequestID correlates the answer with the flow that asked.
type ConfirmAnswered struct {
	baseEvent
	RequestID string
	Confirmed bool
}

// NewViewClosed creates a ViewClosed event.
func NewViewClosed(view, sessionID string, result any) ViewClosed {
	return ViewClosed{baseEvent: now(), View: view, SessionID: sessionID, Result: result}
}

// NewConfirmAnswered creates a ConfirmAnswered event.
func NewConfirmAnswered(requestID string, confirmed bool) ConfirmAnswered {
	return ConfirmAnswered{baseEvent: now(), RequestID: requestID, Confirmed: confirmed}
}

func (ViewClosed) EventType() string      { return TypeViewClosed }
func (ConfirmAnswered) EventType() string { return TypeConfirmAnswered }

func (ViewClosed) isViewEvent()      {}
func (ConfirmAnswered) isViewEvent() {}

// ViewEventTypes lists the keys of the ViewEvent family.
var ViewEventTypes = []string{TypeViewClosed, TypeConfirmAnswered}

// -----------------------------------------------------------------------------
// Framework Events
// -----------------------------------------------------------------------------

// HandlerFailed is emitted when a session handler returned an error or
// panicked. The session keeps running.
type HandlerFailed struct {
	baseEvent
	SessionID string
	Session   string
	Handler   string
	Err       error
	Panicked  bool
}

// NewHandlerFailed creates a HandlerFailed event.
func NewHandlerFailed(sessionID, session, handler string, err error, panicked bool) HandlerFailed {
	return HandlerFailed{
		baseEvent: now(),
		SessionID: sessionID,
		Session:   session,
		Handler:   handler,
		Err:       err,
		Panicked:  panicked,
	}
}

func (HandlerFailed) EventType() string { return TypeHandlerFailed }

// LogRecorded is emitted for every entry stored in the log repository.
type LogRecorded struct {
	baseEvent
	Level   string
	Message string
}

// NewLogRecorded creates a LogRecorded event.
func NewLogRecorded(level, message string) LogRecorded {
	return LogRecorded{baseEvent: now(), Level: level, Message: message}
}

func (LogRecorded) EventType() string { return TypeLogRecorded }

// ConfigReloaded is emitted after the config file changed on disk and was
// read again. Problems lists validation failures; the previous config stays
// in effect when it is non-empty.
type ConfigReloaded struct {
	baseEvent
	Path     string
	Problems []string
}

// NewConfigReloaded creates a ConfigReloaded event.
func NewConfigReloaded(path string, problems []string) ConfigReloaded {
	return ConfigReloaded{baseEvent: now(), Path: path, Problems: problems}
}

func (ConfigReloaded) EventType() string { return TypeConfigReloaded }

// Applied reports whether the reloaded config passed validation.
func (e ConfigReloaded) Applied() bool { return len(e.Problems) == 0 }

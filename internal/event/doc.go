// Package event provides the process-wide publish/subscribe bus that
// connects domain services, presenters and views in gamedex.
//
// Components publish events without knowing who receives them, and subscribe
// to events without knowing who produces them. The bus is constructed once at
// startup and injected; nothing reaches it through a package global.
//
// # Main Types
//
//   - [Event]: Interface that all events must implement, providing EventType() and Timestamp()
//   - [Bus]: Non-blocking dispatcher; every subscriber owns a queue
//   - [Expectation]: A pending wait for the next matching event
//
// # Event Families
//
// Related events form closed families, each a sealed interface. Consumers
// dispatch with an exhaustive type switch:
//
//	switch e := ev.(type) {
//	case event.GameCreated:
//	case event.GameUpdated:
//	case event.GameDeleted:
//	    list.Remove(e.ID)
//	}
//
// Families:
//   - [GameEvent]: [GameCreated], [GameUpdated], [GameDeleted]
//   - [LibraryEvent]: [LibraryLoaded], [LibrarySaved]
//   - [ViewEvent]: [ViewClosed], [ConfirmAnswered]
//
// Standalone: [HandlerFailed], [LogRecorded], [ConfigReloaded].
//
// # Ordering
//
// Events of one type reach each subscriber in publication order. Nothing is
// promised across types or across subscribers.
//
// # Basic Usage
//
//	bus := event.NewBus()
//	defer bus.Close()
//
//	deleted := event.StreamOf[event.GameDeleted](bus).Subscribe()
//	defer deleted.Close()
//
//	bus.Publish(event.NewGameDeleted("42"))
//
//	// Suspend until a specific answer arrives.
//	answer, err := event.AwaitEvent(ctx, bus, func(e event.ConfirmAnswered) bool {
//	    return e.RequestID == id
//	})
//
// [AwaitEvent] imposes no timeout; callers bound it through ctx or use
// [AwaitEventTimeout].
//
// # Event Type Naming Convention
//
// Event types follow the pattern "category.action":
//   - game.created, game.updated, game.deleted
//   - library.loaded, library.saved
//   - view.closed, confirm.answered
//   - session.handler_failed, log.recorded, config.reloaded
package event

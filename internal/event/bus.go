package event

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	"github.com/Iron-Ham/gamedex/internal/stream"
)

// Handler is a function that handles an event.
type Handler func(Event)

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used to report handler panics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// WithObserver registers a function called synchronously for every published
// event, before delivery. It is meant for counters and must not block.
func WithObserver(fn func(Event)) Option {
	return func(b *Bus) {
		b.observers = append(b.observers, fn)
	}
}

// Bus is the process-wide publish/subscribe hub.
//
// Every subscriber owns a queue, so Publish never waits for subscriber
// processing. Events of one type reach each subscriber in publication order.
// The bus keeps no history: a subscriber sees only events published after it
// subscribed.
type Bus struct {
	mu        sync.RWMutex
	hubs      map[string]*stream.Hub[Event]          // eventType -> hub; "*" for wildcard
	handlers  map[string]*stream.Subscription[Event] // subscription ID -> handler queue
	closed    bool
	logger    *slog.Logger
	observers []func(Event)
	wg        conc.WaitGroup
}

// NewBus creates a new event bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		hubs:     make(map[string]*stream.Hub[Event]),
		handlers: make(map[string]*stream.Subscription[Event]),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// hub returns the hub for eventType, creating it on first use.
func (b *Bus) hub(eventType string) *stream.Hub[Event] {
	b.mu.RLock()
	h, ok := b.hubs[eventType]
	b.mu.RUnlock()
	if ok {
		return h
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if h, ok := b.hubs[eventType]; ok {
		return h
	}
	h = stream.NewHub[Event]()
	if b.closed {
		h.Close()
	}
	b.hubs[eventType] = h
	return h
}

// Stream returns the stream of events published under eventType.
func (b *Bus) Stream(eventType string) stream.Stream[Event] {
	return b.hub(eventType)
}

// Subscribe registers a queue for a specific event type.
// Subscribing on a closed bus returns an already-ended subscription.
func (b *Bus) Subscribe(eventType string, opts ...stream.Option) *stream.Subscription[Event] {
	return b.hub(eventType).Subscribe(opts...)
}

// SubscribeAll registers a queue receiving every published event.
func (b *Bus) SubscribeAll(opts ...stream.Option) *stream.Subscription[Event] {
	return b.Subscribe(wildcard, opts...)
}

// SubscribeFunc registers a handler for a specific event type and returns a
// subscription ID that can be used to unsubscribe.
//
// The handler runs on a goroutine owned by the subscription, one event at a
// time in publication order. If a handler panics, the panic is logged,
// recovered, and the handler keeps receiving later events.
func (b *Bus) SubscribeFunc(eventType string, handler Handler) string {
	sub := b.Subscribe(eventType)
	id := uuid.NewString()

	b.mu.Lock()
	b.handlers[id] = sub
	b.mu.Unlock()

	b.wg.Go(func() {
		for {
			ev, err := sub.Next(context.Background())
			if err != nil {
				return
			}
			b.safeCall(handler, ev)
		}
	})
	return id
}

// SubscribeAllFunc registers a handler for all event types.
// The handler will be called for every published event.
func (b *Bus) SubscribeAllFunc(handler Handler) string {
	return b.SubscribeFunc(wildcard, handler)
}

// Unsubscribe removes a handler subscription by ID. Events already queued for
// it are dropped.
// Returns true if the subscription was found and removed.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	sub, ok := b.handlers[id]
	delete(b.handlers, id)
	b.mu.Unlock()

	if ok {
		sub.Close()
	}
	return ok
}

// Publish dispatches an event to every subscriber of its type and to every
// wildcard subscriber. It never blocks on subscriber processing.
// Publishing on a closed bus is a no-op.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	closed := b.closed
	specific := b.hubs[event.EventType()]
	all := b.hubs[wildcard]
	observers := b.observers
	b.mu.RUnlock()

	if closed {
		return
	}
	for _, observe := range observers {
		observe(event)
	}
	if specific != nil {
		specific.Publish(event)
	}
	if all != nil {
		all.Publish(event)
	}
}

// safeCall invokes a handler and recovers from any panics.
// Panics are logged with stack traces to aid debugging while ensuring
// one misbehaving handler cannot stop its own subscription.
func (b *Bus) safeCall(handler Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				"event_type", event.EventType(),
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	handler(event)
}

// SubscriberCount returns the number of live subscribers of eventType.
func (b *Bus) SubscriberCount(eventType string) int {
	b.mu.RLock()
	h, ok := b.hubs[eventType]
	b.mu.RUnlock()
	if !ok {
		return 0
	}
	return h.SubscriberCount()
}

// SubscriptionCount returns the total number of live subscriptions.
func (b *Bus) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, h := range b.hubs {
		count += h.SubscriberCount()
	}
	return count
}

// Closed reports whether Close has been called.
func (b *Bus) Closed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.closed
}

// Close stops delivery and ends every subscription. Handler goroutines finish
// the events already queued for them before Close returns, so it must not be
// called from a handler.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	hubs := make([]*stream.Hub[Event], 0, len(b.hubs))
	for _, h := range b.hubs {
		hubs = append(hubs, h)
	}
	handlers := b.handlers
	b.handlers = make(map[string]*stream.Subscription[Event])
	b.mu.Unlock()

	for _, h := range hubs {
		h.Close()
	}
	b.wg.Wait()
	for _, sub := range handlers {
		sub.Close()
	}
}

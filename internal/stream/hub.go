package stream

import "sync"

// Stream is a multicast source of values.
//
// Implementations live in this package; other packages expose streams by
// returning a [Hub] or a stream derived from one through the operators.
type Stream[T any] interface {
	// Subscribe registers a new consumer. Values published before the call
	// are not replayed.
	Subscribe(opts ...Option) *Subscription[T]

	attach(s sink[T]) (detach func())
}

// Hub is a hot multicast stream. The zero value is not usable; call NewHub.
type Hub[T any] struct {
	mu     sync.Mutex
	sinks  map[uint64]sink[T]
	nextID uint64
	closed bool
}

// NewHub creates an open hub with no subscribers.
func NewHub[T any]() *Hub[T] {
	return &Hub[T]{
		sinks: make(map[uint64]sink[T]),
	}
}

// Subscribe registers a new subscription on the hub.
// Subscribing to a closed hub returns an already-ended subscription.
func (h *Hub[T]) Subscribe(opts ...Option) *Subscription[T] {
	return subscribe[T](h, opts)
}

func (h *Hub[T]) attach(s sink[T]) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		s.end()
		return func() {}
	}

	id := h.nextID
	h.nextID++
	h.sinks[id] = s

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.sinks, id)
	}
}

// Publish delivers v to every live subscriber and returns without waiting for
// them to consume it. Publications are serialized, so every subscriber
// observes the same order. Publishing on a closed hub is a no-op.
func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	for id, s := range h.sinks {
		if !s.push(v) {
			delete(h.sinks, id)
		}
	}
}

// SubscriberCount returns the number of attached consumers.
func (h *Hub[T]) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sinks)
}

// Closed reports whether Close has been called.
func (h *Hub[T]) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Close ends every subscription. Values already queued remain readable.
// It is idempotent.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	sinks := h.sinks
	h.sinks = make(map[uint64]sink[T])
	h.mu.Unlock()

	for _, s := range sinks {
		s.end()
	}
}

// Package stream provides the multicast stream primitive shared by the
// observable list, the binding cells and the event bus.
//
// A [Hub] is a hot, multicast source: every live [Subscription] receives every
// value published after it subscribed, in publication order. Publishing never
// blocks on consumers; each subscription owns an unbounded queue, or a
// single-slot queue when created with [Conflate].
//
// # Main Types
//
//   - [Stream]: anything that can be subscribed to
//   - [Hub]: the concrete multicast source
//   - [Subscription]: a per-consumer queue read with Next or TryNext
//
// # Operators
//
// [Map], [Filter], [FilterMap] and [Merge] are push-based: they run inside the
// publisher's call and must stay cheap. [Throttle] drops values above a
// token-bucket rate. [Debounce] emits the latest value after a quiet period
// and owns a goroutine bound to its context.
//
// # Basic Usage
//
//	hub := stream.NewHub[int]()
//	sub := hub.Subscribe()
//	defer sub.Close()
//
//	hub.Publish(1)
//	v, err := sub.Next(ctx) // v == 1
//
//	evens := stream.Filter[int](hub, func(v int) bool { return v%2 == 0 })
//	latest := evens.Subscribe(stream.Conflate())
package stream

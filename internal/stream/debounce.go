package stream

import (
	"context"
	"time"
)

// Debounce derives a stream that emits the most recent upstream value once
// no new value has arrived for d. Intermediate values are discarded.
//
// The returned hub is driven by a goroutine that exits, closing the hub,
// when ctx is done or src ends. A pending value is flushed when src ends.
func Debounce[T any](ctx context.Context, src Stream[T], d time.Duration) *Hub[T] {
	out := NewHub[T]()
	sub := src.Subscribe(Conflate())

	go func() {
		defer out.Close()
		defer sub.Close()

		timer := time.NewTimer(d)
		timer.Stop()

		var (
			latest  T
			pending bool
		)
		drain := func() {
			for {
				v, ok := sub.TryNext()
				if !ok {
					return
				}
				latest = v
				pending = true
			}
		}

		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return

			case <-sub.Done():
				timer.Stop()
				drain()
				if pending {
					out.Publish(latest)
				}
				return

			case <-sub.Ready():
				drain()
				if pending {
					timer.Reset(d)
				}

			case <-timer.C:
				if pending {
					out.Publish(latest)
					pending = false
				}
			}
		}
	}()

	return out
}

package viewsession

import (
	"context"
	"sync"

	"github.com/Iron-Ham/gamedex/internal/stream"
)

// turnRequest is one place in a session's queue of work waiting for the turn.
type turnRequest struct {
	mu        sync.Mutex
	grant     chan struct{}
	granted   bool
	abandoned bool
}

// executor hands a session's single turn to queued requests in FIFO order.
// The holder of the turn gives it back through release, either when it is
// done or when it suspends.
type executor struct {
	requests *stream.Hub[*turnRequest]
	pending  *stream.Subscription[*turnRequest]
	yield    chan struct{}
	stop     <-chan struct{}
}

func newExecutor(stop <-chan struct{}) *executor {
	requests := stream.NewHub[*turnRequest]()
	return &executor{
		requests: requests,
		pending:  requests.Subscribe(),
		yield:    make(chan struct{}),
		stop:     stop,
	}
}

// run is the worker loop. It exits when ctx is done.
func (e *executor) run(ctx context.Context) {
	defer e.pending.Close()
	for {
		req, err := e.pending.Next(ctx)
		if err != nil {
			return
		}
		if !req.give() {
			continue
		}
		select {
		case <-e.yield:
		case <-ctx.Done():
			return
		}
	}
}

// request queues a request for the turn. Requests are granted in the order
// they were queued.
func (e *executor) request() *turnRequest {
	req := &turnRequest{grant: make(chan struct{})}
	e.requests.Publish(req)
	return req
}

// wait blocks until req is granted or ctx is done. A request abandoned before
// being granted is skipped by the worker.
func (e *executor) wait(ctx context.Context, req *turnRequest) error {
	select {
	case <-req.grant:
		return nil
	case <-ctx.Done():
	}

	req.mu.Lock()
	granted := req.granted
	if !granted {
		req.abandoned = true
	}
	req.mu.Unlock()

	if granted {
		e.release()
	}
	return ctx.Err()
}

// acquire queues a request and waits for it.
func (e *executor) acquire(ctx context.Context) error {
	return e.wait(ctx, e.request())
}

// release gives the turn back to the worker.
func (e *executor) release() {
	select {
	case e.yield <- struct{}{}:
	case <-e.stop:
	}
}

func (e *executor) close() {
	e.requests.Close()
}

func (r *turnRequest) give() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.abandoned {
		return false
	}
	r.granted = true
	close(r.grant)
	return true
}

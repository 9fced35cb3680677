// Package metrics exposes prometheus collectors for the event bus, view
// sessions and the game library.
//
// A nil *Metrics is valid and records nothing, so components can take one
// unconditionally and metrics can be switched off in config.
package metrics

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Iron-Ham/gamedex/internal/event"
)

const namespace = "gamedex"

// Metrics holds the collectors registered for one process.
type Metrics struct {
	registry *prometheus.Registry

	eventsPublished *prometheus.CounterVec
	handlerFailures *prometheus.CounterVec
	sessionsActive  prometheus.Gauge
	sessionsTotal   *prometheus.CounterVec
	opDuration      *prometheus.HistogramVec
	opErrors        *prometheus.CounterVec
}

// New creates the collectors and registers them on a fresh registry along
// with the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Events published on the bus, by event type.",
		}, []string{"type"}),
		handlerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_failures_total",
			Help:      "Session handlers that returned an error or panicked, by session name.",
		}, []string{"session"}),
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "View sessions created and not yet destroyed.",
		}),
		sessionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "View sessions created, by session name.",
		}, []string{"session"}),
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "library_op_duration_seconds",
			Help:      "Latency of library operations.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"op"}),
		opErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "library_op_errors_total",
			Help:      "Library operations that failed, by operation.",
		}, []string{"op"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.eventsPublished,
		m.handlerFailures,
		m.sessionsActive,
		m.sessionsTotal,
		m.opDuration,
		m.opErrors,
	)
	return m
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// BusObserver returns an observer for event.WithObserver that counts every
// published event.
func (m *Metrics) BusObserver() func(event.Event) {
	return func(ev event.Event) {
		m.RecordEvent(ev)
	}
}

// RecordEvent counts one published event.
func (m *Metrics) RecordEvent(ev event.Event) {
	if m == nil {
		return
	}
	m.eventsPublished.WithLabelValues(ev.EventType()).Inc()
}

// RecordHandlerFailure counts one failed handler of the named session.
func (m *Metrics) RecordHandlerFailure(session string) {
	if m == nil {
		return
	}
	m.handlerFailures.WithLabelValues(session).Inc()
}

// SessionCreated records a new session.
func (m *Metrics) SessionCreated(session string) {
	if m == nil {
		return
	}
	m.sessionsActive.Inc()
	m.sessionsTotal.WithLabelValues(session).Inc()
}

// SessionDestroyed records the end of a session.
func (m *Metrics) SessionDestroyed() {
	if m == nil {
		return
	}
	m.sessionsActive.Dec()
}

// RecordOp observes the latency of a library operation started at started.
// A non-nil err also counts as a failure.
func (m *Metrics) RecordOp(op string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.opDuration.WithLabelValues(op).Observe(time.Since(started).Seconds())
	if err != nil {
		m.opErrors.WithLabelValues(op).Inc()
	}
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve exposes /metrics on addr until ctx is done. The listener is bound
// before Serve returns, so a bad address fails immediately; serving errors
// after that are sent on the returned channel, which is closed on shutdown.
func (m *Metrics) Serve(ctx context.Context, addr string) (<-chan error, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	return errc, nil
}

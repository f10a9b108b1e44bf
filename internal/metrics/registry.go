// Package metrics exposes Prometheus collectors for the acceptance gate.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all acceptance metrics.
type Registry struct {
	CyclesStarted prometheus.Counter
	CycleResults  *prometheus.CounterVec
	WaitSeconds   prometheus.Histogram
	MarkerErrors  *prometheus.CounterVec
	State         *prometheus.GaugeVec

	gatherer prometheus.Gatherer
}

// New registers the acceptance collectors on a fresh registry that also
// carries the Go runtime and process collectors.
func New() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegisterer(reg, reg)
}

// NewWithRegisterer registers the acceptance collectors on reg.
func NewWithRegisterer(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Registry {
	factory := promauto.With(reg)
	r := &Registry{gatherer: gatherer}

	r.CyclesStarted = factory.NewCounter(prometheus.CounterOpts{
		Name: "confirmd_cycles_started_total",
		Help: "Acceptance cycles started",
	})

	r.CycleResults = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "confirmd_cycle_results_total",
		Help: "Acceptance cycles finished, by verdict",
	}, []string{"result"})

	r.WaitSeconds = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "confirmd_wait_seconds",
		Help:    "Time spent inside the confirmation window",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	})

	r.MarkerErrors = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "confirmd_marker_errors_total",
		Help: "Marker I/O failures, by operation",
	}, []string{"op"})

	r.State = factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "confirmd_state",
		Help: "Current acceptance monitor state (1 for the active state)",
	}, []string{"state"})

	return r
}

// The recording methods are no-ops on a nil *Registry.

// RecordStart records a started cycle.
func (r *Registry) RecordStart() {
	if r == nil {
		return
	}
	r.CyclesStarted.Inc()
}

// RecordResult records a finished cycle verdict.
func (r *Registry) RecordResult(result string) {
	if r == nil {
		return
	}
	r.CycleResults.WithLabelValues(result).Inc()
}

// ObserveWait records how long a confirmation window lasted.
func (r *Registry) ObserveWait(d time.Duration) {
	if r == nil {
		return
	}
	r.WaitSeconds.Observe(d.Seconds())
}

// RecordMarkerError records a failed marker operation ("reset", "read", "remove", "watch").
func (r *Registry) RecordMarkerError(op string) {
	if r == nil {
		return
	}
	r.MarkerErrors.WithLabelValues(op).Inc()
}

// SetState marks state as the only active state.
func (r *Registry) SetState(state string) {
	if r == nil {
		return
	}
	r.State.Reset()
	r.State.WithLabelValues(state).Set(1)
}

// Handler returns the HTTP handler exposing this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

// Serve exposes /metrics, plus whatever mux already routes, on addr until
// ctx is cancelled. A nil mux serves only /metrics.
func (r *Registry) Serve(ctx context.Context, addr string, mux *http.ServeMux) error {
	if mux == nil {
		mux = http.NewServeMux()
	}
	mux.Handle("/metrics", r.Handler())

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

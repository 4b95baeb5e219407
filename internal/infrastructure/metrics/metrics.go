// Package metrics exposes the engine's handle-health counters over
// Prometheus through a package-level registry.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	pebbleerrors "github.com/FishShrimp/Pebble/internal/domain/shared/errors"
	"github.com/FishShrimp/Pebble/internal/domain/transport"
)

var (
	mu  sync.RWMutex
	reg *prometheus.Registry

	handleResults *prometheus.CounterVec
	handleLatency *prometheus.HistogramVec
	timerLive     *prometheus.GaugeVec
	sessionLive   *prometheus.GaugeVec
)

func init() {
	resetLocked()
}

// Reset clears and reinitializes all collectors. Intended for tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	resetLocked()
}

// Handler returns an HTTP handler that exposes metrics in Prometheus format.
func Handler() http.Handler {
	mu.RLock()
	registry := reg
	mu.RUnlock()
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// SetResourceGauges publishes an engine's live resource counts, as
// returned by Engine.GetResourceUsed, under the given instance label.
func SetResourceGauges(instance string, timers, sessions int64) {
	mu.RLock()
	defer mu.RUnlock()
	if timerLive != nil {
		timerLive.WithLabelValues(instance).Set(float64(timers))
	}
	if sessionLive != nil {
		sessionLive.WithLabelValues(instance).Set(float64(sessions))
	}
}

// Sink implements transport.MetricsSink by recording every reported result
// against the package-level registry, labeled by the catalog's human
// string for the result code rather than the raw integer (MESSAGE_EXPIRED
// never reaches here — the engine reports it as success before calling in).
type Sink struct {
	instance string
}

// NewSink returns a metrics sink that labels its observations with
// instance, distinguishing engines sharing one process's registry.
func NewSink(instance string) *Sink {
	return &Sink{instance: instance}
}

var _ transport.MetricsSink = (*Sink)(nil)

// ReportHandleResult records one completed call's outcome and latency.
func (s *Sink) ReportHandleResult(handle transport.Handle, code int32, elapsedMS int64) {
	label := pebbleerrors.KindString(pebbleerrors.Kind(code))

	mu.RLock()
	defer mu.RUnlock()
	if handleResults != nil {
		handleResults.WithLabelValues(s.instance, label).Inc()
	}
	if handleLatency != nil {
		handleLatency.WithLabelValues(s.instance, label).Observe(durationSeconds(time.Duration(elapsedMS) * time.Millisecond))
	}
}

func resetLocked() {
	registry := prometheus.NewRegistry()

	results := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pebble",
		Subsystem: "rpc",
		Name:      "handle_results_total",
		Help:      "Total completed RPC handle results grouped by instance and result kind.",
	}, []string{"instance", "result"})

	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pebble",
		Subsystem: "rpc",
		Name:      "handle_latency_seconds",
		Help:      "Latency of completed RPC handles grouped by instance and result kind.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"instance", "result"})

	timers := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "pebble",
		Subsystem: "rpc",
		Name:      "live_timers",
		Help:      "Number of timers currently armed in the engine's scheduler.",
	}, []string{"instance"})

	sessions := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "pebble",
		Subsystem: "rpc",
		Name:      "live_sessions",
		Help:      "Number of sessions currently outstanding in the engine.",
	}, []string{"instance"})

	registry.MustRegister(results, latency, timers, sessions)

	reg = registry
	handleResults = results
	handleLatency = latency
	timerLive = timers
	sessionLive = sessions
}

func durationSeconds(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return d.Seconds()
}

// Package metrics exposes Prometheus metrics for the dashboard.
package metrics

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bond_dashboard"

// Recorder implements cache.Recorder on a dedicated registry.
type Recorder struct {
	registry      *prometheus.Registry
	cacheRequests *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	fetchErrors   *prometheus.CounterVec
}

// NewRecorder creates a Recorder and registers its collectors, plus the Go
// runtime and process collectors, on a new registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups by query kind and result (hit or miss).",
		}, []string{"kind", "result"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Duration of database queries issued on cache misses.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Failed database queries by query kind.",
		}, []string{"kind"}),
	}
	r.registry.MustRegister(
		r.cacheRequests,
		r.queryDuration,
		r.fetchErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// CacheHit counts a cache hit.
func (r *Recorder) CacheHit(kind string) {
	r.cacheRequests.WithLabelValues(kind, "hit").Inc()
}

// CacheMiss counts a cache miss.
func (r *Recorder) CacheMiss(kind string) {
	r.cacheRequests.WithLabelValues(kind, "miss").Inc()
}

// ObserveQuery records the duration of a database query and counts failures.
func (r *Recorder) ObserveQuery(kind string, d time.Duration, err error) {
	r.queryDuration.WithLabelValues(kind).Observe(d.Seconds())
	if err != nil {
		r.fetchErrors.WithLabelValues(kind).Inc()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		ErrorLog:      errorLogger{},
		ErrorHandling: promhttp.ContinueOnError,
	})
}

// errorLogger implements promhttp.Logger.
type errorLogger struct{}

func (errorLogger) Println(v ...interface{}) {
	slog.Error("metrics handler error", "error", fmt.Sprint(v...))
}

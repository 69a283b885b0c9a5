// Package prom implements the observability hooks with Prometheus metrics.
//
// Register the hooks once at startup and expose the registry over HTTP:
//
//	reg := prometheus.NewRegistry()
//	m := prom.New(reg)
//	observability.SetSearchHooks(m)
//	observability.SetCacheHooks(m)
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package prom

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	errs "github.com/matzehuels/burrow/pkg/errors"
	"github.com/matzehuels/burrow/pkg/observability"
)

const namespace = "burrow"

// Metrics records search and cache events.
type Metrics struct {
	searchesInFlight prometheus.Gauge
	searches         *prometheus.CounterVec
	searchDuration   prometheus.Histogram
	searchExpanded   prometheus.Histogram
	compactions      prometheus.Counter
	compactedEntries prometheus.Counter

	cacheRequests *prometheus.CounterVec
	cacheWrites   *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		searchesInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "searches_in_flight",
			Help:      "Searches currently running",
		}),
		searches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Completed searches by outcome",
		}, []string{"outcome"}),
		searchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Search wall time in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4min
		}),
		searchExpanded: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_expanded_configurations",
			Help:      "Configurations expanded per search",
			Buckets:   prometheus.ExponentialBuckets(10, 10, 8), // 10 to 1e8
		}),
		compactions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frontier_compactions_total",
			Help:      "Frontier compactions run",
		}),
		compactedEntries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frontier_compacted_entries_total",
			Help:      "Frontier entries dropped by compaction",
		}),
		cacheRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups by key type and result",
		}, []string{"key_type", "result"}),
		cacheWrites: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_writes_total",
			Help:      "Cache writes by key type",
		}, []string{"key_type"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by key type",
		}, []string{"key_type"}),
	}
}

// Ensure Metrics implements both hook interfaces.
var (
	_ observability.SearchHooks = (*Metrics)(nil)
	_ observability.CacheHooks  = (*Metrics)(nil)
)

func (m *Metrics) OnSearchStart(context.Context, int, int) {
	m.searchesInFlight.Inc()
}

func (m *Metrics) OnCompaction(_ context.Context, before, after int) {
	m.compactions.Inc()
	m.compactedEntries.Add(float64(before - after))
}

func (m *Metrics) OnSearchComplete(_ context.Context, expanded int, _ uint64, d time.Duration, err error) {
	m.searchesInFlight.Dec()
	m.searches.WithLabelValues(outcome(err)).Inc()
	m.searchDuration.Observe(d.Seconds())
	m.searchExpanded.Observe(float64(expanded))
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheRequests.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheRequests.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheWrites.WithLabelValues(keyType).Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// outcome labels a search result: "solved", or the lower-cased error code.
func outcome(err error) string {
	if err == nil {
		return "solved"
	}
	if code := errs.GetCode(err); code != "" {
		return strings.ToLower(string(code))
	}
	return "error"
}

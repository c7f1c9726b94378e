package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the query service.
type Metrics struct {
	HTTPRequests        *prometheus.CounterVec   // labels: route, status
	HTTPRequestDuration *prometheus.HistogramVec // labels: route

	// Store metrics.
	StoreQueryDuration *prometheus.HistogramVec // labels: kind
	StoreErrors        *prometheus.CounterVec   // labels: kind

	// PointsFallback counts distinct-point queries served by the simpler fallback shape.
	PointsFallback *prometheus.CounterVec // labels: point_type

	// Points cache metrics.
	PointsCache        *prometheus.CounterVec // labels: result={hit,miss,error}
	PointsCacheEnabled prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.HTTPRequests,
		m.HTTPRequestDuration,
		m.StoreQueryDuration,
		m.StoreErrors,
		m.PointsFallback,
		m.PointsCache,
		m.PointsCacheEnabled,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nexrain",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nexrain",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by route.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"route"}),
		StoreQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nexrain",
			Name:      "store_query_duration_seconds",
			Help:      "Datastore query duration by entity kind.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"kind"}),
		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nexrain",
			Name:      "store_errors_total",
			Help:      "Failed Datastore queries by entity kind.",
		}, []string{"kind"}),
		PointsFallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nexrain",
			Name:      "points_fallback_total",
			Help:      "Distinct point queries that fell back to client-side de-duplication.",
		}, []string{"point_type"}),
		PointsCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nexrain",
			Name:      "points_cache_total",
			Help:      "Points cache lookups by result.",
		}, []string{"result"}),
		PointsCacheEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nexrain",
			Name:      "points_cache_enabled",
			Help:      "1 when the Redis points cache is enabled, 0 otherwise.",
		}),
	}
}

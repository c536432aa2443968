// Package metrics provides Prometheus metrics for the comparison service.
//
// HTTP metrics are recorded by the gin middleware in delivery/http; search
// and backend metrics are recorded by the search service and the backend
// client. Everything is registered with the default registry at init.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medcompare_http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "medcompare_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "medcompare_http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "medcompare_rate_limiter_clients",
			Help: "Client IPs tracked by the per-IP rate limiter",
		},
	)

	SearchTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medcompare_search_total",
			Help: "Searches by outcome (ok, failed, stale, invalid)",
		},
		[]string{"outcome"},
	)

	BackendAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medcompare_backend_attempts_total",
			Help: "Calls to backend targets by endpoint and result",
		},
		[]string{"endpoint", "target", "result"},
	)

	SourceProducts = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "medcompare_source_products",
			Help:    "Products rendered per source per search",
			Buckets: []float64{0, 1, 3, 5, 10, 20, 50},
		},
		[]string{"source"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterClients)
	prometheus.MustRegister(SearchTotals)
	prometheus.MustRegister(BackendAttempts)
	prometheus.MustRegister(SourceProducts)
}

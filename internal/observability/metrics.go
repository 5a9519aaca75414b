// README: Prometheus metrics for checkout, routing, and HTTP traffic.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CheckoutTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "market", Name: "checkout_total", Help: "Checkout calculations by result"},
		[]string{"result"},
	)
	RoutingFallbackTotal = promauto.NewCounter(
		prometheus.CounterOpts{Namespace: "market", Name: "routing_fallback_total", Help: "Checkouts priced with the fallback fee"},
	)
	MatrixCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{Namespace: "market", Name: "matrix_cache_hits_total", Help: "Distance matrix cache hits"},
	)
	MatrixCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{Namespace: "market", Name: "matrix_cache_misses_total", Help: "Distance matrix cache misses"},
	)
	StatusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "market", Name: "order_status_transitions_total", Help: "Order status transitions by target status"},
		[]string{"status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "market", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "market",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

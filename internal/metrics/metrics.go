package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the API
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// ProviderRequests counts outbound distance-provider calls by provider and outcome
	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "provider_requests_total", Help: "Distance provider calls by provider and status."},
		[]string{"provider", "status"},
	)
	// ProviderLatency tracks provider call latencies in milliseconds
	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "provider_latency_ms", Help: "Distance provider latency in ms.", Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000}},
		[]string{"provider"},
	)
	// MatrixFallbacks counts how often the synthetic matrix had to fill in
	MatrixFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "matrix_fallbacks_total", Help: "Synthetic matrix fallbacks by reason."},
		[]string{"reason"},
	)
	// RateLimitThrottles counts rate-limit-shaped provider failures
	RateLimitThrottles = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ratelimit_throttles_total", Help: "Rate-limit events by API name."},
		[]string{"api"},
	)
	// OptimizeDuration records end-to-end optimization durations per strategy
	OptimizeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "optimize_duration_seconds", Help: "Per-day optimization duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"strategy"},
	)
)

// RegisterDefault registers collectors to the default registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(ProviderRequests)
		Registry.MustRegister(ProviderLatency)
		Registry.MustRegister(MatrixFallbacks)
		Registry.MustRegister(RateLimitThrottles)
		Registry.MustRegister(OptimizeDuration)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once

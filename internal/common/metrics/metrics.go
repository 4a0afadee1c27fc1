// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalyzeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyze_requests_total",
			Help: "Total number of /analyze requests by outcome",
		},
		[]string{"outcome"},
	)

	AnalyzeRequestsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "analyze_requests_active",
			Help: "Number of /analyze requests currently being served",
		},
	)

	ProviderCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_call_duration_seconds",
			Help:    "Duration of generative provider calls in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		},
		[]string{"provider", "outcome"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)
)

// Outcome labels shared by the counters above.
const (
	OutcomeSuccess         = "success"
	OutcomeValidationError = "validation_error"
	OutcomeProviderError   = "provider_error"
	OutcomeInternalError   = "internal_error"
)

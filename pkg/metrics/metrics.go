package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docregistry", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docregistry", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	DocumentOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docregistry", Name: "document_operations_total", Help: "Document service operations by operation and outcome."},
		[]string{"operation", "outcome"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docregistry", Name: "http_requests_total", Help: "HTTP requests by method, route and status code."},
		[]string{"method", "route", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "docregistry", Name: "http_request_duration_seconds", Help: "HTTP request latency by method and route.", Buckets: prometheus.DefBuckets},
		[]string{"method", "route"},
	)
)

// Operation outcomes recorded on DocumentOperations.
const (
	OutcomeOK         = "ok"
	OutcomeInvalid    = "invalid"
	OutcomeNotFound   = "not_found"
	OutcomeStoreError = "error"
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(DocumentOperations)
	reg.MustRegister(HTTPRequests)
	reg.MustRegister(HTTPRequestDuration)
}

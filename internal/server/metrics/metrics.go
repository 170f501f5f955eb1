// Package metrics declares the Prometheus collectors exported by the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values shared by the auth counters.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeError   = "error"
	OutcomeReuse   = "reuse"
)

var (
	RequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "videotube_http_requests_total",
		Help: "The total number of HTTP requests",
	})

	ResponsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videotube_http_responses_total",
		Help: "The total number of HTTP responses by status code",
	}, []string{"status"})

	RequestDurationByPath = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "videotube_http_request_duration_seconds",
		Help:    "The HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	GrpcRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videotube_grpc_requests_total",
		Help: "The total number of gRPC calls by method and code",
	}, []string{"method", "code"})

	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videotube_login_attempts_total",
		Help: "The total number of login attempts",
	}, []string{"status"})

	RegistrationAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videotube_registration_attempts_total",
		Help: "The total number of registration attempts",
	}, []string{"status"})

	TokenRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videotube_token_refresh_total",
		Help: "The total number of token refreshes",
	}, []string{"status"})

	// GateRejectionsTotal counts requests refused by the authentication gate.
	GateRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videotube_gate_rejections_total",
		Help: "The total number of requests rejected by the authentication gate",
	}, []string{"reason"})

	LogoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "videotube_logouts_total",
		Help: "The total number of logouts",
	}, []string{"status"})
)

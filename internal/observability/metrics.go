package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchesReported = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reunite",
		Name:      "matches_reported_total",
		Help:      "Total match reports accepted from the recognizer",
	}, []string{"source"})

	CasesRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "reunite",
		Name:      "cases_registered_total",
		Help:      "Total missing-person cases registered",
	})

	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reunite",
		Name:      "status_transitions_total",
		Help:      "Total case status transitions",
	}, []string{"to"})

	ReviewDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reunite",
		Name:      "review_decisions_total",
		Help:      "Total notification review decisions",
	}, []string{"decision"})

	SideEffectFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reunite",
		Name:      "side_effect_failures_total",
		Help:      "Best-effort side effects that failed after a committed state change",
	}, []string{"target"})

	PendingNotifications = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "reunite",
		Name:      "pending_notifications",
		Help:      "Notifications currently awaiting human review",
	})

	ExternalCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "reunite",
		Name:      "external_call_duration_seconds",
		Help:      "Duration of calls to external collaborators",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"target"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "reunite",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "reunite",
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})
)

// Package metrics defines and registers all custom Prometheus metrics for the
// assignment portal. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry at package init through
// promauto and exposed on /metrics by the API router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Gateway metrics ───────────────────────────────────────────────────────────

// GatewayRequestsTotal counts calls to the grading API.
// Labels:
//   - op: gateway operation (e.g. "list_questions", "upload_assignment")
//   - outcome: "ok" or a remote error kind ("network", "status", "decode", "remote", "canceled")
var GatewayRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_requests_total",
		Help:      "Total number of grading API calls, by operation and outcome.",
	},
	[]string{"op", "outcome"},
)

// GatewayRequestDuration measures grading API round trips.
var GatewayRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "gateway_request_duration_seconds",
		Help:      "Duration of grading API calls from request to decoded response.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"op"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionOperationsTotal counts session store operations.
// Labels:
//   - op: "login", "register", "logout", "update_profile", "restore"
//   - result: "ok" or "error"
var SessionOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_operations_total",
		Help:      "Total number of session operations, by operation and result.",
	},
	[]string{"op", "result"},
)

// ── Submission metrics ────────────────────────────────────────────────────────

// SubmissionsTotal counts answer submissions.
// Labels:
//   - modality: "text" or "file"
//   - result: "ok", "invalid" or "failed"
var SubmissionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_total",
		Help:      "Total number of answer submissions, by modality and result.",
	},
	[]string{"modality", "result"},
)

// CompletionSignalsTotal counts published completion signals.
var CompletionSignalsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "completion_signals_total",
		Help:      "Total number of submission-completed signals published.",
	},
)

// CompletionListeners tracks currently registered completion listeners.
var CompletionListeners = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "completion_listeners",
		Help:      "Current number of registered submission-completed listeners.",
	},
)

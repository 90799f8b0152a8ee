// Package metrics defines and registers the Prometheus collectors of the
// EcoRuta client. It is the single source of truth for metric names, labels
// and help strings; collectors register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ecoruta"

// ── API client ────────────────────────────────────────────────────────────────

// APIRequestsTotal counts backend calls by outcome.
// Labels:
//   - method: HTTP verb
//   - status: response status code, or "transport_error"
var APIRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Total number of backend API requests, by method and status.",
	},
	[]string{"method", "status"},
)

// APIRequestDuration measures one backend round trip, retries excluded.
var APIRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Duration of backend API round trips.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

// TokenRefreshTotal counts refresh cycles.
// Label:
//   - result: "success", "failure", "no_refresh_token", "reused" (another
//     request already rotated the token), "discarded" (the session was
//     cleared or replaced while the refresh was in flight)
var TokenRefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refresh_total",
		Help:      "Total number of access-token refresh cycles, by result.",
	},
	[]string{"result"},
)

// ForcedLogoutsTotal counts sessions terminated because the refresh protocol
// could not recover.
var ForcedLogoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "forced_logouts_total",
		Help:      "Total number of sessions terminated after an unrecoverable 401.",
	},
)

// ── Session ───────────────────────────────────────────────────────────────────

// SessionTransitionsTotal counts state machine transitions.
// Labels:
//   - to: target status (checking, authenticated, anonymous)
//   - cause: operation that triggered it (start, login, register, logout, expire)
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session state transitions.",
	},
	[]string{"to", "cause"},
)

// StaleResultsTotal counts operation results discarded because a newer
// operation superseded them.
var StaleResultsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_stale_results_total",
		Help:      "Total number of superseded auth results that were discarded.",
	},
	[]string{"operation"},
)

// ── Route guard ───────────────────────────────────────────────────────────────

// GuardDecisionsTotal counts route guard outcomes.
// Label:
//   - outcome: pending, allow, redirect_login, redirect_role_home
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by outcome.",
	},
	[]string{"outcome"},
)

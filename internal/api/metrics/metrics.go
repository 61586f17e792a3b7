// Package metrics defines and registers all custom Prometheus metrics for the
// CivicFix mobile gateway. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry at import time and
// are exposed by the /metrics route the router installs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "civicfix"

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionRestoresTotal counts initialization outcomes.
// Label:
//   - result: "empty", "restored", "invalid_token", or "storage_error"
var SessionRestoresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_restores_total",
		Help:      "Total number of session initialization runs, by restore result.",
	},
	[]string{"result"},
)

// NavigatorDecisionsTotal counts routing evaluations.
// Label:
//   - navigator: "loading", "auth", "citizen", "worker", or "admin"
var NavigatorDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "navigator_decisions_total",
		Help:      "Total number of navigator routing decisions, by mounted navigator.",
	},
	[]string{"navigator"},
)

// StaleLogoutsTotal counts sessions logged out because their role
// confirmation aged past the staleness window.
var StaleLogoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stale_logouts_total",
		Help:      "Total number of forced logouts caused by stale role confirmations.",
	},
)

// ── Credential flow metrics ───────────────────────────────────────────────────

// CredentialFlowsTotal counts credential-acquisition attempts.
// Labels:
//   - flow: "login", "register", "google", "otp", "email"
//   - result: "success", "rejected", "error"
var CredentialFlowsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credential_flows_total",
		Help:      "Total number of credential-acquisition attempts, by flow and result.",
	},
	[]string{"flow", "result"},
)

// ResendsTotal counts verification resend attempts.
// Labels:
//   - channel: "phone" or "email"
//   - result: "sent", "cooldown", "error"
var ResendsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resends_total",
		Help:      "Total number of verification resend attempts, by channel and result.",
	},
	[]string{"channel", "result"},
)

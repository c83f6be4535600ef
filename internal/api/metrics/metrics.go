// Package metrics defines and registers all custom Prometheus metrics for
// the POS terminal service. It is the single source of truth for metric
// names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pos"

// LoginsTotal counts login attempts by outcome.
// Label:
//   - outcome: "success", "invalid_credentials", or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// SessionRestoresTotal counts startup session restore results.
// Label:
//   - result: "restored" or "none" (absent, expired, or corrupt)
var SessionRestoresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_restores_total",
		Help:      "Total number of startup session restore attempts, by result.",
	},
	[]string{"result"},
)

// UserMutationsTotal counts user lifecycle operations that succeeded.
// Label:
//   - action: "register", "update", "deactivate", or "reactivate"
var UserMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_mutations_total",
		Help:      "Total number of successful user lifecycle mutations, by action.",
	},
	[]string{"action"},
)

// PermissionDeniedTotal counts requests rejected by the capability gate.
// Label:
//   - route: the echo route path that was denied
var PermissionDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "permission_denied_total",
		Help:      "Total number of requests rejected by the capability gate, by route.",
	},
	[]string{"route"},
)

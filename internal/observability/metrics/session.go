// Package metrics defines the Prometheus metrics emitted by the session core.
// Metrics register with the default registry on import and are served by promhttp.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "frontsurete"

// GuardDecisionsTotal counts guard evaluations.
// Labels:
//   - policy: guard policy name (e.g. "private", "public_only")
//   - decision: "allow", "redirect" or "pending"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions.",
	},
	[]string{"policy", "decision"},
)

// SessionTeardownsTotal counts credential clears triggered by a 401 from the API.
var SessionTeardownsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_teardowns_total",
		Help:      "Total number of sessions cleared after the API rejected the credential.",
	},
)

// APIRequestsTotal counts outbound API calls.
// Labels:
//   - method: HTTP method
//   - status_class: "2xx".."5xx", or the error class for transport failures
var APIRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Total number of outbound API requests by outcome.",
	},
	[]string{"method", "status_class"},
)

// StatusClass renders an HTTP status as "2xx", "4xx", ...
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}

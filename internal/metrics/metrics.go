// Package metrics defines and registers the Prometheus metrics of the
// command plane. All metrics live in the default registry and are exposed
// on /metrics by the API router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "arena"

// CommandsTotal counts dispatched command lines.
// Labels:
//   - command: resolved command name, or "unknown"
//   - outcome: ok, parse_error, access_denied, not_found, login_failed, error, panic
var CommandsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_total",
		Help:      "Total number of command lines dispatched, by command and outcome.",
	},
	[]string{"command", "outcome"},
)

// CommandDuration measures handler execution time
var CommandDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "command_duration_seconds",
		Help:      "Duration of command handler execution.",
		Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
	},
	[]string{"command"},
)

// SessionsActive tracks open sessions per transport
var SessionsActive = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_active",
		Help:      "Number of open command sessions, by transport.",
	},
	[]string{"transport"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// QueueDepth is the number of inputs waiting for the command executor
var QueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "command_queue_depth",
		Help:      "Number of command inputs waiting to be executed.",
	},
)

// HTTPRequestsTotal counts requests served by the API router
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests, by method and status code.",
	},
	[]string{"method", "code"},
)

package command

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CommandRoutes counts routed messages by command and outcome. Unresolved
// tokens are counted under the "unknown" command.
var CommandRoutes = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kurumi_command_routes_total",
		Help: "Total number of routed command messages",
	},
	[]string{"command", "outcome"},
)

// CommandDuration is the histogram for command execution duration.
var CommandDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kurumi_command_duration_seconds",
		Help:    "Command execution duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"command"},
)

// CommandFailures counts failed executions by error kind.
var CommandFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kurumi_command_failures_total",
		Help: "Command failures by error kind",
	},
	[]string{"command", "kind"},
)

// RegisterMetrics registers command package metrics with reg.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(CommandRoutes, CommandDuration, CommandFailures)
}

func recordRoute(command string, o Outcome) {
	CommandRoutes.WithLabelValues(command, o.String()).Inc()
}

func recordDuration(command string, d time.Duration) {
	CommandDuration.WithLabelValues(command).Observe(d.Seconds())
}

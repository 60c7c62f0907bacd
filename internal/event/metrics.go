package event

import "github.com/prometheus/client_golang/prometheus"

const (
	StatusOK    = "ok"
	StatusError = "error"
	StatusPanic = "panic"
)

// HandlerRuns counts handler invocations by event type, handler and status.
var HandlerRuns = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kurumi_event_handler_runs_total",
		Help: "Total number of event handler invocations",
	},
	[]string{"event", "handler", "status"},
)

// EventsDropped counts events discarded before reaching any handler.
var EventsDropped = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kurumi_events_dropped_total",
		Help: "Events dropped because of an unexpected payload",
	},
	[]string{"event"},
)

// RegisterMetrics registers event package metrics with reg.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(HandlerRuns, EventsDropped)
}

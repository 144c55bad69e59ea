// Package metrics defines and registers the custom Prometheus metrics of the
// task manager API. It is the single source of truth for metric names,
// labels, and help strings.
//
// All metrics are registered with the default registry through promauto, so
// they appear on /metrics next to the HTTP metrics of echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskmanager"

// ── Task metrics ──────────────────────────────────────────────────────────────

// TasksCreatedTotal counts tasks persisted by the create endpoint.
var TasksCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_created_total",
		Help:      "Total number of tasks created.",
	},
)

// TaskAssignmentsTotal counts assignments to a user other than the actor.
// Label:
//   - source: "create" or "update"
var TaskAssignmentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_assignments_total",
		Help:      "Total number of task assignments that produced a notification.",
	},
	[]string{"source"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsDispatchedTotal counts persisted notifications.
var NotificationsDispatchedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_dispatched_total",
		Help:      "Total number of notifications persisted by the dispatcher.",
	},
)

// ── Realtime metrics ──────────────────────────────────────────────────────────

// RealtimeEventsTotal counts realtime emit outcomes.
// Label:
//   - result: "delivered" (at least one socket), "no_listeners", "dropped" (queue full or slow socket)
var RealtimeEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "realtime_events_total",
		Help:      "Total number of realtime events, labelled by outcome.",
	},
	[]string{"result"},
)

// RealtimeConnections tracks currently open WebSocket connections.
var RealtimeConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "realtime_connections",
		Help:      "Current number of open realtime connections.",
	},
)

// EmitQueueDepth tracks the number of events waiting in each emit worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var EmitQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "emit_queue_depth",
		Help:      "Current number of realtime events pending in each emit worker channel.",
	},
	[]string{"worker_id"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthFailuresTotal counts rejected requests at the authentication gate.
// Label:
//   - reason: "no_token", "token_failed", "user_not_found", "forbidden_role"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of requests rejected by the auth or role gate.",
	},
	[]string{"reason"},
)

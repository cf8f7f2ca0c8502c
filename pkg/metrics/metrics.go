// Package metrics defines and registers all custom Prometheus metrics for the
// incident tracker. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry on package init via
// promauto; HTTP request metrics come from echoprometheus in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "incidents"

// ── Incident metrics ──────────────────────────────────────────────────────────

// IncidentsCreatedTotal counts newly filed incidents.
// Label:
//   - priority: the priority given by the reporter (e.g. "Low")
var IncidentsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "created_total",
		Help:      "Total number of incidents created, by priority.",
	},
	[]string{"priority"},
)

// IncidentsUpdatedTotal counts successful incident updates.
// Label:
//   - status: the status after the update (e.g. "Resolved")
var IncidentsUpdatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "updated_total",
		Help:      "Total number of incident updates, by resulting status.",
	},
	[]string{"status"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthLoginsTotal counts login attempts.
// Label:
//   - result: "accepted" or "rejected"
var AuthLoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsTotal counts notification outcomes.
// Label:
//   - result: "sent", "failed" or "dropped" (queue full)
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of incident notifications, by outcome.",
	},
	[]string{"result"},
)

// NotificationsQueueDepth tracks notifications waiting for a worker.
var NotificationsQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notifications_queue_depth",
		Help:      "Current number of notifications pending delivery.",
	},
)

// NotificationDuration measures a single delivery attempt.
var NotificationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_duration_seconds",
		Help:      "Duration of a notification delivery attempt.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"sender"},
)

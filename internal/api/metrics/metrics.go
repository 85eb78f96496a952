// Package metrics defines all custom Prometheus metrics for the CRM API. It
// is the single source of truth for metric names, labels, and help strings.
// Metrics register themselves with the default registry via promauto; the
// router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "crm"

// ── Lead workflow metrics ─────────────────────────────────────────────────────

// LeadsCreatedTotal counts created leads.
// Label:
//   - status: the initial pipeline status (normally "NEW")
var LeadsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "leads_created_total",
		Help:      "Total number of leads created, by initial status.",
	},
	[]string{"status"},
)

// StatusTransitionsTotal counts lead status transitions.
// Labels:
//   - from: pipeline status before the change
//   - to:   pipeline status after the change
var StatusTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lead_status_transitions_total",
		Help:      "Total number of lead status transitions, by edge.",
	},
	[]string{"from", "to"},
)

// ── Fan-out metrics ───────────────────────────────────────────────────────────

// NotificationsCreatedTotal counts inbox notifications persisted by the
// notifier. Failed persists are not counted.
var NotificationsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_created_total",
		Help:      "Total number of inbox notifications created.",
	},
)

// EventsPublishedTotal counts events pushed to the bus.
// Label:
//   - topic: "user", "lead", or "global"
var EventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Total number of events published to the bus, by topic kind.",
	},
	[]string{"topic"},
)

// EmailAttemptsTotal counts outbound email attempts.
// Label:
//   - result: "sent" or "failed"
var EmailAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "email_attempts_total",
		Help:      "Total number of outbound email attempts, by result.",
	},
	[]string{"result"},
)

// ── Realtime metrics ──────────────────────────────────────────────────────────

// WebsocketConnections tracks the number of live websocket connections.
var WebsocketConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "websocket_connections",
		Help:      "Current number of open websocket connections.",
	},
)

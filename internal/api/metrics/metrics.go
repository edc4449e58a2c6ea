// Package metrics defines and registers all custom Prometheus metrics of the
// car-wash web app. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation and exposed on GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "carwash"

// ── Backend metrics ───────────────────────────────────────────────────────────

// BackendRequestsTotal counts calls made to the hosted backend.
// Labels:
//   - operation: "select", "insert", "update", "upsert" or an auth endpoint ("token", "signup", …)
//   - table: remote table name, or "auth"
//   - outcome: "ok", "client_error", "server_error" or "transport_error"
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of requests sent to the hosted backend.",
	},
	[]string{"operation", "table", "outcome"},
)

// BackendRequestDuration measures hosted backend round trips.
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of requests sent to the hosted backend.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation", "table"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionResolutionsTotal counts resolved request accesses.
// Label:
//   - access: the resolved access kind (e.g. "owner", "profile_incomplete")
var SessionResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_resolutions_total",
		Help:      "Total number of session resolutions, by resulting access kind.",
	},
	[]string{"access"},
)

// SessionResolutionFailuresTotal counts requests served as anonymous because
// the session store or the auth backend failed.
// Label:
//   - stage: "load" (session store) or "resolve" (auth backend / profile lookup)
var SessionResolutionFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_resolution_failures_total",
		Help:      "Total number of session resolutions that fell back to anonymous after a dependency failure.",
	},
	[]string{"stage"},
)

// AuthEventsTotal counts auth-state changes confirmed by the auth provider.
// Label:
//   - event: "signed_in", "signed_out" or "token_refreshed"
var AuthEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_total",
		Help:      "Total number of auth events emitted by the auth provider.",
	},
	[]string{"event"},
)

// ── Booking metrics ───────────────────────────────────────────────────────────

// BookingsCreatedTotal counts bookings created by customers.
var BookingsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_created_total",
		Help:      "Total number of bookings created.",
	},
)

// BookingTransitionsTotal counts owner decisions on bookings.
// Label:
//   - to: the status applied ("accepted", "rejected", "completed")
var BookingTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_transitions_total",
		Help:      "Total number of booking status transitions, by target status.",
	},
	[]string{"to"},
)

// ContactInquiriesTotal counts contact-page messages accepted.
var ContactInquiriesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contact_inquiries_total",
		Help:      "Total number of contact-page inquiries stored.",
	},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the current number of records waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit records pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditWritesTotal counts audit persistence attempts.
// Label:
//   - outcome: "ok", "error" or "dropped"
var AuditWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_writes_total",
		Help:      "Total number of audit records written, failed or dropped.",
	},
	[]string{"outcome"},
)

package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reconciliation outcomes. The outcome label matches the classification the
// engine returns: completed, failed, cancelled, duplicate, conflict,
// unmatched, skipped_order, error.
var ReconciliationEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ticketing_reconciliation_events_total",
	Help: "Payment events processed by the reconciliation engine, by outcome",
}, []string{"source", "outcome"})

// Check-in outcomes: success, already_checked_in, payment_not_completed,
// invalid_qr, not_found, error.
var CheckInAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ticketing_checkin_attempts_total",
	Help: "Ticket check-in attempts, by outcome",
}, []string{"outcome"})

// Login outcomes: success, invalid_credentials, inactive, rate_limited.
var LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ticketing_login_attempts_total",
	Help: "Staff login attempts, by outcome",
}, []string{"outcome"})

// TicketEmailTasks tracks the side-effect hook: enqueued, enqueue_failed,
// sent, send_failed.
var TicketEmailTasks = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ticketing_email_tasks_total",
	Help: "Ticket confirmation email tasks, by stage",
}, []string{"stage"})

// WebhookDeliveries counts raw gateway deliveries before classification:
// first, redelivery.
var WebhookDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ticketing_webhook_deliveries_total",
	Help: "Raw gateway webhook deliveries, by novelty",
}, []string{"novelty"})

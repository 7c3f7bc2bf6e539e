package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/models"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/monitoring"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/repositories"
)

// Reference namespaces. Ticket purchases and ecommerce orders share the same
// gateway account, so the namespace prefix (together with the metadata kind)
// tells ticket events apart from order events.
const (
	TicketReferencePrefix = "TKT-"
	OrderReferencePrefix  = "ORD-"
)

// ReconciliationService applies payment events to the ticket state machine.
// It is the only writer of payment_status transitions; both the gateway
// webhook and manual issuance feed through it.
type ReconciliationService struct {
	tickets *repositories.TicketRepository

	// completionHooks run after a ticket reaches completed. Hooks are
	// best-effort: a failing hook is the hook's problem, the transition has
	// already committed.
	completionHooks []func(*models.Ticket)
}

// NewReconciliationService creates a reconciliation service
func NewReconciliationService(tickets *repositories.TicketRepository) *ReconciliationService {
	return &ReconciliationService{tickets: tickets}
}

// OnCompleted registers a hook invoked after a ticket's payment transitions
// to completed. Duplicate deliveries never re-fire hooks.
func (s *ReconciliationService) OnCompleted(hook func(*models.Ticket)) {
	s.completionHooks = append(s.completionHooks, hook)
}

// Reconcile applies a payment event and returns the ticket in its resulting
// state. The operation is idempotent: redelivering an event that has already
// been applied returns the ticket unchanged with no error. A (nil, nil)
// return means the event was recognised as belonging to another system (an
// ecommerce order) and deliberately skipped.
//
// Error taxonomy:
//   - models.ErrUnmatchedEvent: no ticket matches the event
//   - *models.ConflictingStateError: the ticket already holds a different
//     terminal status; the recorded state is kept
func (s *ReconciliationService) Reconcile(event models.PaymentEvent) (*models.Ticket, error) {
	switch e := event.(type) {
	case models.GatewayPaymentEvent:
		return s.reconcileGateway(e)
	case models.ManualIssuance:
		return s.reconcileManual(e)
	default:
		return nil, fmt.Errorf("%w: unknown payment event type %T", models.ErrInvalidInput, event)
	}
}

func (s *ReconciliationService) reconcileGateway(event models.GatewayPaymentEvent) (*models.Ticket, error) {
	if !event.Status.IsTerminal() {
		monitoring.ReconciliationEvents.WithLabelValues("gateway", "error").Inc()
		return nil, fmt.Errorf("%w: gateway event must carry a terminal status, got %q", models.ErrInvalidInput, event.Status)
	}

	ticket, err := s.tickets.GetByPaymentIntentID(event.PaymentIntentID)
	if err != nil {
		if errors.Is(err, models.ErrTicketNotFound) {
			if isOrderEvent(event) {
				log.Printf("Reconciliation: skipping ecommerce order event %s (intent %s)", event.EventID, event.PaymentIntentID)
				monitoring.ReconciliationEvents.WithLabelValues("gateway", "skipped_order").Inc()
				return nil, nil
			}
			monitoring.ReconciliationEvents.WithLabelValues("gateway", "unmatched").Inc()
			return nil, fmt.Errorf("%w: intent %s (event %s)", models.ErrUnmatchedEvent, event.PaymentIntentID, event.EventID)
		}
		monitoring.ReconciliationEvents.WithLabelValues("gateway", "error").Inc()
		return nil, err
	}

	return s.applyTerminal(ticket, event.Status, event.ChargeID, "gateway")
}

func (s *ReconciliationService) reconcileManual(event models.ManualIssuance) (*models.Ticket, error) {
	ticket, err := s.tickets.GetByTransactionReference(event.TransactionReference)
	if err != nil {
		if errors.Is(err, models.ErrTicketNotFound) {
			monitoring.ReconciliationEvents.WithLabelValues("manual", "unmatched").Inc()
			return nil, fmt.Errorf("%w: reference %s", models.ErrUnmatchedEvent, event.TransactionReference)
		}
		monitoring.ReconciliationEvents.WithLabelValues("manual", "error").Inc()
		return nil, err
	}

	log.Printf("Reconciliation: manual issuance of %s by staff %d", event.TransactionReference, event.IssuedBy)
	return s.applyTerminal(ticket, models.PaymentCompleted, "", "manual")
}

// applyTerminal drives a ticket toward the given terminal status. The
// conditional update in the repository is the authority on whether the ticket
// was still pending; the reads around it only classify the outcome.
func (s *ReconciliationService) applyTerminal(ticket *models.Ticket, status models.PaymentStatus, chargeID, source string) (*models.Ticket, error) {
	// Fast path: event already applied, or a conflicting terminal state is
	// already recorded. Both are decided without writing.
	if outcome, err := s.classifySettled(ticket, status, source); outcome != nil || err != nil {
		return outcome, err
	}

	applied, err := s.tickets.ApplyPaymentStatus(ticket.ID, status, chargeID)
	if err != nil {
		monitoring.ReconciliationEvents.WithLabelValues(source, "error").Inc()
		return nil, fmt.Errorf("failed to transition ticket %s: %w", ticket.TransactionReference, err)
	}

	current, err := s.tickets.GetByID(ticket.ID)
	if err != nil {
		monitoring.ReconciliationEvents.WithLabelValues(source, "error").Inc()
		return nil, fmt.Errorf("failed to re-read ticket %s: %w", ticket.TransactionReference, err)
	}

	if !applied {
		// Lost a race: some other delivery settled the ticket between our
		// read and our write. Classify against the winner's state.
		if outcome, err := s.classifySettled(current, status, source); outcome != nil || err != nil {
			return outcome, err
		}
		monitoring.ReconciliationEvents.WithLabelValues(source, "error").Inc()
		return nil, fmt.Errorf("ticket %s not transitioned but still %s", current.TransactionReference, current.PaymentStatus)
	}

	log.Printf("Reconciliation: ticket %s %s -> %s (%s)", current.TransactionReference, models.PaymentPending, status, source)
	monitoring.ReconciliationEvents.WithLabelValues(source, string(status)).Inc()

	if status == models.PaymentCompleted {
		for _, hook := range s.completionHooks {
			hook(current)
		}
	}

	return current, nil
}

// classifySettled decides duplicate and conflict outcomes against a ticket
// already in a terminal state. Returns (nil, nil) when the ticket is still
// pending and a write should be attempted.
func (s *ReconciliationService) classifySettled(ticket *models.Ticket, status models.PaymentStatus, source string) (*models.Ticket, error) {
	if ticket.PaymentStatus == status {
		monitoring.ReconciliationEvents.WithLabelValues(source, "duplicate").Inc()
		return ticket, nil
	}

	if ticket.PaymentStatus.IsTerminal() {
		conflict := &models.ConflictingStateError{
			TransactionReference: ticket.TransactionReference,
			Current:              ticket.PaymentStatus,
			Incoming:             status,
		}
		log.Printf("Reconciliation: %v", conflict)
		monitoring.ReconciliationEvents.WithLabelValues(source, "conflict").Inc()
		return nil, conflict
	}

	return nil, nil
}

// isOrderEvent recognises gateway events that belong to the ecommerce order
// flow sharing this gateway account.
func isOrderEvent(event models.GatewayPaymentEvent) bool {
	if event.Metadata["kind"] == "order" {
		return true
	}
	return strings.HasPrefix(event.Metadata["reference"], OrderReferencePrefix)
}

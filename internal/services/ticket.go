package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/models"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/repositories"
)

// TicketService handles ticket issuance: the paid purchase path through the
// gateway and the manual/scholarship path. Both paths create a pending row
// first; only reconciliation moves a ticket to completed.
type TicketService struct {
	tickets    *repositories.TicketRepository
	gateway    *GatewayService
	reconciler *ReconciliationService
}

// NewTicketService creates a ticket service
func NewTicketService(tickets *repositories.TicketRepository, gateway *GatewayService, reconciler *ReconciliationService) *TicketService {
	return &TicketService{tickets: tickets, gateway: gateway, reconciler: reconciler}
}

// PurchaseResult is returned to a buyer starting a purchase
type PurchaseResult struct {
	Ticket           *models.Ticket `json:"ticket"`
	AuthorizationURL string         `json:"authorization_url"`
}

// Purchase starts a paid ticket purchase: initializes a gateway payment
// intent and records a pending ticket carrying the intent id, then hands the
// buyer the hosted checkout URL. Nothing is persisted if the gateway refuses.
func (s *TicketService) Purchase(ctx context.Context, req *models.TicketCreateRequest) (*PurchaseResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	price, err := models.PriceFor(req.TicketType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	reference := NewTicketReference()
	intent, err := s.gateway.InitializeTransaction(ctx, reference, req.Email, price, models.DefaultCurrency, map[string]string{
		"kind":      "ticket",
		"reference": reference,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize payment: %w", err)
	}

	ticket, err := s.tickets.Create(&models.Ticket{
		TransactionReference: reference,
		PaymentIntentID:      intent.IntentID,
		TicketType:           req.TicketType,
		Amount:               price,
		Currency:             models.DefaultCurrency,
		Name:                 strings.TrimSpace(req.Name),
		Email:                strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:                strings.TrimSpace(req.Phone),
		PaymentStatus:        models.PaymentPending,
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Ticket: purchase %s started (%s, %s %s)", reference, ticket.TicketType, ticket.Amount, ticket.Currency)
	return &PurchaseResult{Ticket: ticket, AuthorizationURL: intent.AuthorizationURL}, nil
}

// IssueManual creates a scholarship or complimentary ticket. The row starts
// pending and is completed through the reconciliation engine, so manual
// issuance obeys the same state machine as gateway payments.
func (s *TicketService) IssueManual(req *models.TicketCreateRequest, issuedBy int) (*models.Ticket, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	price, err := models.PriceFor(req.TicketType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	reference := NewTicketReference()
	_, err = s.tickets.Create(&models.Ticket{
		TransactionReference: reference,
		PaymentIntentID:      "MANUAL-" + uuid.NewString(),
		TicketType:           req.TicketType,
		Amount:               price,
		Currency:             models.DefaultCurrency,
		Name:                 strings.TrimSpace(req.Name),
		Email:                strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:                strings.TrimSpace(req.Phone),
		PaymentStatus:        models.PaymentPending,
	})
	if err != nil {
		return nil, err
	}

	return s.reconciler.Reconcile(models.ManualIssuance{
		TransactionReference: reference,
		IssuedBy:             issuedBy,
	})
}

// GetByReference retrieves a ticket by its transaction reference
func (s *TicketService) GetByReference(reference string) (*models.Ticket, error) {
	return s.tickets.GetByTransactionReference(reference)
}

// NewTicketReference generates a transaction reference in the ticket
// namespace.
func NewTicketReference() string {
	return TicketReferencePrefix + strings.ToUpper(uuid.NewString())
}

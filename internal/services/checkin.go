package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/models"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/monitoring"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/qr"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/repositories"
)

// CheckInService redeems tickets at the door. Many terminals scan
// concurrently; the single conditional update in the ticket repository is
// what guarantees a ticket admits exactly one person.
type CheckInService struct {
	tickets *repositories.TicketRepository
	staff   *repositories.StaffRepository
}

// NewCheckInService creates a check-in service
func NewCheckInService(tickets *repositories.TicketRepository, staff *repositories.StaffRepository) *CheckInService {
	return &CheckInService{tickets: tickets, staff: staff}
}

// CheckIn validates a scanned QR payload and redeems the ticket, attributing
// the redemption to the scanning staff member.
//
// Error taxonomy:
//   - models.ErrInvalidQRFormat: the scan is not a ticket QR payload
//   - models.ErrTicketNotFound: payload decodes but matches no ticket
//   - models.ErrPaymentNotCompleted: ticket exists but is not paid
//   - *models.AlreadyCheckedInError: ticket was already redeemed; carries the
//     original actor and timestamp
func (s *CheckInService) CheckIn(qrData string, staff *models.Staff) (*models.Ticket, error) {
	payload, err := qr.Decode(qrData)
	if err != nil {
		monitoring.CheckInAttempts.WithLabelValues("invalid_qr").Inc()
		return nil, err
	}

	ticket, err := s.tickets.GetByTransactionReference(payload.TicketID)
	if err != nil {
		if errors.Is(err, models.ErrTicketNotFound) {
			monitoring.CheckInAttempts.WithLabelValues("not_found").Inc()
			return nil, fmt.Errorf("%w: %s", models.ErrTicketNotFound, payload.TicketID)
		}
		monitoring.CheckInAttempts.WithLabelValues("error").Inc()
		return nil, err
	}

	if !ticket.IsPaid() {
		monitoring.CheckInAttempts.WithLabelValues("payment_not_completed").Inc()
		return nil, fmt.Errorf("%w: ticket %s is %s", models.ErrPaymentNotCompleted, ticket.TransactionReference, ticket.PaymentStatus)
	}

	redeemed, err := s.tickets.CheckIn(ticket.ID, staff.ID, time.Now().UTC())
	if err != nil {
		monitoring.CheckInAttempts.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to redeem ticket %s: %w", ticket.TransactionReference, err)
	}

	current, err := s.tickets.GetByID(ticket.ID)
	if err != nil {
		monitoring.CheckInAttempts.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to re-read ticket %s: %w", ticket.TransactionReference, err)
	}

	if !redeemed {
		// The conditional write refused. The re-read tells us which
		// precondition failed at the moment of the write.
		if current.IsCheckedIn {
			monitoring.CheckInAttempts.WithLabelValues("already_checked_in").Inc()
			return nil, s.alreadyCheckedIn(current)
		}
		monitoring.CheckInAttempts.WithLabelValues("payment_not_completed").Inc()
		return nil, fmt.Errorf("%w: ticket %s is %s", models.ErrPaymentNotCompleted, current.TransactionReference, current.PaymentStatus)
	}

	log.Printf("Check-in: ticket %s redeemed by staff %d (%s)", current.TransactionReference, staff.ID, staff.FullName)
	monitoring.CheckInAttempts.WithLabelValues("success").Inc()
	return current, nil
}

// alreadyCheckedIn builds the duplicate-entry refusal, resolving the original
// actor's name so door staff can settle the dispute without a second lookup.
func (s *CheckInService) alreadyCheckedIn(ticket *models.Ticket) error {
	dup := &models.AlreadyCheckedInError{
		TransactionReference: ticket.TransactionReference,
	}
	if ticket.CheckedInAt != nil {
		dup.CheckedInAt = *ticket.CheckedInAt
	}
	if ticket.CheckedInBy != nil {
		dup.CheckedInBy = *ticket.CheckedInBy
		if actor, err := s.staff.GetByID(*ticket.CheckedInBy); err == nil {
			dup.CheckedInByName = actor.FullName
		}
	}
	return dup
}

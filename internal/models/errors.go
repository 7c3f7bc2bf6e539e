package models

import (
	"errors"
	"fmt"
	"time"
)

// Common errors used throughout the application
var (
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrStaffNotFound       = errors.New("staff not found")
	ErrUnmatchedEvent      = errors.New("payment event does not match any ticket")
	ErrPaymentNotCompleted = errors.New("ticket payment is not completed")
	ErrInvalidQRFormat     = errors.New("invalid QR payload format")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountInactive     = errors.New("staff account is inactive")
	ErrTokenExpired        = errors.New("token has expired")
	ErrInvalidToken        = errors.New("invalid token")
	ErrNoToken             = errors.New("missing authorization token")
	ErrDuplicateEntry      = errors.New("duplicate entry")
	ErrInvalidInput        = errors.New("invalid input")
)

// ConflictingStateError reports a payment event whose terminal status
// disagrees with the terminal status already recorded for the ticket. The
// recorded state is never overwritten; the conflict is surfaced for
// investigation.
type ConflictingStateError struct {
	TransactionReference string
	Current              PaymentStatus
	Incoming             PaymentStatus
}

func (e *ConflictingStateError) Error() string {
	return fmt.Sprintf("conflicting terminal state for %s: ticket is %s, event reports %s",
		e.TransactionReference, e.Current, e.Incoming)
}

// AlreadyCheckedInError reports a redemption attempt on a ticket that has
// already been checked in. It carries the original actor and timestamp so
// door staff can resolve duplicate-entry disputes on the spot.
type AlreadyCheckedInError struct {
	TransactionReference string
	CheckedInBy          int
	CheckedInByName      string
	CheckedInAt          time.Time
}

func (e *AlreadyCheckedInError) Error() string {
	who := e.CheckedInByName
	if who == "" {
		who = fmt.Sprintf("staff #%d", e.CheckedInBy)
	}
	return fmt.Sprintf("ticket %s already checked in by %s at %s",
		e.TransactionReference, who, e.CheckedInAt.Format(time.RFC3339))
}

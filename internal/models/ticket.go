package models

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the payment state of a ticket purchase
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
)

// TicketType represents a conference ticket category
type TicketType string

const (
	TicketStudents   TicketType = "students"
	TicketIndividual TicketType = "individual"
	TicketCorporate  TicketType = "corporate"
)

// DefaultCurrency is the currency all ticket prices are quoted in
const DefaultCurrency = "GMD"

// TicketPrices holds the fixed price per ticket category in GMD
var TicketPrices = map[TicketType]decimal.Decimal{
	TicketStudents:   decimal.NewFromInt(500),
	TicketIndividual: decimal.NewFromInt(1500),
	TicketCorporate:  decimal.NewFromInt(5000),
}

// Ticket represents a single ticket purchase tracked from payment to door entry
type Ticket struct {
	ID                   int             `json:"id" db:"id"`
	TransactionReference string          `json:"transaction_reference" db:"transaction_reference"`
	PaymentIntentID      string          `json:"payment_intent_id" db:"payment_intent_id"`
	TicketType           TicketType      `json:"ticket_type" db:"ticket_type"`
	Amount               decimal.Decimal `json:"amount" db:"amount"`
	Currency             string          `json:"currency" db:"currency"`
	Name                 string          `json:"name" db:"name"`
	Email                string          `json:"email" db:"email"`
	Phone                string          `json:"phone" db:"phone"`
	PaymentStatus        PaymentStatus   `json:"payment_status" db:"payment_status"`
	GatewayChargeID      string          `json:"gateway_charge_id,omitempty" db:"gateway_charge_id"`
	IsCheckedIn          bool            `json:"is_checked_in" db:"is_checked_in"`
	CheckedInAt          *time.Time      `json:"checked_in_at,omitempty" db:"checked_in_at"`
	CheckedInBy          *int            `json:"checked_in_by,omitempty" db:"checked_in_by"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at" db:"updated_at"`
}

// TicketCreateRequest represents the data needed to create a ticket purchase
type TicketCreateRequest struct {
	TicketType TicketType `json:"ticket_type" binding:"required"`
	Name       string     `json:"name" binding:"required"`
	Email      string     `json:"email" binding:"required"`
	Phone      string     `json:"phone"`
}

var ticketEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// PriceFor returns the price for a ticket category
func PriceFor(tt TicketType) (decimal.Decimal, error) {
	price, ok := TicketPrices[tt]
	if !ok {
		return decimal.Zero, errors.New("unknown ticket type")
	}
	return price, nil
}

// Validate validates ticket purchase creation data
func (req *TicketCreateRequest) Validate() error {
	if err := validateTicketType(req.TicketType); err != nil {
		return err
	}

	if err := validateBuyerName(req.Name); err != nil {
		return err
	}

	if err := validateBuyerEmail(req.Email); err != nil {
		return err
	}

	if err := validateBuyerPhone(req.Phone); err != nil {
		return err
	}

	return nil
}

// Validate validates the ticket data
func (t *Ticket) Validate() error {
	if t.TransactionReference == "" {
		return errors.New("transaction reference is required")
	}

	if err := validateTicketType(t.TicketType); err != nil {
		return err
	}

	if !t.PaymentStatus.IsValid() {
		return errors.New("invalid payment status")
	}

	// An unpaid ticket can never be checked in
	if t.IsCheckedIn && t.PaymentStatus != PaymentCompleted {
		return errors.New("checked-in ticket must have completed payment")
	}

	return nil
}

func validateTicketType(tt TicketType) error {
	switch tt {
	case TicketStudents, TicketIndividual, TicketCorporate:
		return nil
	default:
		return errors.New("invalid ticket type")
	}
}

func validateBuyerName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("name is required")
	}

	if len(name) > 200 {
		return errors.New("name must be less than 200 characters")
	}

	return nil
}

func validateBuyerEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}

	if !ticketEmailRegex.MatchString(email) {
		return errors.New("invalid email format")
	}

	return nil
}

func validateBuyerPhone(phone string) error {
	// Phone is optional, but bounded
	if len(phone) > 30 {
		return errors.New("phone must be less than 30 characters")
	}

	return nil
}

// IsTerminal returns true if the status never changes through normal flow
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentCompleted || s == PaymentFailed || s == PaymentCancelled
}

// IsValid returns true if the status is a known payment status
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentCancelled:
		return true
	default:
		return false
	}
}

// CanCheckIn returns true if the ticket is eligible for door entry
func (t *Ticket) CanCheckIn() bool {
	return t.PaymentStatus == PaymentCompleted && !t.IsCheckedIn
}

// IsPaid returns true if payment has been confirmed
func (t *Ticket) IsPaid() bool {
	return t.PaymentStatus == PaymentCompleted
}

// TicketView is the public projection of a ticket returned by the API
type TicketView struct {
	TransactionReference string          `json:"transaction_reference"`
	TicketType           TicketType      `json:"ticket_type"`
	Amount               decimal.Decimal `json:"amount"`
	Currency             string          `json:"currency"`
	Name                 string          `json:"name"`
	Email                string          `json:"email"`
	PaymentStatus        PaymentStatus   `json:"payment_status"`
	IsCheckedIn          bool            `json:"is_checked_in"`
	CheckedInAt          *time.Time      `json:"checked_in_at,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

// View returns the public projection of the ticket
func (t *Ticket) View() TicketView {
	return TicketView{
		TransactionReference: t.TransactionReference,
		TicketType:           t.TicketType,
		Amount:               t.Amount,
		Currency:             t.Currency,
		Name:                 t.Name,
		Email:                t.Email,
		PaymentStatus:        t.PaymentStatus,
		IsCheckedIn:          t.IsCheckedIn,
		CheckedInAt:          t.CheckedInAt,
		CreatedAt:            t.CreatedAt,
	}
}

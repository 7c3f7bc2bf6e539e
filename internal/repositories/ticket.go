package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/models"
)

// TicketRepository handles ticket purchase data operations. It is the single
// mutation path for ticket rows; all state transitions go through the
// conditional updates below so that correctness never depends on in-process
// locking.
type TicketRepository struct {
	db *sql.DB
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *sql.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

const ticketColumns = `id, transaction_reference, payment_intent_id, ticket_type, amount, currency,
	name, email, phone, payment_status, gateway_charge_id,
	is_checked_in, checked_in_at, checked_in_by, created_at, updated_at`

// Create inserts a new ticket purchase in its initial state
func (r *TicketRepository) Create(t *models.Ticket) (*models.Ticket, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	result, err := r.db.Exec(`
		INSERT INTO ticket_purchases
			(transaction_reference, payment_intent_id, ticket_type, amount, currency,
			 name, email, phone, payment_status, gateway_charge_id, is_checked_in, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		t.TransactionReference,
		t.PaymentIntentID,
		t.TicketType,
		t.Amount.String(),
		t.Currency,
		t.Name,
		t.Email,
		t.Phone,
		t.PaymentStatus,
		t.GatewayChargeID,
		now,
		now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, fmt.Errorf("%w: transaction reference or payment intent already exists", models.ErrDuplicateEntry)
		}
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get inserted ticket id: %w", err)
	}

	return r.GetByID(int(id))
}

// GetByID retrieves a ticket by its internal id
func (r *TicketRepository) GetByID(id int) (*models.Ticket, error) {
	row := r.db.QueryRow(`SELECT `+ticketColumns+` FROM ticket_purchases WHERE id = ?`, id)
	return r.scanTicket(row)
}

// GetByTransactionReference retrieves a ticket by its transaction reference
func (r *TicketRepository) GetByTransactionReference(reference string) (*models.Ticket, error) {
	row := r.db.QueryRow(`SELECT `+ticketColumns+` FROM ticket_purchases WHERE transaction_reference = ?`, reference)
	return r.scanTicket(row)
}

// GetByPaymentIntentID retrieves a ticket by the gateway-side payment intent
// handle set at creation. This is how a webhook event is matched to a ticket
// before a completed transaction exists.
func (r *TicketRepository) GetByPaymentIntentID(intentID string) (*models.Ticket, error) {
	row := r.db.QueryRow(`SELECT `+ticketColumns+` FROM ticket_purchases WHERE payment_intent_id = ?`, intentID)
	return r.scanTicket(row)
}

// ApplyPaymentStatus moves a ticket out of pending into the given terminal
// status as a single conditional update. It returns false when no row was
// updated, which means the ticket was no longer pending at the moment of the
// write; the caller re-reads to classify the outcome. Two concurrent
// reconciliations for the same ticket therefore converge: exactly one write
// wins and the loser observes the winner's state.
func (r *TicketRepository) ApplyPaymentStatus(id int, status models.PaymentStatus, chargeID string) (bool, error) {
	if !status.IsTerminal() {
		return false, fmt.Errorf("%w: cannot transition to non-terminal status %q", models.ErrInvalidInput, status)
	}

	result, err := r.db.Exec(`
		UPDATE ticket_purchases
		SET payment_status = ?, gateway_charge_id = ?, updated_at = ?
		WHERE id = ? AND payment_status = 'pending'`,
		status, chargeID, time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("failed to apply payment status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// CheckIn redeems a ticket as a single conditional update: the write only
// happens if the ticket is still unredeemed and its payment is completed.
// Returns false when the precondition no longer held, i.e. a concurrent scan
// won the race or the payment state changed; the caller re-reads to build
// the precise refusal. The update's own precondition is the authoritative
// check, not any earlier read.
func (r *TicketRepository) CheckIn(id int, staffID int, at time.Time) (bool, error) {
	result, err := r.db.Exec(`
		UPDATE ticket_purchases
		SET is_checked_in = 1, checked_in_at = ?, checked_in_by = ?, updated_at = ?
		WHERE id = ? AND is_checked_in = 0 AND payment_status = 'completed'`,
		at, staffID, time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("failed to check in ticket: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// CountByStatus returns the number of tickets per payment status
func (r *TicketRepository) CountByStatus() (map[models.PaymentStatus]int, error) {
	rows, err := r.db.Query(`SELECT payment_status, COUNT(*) FROM ticket_purchases GROUP BY payment_status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count tickets by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.PaymentStatus]int)
	for rows.Next() {
		var status models.PaymentStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

// CountCompletedByType returns the number of paid tickets per category
func (r *TicketRepository) CountCompletedByType() (map[models.TicketType]int, error) {
	rows, err := r.db.Query(`
		SELECT ticket_type, COUNT(*) FROM ticket_purchases
		WHERE payment_status = 'completed'
		GROUP BY ticket_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to count tickets by type: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.TicketType]int)
	for rows.Next() {
		var tt models.TicketType
		var count int
		if err := rows.Scan(&tt, &count); err != nil {
			return nil, fmt.Errorf("failed to scan type count: %w", err)
		}
		counts[tt] = count
	}

	return counts, rows.Err()
}

// Revenue returns the summed amount over all completed tickets
func (r *TicketRepository) Revenue() (decimal.Decimal, error) {
	rows, err := r.db.Query(`SELECT amount FROM ticket_purchases WHERE payment_status = 'completed'`)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query revenue: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amountStr string
		if err := rows.Scan(&amountStr); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan amount: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid stored amount %q: %w", amountStr, err)
		}
		total = total.Add(amount)
	}

	return total, rows.Err()
}

// CheckedInCount returns the number of redeemed tickets
func (r *TicketRepository) CheckedInCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM ticket_purchases WHERE is_checked_in = 1`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count checked-in tickets: %w", err)
	}
	return count, nil
}

// LeaderboardEntry attributes check-ins to a staff member
type LeaderboardEntry struct {
	StaffID   int    `json:"staff_id"`
	StaffName string `json:"staff_name"`
	CheckIns  int    `json:"check_ins"`
}

// CheckInLeaderboard returns staff ranked by performed check-ins
func (r *TicketRepository) CheckInLeaderboard() ([]LeaderboardEntry, error) {
	rows, err := r.db.Query(`
		SELECT s.id, s.full_name, COUNT(t.id) AS check_ins
		FROM ticket_purchases t
		JOIN staff s ON t.checked_in_by = s.id
		WHERE t.is_checked_in = 1
		GROUP BY s.id, s.full_name
		ORDER BY check_ins DESC, s.full_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query check-in leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var entry LeaderboardEntry
		if err := rows.Scan(&entry.StaffID, &entry.StaffName, &entry.CheckIns); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *TicketRepository) scanTicket(row rowScanner) (*models.Ticket, error) {
	ticket := &models.Ticket{}
	var amountStr string
	var checkedInAt sql.NullTime
	var checkedInBy sql.NullInt64

	err := row.Scan(
		&ticket.ID,
		&ticket.TransactionReference,
		&ticket.PaymentIntentID,
		&ticket.TicketType,
		&amountStr,
		&ticket.Currency,
		&ticket.Name,
		&ticket.Email,
		&ticket.Phone,
		&ticket.PaymentStatus,
		&ticket.GatewayChargeID,
		&ticket.IsCheckedIn,
		&checkedInAt,
		&checkedInBy,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to scan ticket: %w", err)
	}

	ticket.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amountStr, err)
	}

	if checkedInAt.Valid {
		t := checkedInAt.Time
		ticket.CheckedInAt = &t
	}
	if checkedInBy.Valid {
		id := int(checkedInBy.Int64)
		ticket.CheckedInBy = &id
	}

	return ticket, nil
}

package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// WebhookEvent is an audit record of a received gateway notification. The
// unique (provider, provider_event_id) pair is what makes redelivery of the
// same event observable as a duplicate.
type WebhookEvent struct {
	ID              int        `json:"id" db:"id"`
	Provider        string     `json:"provider" db:"provider"`
	ProviderEventID string     `json:"provider_event_id" db:"provider_event_id"`
	EventType       string     `json:"event_type" db:"event_type"`
	PayloadJSON     string     `json:"-" db:"payload_json"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty" db:"processed_at"`
	ProcessingError string     `json:"processing_error,omitempty" db:"processing_error"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// WebhookEventRepository persists the gateway notification audit log
type WebhookEventRepository struct {
	db *sql.DB
}

// NewWebhookEventRepository creates a new webhook event repository
func NewWebhookEventRepository(db *sql.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

// Record stores an incoming event. Returns (id, false, nil) for a first
// delivery and (0, true, nil) when the same provider event was already
// recorded.
func (r *WebhookEventRepository) Record(provider, eventID, eventType, payload string) (int, bool, error) {
	result, err := r.db.Exec(`
		INSERT INTO webhook_events (provider, provider_event_id, event_type, payload_json, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		provider, eventID, eventType, payload, time.Now().UTC())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, true, nil
		}
		return 0, false, fmt.Errorf("failed to record webhook event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("failed to get inserted event id: %w", err)
	}

	return int(id), false, nil
}

// MarkProcessed stamps the event with its processing outcome. An empty
// processingError means the event was handled successfully.
func (r *WebhookEventRepository) MarkProcessed(id int, processingError string) error {
	_, err := r.db.Exec(`
		UPDATE webhook_events SET processed_at = ?, processing_error = ? WHERE id = ?`,
		time.Now().UTC(), processingError, id)
	if err != nil {
		return fmt.Errorf("failed to mark webhook event processed: %w", err)
	}
	return nil
}

// CountByOutcome returns how many recorded events succeeded and how many
// ended with a processing error
func (r *WebhookEventRepository) CountByOutcome() (succeeded, failed int, err error) {
	err = r.db.QueryRow(`
		SELECT
			COUNT(CASE WHEN processed_at IS NOT NULL AND processing_error = '' THEN 1 END),
			COUNT(CASE WHEN processed_at IS NOT NULL AND processing_error != '' THEN 1 END)
		FROM webhook_events`).Scan(&succeeded, &failed)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count webhook events: %w", err)
	}
	return succeeded, failed, nil
}

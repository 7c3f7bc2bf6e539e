// Package tasks holds the background task queue. The only task today is the
// ticket confirmation email fired after a payment completes; it runs off the
// request path so webhook processing stays fast and a flaky email provider
// can never undo a committed payment transition.
package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// TypeTicketEmail is the ticket confirmation email task
const TypeTicketEmail = "email:ticket"

// QueueEmails is the queue confirmation emails run on
const QueueEmails = "emails"

// TicketEmailPayload identifies the ticket to send a confirmation for. The
// payload carries only the reference; the worker loads current state from
// the store at processing time.
type TicketEmailPayload struct {
	TransactionReference string `json:"transaction_reference"`
}

// NewTicketEmailTask builds a ticket confirmation email task
func NewTicketEmailTask(reference string) (*asynq.Task, error) {
	payload, err := json.Marshal(TicketEmailPayload{TransactionReference: reference})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ticket email payload: %w", err)
	}
	return asynq.NewTask(TypeTicketEmail, payload, asynq.Queue(QueueEmails), asynq.MaxRetry(5)), nil
}

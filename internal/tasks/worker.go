package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/config"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/monitoring"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/qr"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/repositories"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/services"
)

// TicketEmailProcessor sends confirmation emails for completed tickets
type TicketEmailProcessor struct {
	tickets    *repositories.TicketRepository
	email      *services.EmailService
	conference string
}

// NewTicketEmailProcessor creates a ticket email processor
func NewTicketEmailProcessor(tickets *repositories.TicketRepository, email *services.EmailService, conference string) *TicketEmailProcessor {
	return &TicketEmailProcessor{tickets: tickets, email: email, conference: conference}
}

// ProcessTask loads the ticket and sends its confirmation email. Returning an
// error lets asynq retry with backoff.
func (p *TicketEmailProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload TicketEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		// Malformed payloads never become valid, do not retry
		return fmt.Errorf("invalid ticket email payload: %v: %w", err, asynq.SkipRetry)
	}

	ticket, err := p.tickets.GetByTransactionReference(payload.TransactionReference)
	if err != nil {
		return fmt.Errorf("failed to load ticket %s: %w", payload.TransactionReference, err)
	}

	if !ticket.IsPaid() {
		// Should not happen given the enqueue site, but the queue outlives
		// any single state read
		log.Printf("Tasks: skipping email for %s, payment is %s", ticket.TransactionReference, ticket.PaymentStatus)
		return nil
	}

	qrData := qr.Encode(qr.FromTicket(ticket, p.conference))
	if err := p.email.SendTicketConfirmation(ctx, ticket, qrData); err != nil {
		monitoring.TicketEmailTasks.WithLabelValues("send_failed").Inc()
		return err
	}

	monitoring.TicketEmailTasks.WithLabelValues("sent").Inc()
	return nil
}

// NewServer builds the asynq worker server with its task routes
func NewServer(cfg config.RedisConfig, processor *TicketEmailProcessor) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
		},
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				QueueEmails: 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.Handle(TypeTicketEmail, processor)

	return srv, mux
}

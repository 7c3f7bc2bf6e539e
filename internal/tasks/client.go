package tasks

import (
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/config"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/monitoring"
)

// Enqueuer submits background tasks to the queue
type Enqueuer struct {
	client *asynq.Client
}

// NewEnqueuer creates a task enqueuer backed by the configured Redis
func NewEnqueuer(cfg config.RedisConfig) *Enqueuer {
	return &Enqueuer{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
		}),
	}
}

// EnqueueTicketEmail queues the confirmation email for a completed ticket
func (e *Enqueuer) EnqueueTicketEmail(reference string) error {
	task, err := NewTicketEmailTask(reference)
	if err != nil {
		monitoring.TicketEmailTasks.WithLabelValues("enqueue_failed").Inc()
		return err
	}

	info, err := e.client.Enqueue(task)
	if err != nil {
		monitoring.TicketEmailTasks.WithLabelValues("enqueue_failed").Inc()
		return fmt.Errorf("failed to enqueue ticket email for %s: %w", reference, err)
	}

	log.Printf("Tasks: queued %s for %s (task %s)", TypeTicketEmail, reference, info.ID)
	monitoring.TicketEmailTasks.WithLabelValues("enqueued").Inc()
	return nil
}

// Close releases the underlying Redis connection
func (e *Enqueuer) Close() error {
	return e.client.Close()
}

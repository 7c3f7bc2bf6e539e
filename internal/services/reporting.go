package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/models"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/repositories"
)

// ReportingService serves the organiser dashboard. Pure reads; slightly
// stale numbers are fine here, the door and the webhook never depend on them.
type ReportingService struct {
	tickets  *repositories.TicketRepository
	webhooks *repositories.WebhookEventRepository
}

// NewReportingService creates a reporting service
func NewReportingService(tickets *repositories.TicketRepository, webhooks *repositories.WebhookEventRepository) *ReportingService {
	return &ReportingService{tickets: tickets, webhooks: webhooks}
}

// Stats is the organiser dashboard snapshot
type Stats struct {
	TicketsByStatus map[models.PaymentStatus]int `json:"tickets_by_status"`
	PaidByType      map[models.TicketType]int    `json:"paid_by_type"`
	Revenue         decimal.Decimal              `json:"revenue"`
	Currency        string                       `json:"currency"`
	CheckedIn       int                          `json:"checked_in"`
	CheckInRate     float64                      `json:"check_in_rate"`
	WebhooksOK      int                          `json:"webhooks_processed"`
	WebhooksFailed  int                          `json:"webhooks_failed"`
}

// Stats builds the dashboard snapshot
func (s *ReportingService) Stats() (*Stats, error) {
	byStatus, err := s.tickets.CountByStatus()
	if err != nil {
		return nil, fmt.Errorf("failed to load status counts: %w", err)
	}

	byType, err := s.tickets.CountCompletedByType()
	if err != nil {
		return nil, fmt.Errorf("failed to load type counts: %w", err)
	}

	revenue, err := s.tickets.Revenue()
	if err != nil {
		return nil, fmt.Errorf("failed to load revenue: %w", err)
	}

	checkedIn, err := s.tickets.CheckedInCount()
	if err != nil {
		return nil, fmt.Errorf("failed to load check-in count: %w", err)
	}

	webhooksOK, webhooksFailed, err := s.webhooks.CountByOutcome()
	if err != nil {
		return nil, fmt.Errorf("failed to load webhook counts: %w", err)
	}

	stats := &Stats{
		TicketsByStatus: byStatus,
		PaidByType:      byType,
		Revenue:         revenue,
		Currency:        models.DefaultCurrency,
		CheckedIn:       checkedIn,
		WebhooksOK:      webhooksOK,
		WebhooksFailed:  webhooksFailed,
	}

	if paid := byStatus[models.PaymentCompleted]; paid > 0 {
		stats.CheckInRate = float64(checkedIn) / float64(paid)
	}

	return stats, nil
}

// Leaderboard returns staff ranked by check-ins performed
func (s *ReportingService) Leaderboard() ([]repositories.LeaderboardEntry, error) {
	return s.tickets.CheckInLeaderboard()
}

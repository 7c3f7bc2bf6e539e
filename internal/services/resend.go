package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/config"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/models"
)

const resendAPIURL = "https://api.resend.com/emails"

// EmailService sends transactional email through Resend
type EmailService struct {
	apiKey    string
	fromEmail string
	fromName  string
	client    *http.Client
}

// NewEmailService creates an email service from config
func NewEmailService(cfg config.ResendConfig) *EmailService {
	return &EmailService{
		apiKey:    cfg.APIKey,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type resendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendTicketConfirmation sends the buyer their ticket with the QR payload
// rendered as a code-128-friendly string. When no API key is configured the
// send is logged and skipped so development environments work without
// credentials.
func (s *EmailService) SendTicketConfirmation(ctx context.Context, ticket *models.Ticket, qrData string) error {
	if s.apiKey == "" {
		log.Printf("Email: no API key configured, skipping confirmation for %s", ticket.TransactionReference)
		return nil
	}

	payload := resendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail),
		To:      []string{ticket.Email},
		Subject: fmt.Sprintf("Your PyCon Gambia ticket — %s", ticket.TransactionReference),
		HTML:    ticketConfirmationHTML(ticket, qrData),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resendAPIURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("email request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("email provider returned status %d: %s", resp.StatusCode, string(respBody))
	}

	log.Printf("Email: confirmation sent for %s to %s", ticket.TransactionReference, ticket.Email)
	return nil
}

func ticketConfirmationHTML(ticket *models.Ticket, qrData string) string {
	return fmt.Sprintf(`
		<div style="font-family: sans-serif; max-width: 560px; margin: 0 auto;">
			<h2>You're in, %s!</h2>
			<p>Your %s ticket for PyCon Gambia is confirmed.</p>
			<table style="border-collapse: collapse;">
				<tr><td style="padding: 4px 12px 4px 0;"><strong>Reference</strong></td><td>%s</td></tr>
				<tr><td style="padding: 4px 12px 4px 0;"><strong>Ticket</strong></td><td>%s</td></tr>
				<tr><td style="padding: 4px 12px 4px 0;"><strong>Amount</strong></td><td>%s %s</td></tr>
			</table>
			<p>Show this code at the door:</p>
			<p style="font-family: monospace; word-break: break-all; background: #f4f4f4; padding: 12px;">%s</p>
			<p>See you there!</p>
		</div>`,
		ticket.Name,
		ticket.TicketType,
		ticket.TransactionReference,
		ticket.TicketType,
		ticket.Amount,
		ticket.Currency,
		qrData,
	)
}

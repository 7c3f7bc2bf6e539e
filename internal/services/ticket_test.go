package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/config"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/models"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/repositories"
)

// fakeGateway stands in for the payment provider's initialize endpoint
func fakeGateway(t *testing.T, status bool) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transaction/initialize", r.URL.Path)
		require.Equal(t, "Bearer sk_test_key", r.Header.Get("Authorization"))

		var req struct {
			Email     string `json:"email"`
			Amount    int64  `json:"amount"`
			Reference string `json:"reference"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  status,
			"message": "ok",
			"data": map[string]string{
				"authorization_url": "https://checkout.example.com/" + req.Reference,
				"access_code":       "ac_" + req.Reference,
				"reference":         req.Reference,
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTicketService(t *testing.T, gatewayURL string) (*TicketService, *repositories.TicketRepository) {
	t.Helper()

	tickets := repositories.NewTicketRepository(setupTestDB(t))
	gateway := NewGatewayService(config.GatewayConfig{
		SecretKey: "sk_test_key",
		BaseURL:   gatewayURL,
	})
	return NewTicketService(tickets, gateway, NewReconciliationService(tickets)), tickets
}

func TestPurchase(t *testing.T) {
	svc, tickets := newTicketService(t, fakeGateway(t, true).URL)

	result, err := svc.Purchase(context.Background(), &models.TicketCreateRequest{
		TicketType: models.TicketCorporate,
		Name:       "  Fatou Ceesay  ",
		Email:      "Fatou@Example.com",
	})
	require.NoError(t, err)

	ticket := result.Ticket
	assert.True(t, strings.HasPrefix(ticket.TransactionReference, TicketReferencePrefix))
	assert.Equal(t, models.PaymentPending, ticket.PaymentStatus)
	assert.True(t, ticket.Amount.Equal(decimal.NewFromInt(5000)), "corporate price")
	assert.Equal(t, models.DefaultCurrency, ticket.Currency)
	assert.Equal(t, "Fatou Ceesay", ticket.Name, "name trimmed")
	assert.Equal(t, "fatou@example.com", ticket.Email, "email normalised")
	assert.Equal(t, "ac_"+ticket.TransactionReference, ticket.PaymentIntentID)
	assert.Equal(t, "https://checkout.example.com/"+ticket.TransactionReference, result.AuthorizationURL)

	stored, err := tickets.GetByTransactionReference(ticket.TransactionReference)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, stored.ID)
}

func TestPurchaseGatewayRefusal(t *testing.T) {
	svc, tickets := newTicketService(t, fakeGateway(t, false).URL)

	_, err := svc.Purchase(context.Background(), &models.TicketCreateRequest{
		TicketType: models.TicketStudents,
		Name:       "Fatou Ceesay",
		Email:      "fatou@example.com",
	})
	require.Error(t, err)

	// Nothing persisted when the gateway refuses
	counts, err := tickets.CountByStatus()
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestPurchaseInvalidRequest(t *testing.T) {
	svc, _ := newTicketService(t, "http://unused.invalid")

	_, err := svc.Purchase(context.Background(), &models.TicketCreateRequest{
		TicketType: "vip",
		Name:       "Fatou Ceesay",
		Email:      "fatou@example.com",
	})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestIssueManual(t *testing.T) {
	svc, tickets := newTicketService(t, "http://unused.invalid")

	ticket, err := svc.IssueManual(&models.TicketCreateRequest{
		TicketType: models.TicketStudents,
		Name:       "Scholarship Attendee",
		Email:      "scholar@example.com",
	}, 7)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentCompleted, ticket.PaymentStatus, "manual tickets complete through reconciliation")
	assert.True(t, strings.HasPrefix(ticket.TransactionReference, TicketReferencePrefix))
	assert.True(t, strings.HasPrefix(ticket.PaymentIntentID, "MANUAL-"))
	assert.False(t, ticket.IsCheckedIn)

	stored, err := tickets.GetByTransactionReference(ticket.TransactionReference)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, stored.PaymentStatus)
}

package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/config"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/database"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/models"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/repositories"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/services"
)

const testWebhookSecret = "sk_test_key"

func setupWebhookRouter(t *testing.T) (*gin.Engine, *repositories.TicketRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewConnection(database.Config{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations())

	tickets := repositories.NewTicketRepository(db.DB)
	events := repositories.NewWebhookEventRepository(db.DB)
	gateway := services.NewGatewayService(config.GatewayConfig{SecretKey: testWebhookSecret})
	reconciler := services.NewReconciliationService(tickets)

	router := gin.New()
	router.POST("/api/v1/payments/webhook", NewWebhookHandler(gateway, reconciler, events).HandleWebhook)
	return router, tickets
}

func createWebhookTicket(t *testing.T, tickets *repositories.TicketRepository, reference, intentID string) {
	t.Helper()
	_, err := tickets.Create(&models.Ticket{
		TransactionReference: reference,
		PaymentIntentID:      intentID,
		TicketType:           models.TicketStudents,
		Amount:               decimal.NewFromInt(500),
		Currency:             models.DefaultCurrency,
		Name:                 "Fatou Ceesay",
		Email:                "fatou@example.com",
		PaymentStatus:        models.PaymentPending,
	})
	require.NoError(t, err)
}

func deliver(t *testing.T, router *gin.Engine, payload map[string]interface{}, sign bool) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
	if sign {
		mac := hmac.New(sha512.New, []byte(testWebhookSecret))
		mac.Write(body)
		req.Header.Set("X-Paystack-Signature", hex.EncodeToString(mac.Sum(nil)))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func chargeEvent(id, event, intent string) map[string]interface{} {
	return map[string]interface{}{
		"id":    id,
		"event": event,
		"data": map[string]interface{}{
			"payment_intent": intent,
			"charge_id":      "ch_1",
		},
	}
}

func TestWebhookProcessesChargeSuccess(t *testing.T) {
	router, tickets := setupWebhookRouter(t)
	createWebhookTicket(t, tickets, "TKT-1", "pi_1")

	w := deliver(t, router, chargeEvent("evt_1", "charge.success", "pi_1"), true)
	assert.Equal(t, http.StatusOK, w.Code)

	current, err := tickets.GetByTransactionReference("TKT-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, current.PaymentStatus)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	router, tickets := setupWebhookRouter(t)
	createWebhookTicket(t, tickets, "TKT-1", "pi_1")

	w := deliver(t, router, chargeEvent("evt_1", "charge.success", "pi_1"), false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	current, err := tickets.GetByTransactionReference("TKT-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, current.PaymentStatus)
}

func TestWebhookRedeliveryAnswers200(t *testing.T) {
	router, tickets := setupWebhookRouter(t)
	createWebhookTicket(t, tickets, "TKT-1", "pi_1")

	event := chargeEvent("evt_1", "charge.success", "pi_1")
	assert.Equal(t, http.StatusOK, deliver(t, router, event, true).Code)
	assert.Equal(t, http.StatusOK, deliver(t, router, event, true).Code, "redelivery must be acknowledged")

	current, err := tickets.GetByTransactionReference("TKT-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, current.PaymentStatus)
}

func TestWebhookLogicalRefusalsAnswer200(t *testing.T) {
	router, tickets := setupWebhookRouter(t)
	createWebhookTicket(t, tickets, "TKT-1", "pi_1")

	// Unmatched event: observation, not retryable
	w := deliver(t, router, chargeEvent("evt_x", "charge.success", "pi_unknown"), true)
	assert.Equal(t, http.StatusOK, w.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNMATCHED_EVENT", resp.Error.Code)

	// Conflicting terminal state after completion
	require.Equal(t, http.StatusOK, deliver(t, router, chargeEvent("evt_1", "charge.success", "pi_1"), true).Code)
	w = deliver(t, router, chargeEvent("evt_2", "charge.failed", "pi_1"), true)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "CONFLICTING_TERMINAL_STATE", resp.Error.Code)

	current, err := tickets.GetByTransactionReference("TKT-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, current.PaymentStatus, "conflict never overwrites")
}

func TestWebhookIgnoresUnknownEventTypes(t *testing.T) {
	router, _ := setupWebhookRouter(t)

	w := deliver(t, router, chargeEvent("evt_1", "customer.created", "pi_1"), true)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhookSkipsOrderEvents(t *testing.T) {
	router, _ := setupWebhookRouter(t)

	payload := chargeEvent("evt_1", "charge.success", "pi_order")
	payload["data"].(map[string]interface{})["metadata"] = map[string]string{"kind": "order"}
	payload["data"].(map[string]interface{})["reference"] = "ORD-55"

	w := deliver(t, router, payload, true)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/models"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/monitoring"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/repositories"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/services"
)

const webhookProvider = "paystack"

// WebhookHandler receives payment gateway notifications
type WebhookHandler struct {
	gateway    *services.GatewayService
	reconciler *services.ReconciliationService
	events     *repositories.WebhookEventRepository
}

// NewWebhookHandler creates a webhook handler
func NewWebhookHandler(gateway *services.GatewayService, reconciler *services.ReconciliationService, events *repositories.WebhookEventRepository) *WebhookHandler {
	return &WebhookHandler{gateway: gateway, reconciler: reconciler, events: events}
}

type webhookPayload struct {
	ID    string `json:"id"`
	Event string `json:"event"`
	Data  struct {
		PaymentIntent string            `json:"payment_intent"`
		ChargeID      string            `json:"charge_id"`
		Reference     string            `json:"reference"`
		Metadata      map[string]string `json:"metadata"`
	} `json:"data"`
}

// eventStatus maps gateway event types to the terminal status they report.
// Unknown event types are acknowledged and ignored.
var eventStatus = map[string]models.PaymentStatus{
	"charge.success":   models.PaymentCompleted,
	"charge.failed":    models.PaymentFailed,
	"charge.cancelled": models.PaymentCancelled,
}

// HandleWebhook godoc
// @Summary      Receive a payment gateway event
// @Description  Applies a gateway payment notification to the ticket it matches. Idempotent: redeliveries of the same event are acknowledged without effect. Logical refusals (unmatched event, conflicting terminal state) answer 200 so the gateway stops retrying; only transient store failures answer 5xx.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        payload  body      object  true  "Gateway event"
// @Success      200      {object}  handlers.Response
// @Failure      400      {object}  handlers.Response
// @Failure      401      {object}  handlers.Response
// @Failure      500      {object}  handlers.Response
// @Router       /payments/webhook [post]
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_PAYLOAD", "failed to read request body")
		return
	}

	if !h.gateway.VerifySignature(body, c.GetHeader("X-Paystack-Signature")) {
		respondError(c, http.StatusUnauthorized, "INVALID_SIGNATURE", "webhook signature verification failed")
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_PAYLOAD", "malformed webhook payload")
		return
	}

	eventID := payload.ID
	if eventID == "" {
		// Audit every delivery even when the gateway omits its event id
		eventID = "anon-" + uuid.NewString()
	}

	auditID, redelivery, err := h.events.Record(webhookProvider, eventID, payload.Event, string(body))
	if err != nil {
		log.Printf("Webhook: failed to record event %s: %v", eventID, err)
		respondError(c, http.StatusInternalServerError, "STORE_ERROR", "failed to record event")
		return
	}
	if redelivery {
		monitoring.WebhookDeliveries.WithLabelValues("redelivery").Inc()
	} else {
		monitoring.WebhookDeliveries.WithLabelValues("first").Inc()
	}

	status, known := eventStatus[payload.Event]
	if !known {
		h.markProcessed(auditID, "")
		respondSuccess(c, http.StatusOK, gin.H{"status": "ignored", "event": payload.Event})
		return
	}

	metadata := make(map[string]string, len(payload.Data.Metadata)+1)
	for k, v := range payload.Data.Metadata {
		metadata[k] = v
	}
	if payload.Data.Reference != "" {
		metadata["reference"] = payload.Data.Reference
	}

	ticket, err := h.reconciler.Reconcile(models.GatewayPaymentEvent{
		EventID:         eventID,
		PaymentIntentID: payload.Data.PaymentIntent,
		Status:          status,
		ChargeID:        payload.Data.ChargeID,
		Metadata:        metadata,
	})
	if err != nil {
		// Unmatched and conflicting events are final observations, not
		// transient failures: answer 200 so the gateway stops redelivering.
		var conflict *models.ConflictingStateError
		switch {
		case errors.Is(err, models.ErrUnmatchedEvent):
			h.markProcessed(auditID, err.Error())
			respondError(c, http.StatusOK, "UNMATCHED_EVENT", err.Error())
		case errors.As(err, &conflict):
			h.markProcessed(auditID, err.Error())
			respondErrorDetails(c, http.StatusOK, "CONFLICTING_TERMINAL_STATE", err.Error(), gin.H{
				"transaction_reference": conflict.TransactionReference,
				"recorded_status":       conflict.Current,
				"event_status":          conflict.Incoming,
			})
		case errors.Is(err, models.ErrInvalidInput):
			h.markProcessed(auditID, err.Error())
			respondError(c, http.StatusBadRequest, "INVALID_PAYLOAD", err.Error())
		default:
			h.markProcessed(auditID, err.Error())
			respondError(c, http.StatusInternalServerError, "STORE_ERROR", "failed to process event")
		}
		return
	}

	h.markProcessed(auditID, "")

	if ticket == nil {
		respondSuccess(c, http.StatusOK, gin.H{"status": "skipped", "event": payload.Event})
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"status":                "processed",
		"transaction_reference": ticket.TransactionReference,
		"payment_status":        ticket.PaymentStatus,
	})
}

func (h *WebhookHandler) markProcessed(auditID int, processingError string) {
	if auditID == 0 {
		return
	}
	if err := h.events.MarkProcessed(auditID, processingError); err != nil {
		log.Printf("Webhook: failed to mark event %d processed: %v", auditID, err)
	}
}

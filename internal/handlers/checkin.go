package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/middleware"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/models"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/services"
)

// CheckInHandler serves the door check-in terminals
type CheckInHandler struct {
	checkin *services.CheckInService
}

// NewCheckInHandler creates a check-in handler
func NewCheckInHandler(checkin *services.CheckInService) *CheckInHandler {
	return &CheckInHandler{checkin: checkin}
}

type checkInRequest struct {
	QRData string `json:"qr_data" binding:"required"`
}

// CheckIn godoc
// @Summary      Redeem a scanned ticket
// @Description  Validates the scanned QR payload and checks the ticket in. A ticket admits exactly one person; a second scan answers ALREADY_CHECKED_IN with the original actor and time.
// @Tags         checkin
// @Accept       json
// @Produce      json
// @Param        payload  body      checkInRequest  true  "Scanned QR data"
// @Success      200      {object}  handlers.Response
// @Failure      400      {object}  handlers.Response
// @Failure      404      {object}  handlers.Response
// @Failure      409      {object}  handlers.Response
// @Security     BearerAuth
// @Router       /checkin [post]
func (h *CheckInHandler) CheckIn(c *gin.Context) {
	staff, ok := middleware.StaffFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "NO_TOKEN", models.ErrNoToken.Error())
		return
	}

	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_INPUT", "qr_data is required")
		return
	}

	ticket, err := h.checkin.CheckIn(req.QRData, staff)
	if err != nil {
		var dup *models.AlreadyCheckedInError
		switch {
		case errors.Is(err, models.ErrInvalidQRFormat):
			respondError(c, http.StatusBadRequest, "INVALID_QR", err.Error())
		case errors.Is(err, models.ErrTicketNotFound):
			respondError(c, http.StatusNotFound, "TICKET_NOT_FOUND", err.Error())
		case errors.Is(err, models.ErrPaymentNotCompleted):
			respondError(c, http.StatusConflict, "PAYMENT_NOT_COMPLETED", err.Error())
		case errors.As(err, &dup):
			respondErrorDetails(c, http.StatusConflict, "ALREADY_CHECKED_IN", err.Error(), gin.H{
				"transaction_reference": dup.TransactionReference,
				"checked_in_by":         dup.CheckedInBy,
				"checked_in_by_name":    dup.CheckedInByName,
				"checked_in_at":         dup.CheckedInAt,
			})
		default:
			respondError(c, http.StatusInternalServerError, "STORE_ERROR", "failed to process check-in")
		}
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"ticket":     ticket.View(),
		"checked_in": true,
	})
}

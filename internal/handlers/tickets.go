package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/models"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/services"
)

// TicketHandler serves the public ticket purchase and lookup endpoints
type TicketHandler struct {
	tickets *services.TicketService
}

// NewTicketHandler creates a ticket handler
func NewTicketHandler(tickets *services.TicketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

// Purchase godoc
// @Summary      Start a ticket purchase
// @Description  Creates a pending ticket and returns the hosted checkout URL. The ticket completes when the gateway confirms payment via webhook.
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        payload  body      models.TicketCreateRequest  true  "Buyer details"
// @Success      201      {object}  handlers.Response
// @Failure      400      {object}  handlers.Response
// @Failure      502      {object}  handlers.Response
// @Router       /tickets [post]
func (h *TicketHandler) Purchase(c *gin.Context) {
	var req models.TicketCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	result, err := h.tickets.Purchase(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidInput):
			respondError(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		case errors.Is(err, models.ErrDuplicateEntry):
			respondError(c, http.StatusConflict, "DUPLICATE_ENTRY", err.Error())
		default:
			respondError(c, http.StatusBadGateway, "GATEWAY_ERROR", "failed to initialize payment")
		}
		return
	}

	respondSuccess(c, http.StatusCreated, gin.H{
		"ticket":            result.Ticket.View(),
		"authorization_url": result.AuthorizationURL,
	})
}

// Lookup godoc
// @Summary      Look up a ticket
// @Description  Returns the public view of a ticket by its transaction reference.
// @Tags         tickets
// @Produce      json
// @Param        reference  path      string  true  "Transaction reference"
// @Success      200        {object}  handlers.Response
// @Failure      404        {object}  handlers.Response
// @Router       /tickets/{reference} [get]
func (h *TicketHandler) Lookup(c *gin.Context) {
	ticket, err := h.tickets.GetByReference(c.Param("reference"))
	if err != nil {
		if errors.Is(err, models.ErrTicketNotFound) {
			respondError(c, http.StatusNotFound, "TICKET_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "STORE_ERROR", "failed to load ticket")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"ticket": ticket.View()})
}

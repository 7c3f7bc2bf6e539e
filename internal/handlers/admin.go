package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/middleware"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/models"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/repositories"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/services"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/utils"
)

// AdminHandler serves organiser-only operations
type AdminHandler struct {
	tickets   *services.TicketService
	reporting *services.ReportingService
	staff     *repositories.StaffRepository
}

// NewAdminHandler creates an admin handler
func NewAdminHandler(tickets *services.TicketService, reporting *services.ReportingService, staff *repositories.StaffRepository) *AdminHandler {
	return &AdminHandler{tickets: tickets, reporting: reporting, staff: staff}
}

// IssueTicket godoc
// @Summary      Issue a scholarship or complimentary ticket
// @Description  Creates a ticket and completes it without gateway payment. Goes through the same state machine as paid tickets.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        payload  body      models.TicketCreateRequest  true  "Attendee details"
// @Success      201      {object}  handlers.Response
// @Failure      400      {object}  handlers.Response
// @Security     BearerAuth
// @Router       /admin/tickets [post]
func (h *AdminHandler) IssueTicket(c *gin.Context) {
	staff, ok := middleware.StaffFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "NO_TOKEN", models.ErrNoToken.Error())
		return
	}

	var req models.TicketCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	ticket, err := h.tickets.IssueManual(&req, staff.ID)
	if err != nil {
		if errors.Is(err, models.ErrInvalidInput) {
			respondError(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "STORE_ERROR", "failed to issue ticket")
		return
	}

	respondSuccess(c, http.StatusCreated, gin.H{"ticket": ticket.View()})
}

// Stats godoc
// @Summary      Organiser dashboard snapshot
// @Tags         admin
// @Produce      json
// @Success      200  {object}  handlers.Response
// @Security     BearerAuth
// @Router       /admin/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.reporting.Stats()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "STORE_ERROR", "failed to load stats")
		return
	}
	respondSuccess(c, http.StatusOK, stats)
}

// Leaderboard godoc
// @Summary      Staff check-in leaderboard
// @Tags         admin
// @Produce      json
// @Success      200  {object}  handlers.Response
// @Security     BearerAuth
// @Router       /admin/checkin-leaderboard [get]
func (h *AdminHandler) Leaderboard(c *gin.Context) {
	entries, err := h.reporting.Leaderboard()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "STORE_ERROR", "failed to load leaderboard")
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"leaderboard": entries})
}

// ListStaff godoc
// @Summary      List staff accounts
// @Tags         admin
// @Produce      json
// @Success      200  {object}  handlers.Response
// @Security     BearerAuth
// @Router       /admin/staff [get]
func (h *AdminHandler) ListStaff(c *gin.Context) {
	staff, err := h.staff.List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "STORE_ERROR", "failed to list staff")
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"staff": staff})
}

// CreateStaff godoc
// @Summary      Create a staff account
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        payload  body      models.StaffCreateRequest  true  "Staff details"
// @Success      201      {object}  handlers.Response
// @Failure      400      {object}  handlers.Response
// @Failure      409      {object}  handlers.Response
// @Security     BearerAuth
// @Router       /admin/staff [post]
func (h *AdminHandler) CreateStaff(c *gin.Context) {
	var req models.StaffCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "STORE_ERROR", "failed to create staff")
		return
	}

	staff, err := h.staff.Create(&models.Staff{
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Role:         req.Role,
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, models.ErrDuplicateEntry) {
			respondError(c, http.StatusConflict, "DUPLICATE_ENTRY", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "STORE_ERROR", "failed to create staff")
		return
	}

	respondSuccess(c, http.StatusCreated, gin.H{"staff": staff})
}

type staffActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// SetStaffActive godoc
// @Summary      Activate or deactivate a staff account
// @Description  Deactivation revokes access on the next authenticated request, regardless of token expiry.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id       path      int                 true  "Staff id"
// @Param        payload  body      staffActiveRequest  true  "Active flag"
// @Success      200      {object}  handlers.Response
// @Failure      404      {object}  handlers.Response
// @Security     BearerAuth
// @Router       /admin/staff/{id}/active [patch]
func (h *AdminHandler) SetStaffActive(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_INPUT", "invalid staff id")
		return
	}

	var req staffActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_INPUT", "is_active is required")
		return
	}

	if err := h.staff.SetActive(id, *req.IsActive); err != nil {
		if errors.Is(err, models.ErrStaffNotFound) {
			respondError(c, http.StatusNotFound, "STAFF_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "STORE_ERROR", "failed to update staff")
		return
	}

	staff, err := h.staff.GetByID(id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "STORE_ERROR", "failed to load staff")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"staff": staff})
}

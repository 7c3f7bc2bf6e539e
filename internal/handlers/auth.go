package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/middleware"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/models"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/services"
)

// AuthHandler serves staff login and token verification
type AuthHandler struct {
	auth *services.AuthService
}

// NewAuthHandler creates an auth handler
func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary      Staff login
// @Description  Exchanges staff credentials for a bearer token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      loginRequest  true  "Credentials"
// @Success      200      {object}  handlers.Response
// @Failure      401      {object}  handlers.Response
// @Failure      403      {object}  handlers.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_INPUT", "email and password are required")
		return
	}

	token, staff, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidCredentials):
			respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error())
		case errors.Is(err, models.ErrAccountInactive):
			respondError(c, http.StatusForbidden, "ACCOUNT_INACTIVE", err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "STORE_ERROR", "login failed")
		}
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"token": token,
		"staff": staff,
	})
}

// Verify godoc
// @Summary      Verify a bearer token
// @Description  Returns the staff identity the presented token belongs to.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  handlers.Response
// @Failure      401  {object}  handlers.Response
// @Security     BearerAuth
// @Router       /auth/verify [get]
func (h *AuthHandler) Verify(c *gin.Context) {
	staff, ok := middleware.StaffFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "NO_TOKEN", models.ErrNoToken.Error())
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"staff": staff})
}

package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/models"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/services"
)

// staffKey is the gin context key the authenticated staff member is stored
// under.
const staffKey = "staff"

// RequireAuth authenticates the bearer token and stores the staff member in
// the request context.
func RequireAuth(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortError(c, http.StatusUnauthorized, "NO_TOKEN", models.ErrNoToken.Error())
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortError(c, http.StatusUnauthorized, "NO_TOKEN", "authorization header must be a bearer token")
			return
		}

		staff, err := auth.Authenticate(parts[1])
		if err != nil {
			switch {
			case errors.Is(err, models.ErrTokenExpired):
				abortError(c, http.StatusUnauthorized, "TOKEN_EXPIRED", err.Error())
			case errors.Is(err, models.ErrAccountInactive):
				abortError(c, http.StatusUnauthorized, "ACCOUNT_INACTIVE", err.Error())
			default:
				abortError(c, http.StatusUnauthorized, "INVALID_TOKEN", models.ErrInvalidToken.Error())
			}
			return
		}

		c.Set(staffKey, staff)
		c.Next()
	}
}

// RequireRole allows only staff with the given role past. Must run after
// RequireAuth.
func RequireRole(role models.StaffRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		staff, ok := StaffFromContext(c)
		if !ok {
			abortError(c, http.StatusUnauthorized, "NO_TOKEN", models.ErrNoToken.Error())
			return
		}

		if staff.Role != role {
			abortError(c, http.StatusForbidden, "FORBIDDEN", "insufficient role for this operation")
			return
		}

		c.Next()
	}
}

// StaffFromContext returns the authenticated staff member set by RequireAuth
func StaffFromContext(c *gin.Context) (*models.Staff, bool) {
	value, exists := c.Get(staffKey)
	if !exists {
		return nil, false
	}
	staff, ok := value.(*models.Staff)
	return staff, ok
}

func abortError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

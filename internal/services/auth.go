package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt"

	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/config"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/models"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/monitoring"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/repositories"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/utils"
)

// Claims are the JWT claims issued to staff
type Claims struct {
	StaffID int              `json:"staff_id"`
	Email   string           `json:"email"`
	Role    models.StaffRole `json:"role"`
	jwt.StandardClaims
}

// AuthService handles staff authentication and token verification
type AuthService struct {
	staff     *repositories.StaffRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates an auth service
func NewAuthService(staff *repositories.StaffRepository, cfg config.AuthConfig) *AuthService {
	return &AuthService{
		staff:     staff,
		jwtSecret: []byte(cfg.JWTSecret),
		tokenTTL:  time.Duration(cfg.TokenTTLHours) * time.Hour,
	}
}

// Login verifies staff credentials and issues a bearer token. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(email, password string) (string, *models.Staff, error) {
	staff, err := s.staff.GetByEmail(email)
	if err != nil {
		if errors.Is(err, models.ErrStaffNotFound) {
			monitoring.LoginAttempts.WithLabelValues("invalid_credentials").Inc()
			return "", nil, models.ErrInvalidCredentials
		}
		return "", nil, err
	}

	ok, err := utils.VerifyPassword(password, staff.PasswordHash)
	if err != nil {
		return "", nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		monitoring.LoginAttempts.WithLabelValues("invalid_credentials").Inc()
		return "", nil, models.ErrInvalidCredentials
	}

	if !staff.IsActive {
		monitoring.LoginAttempts.WithLabelValues("inactive").Inc()
		return "", nil, models.ErrAccountInactive
	}

	token, err := s.generateToken(staff)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	if err := s.staff.UpdateLastLogin(staff.ID); err != nil {
		// Login still succeeds, the timestamp is informational
		log.Printf("Auth: failed to update last login for staff %d: %v", staff.ID, err)
	}

	monitoring.LoginAttempts.WithLabelValues("success").Inc()
	return token, staff, nil
}

// Authenticate verifies a bearer token and returns the staff member it was
// issued to. The staff row is re-fetched on every call so deactivating an
// account revokes access immediately, without waiting for token expiry.
func (s *AuthService) Authenticate(tokenString string) (*models.Staff, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, models.ErrTokenExpired
		}
		return nil, models.ErrInvalidToken
	}

	if !token.Valid {
		return nil, models.ErrInvalidToken
	}

	staff, err := s.staff.GetByID(claims.StaffID)
	if err != nil {
		if errors.Is(err, models.ErrStaffNotFound) {
			return nil, models.ErrInvalidToken
		}
		return nil, err
	}

	if !staff.IsActive {
		return nil, models.ErrAccountInactive
	}

	return staff, nil
}

func (s *AuthService) generateToken(staff *models.Staff) (string, error) {
	now := time.Now()
	claims := Claims{
		StaffID: staff.ID,
		Email:   staff.Email,
		Role:    staff.Role,
		StandardClaims: jwt.StandardClaims{
			Subject:   fmt.Sprintf("%d", staff.ID),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.tokenTTL).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

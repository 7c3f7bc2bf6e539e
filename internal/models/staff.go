package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// StaffRole represents the role of a staff member
type StaffRole string

const (
	StaffRoleAdmin     StaffRole = "admin"
	StaffRoleFrontdesk StaffRole = "frontdesk"
	StaffRoleSecurity  StaffRole = "security"
)

// Staff represents a staff member allowed to operate check-in terminals
type Staff struct {
	ID           int        `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FullName     string     `json:"full_name" db:"full_name"`
	Role         StaffRole  `json:"role" db:"role"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty" db:"last_login"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// StaffCreateRequest represents the data needed to create a staff account
type StaffCreateRequest struct {
	Email    string    `json:"email" binding:"required"`
	Password string    `json:"password" binding:"required"`
	FullName string    `json:"full_name" binding:"required"`
	Role     StaffRole `json:"role" binding:"required"`
}

var staffEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Validate validates staff creation data
func (req *StaffCreateRequest) Validate() error {
	if req.Email == "" {
		return errors.New("email is required")
	}

	if !staffEmailRegex.MatchString(req.Email) {
		return errors.New("invalid email format")
	}

	if len(req.Password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}

	if len(req.Password) > 128 {
		return errors.New("password must be less than 128 characters")
	}

	if strings.TrimSpace(req.FullName) == "" {
		return errors.New("full name is required")
	}

	if err := validateStaffRole(req.Role); err != nil {
		return err
	}

	return nil
}

func validateStaffRole(role StaffRole) error {
	switch role {
	case StaffRoleAdmin, StaffRoleFrontdesk, StaffRoleSecurity:
		return nil
	default:
		return errors.New("invalid staff role")
	}
}

// IsAdmin returns true if the staff member has the admin role
func (s *Staff) IsAdmin() bool {
	return s.Role == StaffRoleAdmin
}

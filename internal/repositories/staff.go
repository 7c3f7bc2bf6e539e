package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/models"
)

// StaffRepository handles staff account data operations
type StaffRepository struct {
	db *sql.DB
}

// NewStaffRepository creates a new staff repository
func NewStaffRepository(db *sql.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

const staffColumns = `id, email, password_hash, full_name, role, is_active, last_login, created_at`

// Create inserts a new staff account
func (r *StaffRepository) Create(s *models.Staff) (*models.Staff, error) {
	result, err := r.db.Exec(`
		INSERT INTO staff (email, password_hash, full_name, role, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		strings.ToLower(s.Email),
		s.PasswordHash,
		s.FullName,
		s.Role,
		s.IsActive,
		time.Now().UTC(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, fmt.Errorf("%w: staff email already registered", models.ErrDuplicateEntry)
		}
		return nil, fmt.Errorf("failed to create staff: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get inserted staff id: %w", err)
	}

	return r.GetByID(int(id))
}

// GetByID retrieves a staff account by id
func (r *StaffRepository) GetByID(id int) (*models.Staff, error) {
	row := r.db.QueryRow(`SELECT `+staffColumns+` FROM staff WHERE id = ?`, id)
	return r.scanStaff(row)
}

// GetByEmail retrieves a staff account by email
func (r *StaffRepository) GetByEmail(email string) (*models.Staff, error) {
	row := r.db.QueryRow(`SELECT `+staffColumns+` FROM staff WHERE email = ?`, strings.ToLower(email))
	return r.scanStaff(row)
}

// UpdateLastLogin records a successful login
func (r *StaffRepository) UpdateLastLogin(id int) error {
	_, err := r.db.Exec(`UPDATE staff SET last_login = ? WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// SetActive enables or disables a staff account. Disabling takes effect on
// the next authenticated request, not on token expiry.
func (r *StaffRepository) SetActive(id int, active bool) error {
	result, err := r.db.Exec(`UPDATE staff SET is_active = ? WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("failed to update staff active flag: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrStaffNotFound
	}

	return nil
}

// List returns all staff accounts ordered by creation
func (r *StaffRepository) List() ([]*models.Staff, error) {
	rows, err := r.db.Query(`SELECT ` + staffColumns + ` FROM staff ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	defer rows.Close()

	var staff []*models.Staff
	for rows.Next() {
		s, err := r.scanStaff(rows)
		if err != nil {
			return nil, err
		}
		staff = append(staff, s)
	}

	return staff, rows.Err()
}

func (r *StaffRepository) scanStaff(row rowScanner) (*models.Staff, error) {
	s := &models.Staff{}
	var lastLogin sql.NullTime

	err := row.Scan(
		&s.ID,
		&s.Email,
		&s.PasswordHash,
		&s.FullName,
		&s.Role,
		&s.IsActive,
		&lastLogin,
		&s.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to scan staff: %w", err)
	}

	if lastLogin.Valid {
		t := lastLogin.Time
		s.LastLogin = &t
	}

	return s, nil
}

package postgres

import (
	"database/sql"
	"fmt"

	"github.com/frahmantamala/timesheet-management/internal/auth"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

// GetByEmail returns the user and stored password hash regardless of active
// state; the service decides how inactive users are rejected.
func (r *Repository) GetByEmail(email string) (*auth.User, string, error) {
	var user auth.User
	var passwordHash string

	query := `SELECT id, email, name, role, department, is_active, password_hash, created_at, updated_at
	          FROM users WHERE email = ?`

	row := r.db.Raw(query, email).Row()
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.Department,
		&user.IsActive, &passwordHash, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, "", fmt.Errorf("user not found")
		}
		return nil, "", err
	}
	return &user, passwordHash, nil
}

func (r *Repository) GetByID(userID int64) (*auth.User, error) {
	var user auth.User

	query := `SELECT id, email, name, role, department, is_active, created_at, updated_at
	          FROM users WHERE id = ?`

	row := r.db.Raw(query, userID).Row()
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.Department,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) UpdatePassword(userID int64, passwordHash string) error {
	result := r.db.Exec(`UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		passwordHash, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

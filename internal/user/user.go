package user

import (
	"time"

	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
)

// User is the managed account row. The password hash never leaves the
// backend.
type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	Role         auth.Role `gorm:"column:role;not null" json:"role"`
	Department   string    `gorm:"column:department" json:"department"`
	IsActive     bool      `gorm:"column:is_active;default:true" json:"isActive"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// ComplianceRow is one roster line: a user joined with their most recent
// entry date, if any.
type ComplianceRow struct {
	UserID        int64               `json:"userId"`
	Name          string              `json:"name"`
	Email         string              `json:"email"`
	Department    string              `json:"department"`
	LastEntryDate *timesheet.DateOnly `json:"lastEntryDate"`
	EntryCount    int64               `json:"entryCount"`
}

package user

import (
	"strings"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/auth"
)

type CreateUserDTO struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

func (d *CreateUserDTO) Validate() *internal.AppError {
	d.Email = strings.TrimSpace(strings.ToLower(d.Email))
	d.Name = strings.TrimSpace(d.Name)

	if d.Email == "" || !strings.Contains(d.Email, "@") {
		return internal.NewValidationFieldError("email", "a valid email is required", internal.ErrCodeValidationFailed)
	}
	if d.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if !auth.Role(d.Role).Valid() {
		return internal.NewValidationFieldError("role", "role must be ADMIN, SUPERVISOR or STAFF", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(d.Department) == "" {
		return internal.NewValidationFieldError("department", "department is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateUserDTO carries a partial profile change; nil fields keep their
// current value.
type UpdateUserDTO struct {
	Name       *string `json:"name"`
	Role       *string `json:"role"`
	Department *string `json:"department"`
	IsActive   *bool   `json:"isActive"`
}

func (d *UpdateUserDTO) Validate() *internal.AppError {
	if d.Name != nil && strings.TrimSpace(*d.Name) == "" {
		return internal.NewValidationFieldError("name", "name cannot be blank", internal.ErrCodeValidationFailed)
	}
	if d.Role != nil && !auth.Role(*d.Role).Valid() {
		return internal.NewValidationFieldError("role", "role must be ADMIN, SUPERVISOR or STAFF", internal.ErrCodeValidationFailed)
	}
	if d.Department != nil && strings.TrimSpace(*d.Department) == "" {
		return internal.NewValidationFieldError("department", "department cannot be blank", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UsersResponse struct {
	Users []*User `json:"users"`
}

type ComplianceResponse struct {
	Users []ComplianceRow `json:"users"`
}

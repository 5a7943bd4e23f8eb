package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/scope"
)

type RepositoryAPI interface {
	List(sc scope.Scope) ([]*User, error)
	GetByID(id int64) (*User, error)
	GetByEmail(email string) (*User, error)
	Create(u *User) error
	Update(u *User) error
	Deactivate(id int64) error
	ComplianceRoster(sc scope.Scope) ([]ComplianceRow, error)
}

// Mailer delivers the welcome email with generated credentials.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

type Service struct {
	repo       RepositoryAPI
	mailer     Mailer
	logger     *slog.Logger
	bcryptCost int
}

func NewService(repo RepositoryAPI, mailer Mailer, logger *slog.Logger, bcryptCost int) *Service {
	return &Service{
		repo:       repo,
		mailer:     mailer,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

// List returns the users the caller may see: supervisors their own
// department, admins everyone. Staff are rejected.
func (s *Service) List(caller *auth.User) ([]*User, error) {
	if !caller.IsAdmin() && !caller.IsSupervisor() {
		return nil, internal.ErrUnauthorizedAccess
	}

	sc, err := scope.Resolve(caller, "")
	if err != nil {
		return nil, err
	}

	users, err := s.repo.List(sc)
	if err != nil {
		s.logger.Error("failed to list users", "error", err, "caller_id", caller.ID)
		return nil, err
	}
	if users == nil {
		users = []*User{}
	}
	return users, nil
}

// Get returns a single user. Callers always see themselves; otherwise the
// scope decides.
func (s *Service) Get(caller *auth.User, id int64) (*User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get user", "error", err, "user_id", id)
		return nil, err
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}

	if caller.ID == id {
		return u, nil
	}

	sc, err := scope.Resolve(caller, "")
	if err != nil {
		return nil, err
	}
	if !sc.MatchesUser(u.ID, u.Department) {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

// Create provisions an account with a generated password and mails the
// credentials. Admin only; enforced at the route level too.
func (s *Service) Create(ctx context.Context, caller *auth.User, dto CreateUserDTO) (*User, error) {
	if !caller.IsAdmin() {
		return nil, internal.ErrUnauthorizedAccess
	}
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	existing, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		s.logger.Error("failed to check email", "error", err, "email", dto.Email)
		return nil, err
	}
	if existing != nil {
		return nil, internal.NewConflictError("Email already in use", internal.ErrCodeDuplicateEmail)
	}

	password, err := auth.GeneratePassword(12)
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	u := &User{
		Email:        dto.Email,
		Name:         dto.Name,
		PasswordHash: hash,
		Role:         auth.Role(dto.Role),
		Department:   strings.TrimSpace(dto.Department),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(u); err != nil {
		s.logger.Error("failed to create user", "error", err, "email", dto.Email)
		return nil, err
	}

	s.logger.Info("user created", "user_id", u.ID, "email", u.Email, "created_by", caller.ID)

	if s.mailer != nil {
		body := fmt.Sprintf("Hello %s,\n\nAn account has been created for you.\n\nEmail: %s\nPassword: %s\n\nPlease change it after signing in.", u.Name, u.Email, password)
		if err := s.mailer.Send(ctx, []string{u.Email}, "Welcome to the timesheet system", body); err != nil {
			return u, fmt.Errorf("user created but mail delivery failed: %w", err)
		}
	}

	return u, nil
}

// Update applies a partial profile change. Admin only.
func (s *Service) Update(caller *auth.User, id int64, dto UpdateUserDTO) (*User, error) {
	if !caller.IsAdmin() {
		return nil, internal.ErrUnauthorizedAccess
	}
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get user", "error", err, "user_id", id)
		return nil, err
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}

	if dto.Name != nil {
		u.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.Role != nil {
		u.Role = auth.Role(*dto.Role)
	}
	if dto.Department != nil {
		u.Department = strings.TrimSpace(*dto.Department)
	}
	if dto.IsActive != nil {
		u.IsActive = *dto.IsActive
	}
	u.UpdatedAt = time.Now()

	if err := s.repo.Update(u); err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return nil, err
	}
	return u, nil
}

// Deactivate soft deletes the account. Admins cannot deactivate
// themselves.
func (s *Service) Deactivate(caller *auth.User, id int64) error {
	if !caller.IsAdmin() {
		return internal.ErrUnauthorizedAccess
	}
	if caller.ID == id {
		return internal.NewValidationError("cannot deactivate your own account", internal.ErrCodeValidationFailed)
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get user", "error", err, "user_id", id)
		return err
	}
	if u == nil {
		return internal.ErrUserNotFound
	}

	if err := s.repo.Deactivate(id); err != nil {
		s.logger.Error("failed to deactivate user", "error", err, "user_id", id)
		return err
	}

	s.logger.Info("user deactivated", "user_id", id, "deactivated_by", caller.ID)
	return nil
}

// Compliance returns the roster of visible users with their last entry
// date. Admin and supervisor only.
func (s *Service) Compliance(caller *auth.User) ([]ComplianceRow, error) {
	if !caller.IsAdmin() && !caller.IsSupervisor() {
		return nil, internal.ErrUnauthorizedAccess
	}

	sc, err := scope.Resolve(caller, "")
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ComplianceRoster(sc)
	if err != nil {
		s.logger.Error("failed to build compliance roster", "error", err, "caller_id", caller.ID)
		return nil, err
	}
	if rows == nil {
		rows = []ComplianceRow{}
	}
	return rows, nil
}

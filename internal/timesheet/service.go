package timesheet

import (
	"log/slog"
	"time"

	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/scope"
)

// Repository defines the data access methods for timesheet entries. Create
// and Update run the conflict scan and the write in one transaction with the
// owner's same-day rows locked, so concurrent writes serialize.
type Repository interface {
	List(s scope.Scope, q ListQuery) ([]*Entry, int64, error)
	GetByID(s scope.Scope, id int64) (*Entry, error)
	Create(entry *Entry) error
	Update(entry *Entry) error
	Delete(id, userID int64) error
}

// Service handles timesheet entry business logic
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// List returns the caller's visible entries, filtered and paginated.
func (s *Service) List(user *auth.User, q ListQuery) (*ListResponse, error) {
	sc, err := scope.Resolve(user, q.Department)
	if err != nil {
		s.logger.Warn("list entries denied", "error", err, "user_id", user.ID, "role", user.Role)
		return nil, err
	}

	q.Normalize()
	if !user.IsAdmin() {
		// non-admin filters on other people never apply
		q.Department = ""
		q.UserEmail = ""
	}

	entries, total, err := s.repo.List(sc, q)
	if err != nil {
		s.logger.Error("failed to list entries", "error", err, "user_id", user.ID)
		return nil, err
	}

	return &ListResponse{
		Entries:    entries,
		Pagination: NewPagination(q.Page, q.Limit, total),
	}, nil
}

// GetByID returns one entry when it is inside the caller's scope. Rows out
// of scope are indistinguishable from missing rows.
func (s *Service) GetByID(user *auth.User, id int64) (*Entry, error) {
	sc, err := scope.Resolve(user, "")
	if err != nil {
		return nil, err
	}

	entry, err := s.repo.GetByID(sc, id)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Create validates and stores a new entry for the caller. The owner's
// department is snapshotted onto the row and the total is derived from the
// times.
func (s *Service) Create(user *auth.User, dto CreateEntryDTO) (*Entry, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("entry validation failed", "error", err, "user_id", user.ID)
		return nil, err
	}

	if appErr := ValidateTimes(dto.StartTime, dto.EndTime); appErr != nil {
		return nil, appErr
	}

	now := time.Now()
	entry := &Entry{
		UserID:           user.ID,
		Date:             dto.Date,
		ClientFileNumber: dto.ClientFileNumber,
		Task:             dto.Task,
		Activity:         dto.Activity,
		Priority:         dto.Priority,
		StartTime:        dto.StartTime,
		EndTime:          dto.EndTime,
		Status:           dto.Status,
		Billable:         dto.Billable,
		Comments:         dto.Comments,
		Department:       user.Department,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	entry.TotalHours = entry.Hours()

	if err := s.repo.Create(entry); err != nil {
		s.logger.Error("failed to create entry", "error", err, "user_id", user.ID, "date", dto.Date.String())
		return nil, err
	}

	s.logger.Info("entry created",
		"entry_id", entry.ID,
		"user_id", user.ID,
		"date", entry.Date.String(),
		"hours", entry.TotalHours)

	return entry, nil
}

// Update replaces an entry's fields after re-running the conflict check,
// excluding the entry itself from the overlap scan. Only the owner may
// update; the department snapshot is kept from the original row.
func (s *Service) Update(user *auth.User, id int64, dto UpdateEntryDTO) (*Entry, error) {
	sc, err := scope.Resolve(user, "")
	if err != nil {
		return nil, err
	}

	entry, err := s.repo.GetByID(sc, id)
	if err != nil {
		return nil, err
	}

	// Supervisors and admins can see the row but only the owner may change
	// it; everyone else gets the same answer as for a missing row.
	if entry.UserID != user.ID {
		s.logger.Warn("update denied for non-owner", "entry_id", id, "user_id", user.ID, "owner_id", entry.UserID)
		return nil, ErrEntryNotFound
	}

	if err := dto.Validate(); err != nil {
		s.logger.Error("entry validation failed", "error", err, "entry_id", id)
		return nil, err
	}

	if appErr := ValidateTimes(dto.StartTime, dto.EndTime); appErr != nil {
		return nil, appErr
	}

	entry.Date = dto.Date
	entry.ClientFileNumber = dto.ClientFileNumber
	entry.Task = dto.Task
	entry.Activity = dto.Activity
	entry.Priority = dto.Priority
	entry.StartTime = dto.StartTime
	entry.EndTime = dto.EndTime
	entry.Status = dto.Status
	entry.Billable = dto.Billable
	entry.Comments = dto.Comments
	entry.TotalHours = entry.Hours()
	entry.UpdatedAt = time.Now()

	if err := s.repo.Update(entry); err != nil {
		s.logger.Error("failed to update entry", "error", err, "entry_id", id)
		return nil, err
	}

	s.logger.Info("entry updated", "entry_id", id, "user_id", user.ID)

	return entry, nil
}

// Delete removes an entry. Only the owner may delete; rows owned by others
// look like missing rows.
func (s *Service) Delete(user *auth.User, id int64) error {
	if err := s.repo.Delete(id, user.ID); err != nil {
		s.logger.Error("failed to delete entry", "error", err, "entry_id", id, "user_id", user.ID)
		return err
	}

	s.logger.Info("entry deleted", "entry_id", id, "user_id", user.ID)
	return nil
}

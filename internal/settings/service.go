package settings

import (
	"log/slog"
	"time"
)

type RepositoryAPI interface {
	GetByUserID(userID int64) (*UserSettings, error)
	Upsert(s *UserSettings) error
	DeleteByUserID(userID int64) error
	ListWeeklyReminderUserIDs() ([]int64, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Get returns the stored settings, or the defaults when the user has
// never written any. Defaults are not persisted by reading.
func (s *Service) Get(userID int64) (*UserSettings, error) {
	stored, err := s.repo.GetByUserID(userID)
	if err != nil {
		s.logger.Error("failed to get settings", "error", err, "user_id", userID)
		return nil, err
	}
	if stored == nil {
		return Defaults(userID), nil
	}
	return stored, nil
}

// Update merges the partial change onto current settings and upserts the
// row, creating it on first write.
func (s *Service) Update(userID int64, dto UpdateSettingsDTO) (*UserSettings, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	current, err := s.Get(userID)
	if err != nil {
		return nil, err
	}

	if appErr := dto.Apply(current); appErr != nil {
		return nil, appErr
	}

	current.UpdatedAt = time.Now()
	if err := s.repo.Upsert(current); err != nil {
		s.logger.Error("failed to save settings", "error", err, "user_id", userID)
		return nil, err
	}
	return current, nil
}

// Reset deletes the row so the user falls back to defaults.
func (s *Service) Reset(userID int64) (*UserSettings, error) {
	if err := s.repo.DeleteByUserID(userID); err != nil {
		s.logger.Error("failed to reset settings", "error", err, "user_id", userID)
		return nil, err
	}
	return Defaults(userID), nil
}

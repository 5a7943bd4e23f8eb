package postgres

import (
	"github.com/frahmantamala/timesheet-management/internal/settings"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) settings.RepositoryAPI {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) GetByUserID(userID int64) (*settings.UserSettings, error) {
	var s settings.UserSettings
	err := r.db.Where("user_id = ?", userID).First(&s).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SettingsRepository) Upsert(s *settings.UserSettings) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"theme", "density", "workday_start", "workday_end",
			"remember_filters", "weekly_reminder", "updated_at",
		}),
	}).Create(s).Error
}

func (r *SettingsRepository) DeleteByUserID(userID int64) error {
	return r.db.Where("user_id = ?", userID).Delete(&settings.UserSettings{}).Error
}

// ListWeeklyReminderUserIDs feeds the reminder fan-out in the worker.
func (r *SettingsRepository) ListWeeklyReminderUserIDs() ([]int64, error) {
	var ids []int64
	err := r.db.Model(&settings.UserSettings{}).
		Where("weekly_reminder = ?", true).
		Pluck("user_id", &ids).Error
	return ids, err
}

package settings

import (
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
)

const (
	ThemeDark  = "dark"
	ThemeLight = "light"

	DensityComfortable = "comfortable"
	DensityCompact     = "compact"
)

// UserSettings is the per-user preference row, created lazily on first
// write. Absence means defaults.
type UserSettings struct {
	ID              int64               `gorm:"primaryKey" json:"-"`
	UserID          int64               `gorm:"column:user_id;uniqueIndex;not null" json:"userId"`
	Theme           string              `gorm:"column:theme" json:"theme"`
	Density         string              `gorm:"column:density" json:"density"`
	WorkdayStart    timesheet.TimeOfDay `gorm:"column:workday_start" json:"workdayStart"`
	WorkdayEnd      timesheet.TimeOfDay `gorm:"column:workday_end" json:"workdayEnd"`
	RememberFilters bool                `gorm:"column:remember_filters" json:"rememberFilters"`
	WeeklyReminder  bool                `gorm:"column:weekly_reminder" json:"weeklyReminder"`
	CreatedAt       time.Time           `gorm:"column:created_at" json:"-"`
	UpdatedAt       time.Time           `gorm:"column:updated_at" json:"-"`
}

func (UserSettings) TableName() string {
	return "user_settings"
}

// Defaults returns the settings every user starts from.
func Defaults(userID int64) *UserSettings {
	return &UserSettings{
		UserID:          userID,
		Theme:           ThemeDark,
		Density:         DensityComfortable,
		WorkdayStart:    timesheet.NewTimeOfDay(8, 0),
		WorkdayEnd:      timesheet.NewTimeOfDay(17, 0),
		RememberFilters: true,
		WeeklyReminder:  false,
	}
}

// UpdateSettingsDTO carries a partial change; nil fields keep their
// current value.
type UpdateSettingsDTO struct {
	Theme           *string `json:"theme"`
	Density         *string `json:"density"`
	WorkdayStart    *string `json:"workdayStart"`
	WorkdayEnd      *string `json:"workdayEnd"`
	RememberFilters *bool   `json:"rememberFilters"`
	WeeklyReminder  *bool   `json:"weeklyReminder"`
}

func (d *UpdateSettingsDTO) Validate() *internal.AppError {
	if d.Theme != nil && *d.Theme != ThemeDark && *d.Theme != ThemeLight {
		return internal.NewValidationFieldError("theme", "theme must be dark or light", internal.ErrCodeValidationFailed)
	}
	if d.Density != nil && *d.Density != DensityComfortable && *d.Density != DensityCompact {
		return internal.NewValidationFieldError("density", "density must be comfortable or compact", internal.ErrCodeValidationFailed)
	}
	if d.WorkdayStart != nil {
		if _, err := timesheet.ParseTimeOfDay(*d.WorkdayStart); err != nil {
			return internal.NewValidationFieldError("workdayStart", "workdayStart must be HH:MM", internal.ErrCodeValidationFailed)
		}
	}
	if d.WorkdayEnd != nil {
		if _, err := timesheet.ParseTimeOfDay(*d.WorkdayEnd); err != nil {
			return internal.NewValidationFieldError("workdayEnd", "workdayEnd must be HH:MM", internal.ErrCodeValidationFailed)
		}
	}
	return nil
}

// Apply merges the partial change onto the settings and rejects an
// inverted workday window.
func (d *UpdateSettingsDTO) Apply(s *UserSettings) *internal.AppError {
	if d.Theme != nil {
		s.Theme = *d.Theme
	}
	if d.Density != nil {
		s.Density = *d.Density
	}
	if d.WorkdayStart != nil {
		t, _ := timesheet.ParseTimeOfDay(*d.WorkdayStart)
		s.WorkdayStart = t
	}
	if d.WorkdayEnd != nil {
		t, _ := timesheet.ParseTimeOfDay(*d.WorkdayEnd)
		s.WorkdayEnd = t
	}
	if d.RememberFilters != nil {
		s.RememberFilters = *d.RememberFilters
	}
	if d.WeeklyReminder != nil {
		s.WeeklyReminder = *d.WeeklyReminder
	}
	if s.WorkdayStart >= s.WorkdayEnd {
		return internal.NewValidationError("workday start must be before workday end", internal.ErrCodeInvalidTimeRange)
	}
	return nil
}

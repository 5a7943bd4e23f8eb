package postgres

import (
	"github.com/frahmantamala/timesheet-management/internal/analytics"
	"github.com/frahmantamala/timesheet-management/internal/scope"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	"gorm.io/gorm"
)

// AnalyticsRepository reads the flattened entry/owner rows the engine
// aggregates.
type AnalyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) analytics.Repository {
	return &AnalyticsRepository{db: db}
}

func (r *AnalyticsRepository) FetchRows(s scope.Scope, start, end timesheet.DateOnly) ([]analytics.Row, error) {
	var rows []analytics.Row

	q := r.db.Table("timesheet_entries").
		Select(`timesheet_entries.id AS entry_id,
			timesheet_entries.user_id,
			users.name AS user_name,
			users.email AS user_email,
			timesheet_entries.department,
			timesheet_entries.date,
			timesheet_entries.client_file_number,
			timesheet_entries.task,
			timesheet_entries.activity,
			timesheet_entries.priority,
			timesheet_entries.start_time,
			timesheet_entries.end_time,
			timesheet_entries.total_hours AS hours,
			timesheet_entries.status,
			timesheet_entries.billable,
			timesheet_entries.comments`).
		Joins("JOIN users ON users.id = timesheet_entries.user_id").
		Where("timesheet_entries.date >= ? AND timesheet_entries.date <= ?", start.String(), end.String()).
		Order("timesheet_entries.date ASC, timesheet_entries.start_time ASC")

	q = s.ApplyEntries(q)

	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

package report

import (
	"encoding/json"
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
)

// Schedule is how often a report is delivered to its recipients. Empty
// means on demand only.
type Schedule string

const (
	ScheduleNone      Schedule = ""
	ScheduleDaily     Schedule = "daily"
	ScheduleWeekly    Schedule = "weekly"
	ScheduleMonthly   Schedule = "monthly"
	ScheduleQuarterly Schedule = "quarterly"
)

func ParseSchedule(s string) (Schedule, *internal.AppError) {
	switch Schedule(s) {
	case ScheduleNone, ScheduleDaily, ScheduleWeekly, ScheduleMonthly, ScheduleQuarterly:
		return Schedule(s), nil
	}
	return "", internal.NewValidationError("schedule must be daily, weekly, monthly or quarterly", internal.ErrCodeInvalidSchedule)
}

// NextRun computes the next delivery after the given instant.
func (s Schedule) NextRun(from time.Time) time.Time {
	switch s {
	case ScheduleDaily:
		return from.AddDate(0, 0, 1)
	case ScheduleWeekly:
		return from.AddDate(0, 0, 7)
	case ScheduleMonthly:
		return from.AddDate(0, 1, 0)
	case ScheduleQuarterly:
		return from.AddDate(0, 3, 0)
	default:
		return time.Time{}
	}
}

// CustomReport is a saved report definition. Filters, columns and
// recipients are stored as raw JSON text so definitions survive schema
// drift in the frontend.
type CustomReport struct {
	ID          int64      `gorm:"primaryKey" json:"id"`
	OwnerID     int64      `gorm:"column:owner_id;index;not null" json:"ownerId"`
	Name        string     `gorm:"column:name;not null" json:"name"`
	Description string     `gorm:"column:description" json:"description"`
	Filters     string     `gorm:"column:filters" json:"-"`
	Columns     string     `gorm:"column:columns" json:"-"`
	Recipients  string     `gorm:"column:recipients" json:"-"`
	Schedule    Schedule   `gorm:"column:schedule" json:"schedule"`
	LastRunAt   *time.Time `gorm:"column:last_run_at" json:"lastRunAt"`
	NextRunAt   *time.Time `gorm:"column:next_run_at" json:"nextRunAt"`
	CreatedAt   time.Time  `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"column:updated_at" json:"updatedAt"`
}

func (CustomReport) TableName() string {
	return "custom_reports"
}

// Filters is the saved query shape merged into every run of the report.
type Filters struct {
	StartDate  string `json:"startDate,omitempty"`
	EndDate    string `json:"endDate,omitempty"`
	Department string `json:"department,omitempty"`
	Status     string `json:"status,omitempty"`
	Priority   string `json:"priority,omitempty"`
	Billable   *bool  `json:"billable,omitempty"`
}

func (r *CustomReport) ParseFilters() (Filters, error) {
	var f Filters
	if r.Filters == "" {
		return f, nil
	}
	err := json.Unmarshal([]byte(r.Filters), &f)
	return f, err
}

func (r *CustomReport) ParseColumns() []string {
	var cols []string
	if r.Columns == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(r.Columns), &cols); err != nil {
		return nil
	}
	return cols
}

func (r *CustomReport) ParseRecipients() []string {
	var to []string
	if r.Recipients == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(r.Recipients), &to); err != nil {
		return nil
	}
	return to
}

// MarshalJSON flattens the stored JSON columns back into structured
// fields for API responses.
func (r *CustomReport) MarshalJSON() ([]byte, error) {
	type alias CustomReport
	filters, _ := r.ParseFilters()
	return json.Marshal(struct {
		*alias
		Filters    Filters  `json:"filters"`
		Columns    []string `json:"columns"`
		Recipients []string `json:"recipients"`
	}{
		alias:      (*alias)(r),
		Filters:    filters,
		Columns:    r.ParseColumns(),
		Recipients: r.ParseRecipients(),
	})
}

package timesheet

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateOnly is a calendar date serialized as "2006-01-02".
type DateOnly struct {
	time.Time
}

const dateOnlyLayout = "2006-01-02"

func NewDateOnly(year int, month time.Month, day int) DateOnly {
	return DateOnly{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDateOnly(s string) (DateOnly, error) {
	t, err := time.Parse(dateOnlyLayout, s)
	if err != nil {
		return DateOnly{}, err
	}
	return DateOnly{t}, nil
}

func (d DateOnly) String() string {
	return d.Format(dateOnlyLayout)
}

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	parsed, err := ParseDateOnly(s)
	if err != nil {
		return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	*d = parsed
	return nil
}

func (d DateOnly) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *DateOnly) Scan(value interface{}) error {
	switch v := value.(type) {
	case time.Time:
		d.Time = v
		return nil
	case string:
		parsed, err := ParseDateOnly(v[:10])
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	case nil:
		return nil
	default:
		return fmt.Errorf("cannot scan %T into DateOnly", value)
	}
}

// TimeOfDay is a wall-clock time serialized as "15:04", stored as minutes
// since midnight.
type TimeOfDay int

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return NewTimeOfDay(t.Hour(), t.Minute()), nil
}

func (t TimeOfDay) Hour() int    { return int(t) / 60 }
func (t TimeOfDay) Minute() int  { return int(t) % 60 }
func (t TimeOfDay) Minutes() int { return int(t) }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	*t = parsed
	return nil
}

func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

func (t *TimeOfDay) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		if len(v) > 5 {
			v = v[:5]
		}
		parsed, err := ParseTimeOfDay(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case []byte:
		return t.Scan(string(v))
	case time.Time:
		*t = NewTimeOfDay(v.Hour(), v.Minute())
		return nil
	case nil:
		return nil
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", value)
	}
}

// Entry is a single timesheet row. Department is snapshotted from the owner
// at write time so reporting survives user reassignment.
type Entry struct {
	ID               int64     `json:"id" gorm:"primaryKey"`
	UserID           int64     `json:"userId" gorm:"column:user_id;not null"`
	Date             DateOnly  `json:"date" gorm:"column:date;type:date;not null"`
	ClientFileNumber string    `json:"clientFileNumber" gorm:"column:client_file_number"`
	Task             string    `json:"task" gorm:"column:task;not null"`
	Activity         string    `json:"activity" gorm:"column:activity"`
	Priority         string    `json:"priority" gorm:"column:priority;default:Medium"`
	StartTime        TimeOfDay `json:"startTime" gorm:"column:start_time;not null"`
	EndTime          TimeOfDay `json:"endTime" gorm:"column:end_time;not null"`
	TotalHours       float64   `json:"totalHours" gorm:"column:total_hours"`
	Status           string    `json:"status" gorm:"column:status;default:Not Started"`
	Billable         bool      `json:"billable" gorm:"column:billable;default:false"`
	Comments         string    `json:"comments" gorm:"column:comments"`
	Department       string    `json:"department" gorm:"column:department"`
	CreatedAt        time.Time `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt        time.Time `json:"updatedAt" gorm:"column:updated_at"`
}

func (Entry) TableName() string {
	return "timesheet_entries"
}

// Duration returns the worked time. Callers must have validated the range.
func (e *Entry) Duration() time.Duration {
	return time.Duration(e.EndTime.Minutes()-e.StartTime.Minutes()) * time.Minute
}

// Hours derives the decimal hour count from the times; stored totals are
// never trusted from input.
func (e *Entry) Hours() float64 {
	return float64(e.EndTime.Minutes()-e.StartTime.Minutes()) / 60.0
}

const (
	StatusNotStarted = "Not Started"
	StatusCarriedOut = "Carried Out"
	StatusCompleted  = "Completed"

	PriorityLow      = "Low"
	PriorityMedium   = "Medium"
	PriorityHigh     = "High"
	PriorityCritical = "Critical"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusNotStarted, StatusCarriedOut, StatusCompleted:
		return true
	}
	return false
}

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// sortColumns whitelists the sortable columns for entry listings.
var sortColumns = map[string]string{
	"date":             "date",
	"startTime":        "start_time",
	"endTime":          "end_time",
	"totalHours":       "total_hours",
	"status":           "status",
	"priority":         "priority",
	"task":             "task",
	"clientFileNumber": "client_file_number",
	"createdAt":        "created_at",
}

// SortColumn maps an API sort key to its column, defaulting to date.
func SortColumn(key string) string {
	if col, ok := sortColumns[key]; ok {
		return col
	}
	return "date"
}

// ErrEntryNotFound covers both missing rows and rows the caller may not
// touch; the two are indistinguishable to clients.
var ErrEntryNotFound = errors.New("timesheet entry not found")

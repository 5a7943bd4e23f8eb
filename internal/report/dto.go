package report

import (
	"encoding/json"
	"strings"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
)

type SaveReportDTO struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Filters     Filters  `json:"filters"`
	Columns     []string `json:"columns"`
	Recipients  []string `json:"recipients"`
	Schedule    string   `json:"schedule"`
}

func (d *SaveReportDTO) Validate() *internal.AppError {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if _, appErr := ParseSchedule(d.Schedule); appErr != nil {
		return appErr
	}
	if d.Filters.StartDate != "" {
		if _, err := timesheet.ParseDateOnly(d.Filters.StartDate); err != nil {
			return internal.NewValidationFieldError("filters.startDate", "startDate must be YYYY-MM-DD", internal.ErrCodeInvalidDate)
		}
	}
	if d.Filters.EndDate != "" {
		if _, err := timesheet.ParseDateOnly(d.Filters.EndDate); err != nil {
			return internal.NewValidationFieldError("filters.endDate", "endDate must be YYYY-MM-DD", internal.ErrCodeInvalidDate)
		}
	}
	if d.Filters.Status != "" && !timesheet.ValidStatus(d.Filters.Status) {
		return internal.NewValidationError("unknown status filter", internal.ErrCodeInvalidStatus)
	}
	if d.Filters.Priority != "" && !timesheet.ValidPriority(d.Filters.Priority) {
		return internal.NewValidationError("unknown priority filter", internal.ErrCodeInvalidPriority)
	}
	for _, r := range d.Recipients {
		if !strings.Contains(r, "@") {
			return internal.NewValidationFieldError("recipients", "recipients must be email addresses", internal.ErrCodeValidationFailed)
		}
	}
	return nil
}

// apply writes the structured fields into the report's JSON columns.
func (d *SaveReportDTO) apply(r *CustomReport) error {
	filters, err := json.Marshal(d.Filters)
	if err != nil {
		return err
	}
	columns, err := json.Marshal(d.Columns)
	if err != nil {
		return err
	}
	recipients, err := json.Marshal(d.Recipients)
	if err != nil {
		return err
	}

	r.Name = d.Name
	r.Description = d.Description
	r.Filters = string(filters)
	r.Columns = string(columns)
	r.Recipients = string(recipients)
	r.Schedule = Schedule(d.Schedule)
	return nil
}

type ScheduleDTO struct {
	Schedule string `json:"schedule"`
}

type ReportsResponse struct {
	Reports []*CustomReport `json:"reports"`
}

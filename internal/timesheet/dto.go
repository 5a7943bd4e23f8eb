package timesheet

import (
	"errors"
	"math"
)

// CreateEntryDTO is the request payload for creating an entry.
type CreateEntryDTO struct {
	Date             DateOnly  `json:"date"`
	ClientFileNumber string    `json:"clientFileNumber"`
	Task             string    `json:"task"`
	Activity         string    `json:"activity"`
	Priority         string    `json:"priority"`
	StartTime        TimeOfDay `json:"startTime"`
	EndTime          TimeOfDay `json:"endTime"`
	Status           string    `json:"status"`
	Billable         bool      `json:"billable"`
	Comments         string    `json:"comments"`
}

func (dto *CreateEntryDTO) Validate() error {
	if dto.Date.IsZero() {
		return errors.New("date is required")
	}
	if dto.Task == "" {
		return errors.New("task is required")
	}
	if dto.Priority == "" {
		dto.Priority = PriorityMedium
	}
	if !ValidPriority(dto.Priority) {
		return errors.New("priority must be one of Low, Medium, High, Critical")
	}
	if dto.Status == "" {
		dto.Status = StatusNotStarted
	}
	if !ValidStatus(dto.Status) {
		return errors.New("status must be one of Not Started, Carried Out, Completed")
	}
	return nil
}

// UpdateEntryDTO carries the full replacement state for an entry.
type UpdateEntryDTO struct {
	Date             DateOnly  `json:"date"`
	ClientFileNumber string    `json:"clientFileNumber"`
	Task             string    `json:"task"`
	Activity         string    `json:"activity"`
	Priority         string    `json:"priority"`
	StartTime        TimeOfDay `json:"startTime"`
	EndTime          TimeOfDay `json:"endTime"`
	Status           string    `json:"status"`
	Billable         bool      `json:"billable"`
	Comments         string    `json:"comments"`
}

func (dto *UpdateEntryDTO) Validate() error {
	c := CreateEntryDTO{
		Date:     dto.Date,
		Task:     dto.Task,
		Priority: dto.Priority,
		Status:   dto.Status,
	}
	if err := c.Validate(); err != nil {
		return err
	}
	dto.Priority = c.Priority
	dto.Status = c.Status
	return nil
}

// ListQuery captures the filters, sort and pagination of an entry listing.
// Department and UserEmail only take effect for admin callers.
type ListQuery struct {
	Page       int
	Limit      int
	Search     string
	StartDate  *DateOnly
	EndDate    *DateOnly
	Status     string
	Priority   string
	Billable   *bool
	Department string
	UserEmail  string
	SortBy     string
	SortOrder  string
}

// Normalize clamps pagination and sort inputs to safe values.
func (q *ListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.SortOrder != "asc" && q.SortOrder != "desc" {
		q.SortOrder = "desc"
	}
	q.SortBy = SortColumn(q.SortBy)
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Pagination is the envelope metadata on listing responses.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	totalPages := 0
	if total > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// ListResponse is the paginated entry listing.
type ListResponse struct {
	Entries    []*Entry   `json:"entries"`
	Pagination Pagination `json:"pagination"`
}

package analytics

import (
	"errors"

	"github.com/frahmantamala/timesheet-management/internal/timesheet"
)

// Row is one flattened entry joined with its owner, the engine's only input.
type Row struct {
	EntryID          int64               `json:"entryId"`
	UserID           int64               `json:"userId"`
	UserName         string              `json:"userName"`
	UserEmail        string              `json:"userEmail"`
	Department       string              `json:"department"`
	Date             timesheet.DateOnly  `json:"date"`
	ClientFileNumber string              `json:"clientFileNumber"`
	Task             string              `json:"task"`
	Activity         string              `json:"activity"`
	Priority         string              `json:"priority"`
	StartTime        timesheet.TimeOfDay `json:"startTime"`
	EndTime          timesheet.TimeOfDay `json:"endTime"`
	Hours            float64             `json:"hours"`
	Status           string              `json:"status"`
	Billable         bool                `json:"billable"`
	Comments         string              `json:"comments"`
}

// Summary is the top-level aggregate over a row set.
type Summary struct {
	TotalEntries              int            `json:"totalEntries"`
	TotalHours                float64        `json:"totalHours"`
	BillableHours             float64        `json:"billableHours"`
	UniqueUsers               int            `json:"uniqueUsers"`
	TotalDays                 int            `json:"totalDays"`
	AverageHoursPerUserPerDay float64        `json:"averageHoursPerUserPerDay"`
	ComplianceRate            float64        `json:"complianceRate"`
	UtilizationRate           float64        `json:"utilizationRate"`
	OvertimeHours             float64        `json:"overtimeHours"`
	StatusBreakdown           map[string]int `json:"statusBreakdown"`
	PriorityBreakdown         map[string]int `json:"priorityBreakdown"`
}

// DepartmentStat is the per-department slice of the aggregate.
type DepartmentStat struct {
	Department     string  `json:"department"`
	TotalEntries   int     `json:"totalEntries"`
	TotalHours     float64 `json:"totalHours"`
	BillableHours  float64 `json:"billableHours"`
	UniqueUsers    int     `json:"uniqueUsers"`
	CompletionRate float64 `json:"completionRate"`
}

// UserStat is the per-user slice of the aggregate.
type UserStat struct {
	UserID         int64   `json:"userId"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Department     string  `json:"department"`
	TotalEntries   int     `json:"totalEntries"`
	TotalHours     float64 `json:"totalHours"`
	BillableHours  float64 `json:"billableHours"`
	CompletionRate float64 `json:"completionRate"`
}

// Granularity selects the trend bucket size.
type Granularity string

const (
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case GranularityDaily, GranularityWeekly, GranularityMonthly:
		return Granularity(s), nil
	case "":
		return GranularityWeekly, nil
	}
	return "", errors.New("granularity must be daily, weekly or monthly")
}

// TrendDirection compares a bucket's score against the previous bucket with
// a 5% deadband.
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// TrendPoint is one bucket of the productivity trend series.
type TrendPoint struct {
	Period         string         `json:"period"`
	TotalEntries   int            `json:"totalEntries"`
	TotalHours     float64        `json:"totalHours"`
	HoursPerEntry  float64        `json:"hoursPerEntry"`
	CompletionRate float64        `json:"completionRate"`
	BillableRate   float64        `json:"billableRate"`
	Score          float64        `json:"score"`
	Direction      TrendDirection `json:"direction"`
}

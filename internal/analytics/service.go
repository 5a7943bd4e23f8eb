package analytics

import (
	"log/slog"
	"time"

	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/scope"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
)

// Repository fetches the flattened entry rows the engine reduces.
type Repository interface {
	FetchRows(s scope.Scope, start, end timesheet.DateOnly) ([]Row, error)
}

// Query selects the window and baseline for one analytics request.
type Query struct {
	StartDate     *timesheet.DateOnly
	EndDate       *timesheet.DateOnly
	Department    string
	ExpectedHours float64
}

// defaultRangeMonths is the window applied when no dates are given.
const defaultRangeMonths = 6

type Service struct {
	repo                Repository
	logger              *slog.Logger
	expectedHoursPerDay float64
}

func NewService(repo Repository, logger *slog.Logger, expectedHoursPerDay float64) *Service {
	if expectedHoursPerDay <= 0 {
		expectedHoursPerDay = 8
	}
	return &Service{
		repo:                repo,
		logger:              logger,
		expectedHoursPerDay: expectedHoursPerDay,
	}
}

func (s *Service) resolveWindow(q Query) (timesheet.DateOnly, timesheet.DateOnly) {
	now := time.Now()
	end := timesheet.DateOnly{Time: now}
	if q.EndDate != nil {
		end = *q.EndDate
	}
	start := timesheet.DateOnly{Time: end.AddDate(0, -defaultRangeMonths, 0)}
	if q.StartDate != nil {
		start = *q.StartDate
	}
	return start, end
}

func (s *Service) expected(q Query) float64 {
	if q.ExpectedHours > 0 {
		return q.ExpectedHours
	}
	return s.expectedHoursPerDay
}

// Rows fetches the scoped row set for a request window. Shared by every
// report and by the CSV export.
func (s *Service) Rows(user *auth.User, q Query) ([]Row, error) {
	sc, err := scope.Resolve(user, q.Department)
	if err != nil {
		s.logger.Warn("analytics denied", "error", err, "user_id", user.ID, "role", user.Role)
		return nil, err
	}

	start, end := s.resolveWindow(q)
	rows, err := s.repo.FetchRows(sc, start, end)
	if err != nil {
		s.logger.Error("failed to fetch analytics rows", "error", err, "user_id", user.ID)
		return nil, err
	}
	return rows, nil
}

// Summary computes the headline aggregate for the caller's scope.
func (s *Service) Summary(user *auth.User, q Query) (*Summary, error) {
	rows, err := s.Rows(user, q)
	if err != nil {
		return nil, err
	}
	summary := Summarize(rows, s.expected(q))
	return &summary, nil
}

// Departments computes the per-department breakdown.
func (s *Service) Departments(user *auth.User, q Query) ([]DepartmentStat, error) {
	rows, err := s.Rows(user, q)
	if err != nil {
		return nil, err
	}
	return ByDepartment(rows), nil
}

// Users computes the per-user breakdown.
func (s *Service) Users(user *auth.User, q Query) ([]UserStat, error) {
	rows, err := s.Rows(user, q)
	if err != nil {
		return nil, err
	}
	return ByUser(rows), nil
}

// TrendSeries computes the bucketed productivity trend.
func (s *Service) TrendSeries(user *auth.User, q Query, g Granularity) ([]TrendPoint, error) {
	rows, err := s.Rows(user, q)
	if err != nil {
		return nil, err
	}
	return Trends(rows, g), nil
}

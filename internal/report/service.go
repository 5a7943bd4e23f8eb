package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/analytics"
	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/mail"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	"github.com/google/uuid"
)

type RepositoryAPI interface {
	ListByOwner(ownerID int64) ([]*CustomReport, error)
	ListAll() ([]*CustomReport, error)
	GetByID(id int64) (*CustomReport, error)
	Create(r *CustomReport) error
	Update(r *CustomReport) error
	Delete(id int64) error
	Due(now time.Time) ([]*CustomReport, error)
	MarkRun(id int64, ranAt time.Time, nextRun *time.Time) error
}

// AnalyticsAPI supplies the scoped row sets report runs reduce.
type AnalyticsAPI interface {
	Rows(user *auth.User, q analytics.Query) ([]analytics.Row, error)
}

// Directory loads report owners for scheduled runs, where there is no
// request context to take the caller from.
type Directory interface {
	GetUser(userID int64) (*auth.User, error)
}

// RunResult is the output of one report run.
type RunResult struct {
	RunID       string            `json:"runId"`
	ReportID    int64             `json:"reportId"`
	GeneratedAt time.Time         `json:"generatedAt"`
	Summary     analytics.Summary `json:"summary"`
	Rows        []analytics.Row   `json:"rows"`
}

type Service struct {
	repo                RepositoryAPI
	analytics           AnalyticsAPI
	directory           Directory
	mailer              mail.Mailer
	logger              *slog.Logger
	expectedHoursPerDay float64
}

func NewService(repo RepositoryAPI, analyticsAPI AnalyticsAPI, directory Directory, mailer mail.Mailer, logger *slog.Logger, expectedHoursPerDay float64) *Service {
	if expectedHoursPerDay <= 0 {
		expectedHoursPerDay = 8
	}
	return &Service{
		repo:                repo,
		analytics:           analyticsAPI,
		directory:           directory,
		mailer:              mailer,
		logger:              logger,
		expectedHoursPerDay: expectedHoursPerDay,
	}
}

// List returns the caller's reports, or all reports for an admin.
func (s *Service) List(caller *auth.User) ([]*CustomReport, error) {
	var (
		reports []*CustomReport
		err     error
	)
	if caller.IsAdmin() {
		reports, err = s.repo.ListAll()
	} else {
		reports, err = s.repo.ListByOwner(caller.ID)
	}
	if err != nil {
		s.logger.Error("failed to list reports", "error", err, "caller_id", caller.ID)
		return nil, err
	}
	if reports == nil {
		reports = []*CustomReport{}
	}
	return reports, nil
}

// Get enforces the owner-or-admin rule. Reports outside the caller's
// reach read as not found.
func (s *Service) Get(caller *auth.User, id int64) (*CustomReport, error) {
	r, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get report", "error", err, "report_id", id)
		return nil, err
	}
	if r == nil {
		return nil, internal.ErrReportNotFound
	}
	if r.OwnerID != caller.ID && !caller.IsAdmin() {
		return nil, internal.ErrReportNotFound
	}
	return r, nil
}

func (s *Service) Create(caller *auth.User, dto SaveReportDTO) (*CustomReport, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	now := time.Now()
	r := &CustomReport{
		OwnerID:   caller.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := dto.apply(r); err != nil {
		return nil, err
	}
	if r.Schedule != ScheduleNone {
		next := r.Schedule.NextRun(now)
		r.NextRunAt = &next
	}

	if err := s.repo.Create(r); err != nil {
		s.logger.Error("failed to create report", "error", err, "owner_id", caller.ID)
		return nil, err
	}

	s.logger.Info("report created", "report_id", r.ID, "owner_id", caller.ID, "schedule", r.Schedule)
	return r, nil
}

func (s *Service) Update(caller *auth.User, id int64, dto SaveReportDTO) (*CustomReport, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	r, err := s.Get(caller, id)
	if err != nil {
		return nil, err
	}

	previousSchedule := r.Schedule
	if err := dto.apply(r); err != nil {
		return nil, err
	}
	if r.Schedule != previousSchedule {
		if r.Schedule == ScheduleNone {
			r.NextRunAt = nil
		} else {
			next := r.Schedule.NextRun(time.Now())
			r.NextRunAt = &next
		}
	}
	r.UpdatedAt = time.Now()

	if err := s.repo.Update(r); err != nil {
		s.logger.Error("failed to update report", "error", err, "report_id", id)
		return nil, err
	}
	return r, nil
}

func (s *Service) Delete(caller *auth.User, id int64) error {
	if _, err := s.Get(caller, id); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete report", "error", err, "report_id", id)
		return err
	}
	return nil
}

// SetSchedule changes only the delivery cadence and recomputes the next
// run.
func (s *Service) SetSchedule(caller *auth.User, id int64, dto ScheduleDTO) (*CustomReport, error) {
	schedule, appErr := ParseSchedule(dto.Schedule)
	if appErr != nil {
		return nil, appErr
	}

	r, err := s.Get(caller, id)
	if err != nil {
		return nil, err
	}

	r.Schedule = schedule
	if schedule == ScheduleNone {
		r.NextRunAt = nil
	} else {
		next := schedule.NextRun(time.Now())
		r.NextRunAt = &next
	}
	r.UpdatedAt = time.Now()

	if err := s.repo.Update(r); err != nil {
		s.logger.Error("failed to schedule report", "error", err, "report_id", id)
		return nil, err
	}
	return r, nil
}

// Generate runs the report against the caller's scope and stamps the
// last run time. The schedule's next run is left alone.
func (s *Service) Generate(caller *auth.User, id int64) (*RunResult, error) {
	r, err := s.Get(caller, id)
	if err != nil {
		return nil, err
	}

	result, err := s.run(caller, r)
	if err != nil {
		return nil, err
	}

	if err := s.repo.MarkRun(r.ID, result.GeneratedAt, r.NextRunAt); err != nil {
		s.logger.Error("failed to stamp report run", "error", err, "report_id", r.ID)
		return nil, err
	}
	return result, nil
}

func (s *Service) run(onBehalfOf *auth.User, r *CustomReport) (*RunResult, error) {
	filters, err := r.ParseFilters()
	if err != nil {
		return nil, fmt.Errorf("report %d has malformed filters: %w", r.ID, err)
	}

	q := analytics.Query{Department: filters.Department}
	if filters.StartDate != "" {
		if d, err := timesheet.ParseDateOnly(filters.StartDate); err == nil {
			q.StartDate = &d
		}
	}
	if filters.EndDate != "" {
		if d, err := timesheet.ParseDateOnly(filters.EndDate); err == nil {
			q.EndDate = &d
		}
	}

	rows, err := s.analytics.Rows(onBehalfOf, q)
	if err != nil {
		return nil, err
	}
	rows = applyRowFilters(rows, filters)

	return &RunResult{
		RunID:       uuid.NewString(),
		ReportID:    r.ID,
		GeneratedAt: time.Now(),
		Summary:     analytics.Summarize(rows, s.expectedHoursPerDay),
		Rows:        rows,
	}, nil
}

// applyRowFilters narrows the scoped row set by the report's saved
// status, priority and billable filters.
func applyRowFilters(rows []analytics.Row, f Filters) []analytics.Row {
	if f.Status == "" && f.Priority == "" && f.Billable == nil {
		return rows
	}
	filtered := make([]analytics.Row, 0, len(rows))
	for _, row := range rows {
		if f.Status != "" && row.Status != f.Status {
			continue
		}
		if f.Priority != "" && row.Priority != f.Priority {
			continue
		}
		if f.Billable != nil && row.Billable != *f.Billable {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}

// DeliverDue runs every scheduled report whose next run has passed and
// mails the rendered spreadsheet to the recipients. Called from the
// worker loop.
func (s *Service) DeliverDue(ctx context.Context, now time.Time) error {
	due, err := s.repo.Due(now)
	if err != nil {
		s.logger.Error("failed to list due reports", "error", err)
		return err
	}

	for _, r := range due {
		if err := s.deliver(ctx, r, now); err != nil {
			s.logger.Error("scheduled report delivery failed", "error", err, "report_id", r.ID)
			continue
		}
	}
	return nil
}

func (s *Service) deliver(ctx context.Context, r *CustomReport, now time.Time) error {
	owner, err := s.directory.GetUser(r.OwnerID)
	if err != nil {
		return fmt.Errorf("report owner %d unavailable: %w", r.OwnerID, err)
	}

	result, err := s.run(owner, r)
	if err != nil {
		return err
	}

	recipients := r.ParseRecipients()
	if len(recipients) == 0 {
		recipients = []string{owner.Email}
	}

	attachment, err := BuildXLSX(r.ParseColumns(), result.Rows)
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("%s-%s.xlsx", sanitizeFilename(r.Name), now.Format("2006-01-02"))
	msg := mail.Message{
		To:      recipients,
		Subject: fmt.Sprintf("Scheduled report: %s", r.Name),
		Text: fmt.Sprintf("Report %q covering %d entries (%.2f hours) is attached.",
			r.Name, result.Summary.TotalEntries, result.Summary.TotalHours),
		Attachments: []mail.Attachment{
			{
				Filename:    filename,
				ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
				Content:     attachment,
			},
		},
	}
	if err := s.mailer.SendMessage(ctx, msg); err != nil {
		return err
	}

	next := r.Schedule.NextRun(now)
	s.logger.Info("scheduled report delivered", "report_id", r.ID, "recipients", len(recipients), "next_run", next)
	return s.repo.MarkRun(r.ID, now, &next)
}

package report_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/analytics"
	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/mail"
	"github.com/frahmantamala/timesheet-management/internal/report"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type MockRepository struct {
	reports    map[int64]*report.CustomReport
	nextID     int64
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{reports: make(map[int64]*report.CustomReport), nextID: 1}
}

func (m *MockRepository) ListByOwner(ownerID int64) ([]*report.CustomReport, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var result []*report.CustomReport
	for _, r := range m.reports {
		if r.OwnerID == ownerID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *MockRepository) ListAll() ([]*report.CustomReport, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var result []*report.CustomReport
	for _, r := range m.reports {
		result = append(result, r)
	}
	return result, nil
}

func (m *MockRepository) GetByID(id int64) (*report.CustomReport, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.reports[id], nil
}

func (m *MockRepository) Create(r *report.CustomReport) error {
	if m.shouldFail {
		return m.failError
	}
	r.ID = m.nextID
	m.nextID++
	m.reports[r.ID] = r
	return nil
}

func (m *MockRepository) Update(r *report.CustomReport) error {
	if m.shouldFail {
		return m.failError
	}
	m.reports[r.ID] = r
	return nil
}

func (m *MockRepository) Delete(id int64) error {
	if m.shouldFail {
		return m.failError
	}
	delete(m.reports, id)
	return nil
}

func (m *MockRepository) Due(now time.Time) ([]*report.CustomReport, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var due []*report.CustomReport
	for _, r := range m.reports {
		if r.Schedule != report.ScheduleNone && r.NextRunAt != nil && !r.NextRunAt.After(now) {
			due = append(due, r)
		}
	}
	return due, nil
}

func (m *MockRepository) MarkRun(id int64, ranAt time.Time, nextRun *time.Time) error {
	if m.shouldFail {
		return m.failError
	}
	if r, ok := m.reports[id]; ok {
		at := ranAt
		r.LastRunAt = &at
		r.NextRunAt = nextRun
	}
	return nil
}

type mockAnalytics struct {
	rows      []analytics.Row
	lastQuery analytics.Query
	lastUser  *auth.User
	failWith  error
}

func (m *mockAnalytics) Rows(user *auth.User, q analytics.Query) ([]analytics.Row, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.lastUser = user
	m.lastQuery = q
	return m.rows, nil
}

type mockDirectory struct {
	users map[int64]*auth.User
}

func (m *mockDirectory) GetUser(userID int64) (*auth.User, error) {
	u, ok := m.users[userID]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

type mockMailer struct {
	messages []mail.Message
	failWith error
}

func (m *mockMailer) Send(ctx context.Context, to []string, subject, body string) error {
	return m.SendMessage(ctx, mail.Message{To: to, Subject: subject, Text: body})
}

func (m *mockMailer) SendMessage(_ context.Context, msg mail.Message) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.messages = append(m.messages, msg)
	return nil
}

func analyticsRow(status, priority string, billable bool, hours float64) analytics.Row {
	d, _ := timesheet.ParseDateOnly("2025-03-10")
	return analytics.Row{
		UserID: 3, UserName: "Dev", UserEmail: "dev@example.com",
		Department: "Engineering", Date: d,
		Status: status, Priority: priority, Billable: billable, Hours: hours,
	}
}

var _ = Describe("Report Service", func() {
	var (
		mockRepo  *MockRepository
		engine    *mockAnalytics
		directory *mockDirectory
		mailer    *mockMailer
		service   *report.Service
		admin     *auth.User
		owner     *auth.User
		other     *auth.User
	)

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		engine = &mockAnalytics{}
		mailer = &mockMailer{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		admin = &auth.User{ID: 1, Email: "admin@example.com", Role: auth.RoleAdmin, Department: "Management", IsActive: true}
		owner = &auth.User{ID: 2, Email: "lead@example.com", Role: auth.RoleSupervisor, Department: "Engineering", IsActive: true}
		other = &auth.User{ID: 3, Email: "dev@example.com", Role: auth.RoleStaff, Department: "Engineering", IsActive: true}

		directory = &mockDirectory{users: map[int64]*auth.User{1: admin, 2: owner, 3: other}}
		service = report.NewService(mockRepo, engine, directory, mailer, logger, 8)
	})

	Describe("Create", func() {
		It("should save the definition with its JSON columns", func() {
			r, err := service.Create(owner, report.SaveReportDTO{
				Name:        "Weekly Hours",
				Description: "Hours per person",
				Filters:     report.Filters{Department: "Engineering", Status: "Completed"},
				Columns:     []string{"Date", "Task", "Total Hours"},
				Recipients:  []string{"lead@example.com"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(r.OwnerID).To(Equal(owner.ID))
			Expect(r.Schedule).To(Equal(report.ScheduleNone))
			Expect(r.NextRunAt).To(BeNil())

			filters, err := r.ParseFilters()
			Expect(err).NotTo(HaveOccurred())
			Expect(filters.Department).To(Equal("Engineering"))
			Expect(r.ParseColumns()).To(Equal([]string{"Date", "Task", "Total Hours"}))
			Expect(r.ParseRecipients()).To(Equal([]string{"lead@example.com"}))
		})

		It("should compute the first run time for a scheduled report", func() {
			r, err := service.Create(owner, report.SaveReportDTO{
				Name:     "Daily Hours",
				Schedule: "daily",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(r.NextRunAt).NotTo(BeNil())
			Expect(*r.NextRunAt).To(BeTemporally("~", time.Now().AddDate(0, 0, 1), time.Minute))
		})

		It("should reject an unknown schedule", func() {
			_, err := service.Create(owner, report.SaveReportDTO{Name: "Bad", Schedule: "hourly"})
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidSchedule))
		})

		It("should reject a malformed filter date", func() {
			_, err := service.Create(owner, report.SaveReportDTO{
				Name:    "Bad",
				Filters: report.Filters{StartDate: "10/03/2025"},
			})
			Expect(err).To(HaveOccurred())
		})

		It("should reject a non-email recipient", func() {
			_, err := service.Create(owner, report.SaveReportDTO{
				Name:       "Bad",
				Recipients: []string{"not-an-address"},
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ownership", func() {
		var saved *report.CustomReport

		BeforeEach(func() {
			var err error
			saved, err = service.Create(owner, report.SaveReportDTO{Name: "Weekly Hours"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should let the owner read their report", func() {
			r, err := service.Get(owner, saved.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Name).To(Equal("Weekly Hours"))
		})

		It("should let an admin read any report", func() {
			_, err := service.Get(admin, saved.ID)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should hide other users' reports behind not found", func() {
			_, err := service.Get(other, saved.ID)
			Expect(err).To(Equal(internal.ErrReportNotFound))
		})

		It("should list only the caller's reports", func() {
			_, err := service.Create(other, report.SaveReportDTO{Name: "My Hours"})
			Expect(err).NotTo(HaveOccurred())

			mine, err := service.List(owner)
			Expect(err).NotTo(HaveOccurred())
			Expect(mine).To(HaveLen(1))

			all, err := service.List(admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))
		})

		It("should block deletes by non-owners", func() {
			Expect(service.Delete(other, saved.ID)).To(Equal(internal.ErrReportNotFound))
			Expect(service.Delete(owner, saved.ID)).To(Succeed())
		})
	})

	Describe("SetSchedule", func() {
		var saved *report.CustomReport

		BeforeEach(func() {
			var err error
			saved, err = service.Create(owner, report.SaveReportDTO{Name: "Weekly Hours"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should set the cadence and next run", func() {
			r, err := service.SetSchedule(owner, saved.ID, report.ScheduleDTO{Schedule: "monthly"})
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Schedule).To(Equal(report.ScheduleMonthly))
			Expect(r.NextRunAt).NotTo(BeNil())
			Expect(*r.NextRunAt).To(BeTemporally("~", time.Now().AddDate(0, 1, 0), time.Minute))
		})

		It("should clear the next run when unscheduled", func() {
			_, err := service.SetSchedule(owner, saved.ID, report.ScheduleDTO{Schedule: "weekly"})
			Expect(err).NotTo(HaveOccurred())

			r, err := service.SetSchedule(owner, saved.ID, report.ScheduleDTO{Schedule: ""})
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Schedule).To(Equal(report.ScheduleNone))
			Expect(r.NextRunAt).To(BeNil())
		})

		It("should reject an unknown cadence", func() {
			_, err := service.SetSchedule(owner, saved.ID, report.ScheduleDTO{Schedule: "fortnightly"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Generate", func() {
		var saved *report.CustomReport

		BeforeEach(func() {
			var err error
			saved, err = service.Create(owner, report.SaveReportDTO{
				Name: "Completed Work",
				Filters: report.Filters{
					StartDate:  "2025-03-01",
					EndDate:    "2025-03-31",
					Department: "Engineering",
					Status:     "Completed",
				},
			})
			Expect(err).NotTo(HaveOccurred())

			engine.rows = []analytics.Row{
				analyticsRow(timesheet.StatusCompleted, timesheet.PriorityHigh, true, 4),
				analyticsRow(timesheet.StatusNotStarted, timesheet.PriorityLow, false, 2),
			}
		})

		It("should pass the saved window and department to the engine", func() {
			_, err := service.Generate(owner, saved.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(engine.lastUser).To(Equal(owner))
			Expect(engine.lastQuery.Department).To(Equal("Engineering"))
			Expect(engine.lastQuery.StartDate.String()).To(Equal("2025-03-01"))
			Expect(engine.lastQuery.EndDate.String()).To(Equal("2025-03-31"))
		})

		It("should filter rows by the saved status", func() {
			result, err := service.Generate(owner, saved.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Rows).To(HaveLen(1))
			Expect(result.Rows[0].Status).To(Equal(timesheet.StatusCompleted))
			Expect(result.Summary.TotalEntries).To(Equal(1))
		})

		It("should stamp the last run and assign a run id", func() {
			result, err := service.Generate(owner, saved.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.RunID).NotTo(BeEmpty())

			stored, _ := mockRepo.GetByID(saved.ID)
			Expect(stored.LastRunAt).NotTo(BeNil())
		})

		It("should surface engine errors", func() {
			engine.failWith = errors.New("store unavailable")
			_, err := service.Generate(owner, saved.ID)
			Expect(err).To(HaveOccurred())
		})

		It("should refuse to run someone else's report", func() {
			_, err := service.Generate(other, saved.ID)
			Expect(err).To(Equal(internal.ErrReportNotFound))
		})
	})

	Describe("DeliverDue", func() {
		var saved *report.CustomReport

		BeforeEach(func() {
			var err error
			saved, err = service.Create(owner, report.SaveReportDTO{
				Name:       "Weekly Hours",
				Schedule:   "weekly",
				Recipients: []string{"lead@example.com", "admin@example.com"},
			})
			Expect(err).NotTo(HaveOccurred())

			// force the report due
			due := time.Now().Add(-time.Hour)
			saved.NextRunAt = &due
			Expect(mockRepo.Update(saved)).To(Succeed())

			engine.rows = []analytics.Row{
				analyticsRow(timesheet.StatusCompleted, timesheet.PriorityMedium, true, 8),
			}
		})

		It("should mail the spreadsheet to the recipients", func() {
			Expect(service.DeliverDue(context.Background(), time.Now())).To(Succeed())

			Expect(mailer.messages).To(HaveLen(1))
			msg := mailer.messages[0]
			Expect(msg.To).To(Equal([]string{"lead@example.com", "admin@example.com"}))
			Expect(msg.Subject).To(ContainSubstring("Weekly Hours"))
			Expect(msg.Attachments).To(HaveLen(1))
			Expect(msg.Attachments[0].Filename).To(HaveSuffix(".xlsx"))
			Expect(msg.Attachments[0].Content).NotTo(BeEmpty())
		})

		It("should run the report under the owner's scope", func() {
			Expect(service.DeliverDue(context.Background(), time.Now())).To(Succeed())
			Expect(engine.lastUser).To(Equal(owner))
		})

		It("should advance the next run past now", func() {
			now := time.Now()
			Expect(service.DeliverDue(context.Background(), now)).To(Succeed())

			stored, _ := mockRepo.GetByID(saved.ID)
			Expect(stored.LastRunAt).NotTo(BeNil())
			Expect(stored.NextRunAt).NotTo(BeNil())
			Expect(*stored.NextRunAt).To(BeTemporally("~", now.AddDate(0, 0, 7), time.Minute))
		})

		It("should leave the schedule untouched when mail fails", func() {
			mailer.failWith = errors.New("ses unavailable")
			Expect(service.DeliverDue(context.Background(), time.Now())).To(Succeed())

			stored, _ := mockRepo.GetByID(saved.ID)
			Expect(stored.LastRunAt).To(BeNil())
		})

		It("should do nothing when nothing is due", func() {
			future := time.Now().Add(time.Hour)
			saved.NextRunAt = &future
			Expect(mockRepo.Update(saved)).To(Succeed())

			Expect(service.DeliverDue(context.Background(), time.Now())).To(Succeed())
			Expect(mailer.messages).To(BeEmpty())
		})
	})
})

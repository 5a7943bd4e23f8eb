package postgres_test

import (
	"testing"
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/scope"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	timesheetPostgres "github.com/frahmantamala/timesheet-management/internal/timesheet/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestTimesheetPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Timesheet Postgres Suite")
}

// SQLiteEntry is a SQLite-compatible model for testing
type SQLiteEntry struct {
	ID               int64     `gorm:"primaryKey"`
	UserID           int64     `gorm:"column:user_id;not null"`
	Date             string    `gorm:"column:date"`
	ClientFileNumber string    `gorm:"column:client_file_number"`
	Task             string    `gorm:"column:task"`
	Activity         string    `gorm:"column:activity"`
	Priority         string    `gorm:"column:priority"`
	StartTime        string    `gorm:"column:start_time"`
	EndTime          string    `gorm:"column:end_time"`
	TotalHours       float64   `gorm:"column:total_hours"`
	Status           string    `gorm:"column:status"`
	Billable         bool      `gorm:"column:billable"`
	Comments         string    `gorm:"column:comments"`
	Department       string    `gorm:"column:department"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (SQLiteEntry) TableName() string {
	return "timesheet_entries"
}

var _ = Describe("Entry PostgreSQL Repository", func() {
	var (
		db   *gorm.DB
		repo timesheet.Repository
	)

	newEntry := func(userID int64, date string, start, end timesheet.TimeOfDay) *timesheet.Entry {
		d, err := timesheet.ParseDateOnly(date)
		Expect(err).NotTo(HaveOccurred())
		e := &timesheet.Entry{
			UserID:           userID,
			Date:             d,
			ClientFileNumber: "CF-1001",
			Task:             "Drafting",
			Activity:         "Contract review",
			Priority:         timesheet.PriorityMedium,
			StartTime:        start,
			EndTime:          end,
			Status:           timesheet.StatusCompleted,
			Billable:         true,
			Department:       "Engineering",
			CreatedAt:        time.Now(),
			UpdatedAt:        time.Now(),
		}
		e.TotalHours = e.Hours()
		return e
	}

	BeforeEach(func() {
		var err error
		// Use SQLite in-memory database for testing
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteEntry{})
		Expect(err).NotTo(HaveOccurred())

		repo = timesheetPostgres.NewEntryRepository(db)
	})

	Describe("Create", func() {
		It("should create an entry successfully", func() {
			e := newEntry(1, "2025-03-10", timesheet.NewTimeOfDay(9, 0), timesheet.NewTimeOfDay(11, 0))

			err := repo.Create(e)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.ID).To(BeNumerically(">", 0))
		})

		It("should reject an overlapping entry for the same user and day", func() {
			first := newEntry(1, "2025-03-10", timesheet.NewTimeOfDay(9, 0), timesheet.NewTimeOfDay(11, 0))
			Expect(repo.Create(first)).To(Succeed())

			second := newEntry(1, "2025-03-10", timesheet.NewTimeOfDay(10, 0), timesheet.NewTimeOfDay(12, 0))
			err := repo.Create(second)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeOverlappingEntry))
		})

		It("should allow back-to-back entries", func() {
			first := newEntry(1, "2025-03-10", timesheet.NewTimeOfDay(9, 0), timesheet.NewTimeOfDay(11, 0))
			Expect(repo.Create(first)).To(Succeed())

			second := newEntry(1, "2025-03-10", timesheet.NewTimeOfDay(11, 0), timesheet.NewTimeOfDay(12, 0))
			Expect(repo.Create(second)).To(Succeed())
		})

		It("should allow overlapping times on different days", func() {
			first := newEntry(1, "2025-03-10", timesheet.NewTimeOfDay(9, 0), timesheet.NewTimeOfDay(11, 0))
			Expect(repo.Create(first)).To(Succeed())

			second := newEntry(1, "2025-03-11", timesheet.NewTimeOfDay(9, 0), timesheet.NewTimeOfDay(11, 0))
			Expect(repo.Create(second)).To(Succeed())
		})

		It("should allow overlapping times for different users", func() {
			first := newEntry(1, "2025-03-10", timesheet.NewTimeOfDay(9, 0), timesheet.NewTimeOfDay(11, 0))
			Expect(repo.Create(first)).To(Succeed())

			second := newEntry(2, "2025-03-10", timesheet.NewTimeOfDay(9, 0), timesheet.NewTimeOfDay(11, 0))
			Expect(repo.Create(second)).To(Succeed())
		})
	})

	Describe("Update", func() {
		var existing *timesheet.Entry

		BeforeEach(func() {
			existing = newEntry(1, "2025-03-10", timesheet.NewTimeOfDay(9, 0), timesheet.NewTimeOfDay(11, 0))
			Expect(repo.Create(existing)).To(Succeed())
		})

		It("should not conflict with the entry itself", func() {
			existing.StartTime = timesheet.NewTimeOfDay(9, 30)
			existing.EndTime = timesheet.NewTimeOfDay(10, 30)
			existing.TotalHours = existing.Hours()

			Expect(repo.Update(existing)).To(Succeed())

			got, err := repo.GetByID(scope.Scope{All: true}, existing.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.StartTime.String()).To(Equal("09:30"))
		})

		It("should reject moving onto another entry", func() {
			other := newEntry(1, "2025-03-10", timesheet.NewTimeOfDay(13, 0), timesheet.NewTimeOfDay(15, 0))
			Expect(repo.Create(other)).To(Succeed())

			existing.StartTime = timesheet.NewTimeOfDay(14, 0)
			existing.EndTime = timesheet.NewTimeOfDay(16, 0)

			err := repo.Update(existing)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeOverlappingEntry))
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			rows := []*timesheet.Entry{
				newEntry(1, "2025-03-10", timesheet.NewTimeOfDay(9, 0), timesheet.NewTimeOfDay(11, 0)),
				newEntry(1, "2025-03-11", timesheet.NewTimeOfDay(9, 0), timesheet.NewTimeOfDay(10, 0)),
				newEntry(2, "2025-03-10", timesheet.NewTimeOfDay(9, 0), timesheet.NewTimeOfDay(12, 0)),
			}
			rows[1].Status = timesheet.StatusNotStarted
			rows[1].Billable = false
			rows[2].Department = "Finance"
			rows[2].Task = "Billing"
			for _, e := range rows {
				Expect(repo.Create(e)).To(Succeed())
			}
		})

		listAll := func(q timesheet.ListQuery) ([]*timesheet.Entry, int64) {
			q.Normalize()
			entries, total, err := repo.List(scope.Scope{All: true}, q)
			Expect(err).NotTo(HaveOccurred())
			return entries, total
		}

		It("should scope to a user", func() {
			q := timesheet.ListQuery{}
			q.Normalize()
			entries, total, err := repo.List(scope.Scope{UserID: 1}, q)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(2)))
			for _, e := range entries {
				Expect(e.UserID).To(Equal(int64(1)))
			}
		})

		It("should scope to a department", func() {
			q := timesheet.ListQuery{}
			q.Normalize()
			_, total, err := repo.List(scope.Scope{Department: "Finance"}, q)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
		})

		It("should filter by date range", func() {
			start, _ := timesheet.ParseDateOnly("2025-03-11")
			entries, total := listAll(timesheet.ListQuery{StartDate: &start})
			Expect(total).To(Equal(int64(1)))
			Expect(entries[0].Date.String()).To(Equal("2025-03-11"))
		})

		It("should filter by status", func() {
			_, total := listAll(timesheet.ListQuery{Status: timesheet.StatusNotStarted})
			Expect(total).To(Equal(int64(1)))
		})

		It("should filter by billable", func() {
			billable := false
			_, total := listAll(timesheet.ListQuery{Billable: &billable})
			Expect(total).To(Equal(int64(1)))
		})

		It("should search across text fields", func() {
			entries, total := listAll(timesheet.ListQuery{Search: "Billing"})
			Expect(total).To(Equal(int64(1)))
			Expect(entries[0].Task).To(Equal("Billing"))
		})

		It("should paginate and report the full total", func() {
			entries, total := listAll(timesheet.ListQuery{Page: 2, Limit: 2})
			Expect(total).To(Equal(int64(3)))
			Expect(entries).To(HaveLen(1))
		})

		It("should sort by the requested column", func() {
			entries, _ := listAll(timesheet.ListQuery{SortBy: "totalHours", SortOrder: "desc"})
			Expect(entries[0].TotalHours).To(BeNumerically(">=", entries[1].TotalHours))
		})
	})

	Describe("GetByID", func() {
		var entry *timesheet.Entry

		BeforeEach(func() {
			entry = newEntry(1, "2025-03-10", timesheet.NewTimeOfDay(9, 0), timesheet.NewTimeOfDay(11, 0))
			Expect(repo.Create(entry)).To(Succeed())
		})

		It("should return the entry inside scope", func() {
			got, err := repo.GetByID(scope.Scope{UserID: 1}, entry.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ClientFileNumber).To(Equal("CF-1001"))
		})

		It("should hide the entry outside scope", func() {
			_, err := repo.GetByID(scope.Scope{UserID: 2}, entry.ID)
			Expect(err).To(Equal(timesheet.ErrEntryNotFound))
		})
	})

	Describe("Delete", func() {
		var entry *timesheet.Entry

		BeforeEach(func() {
			entry = newEntry(1, "2025-03-10", timesheet.NewTimeOfDay(9, 0), timesheet.NewTimeOfDay(11, 0))
			Expect(repo.Create(entry)).To(Succeed())
		})

		It("should hard delete the owner's entry", func() {
			Expect(repo.Delete(entry.ID, 1)).To(Succeed())

			_, err := repo.GetByID(scope.Scope{All: true}, entry.ID)
			Expect(err).To(Equal(timesheet.ErrEntryNotFound))
		})

		It("should refuse for a non-owner", func() {
			err := repo.Delete(entry.ID, 2)
			Expect(err).To(Equal(timesheet.ErrEntryNotFound))
		})
	})
})

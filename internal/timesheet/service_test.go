package timesheet_test

import (
	"errors"
	"log/slog"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/scope"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// Mock repository for testing
type mockEntryRepository struct {
	entries       map[int64]*timesheet.Entry
	nextID        int64
	returnError   bool
	errorToReturn error
}

func newMockEntryRepository() *mockEntryRepository {
	return &mockEntryRepository{
		entries: map[int64]*timesheet.Entry{},
		nextID:  1,
	}
}

func (m *mockEntryRepository) List(s scope.Scope, q timesheet.ListQuery) ([]*timesheet.Entry, int64, error) {
	if m.returnError {
		return nil, 0, m.errorToReturn
	}
	var visible []*timesheet.Entry
	for _, e := range m.entries {
		if s.MatchesEntry(e.UserID, e.Department) {
			visible = append(visible, e)
		}
	}
	total := int64(len(visible))
	start := q.Offset()
	if start > len(visible) {
		start = len(visible)
	}
	end := start + q.Limit
	if end > len(visible) {
		end = len(visible)
	}
	return visible[start:end], total, nil
}

func (m *mockEntryRepository) GetByID(s scope.Scope, id int64) (*timesheet.Entry, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	e, ok := m.entries[id]
	if !ok || !s.MatchesEntry(e.UserID, e.Department) {
		return nil, timesheet.ErrEntryNotFound
	}
	copied := *e
	return &copied, nil
}

func (m *mockEntryRepository) Create(entry *timesheet.Entry) error {
	if m.returnError {
		return m.errorToReturn
	}
	var sameDay []*timesheet.Entry
	for _, e := range m.entries {
		if e.UserID == entry.UserID && e.Date.String() == entry.Date.String() {
			sameDay = append(sameDay, e)
		}
	}
	if conflict := timesheet.FindConflict(sameDay, entry.StartTime, entry.EndTime, 0); conflict != nil {
		return timesheet.NewOverlapError(conflict)
	}
	entry.ID = m.nextID
	m.nextID++
	stored := *entry
	m.entries[entry.ID] = &stored
	return nil
}

func (m *mockEntryRepository) Update(entry *timesheet.Entry) error {
	if m.returnError {
		return m.errorToReturn
	}
	var sameDay []*timesheet.Entry
	for _, e := range m.entries {
		if e.UserID == entry.UserID && e.Date.String() == entry.Date.String() {
			sameDay = append(sameDay, e)
		}
	}
	if conflict := timesheet.FindConflict(sameDay, entry.StartTime, entry.EndTime, entry.ID); conflict != nil {
		return timesheet.NewOverlapError(conflict)
	}
	stored := *entry
	m.entries[entry.ID] = &stored
	return nil
}

func (m *mockEntryRepository) Delete(id, userID int64) error {
	if m.returnError {
		return m.errorToReturn
	}
	e, ok := m.entries[id]
	if !ok || e.UserID != userID {
		return timesheet.ErrEntryNotFound
	}
	delete(m.entries, id)
	return nil
}

var _ = Describe("TimesheetService", func() {
	var (
		service    *timesheet.Service
		mockRepo   *mockEntryRepository
		staff      *auth.User
		supervisor *auth.User
		admin      *auth.User
	)

	BeforeEach(func() {
		mockRepo = newMockEntryRepository()
		service = timesheet.NewService(mockRepo, slog.Default())
		staff = &auth.User{ID: 1, Role: auth.RoleStaff, Department: "Engineering", IsActive: true}
		supervisor = &auth.User{ID: 2, Role: auth.RoleSupervisor, Department: "Engineering", IsActive: true}
		admin = &auth.User{ID: 3, Role: auth.RoleAdmin, Department: "Management", IsActive: true}
	})

	validCreate := func() timesheet.CreateEntryDTO {
		return timesheet.CreateEntryDTO{
			Date:             timesheet.NewDateOnly(2025, 3, 10),
			ClientFileNumber: "CF-1001",
			Task:             "Drafting",
			Activity:         "Contract review",
			Priority:         timesheet.PriorityHigh,
			StartTime:        timesheet.NewTimeOfDay(9, 0),
			EndTime:          timesheet.NewTimeOfDay(11, 0),
			Status:           timesheet.StatusCompleted,
			Billable:         true,
		}
	}

	Describe("Create", func() {
		Context("with a valid request", func() {
			It("should store the entry with derived hours and snapshotted department", func() {
				entry, err := service.Create(staff, validCreate())

				Expect(err).NotTo(HaveOccurred())
				Expect(entry.ID).NotTo(BeZero())
				Expect(entry.TotalHours).To(BeNumerically("~", 2.0, 1e-9))
				Expect(entry.Department).To(Equal("Engineering"))
				Expect(entry.UserID).To(Equal(staff.ID))
			})

			It("should default priority and status when omitted", func() {
				dto := validCreate()
				dto.Priority = ""
				dto.Status = ""

				entry, err := service.Create(staff, dto)

				Expect(err).NotTo(HaveOccurred())
				Expect(entry.Priority).To(Equal(timesheet.PriorityMedium))
				Expect(entry.Status).To(Equal(timesheet.StatusNotStarted))
			})
		})

		Context("with bad times", func() {
			It("should reject an inverted range", func() {
				dto := validCreate()
				dto.StartTime = timesheet.NewTimeOfDay(11, 0)
				dto.EndTime = timesheet.NewTimeOfDay(9, 0)

				_, err := service.Create(staff, dto)

				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidTimeRange))
			})

			It("should reject unaligned times", func() {
				dto := validCreate()
				dto.StartTime = timesheet.NewTimeOfDay(9, 7)

				_, err := service.Create(staff, dto)

				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidTimeGranularity))
			})
		})

		Context("with an overlapping entry", func() {
			It("should surface the conflict with its details", func() {
				_, err := service.Create(staff, validCreate())
				Expect(err).NotTo(HaveOccurred())

				dto := validCreate()
				dto.StartTime = timesheet.NewTimeOfDay(10, 0)
				dto.EndTime = timesheet.NewTimeOfDay(12, 0)

				_, err = service.Create(staff, dto)

				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeOverlappingEntry))
			})

			It("should allow back-to-back entries", func() {
				_, err := service.Create(staff, validCreate())
				Expect(err).NotTo(HaveOccurred())

				dto := validCreate()
				dto.StartTime = timesheet.NewTimeOfDay(11, 0)
				dto.EndTime = timesheet.NewTimeOfDay(12, 0)

				_, err = service.Create(staff, dto)
				Expect(err).NotTo(HaveOccurred())
			})

			It("should allow the same times for different users", func() {
				_, err := service.Create(staff, validCreate())
				Expect(err).NotTo(HaveOccurred())

				other := &auth.User{ID: 9, Role: auth.RoleStaff, Department: "Finance", IsActive: true}
				_, err = service.Create(other, validCreate())
				Expect(err).NotTo(HaveOccurred())
			})
		})

		Context("with missing fields", func() {
			It("should reject a missing task", func() {
				dto := validCreate()
				dto.Task = ""

				_, err := service.Create(staff, dto)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("task is required"))
			})
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			_, err := service.Create(staff, validCreate())
			Expect(err).NotTo(HaveOccurred())

			finance := &auth.User{ID: 9, Role: auth.RoleStaff, Department: "Finance", IsActive: true}
			_, err = service.Create(finance, validCreate())
			Expect(err).NotTo(HaveOccurred())
		})

		It("should show staff only their own entries", func() {
			resp, err := service.List(staff, timesheet.ListQuery{})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Entries).To(HaveLen(1))
			Expect(resp.Entries[0].UserID).To(Equal(staff.ID))
			Expect(resp.Pagination.Total).To(Equal(int64(1)))
		})

		It("should show supervisors their department", func() {
			resp, err := service.List(supervisor, timesheet.ListQuery{})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Entries).To(HaveLen(1))
			Expect(resp.Entries[0].Department).To(Equal("Engineering"))
		})

		It("should show admins everything", func() {
			resp, err := service.List(admin, timesheet.ListQuery{})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Entries).To(HaveLen(2))
		})

		It("should narrow admins by department override", func() {
			resp, err := service.List(admin, timesheet.ListQuery{Department: "Finance"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Entries).To(HaveLen(1))
			Expect(resp.Entries[0].Department).To(Equal("Finance"))
		})

		It("should fail closed for unknown roles", func() {
			stranger := &auth.User{ID: 5, Role: "INTERN", Department: "Engineering"}
			_, err := service.List(stranger, timesheet.ListQuery{})
			Expect(err).To(Equal(internal.ErrUnknownRole))
		})

		It("should compute pagination metadata", func() {
			resp, err := service.List(admin, timesheet.ListQuery{Page: 1, Limit: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Entries).To(HaveLen(1))
			Expect(resp.Pagination.Total).To(Equal(int64(2)))
			Expect(resp.Pagination.TotalPages).To(Equal(2))
		})
	})

	Describe("Update", func() {
		var entryID int64

		validUpdate := func() timesheet.UpdateEntryDTO {
			return timesheet.UpdateEntryDTO{
				Date:      timesheet.NewDateOnly(2025, 3, 10),
				Task:      "Research",
				Priority:  timesheet.PriorityLow,
				StartTime: timesheet.NewTimeOfDay(13, 0),
				EndTime:   timesheet.NewTimeOfDay(14, 30),
				Status:    timesheet.StatusCarriedOut,
			}
		}

		BeforeEach(func() {
			entry, err := service.Create(staff, validCreate())
			Expect(err).NotTo(HaveOccurred())
			entryID = entry.ID
		})

		It("should replace the fields and re-derive hours", func() {
			entry, err := service.Update(staff, entryID, validUpdate())

			Expect(err).NotTo(HaveOccurred())
			Expect(entry.Task).To(Equal("Research"))
			Expect(entry.TotalHours).To(BeNumerically("~", 1.5, 1e-9))
		})

		It("should not conflict with itself", func() {
			dto := timesheet.UpdateEntryDTO{
				Date:      timesheet.NewDateOnly(2025, 3, 10),
				Task:      "Drafting",
				Priority:  timesheet.PriorityHigh,
				StartTime: timesheet.NewTimeOfDay(9, 30),
				EndTime:   timesheet.NewTimeOfDay(10, 30),
				Status:    timesheet.StatusCompleted,
			}

			_, err := service.Update(staff, entryID, dto)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should hide other users' entries from staff", func() {
			other := &auth.User{ID: 9, Role: auth.RoleStaff, Department: "Finance", IsActive: true}

			_, err := service.Update(other, entryID, validUpdate())
			Expect(err).To(Equal(timesheet.ErrEntryNotFound))
		})

		It("should refuse a supervisor editing a department member's entry", func() {
			_, err := service.Update(supervisor, entryID, validUpdate())

			Expect(err).To(Equal(timesheet.ErrEntryNotFound))
			kept, getErr := service.GetByID(supervisor, entryID)
			Expect(getErr).NotTo(HaveOccurred())
			Expect(kept.Task).To(Equal("Drafting"))
		})

		It("should refuse an admin editing someone else's entry", func() {
			_, err := service.Update(admin, entryID, validUpdate())

			Expect(err).To(Equal(timesheet.ErrEntryNotFound))
			kept, getErr := service.GetByID(admin, entryID)
			Expect(getErr).NotTo(HaveOccurred())
			Expect(kept.Task).To(Equal("Drafting"))
		})
	})

	Describe("Delete", func() {
		var entryID int64

		BeforeEach(func() {
			entry, err := service.Create(staff, validCreate())
			Expect(err).NotTo(HaveOccurred())
			entryID = entry.ID
		})

		It("should let the owner delete", func() {
			Expect(service.Delete(staff, entryID)).To(Succeed())
		})

		It("should read as missing for anyone else, even admins", func() {
			err := service.Delete(admin, entryID)
			Expect(err).To(Equal(timesheet.ErrEntryNotFound))
		})
	})

	Describe("repository failures", func() {
		It("should propagate list errors", func() {
			mockRepo.returnError = true
			mockRepo.errorToReturn = errors.New("database error")

			_, err := service.List(staff, timesheet.ListQuery{})
			Expect(err).To(HaveOccurred())
		})
	})
})

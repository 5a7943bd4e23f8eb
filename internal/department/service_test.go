package department_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/department"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDepartmentService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Department Service Suite")
}

type MockRepository struct {
	departments map[int64]*department.Department
	tasks       map[int64]*department.Task
	nextDeptID  int64
	nextTaskID  int64
	shouldFail  bool
	failError   error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		departments: make(map[int64]*department.Department),
		tasks:       make(map[int64]*department.Task),
		nextDeptID:  1,
		nextTaskID:  1,
	}
}

func (m *MockRepository) SetShouldFail(shouldFail bool, err error) {
	m.shouldFail = shouldFail
	m.failError = err
}

func (m *MockRepository) GetAllDepartments(includeInactive bool) ([]*department.Department, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var result []*department.Department
	for _, d := range m.departments {
		if includeInactive || d.IsActive {
			result = append(result, d)
		}
	}
	return result, nil
}

func (m *MockRepository) GetDepartmentByID(id int64) (*department.Department, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.departments[id], nil
}

func (m *MockRepository) GetDepartmentByName(name string) (*department.Department, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	for _, d := range m.departments {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) CreateDepartment(dept *department.Department) error {
	if m.shouldFail {
		return m.failError
	}
	dept.ID = m.nextDeptID
	m.nextDeptID++
	m.departments[dept.ID] = dept
	return nil
}

func (m *MockRepository) UpdateDepartment(dept *department.Department) error {
	if m.shouldFail {
		return m.failError
	}
	m.departments[dept.ID] = dept
	return nil
}

func (m *MockRepository) DeactivateDepartment(id int64) error {
	if m.shouldFail {
		return m.failError
	}
	if d, ok := m.departments[id]; ok {
		d.IsActive = false
	}
	for _, t := range m.tasks {
		if t.DepartmentID == id {
			t.IsActive = false
		}
	}
	return nil
}

func (m *MockRepository) GetTasksByDepartment(departmentID int64, includeInactive bool) ([]*department.Task, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var result []*department.Task
	for _, t := range m.tasks {
		if t.DepartmentID == departmentID && (includeInactive || t.IsActive) {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *MockRepository) GetTaskByID(id int64) (*department.Task, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.tasks[id], nil
}

func (m *MockRepository) CreateTask(task *department.Task) error {
	if m.shouldFail {
		return m.failError
	}
	task.ID = m.nextTaskID
	m.nextTaskID++
	m.tasks[task.ID] = task
	return nil
}

func (m *MockRepository) UpdateTask(task *department.Task) error {
	if m.shouldFail {
		return m.failError
	}
	m.tasks[task.ID] = task
	return nil
}

func (m *MockRepository) DeactivateTask(id int64) error {
	if m.shouldFail {
		return m.failError
	}
	if t, ok := m.tasks[id]; ok {
		t.IsActive = false
	}
	return nil
}

var _ = Describe("Department Service", func() {
	var (
		mockRepo   *MockRepository
		service    *department.Service
		admin      *auth.User
		supervisor *auth.User
		staff      *auth.User
	)

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = department.NewService(mockRepo, logger)

		admin = &auth.User{ID: 1, Role: auth.RoleAdmin, Department: "Management", IsActive: true}
		supervisor = &auth.User{ID: 2, Role: auth.RoleSupervisor, Department: "Engineering", IsActive: true}
		staff = &auth.User{ID: 3, Role: auth.RoleStaff, Department: "Engineering", IsActive: true}
	})

	Describe("CreateDepartment", func() {
		It("should create a department for an admin", func() {
			dept, err := service.CreateDepartment(admin, department.CreateDepartmentDTO{
				Name:        "Engineering",
				Description: "Product engineering",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(dept.ID).To(BeNumerically(">", 0))
			Expect(dept.IsActive).To(BeTrue())
		})

		It("should reject a duplicate name", func() {
			_, err := service.CreateDepartment(admin, department.CreateDepartmentDTO{Name: "Engineering"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CreateDepartment(admin, department.CreateDepartmentDTO{Name: "Engineering"})
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDuplicateDepartment))
		})

		It("should reject a blank name", func() {
			_, err := service.CreateDepartment(admin, department.CreateDepartmentDTO{Name: "   "})
			Expect(err).To(HaveOccurred())
		})

		It("should reject supervisors", func() {
			_, err := service.CreateDepartment(supervisor, department.CreateDepartmentDTO{Name: "Sales"})
			Expect(err).To(Equal(internal.ErrUnauthorizedAccess))
		})

		It("should reject staff", func() {
			_, err := service.CreateDepartment(staff, department.CreateDepartmentDTO{Name: "Sales"})
			Expect(err).To(Equal(internal.ErrUnauthorizedAccess))
		})
	})

	Describe("UpdateDepartment", func() {
		var dept *department.Department

		BeforeEach(func() {
			var err error
			dept, err = service.CreateDepartment(admin, department.CreateDepartmentDTO{Name: "Engineering"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should rename a department", func() {
			updated, err := service.UpdateDepartment(admin, dept.ID, department.UpdateDepartmentDTO{
				Name:        "Platform Engineering",
				Description: "Renamed",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Name).To(Equal("Platform Engineering"))
		})

		It("should reject renaming onto an existing name", func() {
			_, err := service.CreateDepartment(admin, department.CreateDepartmentDTO{Name: "Finance"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.UpdateDepartment(admin, dept.ID, department.UpdateDepartmentDTO{Name: "Finance"})
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDuplicateDepartment))
		})

		It("should return not found for a missing department", func() {
			_, err := service.UpdateDepartment(admin, 999, department.UpdateDepartmentDTO{Name: "Ghost"})
			Expect(err).To(Equal(internal.ErrDepartmentNotFound))
		})
	})

	Describe("DeleteDepartment", func() {
		var dept *department.Department

		BeforeEach(func() {
			var err error
			dept, err = service.CreateDepartment(admin, department.CreateDepartmentDTO{Name: "Engineering"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CreateTask(admin, dept.ID, department.CreateTaskDTO{Name: "Code Review"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should soft delete the department and its tasks", func() {
			err := service.DeleteDepartment(admin, dept.ID)
			Expect(err).NotTo(HaveOccurred())

			stored, _ := mockRepo.GetDepartmentByID(dept.ID)
			Expect(stored.IsActive).To(BeFalse())

			tasks, _ := mockRepo.GetTasksByDepartment(dept.ID, true)
			Expect(tasks).To(HaveLen(1))
			Expect(tasks[0].IsActive).To(BeFalse())
		})

		It("should reject non-admins", func() {
			err := service.DeleteDepartment(supervisor, dept.ID)
			Expect(err).To(Equal(internal.ErrUnauthorizedAccess))
		})
	})

	Describe("GetAllDepartments", func() {
		BeforeEach(func() {
			dept, err := service.CreateDepartment(admin, department.CreateDepartmentDTO{Name: "Engineering"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CreateDepartment(admin, department.CreateDepartmentDTO{Name: "Finance"})
			Expect(err).NotTo(HaveOccurred())
			Expect(service.DeleteDepartment(admin, dept.ID)).To(Succeed())
		})

		It("should hide inactive departments from non-admins", func() {
			depts, err := service.GetAllDepartments(staff)
			Expect(err).NotTo(HaveOccurred())
			Expect(depts).To(HaveLen(1))
			Expect(depts[0].Name).To(Equal("Finance"))
		})

		It("should include inactive departments for admins", func() {
			depts, err := service.GetAllDepartments(admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(depts).To(HaveLen(2))
		})
	})

	Describe("Task management", func() {
		var engineering *department.Department
		var finance *department.Department

		BeforeEach(func() {
			var err error
			engineering, err = service.CreateDepartment(admin, department.CreateDepartmentDTO{Name: "Engineering"})
			Expect(err).NotTo(HaveOccurred())
			finance, err = service.CreateDepartment(admin, department.CreateDepartmentDTO{Name: "Finance"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should let a supervisor create tasks in their own department", func() {
			task, err := service.CreateTask(supervisor, engineering.ID, department.CreateTaskDTO{Name: "Code Review"})
			Expect(err).NotTo(HaveOccurred())
			Expect(task.DepartmentID).To(Equal(engineering.ID))
		})

		It("should reject a supervisor creating tasks in another department", func() {
			_, err := service.CreateTask(supervisor, finance.ID, department.CreateTaskDTO{Name: "Audit"})
			Expect(err).To(Equal(internal.ErrUnauthorizedAccess))
		})

		It("should reject staff creating tasks anywhere", func() {
			_, err := service.CreateTask(staff, engineering.ID, department.CreateTaskDTO{Name: "Code Review"})
			Expect(err).To(Equal(internal.ErrUnauthorizedAccess))
		})

		It("should let an admin create tasks in any department", func() {
			_, err := service.CreateTask(admin, finance.ID, department.CreateTaskDTO{Name: "Audit"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return not found for tasks in a missing department", func() {
			_, err := service.CreateTask(admin, 999, department.CreateTaskDTO{Name: "Ghost"})
			Expect(err).To(Equal(internal.ErrDepartmentNotFound))
		})

		Describe("UpdateTask", func() {
			var task *department.Task

			BeforeEach(func() {
				var err error
				task, err = service.CreateTask(admin, engineering.ID, department.CreateTaskDTO{Name: "Code Review"})
				Expect(err).NotTo(HaveOccurred())
			})

			It("should update name and description", func() {
				updated, err := service.UpdateTask(supervisor, task.ID, department.UpdateTaskDTO{
					Name:        "Design Review",
					Description: "Review design documents",
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(updated.Name).To(Equal("Design Review"))
				Expect(updated.DepartmentID).To(Equal(engineering.ID))
			})

			It("should toggle activity when requested", func() {
				inactive := false
				updated, err := service.UpdateTask(supervisor, task.ID, department.UpdateTaskDTO{
					Name:     "Code Review",
					IsActive: &inactive,
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(updated.IsActive).To(BeFalse())
			})

			It("should reject supervisors from other departments", func() {
				financeSupervisor := &auth.User{ID: 9, Role: auth.RoleSupervisor, Department: "Finance", IsActive: true}
				_, err := service.UpdateTask(financeSupervisor, task.ID, department.UpdateTaskDTO{Name: "Hijack"})
				Expect(err).To(Equal(internal.ErrUnauthorizedAccess))
			})

			It("should return not found for a missing task", func() {
				_, err := service.UpdateTask(admin, 999, department.UpdateTaskDTO{Name: "Ghost"})
				Expect(err).To(Equal(internal.ErrTaskNotFound))
			})
		})

		Describe("DeleteTask", func() {
			It("should soft delete a task", func() {
				task, err := service.CreateTask(admin, engineering.ID, department.CreateTaskDTO{Name: "Code Review"})
				Expect(err).NotTo(HaveOccurred())

				Expect(service.DeleteTask(supervisor, task.ID)).To(Succeed())

				tasks, err := service.GetTasks(engineering.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(tasks).To(BeEmpty())
			})

			It("should reject staff", func() {
				task, err := service.CreateTask(admin, engineering.ID, department.CreateTaskDTO{Name: "Code Review"})
				Expect(err).NotTo(HaveOccurred())

				err = service.DeleteTask(staff, task.ID)
				Expect(err).To(Equal(internal.ErrUnauthorizedAccess))
			})
		})

		Describe("GetTasks", func() {
			It("should list only active tasks", func() {
				active, err := service.CreateTask(admin, engineering.ID, department.CreateTaskDTO{Name: "Code Review"})
				Expect(err).NotTo(HaveOccurred())
				inactive, err := service.CreateTask(admin, engineering.ID, department.CreateTaskDTO{Name: "Legacy Migration"})
				Expect(err).NotTo(HaveOccurred())
				Expect(service.DeleteTask(admin, inactive.ID)).To(Succeed())

				tasks, err := service.GetTasks(engineering.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(tasks).To(HaveLen(1))
				Expect(tasks[0].ID).To(Equal(active.ID))
			})
		})
	})

	Context("when the repository fails", func() {
		It("should surface the error", func() {
			mockRepo.SetShouldFail(true, errors.New("database error"))
			_, err := service.GetAllDepartments(admin)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("database error"))
		})
	})
})

package postgres_test

import (
	"testing"
	"time"

	"github.com/frahmantamala/timesheet-management/internal/department"
	departmentPostgres "github.com/frahmantamala/timesheet-management/internal/department/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestDepartmentPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Department Postgres Suite")
}

// SQLite-compatible models for testing
type SQLiteDepartment struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	IsActive    bool      `gorm:"column:is_active;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (SQLiteDepartment) TableName() string {
	return "departments"
}

type SQLiteTask struct {
	ID           int64     `gorm:"primaryKey"`
	DepartmentID int64     `gorm:"column:department_id;index;not null"`
	Name         string    `gorm:"column:name;not null"`
	Description  string    `gorm:"column:description"`
	IsActive     bool      `gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (SQLiteTask) TableName() string {
	return "tasks"
}

var _ = Describe("Department PostgreSQL Repository", func() {
	var (
		db   *gorm.DB
		repo department.RepositoryAPI
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteDepartment{}, &SQLiteTask{})
		Expect(err).NotTo(HaveOccurred())

		repo = departmentPostgres.NewDepartmentRepository(db)
	})

	Describe("CreateDepartment", func() {
		It("should create a department", func() {
			dept := department.NewDepartment("Engineering", "Product engineering")
			err := repo.CreateDepartment(dept)
			Expect(err).NotTo(HaveOccurred())
			Expect(dept.ID).To(BeNumerically(">", 0))
		})

		It("should enforce the unique name constraint", func() {
			Expect(repo.CreateDepartment(department.NewDepartment("Engineering", ""))).To(Succeed())
			err := repo.CreateDepartment(department.NewDepartment("Engineering", "duplicate"))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("GetAllDepartments", func() {
		BeforeEach(func() {
			Expect(repo.CreateDepartment(department.NewDepartment("Finance", ""))).To(Succeed())
			Expect(repo.CreateDepartment(department.NewDepartment("Engineering", ""))).To(Succeed())

			archived := department.NewDepartment("Legal", "")
			Expect(repo.CreateDepartment(archived)).To(Succeed())
			Expect(repo.DeactivateDepartment(archived.ID)).To(Succeed())
		})

		It("should return active departments ordered by name", func() {
			depts, err := repo.GetAllDepartments(false)
			Expect(err).NotTo(HaveOccurred())
			Expect(depts).To(HaveLen(2))
			Expect(depts[0].Name).To(Equal("Engineering"))
			Expect(depts[1].Name).To(Equal("Finance"))
		})

		It("should include inactive departments when asked", func() {
			depts, err := repo.GetAllDepartments(true)
			Expect(err).NotTo(HaveOccurred())
			Expect(depts).To(HaveLen(3))
		})
	})

	Describe("GetDepartmentByName", func() {
		BeforeEach(func() {
			Expect(repo.CreateDepartment(department.NewDepartment("Engineering", ""))).To(Succeed())
		})

		It("should find an existing department", func() {
			dept, err := repo.GetDepartmentByName("Engineering")
			Expect(err).NotTo(HaveOccurred())
			Expect(dept).NotTo(BeNil())
			Expect(dept.Name).To(Equal("Engineering"))
		})

		It("should return nil for a missing name", func() {
			dept, err := repo.GetDepartmentByName("Ghost")
			Expect(err).NotTo(HaveOccurred())
			Expect(dept).To(BeNil())
		})
	})

	Describe("DeactivateDepartment", func() {
		var dept *department.Department

		BeforeEach(func() {
			dept = department.NewDepartment("Engineering", "")
			Expect(repo.CreateDepartment(dept)).To(Succeed())
			Expect(repo.CreateTask(department.NewTask(dept.ID, "Code Review", ""))).To(Succeed())
			Expect(repo.CreateTask(department.NewTask(dept.ID, "Deployment", ""))).To(Succeed())
		})

		It("should deactivate the department and cascade to its tasks", func() {
			Expect(repo.DeactivateDepartment(dept.ID)).To(Succeed())

			stored, err := repo.GetDepartmentByID(dept.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.IsActive).To(BeFalse())

			tasks, err := repo.GetTasksByDepartment(dept.ID, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(tasks).To(HaveLen(2))
			for _, task := range tasks {
				Expect(task.IsActive).To(BeFalse())
			}
		})

		It("should not touch tasks of other departments", func() {
			other := department.NewDepartment("Finance", "")
			Expect(repo.CreateDepartment(other)).To(Succeed())
			Expect(repo.CreateTask(department.NewTask(other.ID, "Audit", ""))).To(Succeed())

			Expect(repo.DeactivateDepartment(dept.ID)).To(Succeed())

			tasks, err := repo.GetTasksByDepartment(other.ID, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(tasks).To(HaveLen(1))
		})
	})

	Describe("Tasks", func() {
		var dept *department.Department

		BeforeEach(func() {
			dept = department.NewDepartment("Engineering", "")
			Expect(repo.CreateDepartment(dept)).To(Succeed())
		})

		It("should create and fetch a task", func() {
			task := department.NewTask(dept.ID, "Code Review", "Review pull requests")
			Expect(repo.CreateTask(task)).To(Succeed())
			Expect(task.ID).To(BeNumerically(">", 0))

			stored, err := repo.GetTaskByID(task.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Name).To(Equal("Code Review"))
			Expect(stored.DepartmentID).To(Equal(dept.ID))
		})

		It("should return nil for a missing task", func() {
			task, err := repo.GetTaskByID(999)
			Expect(err).NotTo(HaveOccurred())
			Expect(task).To(BeNil())
		})

		It("should list active tasks ordered by name", func() {
			Expect(repo.CreateTask(department.NewTask(dept.ID, "Deployment", ""))).To(Succeed())
			Expect(repo.CreateTask(department.NewTask(dept.ID, "Code Review", ""))).To(Succeed())

			retired := department.NewTask(dept.ID, "Legacy Migration", "")
			Expect(repo.CreateTask(retired)).To(Succeed())
			Expect(repo.DeactivateTask(retired.ID)).To(Succeed())

			tasks, err := repo.GetTasksByDepartment(dept.ID, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(tasks).To(HaveLen(2))
			Expect(tasks[0].Name).To(Equal("Code Review"))
			Expect(tasks[1].Name).To(Equal("Deployment"))
		})

		It("should update a task in place", func() {
			task := department.NewTask(dept.ID, "Code Review", "")
			Expect(repo.CreateTask(task)).To(Succeed())

			task.Description = "Review pull requests"
			Expect(repo.UpdateTask(task)).To(Succeed())

			stored, err := repo.GetTaskByID(task.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Description).To(Equal("Review pull requests"))
		})
	})
})

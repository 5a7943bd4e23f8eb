package postgres

import (
	"github.com/frahmantamala/timesheet-management/internal/department"
	"gorm.io/gorm"
)

type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) department.RepositoryAPI {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) GetAllDepartments(includeInactive bool) ([]*department.Department, error) {
	var depts []*department.Department
	q := r.db.Order("name ASC")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&depts).Error
	return depts, err
}

func (r *DepartmentRepository) GetDepartmentByID(id int64) (*department.Department, error) {
	var dept department.Department
	err := r.db.Where("id = ?", id).First(&dept).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &dept, nil
}

func (r *DepartmentRepository) GetDepartmentByName(name string) (*department.Department, error) {
	var dept department.Department
	err := r.db.Where("name = ?", name).First(&dept).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &dept, nil
}

func (r *DepartmentRepository) CreateDepartment(dept *department.Department) error {
	return r.db.Create(dept).Error
}

func (r *DepartmentRepository) UpdateDepartment(dept *department.Department) error {
	return r.db.Save(dept).Error
}

// DeactivateDepartment soft deletes the department and its tasks together.
func (r *DepartmentRepository) DeactivateDepartment(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&department.Department{}).
			Where("id = ?", id).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Model(&department.Task{}).
			Where("department_id = ?", id).
			Update("is_active", false).Error
	})
}

func (r *DepartmentRepository) GetTasksByDepartment(departmentID int64, includeInactive bool) ([]*department.Task, error) {
	var tasks []*department.Task
	q := r.db.Where("department_id = ?", departmentID).Order("name ASC")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&tasks).Error
	return tasks, err
}

func (r *DepartmentRepository) GetTaskByID(id int64) (*department.Task, error) {
	var task department.Task
	err := r.db.Where("id = ?", id).First(&task).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

func (r *DepartmentRepository) CreateTask(task *department.Task) error {
	return r.db.Create(task).Error
}

func (r *DepartmentRepository) UpdateTask(task *department.Task) error {
	return r.db.Save(task).Error
}

func (r *DepartmentRepository) DeactivateTask(id int64) error {
	return r.db.Model(&department.Task{}).Where("id = ?", id).Update("is_active", false).Error
}

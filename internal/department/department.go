package department

import (
	"time"
)

// Department groups users and tasks. Deleting one is a soft delete that
// also deactivates its tasks.
type Department struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"column:name;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	IsActive    bool      `gorm:"column:is_active;default:true" json:"isActive"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (Department) TableName() string {
	return "departments"
}

func NewDepartment(name, description string) *Department {
	now := time.Now()
	return &Department{
		Name:        name,
		Description: description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Task is a unit of work entries are logged against. A task belongs to
// exactly one department and never moves.
type Task struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	DepartmentID int64     `gorm:"column:department_id;index;not null" json:"departmentId"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	Description  string    `gorm:"column:description" json:"description"`
	IsActive     bool      `gorm:"column:is_active;default:true" json:"isActive"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (Task) TableName() string {
	return "tasks"
}

func NewTask(departmentID int64, name, description string) *Task {
	now := time.Now()
	return &Task{
		DepartmentID: departmentID,
		Name:         name,
		Description:  description,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

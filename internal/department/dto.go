package department

import (
	"strings"

	"github.com/frahmantamala/timesheet-management/internal"
)

type CreateDepartmentDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (d *CreateDepartmentDTO) Validate() *internal.AppError {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateDepartmentDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (d *UpdateDepartmentDTO) Validate() *internal.AppError {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// Tasks carry no department field on update: a task stays in the
// department it was created in.
type CreateTaskDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (d *CreateTaskDTO) Validate() *internal.AppError {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateTaskDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
}

func (d *UpdateTaskDTO) Validate() *internal.AppError {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type DepartmentsResponse struct {
	Departments []*Department `json:"departments"`
}

type TasksResponse struct {
	Tasks []*Task `json:"tasks"`
}

package department

import (
	"log/slog"
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/auth"
)

type RepositoryAPI interface {
	GetAllDepartments(includeInactive bool) ([]*Department, error)
	GetDepartmentByID(id int64) (*Department, error)
	GetDepartmentByName(name string) (*Department, error)
	CreateDepartment(dept *Department) error
	UpdateDepartment(dept *Department) error
	DeactivateDepartment(id int64) error

	GetTasksByDepartment(departmentID int64, includeInactive bool) ([]*Task, error)
	GetTaskByID(id int64) (*Task, error)
	CreateTask(task *Task) error
	UpdateTask(task *Task) error
	DeactivateTask(id int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// canManageTasks allows admins everywhere and supervisors inside their own
// department. Staff never manage tasks.
func (s *Service) canManageTasks(user *auth.User, dept *Department) bool {
	if user.IsAdmin() {
		return true
	}
	return user.IsSupervisor() && user.Department == dept.Name
}

func (s *Service) GetAllDepartments(user *auth.User) ([]*Department, error) {
	depts, err := s.repo.GetAllDepartments(user.IsAdmin())
	if err != nil {
		s.logger.Error("failed to list departments", "error", err)
		return nil, err
	}
	if depts == nil {
		depts = []*Department{}
	}
	return depts, nil
}

func (s *Service) GetDepartment(id int64) (*Department, error) {
	dept, err := s.repo.GetDepartmentByID(id)
	if err != nil {
		s.logger.Error("failed to get department", "error", err, "department_id", id)
		return nil, err
	}
	if dept == nil {
		return nil, internal.ErrDepartmentNotFound
	}
	return dept, nil
}

func (s *Service) CreateDepartment(user *auth.User, dto CreateDepartmentDTO) (*Department, error) {
	if !user.IsAdmin() {
		return nil, internal.ErrUnauthorizedAccess
	}
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	existing, err := s.repo.GetDepartmentByName(dto.Name)
	if err != nil {
		s.logger.Error("failed to check department name", "error", err, "name", dto.Name)
		return nil, err
	}
	if existing != nil {
		return nil, internal.NewConflictError("Department name already in use", internal.ErrCodeDuplicateDepartment)
	}

	dept := NewDepartment(dto.Name, dto.Description)
	if err := s.repo.CreateDepartment(dept); err != nil {
		s.logger.Error("failed to create department", "error", err, "name", dto.Name)
		return nil, err
	}

	s.logger.Info("department created", "department_id", dept.ID, "name", dept.Name, "created_by", user.ID)
	return dept, nil
}

func (s *Service) UpdateDepartment(user *auth.User, id int64, dto UpdateDepartmentDTO) (*Department, error) {
	if !user.IsAdmin() {
		return nil, internal.ErrUnauthorizedAccess
	}
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	dept, err := s.GetDepartment(id)
	if err != nil {
		return nil, err
	}

	if dto.Name != dept.Name {
		existing, err := s.repo.GetDepartmentByName(dto.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, internal.NewConflictError("Department name already in use", internal.ErrCodeDuplicateDepartment)
		}
	}

	dept.Name = dto.Name
	dept.Description = dto.Description
	dept.UpdatedAt = time.Now()
	if err := s.repo.UpdateDepartment(dept); err != nil {
		s.logger.Error("failed to update department", "error", err, "department_id", id)
		return nil, err
	}
	return dept, nil
}

// DeleteDepartment soft deletes the department and every task in it.
func (s *Service) DeleteDepartment(user *auth.User, id int64) error {
	if !user.IsAdmin() {
		return internal.ErrUnauthorizedAccess
	}

	if _, err := s.GetDepartment(id); err != nil {
		return err
	}

	if err := s.repo.DeactivateDepartment(id); err != nil {
		s.logger.Error("failed to deactivate department", "error", err, "department_id", id)
		return err
	}

	s.logger.Info("department deactivated", "department_id", id, "deleted_by", user.ID)
	return nil
}

// GetTasks lists a department's active tasks. This feeds entry forms, so
// every authenticated user may call it.
func (s *Service) GetTasks(departmentID int64) ([]*Task, error) {
	if _, err := s.GetDepartment(departmentID); err != nil {
		return nil, err
	}

	tasks, err := s.repo.GetTasksByDepartment(departmentID, false)
	if err != nil {
		s.logger.Error("failed to list tasks", "error", err, "department_id", departmentID)
		return nil, err
	}
	if tasks == nil {
		tasks = []*Task{}
	}
	return tasks, nil
}

func (s *Service) CreateTask(user *auth.User, departmentID int64, dto CreateTaskDTO) (*Task, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	dept, err := s.GetDepartment(departmentID)
	if err != nil {
		return nil, err
	}
	if !s.canManageTasks(user, dept) {
		return nil, internal.ErrUnauthorizedAccess
	}

	task := NewTask(departmentID, dto.Name, dto.Description)
	if err := s.repo.CreateTask(task); err != nil {
		s.logger.Error("failed to create task", "error", err, "department_id", departmentID)
		return nil, err
	}

	s.logger.Info("task created", "task_id", task.ID, "department_id", departmentID, "created_by", user.ID)
	return task, nil
}

func (s *Service) UpdateTask(user *auth.User, taskID int64, dto UpdateTaskDTO) (*Task, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	task, err := s.repo.GetTaskByID(taskID)
	if err != nil {
		s.logger.Error("failed to get task", "error", err, "task_id", taskID)
		return nil, err
	}
	if task == nil {
		return nil, internal.ErrTaskNotFound
	}

	dept, err := s.GetDepartment(task.DepartmentID)
	if err != nil {
		return nil, err
	}
	if !s.canManageTasks(user, dept) {
		return nil, internal.ErrUnauthorizedAccess
	}

	task.Name = dto.Name
	task.Description = dto.Description
	if dto.IsActive != nil {
		task.IsActive = *dto.IsActive
	}
	task.UpdatedAt = time.Now()
	if err := s.repo.UpdateTask(task); err != nil {
		s.logger.Error("failed to update task", "error", err, "task_id", taskID)
		return nil, err
	}
	return task, nil
}

func (s *Service) DeleteTask(user *auth.User, taskID int64) error {
	task, err := s.repo.GetTaskByID(taskID)
	if err != nil {
		s.logger.Error("failed to get task", "error", err, "task_id", taskID)
		return err
	}
	if task == nil {
		return internal.ErrTaskNotFound
	}

	dept, err := s.GetDepartment(task.DepartmentID)
	if err != nil {
		return err
	}
	if !s.canManageTasks(user, dept) {
		return internal.ErrUnauthorizedAccess
	}

	if err := s.repo.DeactivateTask(taskID); err != nil {
		s.logger.Error("failed to deactivate task", "error", err, "task_id", taskID)
		return err
	}
	return nil
}

package postgres

import (
	"github.com/frahmantamala/timesheet-management/internal/scope"
	"github.com/frahmantamala/timesheet-management/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(sc scope.Scope) ([]*user.User, error) {
	var users []*user.User
	q := r.db.Order("name ASC")
	q = sc.ApplyUsers(q)
	err := q.Find(&users).Error
	return users, err
}

func (r *UserRepository) GetByID(id int64) (*user.User, error) {
	var u user.User
	err := r.db.Where("id = ?", id).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string) (*user.User, error) {
	var u user.User
	err := r.db.Where("email = ?", email).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(u *user.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) Update(u *user.User) error {
	return r.db.Save(u).Error
}

func (r *UserRepository) Deactivate(id int64) error {
	res := r.db.Model(&user.User{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	return nil
}

// ComplianceRoster joins every visible active user with their most recent
// entry date. Users without entries appear with a null date.
func (r *UserRepository) ComplianceRoster(sc scope.Scope) ([]user.ComplianceRow, error) {
	var rows []user.ComplianceRow

	q := r.db.Table("users").
		Select(`users.id AS user_id,
			users.name,
			users.email,
			users.department,
			MAX(timesheet_entries.date) AS last_entry_date,
			COUNT(timesheet_entries.id) AS entry_count`).
		Joins("LEFT JOIN timesheet_entries ON timesheet_entries.user_id = users.id").
		Where("users.is_active = ?", true).
		Group("users.id, users.name, users.email, users.department").
		Order("users.name ASC")

	q = sc.ApplyUsers(q)

	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

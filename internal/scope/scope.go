package scope

import (
	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/auth"
	"gorm.io/gorm"
)

// Scope is the row-visibility decision for one request. It can be applied to
// a query or evaluated against a row in memory; the two must agree.
type Scope struct {
	// All grants unrestricted visibility.
	All bool
	// Department restricts to rows whose department matches.
	Department string
	// UserID restricts to rows owned by this user.
	UserID int64
}

// Resolve computes the visibility scope for a caller. The department override
// is honored for admins only; supervisors and staff keep their own scope no
// matter what they ask for. Unknown roles fail closed.
func Resolve(user *auth.User, departmentOverride string) (Scope, error) {
	if user == nil {
		return Scope{}, internal.ErrUnknownRole
	}

	switch user.Role {
	case auth.RoleAdmin:
		if departmentOverride != "" {
			return Scope{Department: departmentOverride}, nil
		}
		return Scope{All: true}, nil
	case auth.RoleSupervisor:
		return Scope{Department: user.Department}, nil
	case auth.RoleStaff:
		return Scope{UserID: user.ID}, nil
	default:
		return Scope{}, internal.ErrUnknownRole
	}
}

// ApplyEntries narrows a timesheet entry query to the scope.
func (s Scope) ApplyEntries(db *gorm.DB) *gorm.DB {
	switch {
	case s.All:
		return db
	case s.UserID != 0:
		return db.Where("timesheet_entries.user_id = ?", s.UserID)
	case s.Department != "":
		return db.Where("timesheet_entries.department = ?", s.Department)
	default:
		// an empty scope matches nothing
		return db.Where("1 = 0")
	}
}

// ApplyUsers narrows a user query to the scope.
func (s Scope) ApplyUsers(db *gorm.DB) *gorm.DB {
	switch {
	case s.All:
		return db
	case s.UserID != 0:
		return db.Where("users.id = ?", s.UserID)
	case s.Department != "":
		return db.Where("users.department = ?", s.Department)
	default:
		return db.Where("1 = 0")
	}
}

// MatchesEntry reports whether an entry owned by ownerID in department is
// visible. Must stay in lockstep with ApplyEntries.
func (s Scope) MatchesEntry(ownerID int64, department string) bool {
	switch {
	case s.All:
		return true
	case s.UserID != 0:
		return ownerID == s.UserID
	case s.Department != "":
		return department == s.Department
	default:
		return false
	}
}

// MatchesUser reports whether a user row is visible. Must stay in lockstep
// with ApplyUsers.
func (s Scope) MatchesUser(userID int64, department string) bool {
	switch {
	case s.All:
		return true
	case s.UserID != 0:
		return userID == s.UserID
	case s.Department != "":
		return department == s.Department
	default:
		return false
	}
}

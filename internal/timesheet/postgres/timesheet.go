package postgres

import (
	"github.com/frahmantamala/timesheet-management/internal/scope"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EntryRepository implements timesheet.Repository using GORM.
type EntryRepository struct {
	db *gorm.DB
}

func NewEntryRepository(db *gorm.DB) timesheet.Repository {
	return &EntryRepository{db: db}
}

// List applies the caller's scope plus the request filters and returns one
// page of entries with the unpaginated total.
func (r *EntryRepository) List(s scope.Scope, q timesheet.ListQuery) ([]*timesheet.Entry, int64, error) {
	base := s.ApplyEntries(r.db.Model(&timesheet.Entry{}))

	if q.Search != "" {
		like := "%" + q.Search + "%"
		base = base.Where(
			"client_file_number LIKE ? OR task LIKE ? OR activity LIKE ? OR comments LIKE ?",
			like, like, like, like)
	}
	if q.StartDate != nil {
		base = base.Where("date >= ?", q.StartDate.String())
	}
	if q.EndDate != nil {
		base = base.Where("date <= ?", q.EndDate.String())
	}
	if q.Status != "" {
		base = base.Where("status = ?", q.Status)
	}
	if q.Priority != "" {
		base = base.Where("priority = ?", q.Priority)
	}
	if q.Billable != nil {
		base = base.Where("billable = ?", *q.Billable)
	}
	if q.UserEmail != "" {
		base = base.Where("user_id IN (SELECT id FROM users WHERE email = ?)", q.UserEmail)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []*timesheet.Entry
	err := base.
		Order(q.SortBy + " " + q.SortOrder).
		Order("start_time " + q.SortOrder).
		Limit(q.Limit).
		Offset(q.Offset()).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// GetByID fetches one entry inside the scope; out-of-scope rows read as
// missing.
func (r *EntryRepository) GetByID(s scope.Scope, id int64) (*timesheet.Entry, error) {
	var entry timesheet.Entry
	err := s.ApplyEntries(r.db).Where("id = ?", id).First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, timesheet.ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// Create runs the overlap scan and the insert in one transaction. The
// owner's day is locked so two concurrent writes for the same user and
// date serialize instead of both passing the scan.
func (r *EntryRepository) Create(entry *timesheet.Entry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		conflictErr, err := r.checkConflicts(tx, entry, 0)
		if err != nil {
			return err
		}
		if conflictErr != nil {
			return conflictErr
		}
		return tx.Create(entry).Error
	})
}

// Update re-runs the overlap scan excluding the entry itself, then saves.
func (r *EntryRepository) Update(entry *timesheet.Entry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		conflictErr, err := r.checkConflicts(tx, entry, entry.ID)
		if err != nil {
			return err
		}
		if conflictErr != nil {
			return conflictErr
		}
		return tx.Save(entry).Error
	})
}

func (r *EntryRepository) checkConflicts(tx *gorm.DB, entry *timesheet.Entry, excludeID int64) (error, error) {
	q := tx.Where("user_id = ? AND date = ?", entry.UserID, entry.Date.String())
	// FOR UPDATE alone is not enough: when the owner has no rows for the day
	// yet, there is nothing to lock and two first inserts can both pass the
	// scan. The advisory lock on (user, date) serializes the whole
	// scan-then-write section and is released at transaction end.
	// SQLite (tests) has neither; its single-writer lock covers both.
	if tx.Dialector.Name() == "postgres" {
		if err := tx.Exec(
			"SELECT pg_advisory_xact_lock(?::int, hashtext(?::text))",
			entry.UserID, entry.Date.String(),
		).Error; err != nil {
			return nil, err
		}
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var existing []*timesheet.Entry
	if err := q.Find(&existing).Error; err != nil {
		return nil, err
	}

	if conflict := timesheet.FindConflict(existing, entry.StartTime, entry.EndTime, excludeID); conflict != nil {
		return timesheet.NewOverlapError(conflict), nil
	}
	return nil, nil
}

// Delete hard-deletes an entry owned by userID. Rows owned by someone else
// read as missing.
func (r *EntryRepository) Delete(id, userID int64) error {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&timesheet.Entry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return timesheet.ErrEntryNotFound
	}
	return nil
}

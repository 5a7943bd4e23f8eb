package postgres

import (
	"time"

	"github.com/frahmantamala/timesheet-management/internal/report"
	"gorm.io/gorm"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) report.RepositoryAPI {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) ListByOwner(ownerID int64) ([]*report.CustomReport, error) {
	var reports []*report.CustomReport
	err := r.db.Where("owner_id = ?", ownerID).Order("name ASC").Find(&reports).Error
	return reports, err
}

func (r *ReportRepository) ListAll() ([]*report.CustomReport, error) {
	var reports []*report.CustomReport
	err := r.db.Order("name ASC").Find(&reports).Error
	return reports, err
}

func (r *ReportRepository) GetByID(id int64) (*report.CustomReport, error) {
	var rep report.CustomReport
	err := r.db.Where("id = ?", id).First(&rep).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &rep, nil
}

func (r *ReportRepository) Create(rep *report.CustomReport) error {
	return r.db.Create(rep).Error
}

func (r *ReportRepository) Update(rep *report.CustomReport) error {
	return r.db.Save(rep).Error
}

func (r *ReportRepository) Delete(id int64) error {
	return r.db.Where("id = ?", id).Delete(&report.CustomReport{}).Error
}

func (r *ReportRepository) Due(now time.Time) ([]*report.CustomReport, error) {
	var reports []*report.CustomReport
	err := r.db.
		Where("schedule <> ''").
		Where("next_run_at IS NOT NULL AND next_run_at <= ?", now).
		Order("next_run_at ASC").
		Find(&reports).Error
	return reports, err
}

func (r *ReportRepository) MarkRun(id int64, ranAt time.Time, nextRun *time.Time) error {
	return r.db.Model(&report.CustomReport{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_run_at": ranAt,
			"next_run_at": nextRun,
			"updated_at":  time.Now(),
		}).Error
}

package repository

import (
	"time"

	"gorm.io/gorm"

	"nurseprep/internal/models"
)

// SubjectProgressRepository handles the per-subject target rows advanced by
// the subject tracker.
type SubjectProgressRepository struct {
	db *gorm.DB
}

func NewSubjectProgressRepository(db *gorm.DB) *SubjectProgressRepository {
	return &SubjectProgressRepository{db: db}
}

// ReclaimRunning resets rows left `running` by a previous process lifetime
// back to `pending`. Returns how many rows were reclaimed.
func (r *SubjectProgressRepository) ReclaimRunning() (int64, error) {
	res := r.db.Model(&models.SubjectProgress{}).
		Where("status = ?", models.SubjectStatusRunning).
		Update("status", models.SubjectStatusPending)
	return res.RowsAffected, res.Error
}

// FindNextEligible picks the single highest-priority subject that still needs
// questions and is in a retryable state.
func (r *SubjectProgressRepository) FindNextEligible() (*models.SubjectProgress, error) {
	var row models.SubjectProgress
	err := r.db.Where("generated_count < target_count AND status IN ?",
		[]string{models.SubjectStatusPending, models.SubjectStatusError}).
		Order("sort_order ASC").
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// MarkRunning flags a subject as being worked on and stamps the run time.
func (r *SubjectProgressRepository) MarkRunning(id uint) error {
	now := time.Now()
	return r.db.Model(&models.SubjectProgress{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      models.SubjectStatusRunning,
			"last_run_at": &now,
		}).Error
}

// RecordSuccess advances the generated count by saved questions, clamped to
// the target, and clears the error state. Status becomes completed exactly
// when the target is reached.
func (r *SubjectProgressRepository) RecordSuccess(id uint, saved int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var row models.SubjectProgress
		if err := tx.Where("id = ?", id).First(&row).Error; err != nil {
			return err
		}

		newCount := row.GeneratedCount + saved
		if newCount > row.TargetCount {
			newCount = row.TargetCount
		}

		status := models.SubjectStatusPending
		if newCount >= row.TargetCount {
			status = models.SubjectStatusCompleted
		}

		return tx.Model(&models.SubjectProgress{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"generated_count": newCount,
				"status":          status,
				"error_count":     0,
				"last_error":      "",
			}).Error
	})
}

// RecordFailure increments the error counter and parks the row in `error`.
// Subject errors are never terminal; the next tick retries them.
func (r *SubjectProgressRepository) RecordFailure(id uint, errMsg string) error {
	return r.db.Model(&models.SubjectProgress{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      models.SubjectStatusError,
			"error_count": gorm.Expr("error_count + 1"),
			"last_error":  errMsg,
		}).Error
}

// FindAll returns the full catalog in processing order.
func (r *SubjectProgressRepository) FindAll() ([]models.SubjectProgress, error) {
	var rows []models.SubjectProgress
	err := r.db.Order("sort_order ASC").Find(&rows).Error
	return rows, err
}

// FindByID returns a single subject row.
func (r *SubjectProgressRepository) FindByID(id uint) (*models.SubjectProgress, error) {
	var row models.SubjectProgress
	if err := r.db.Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Totals sums target and generated counts across the catalog.
func (r *SubjectProgressRepository) Totals() (target int64, generated int64, err error) {
	err = r.db.Model(&models.SubjectProgress{}).
		Select("COALESCE(SUM(target_count), 0)").
		Scan(&target).Error
	if err != nil {
		return 0, 0, err
	}
	err = r.db.Model(&models.SubjectProgress{}).
		Select("COALESCE(SUM(generated_count), 0)").
		Scan(&generated).Error
	return target, generated, err
}

package repository

import (
	"time"

	"gorm.io/gorm"

	"nurseprep/internal/models"
)

// GenerationJobRepository handles admin-initiated generation jobs.
type GenerationJobRepository struct {
	db *gorm.DB
}

func NewGenerationJobRepository(db *gorm.DB) *GenerationJobRepository {
	return &GenerationJobRepository{db: db}
}

// Create inserts a new job.
func (r *GenerationJobRepository) Create(job *models.GenerationJob) error {
	return r.db.Create(job).Error
}

// FindNextActive picks the single oldest job that is pending or running.
func (r *GenerationJobRepository) FindNextActive() (*models.GenerationJob, error) {
	var job models.GenerationJob
	err := r.db.Where("status IN ?", []string{models.JobStatusPending, models.JobStatusRunning}).
		Order("created_at ASC, id ASC").
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// MarkRunning moves a pending job to running.
func (r *GenerationJobRepository) MarkRunning(id uint) error {
	return r.db.Model(&models.GenerationJob{}).
		Where("id = ? AND status = ?", id, models.JobStatusPending).
		Update("status", models.JobStatusRunning).Error
}

// MarkCompleted finalizes a job whose last batch already reached the total.
func (r *GenerationJobRepository) MarkCompleted(id uint) error {
	now := time.Now()
	return r.db.Model(&models.GenerationJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       models.JobStatusCompleted,
			"completed_at": &now,
		}).Error
}

// RecordProgress advances the generated count by saved questions, clamped to
// the total, resets the consecutive-error counter, and completes the job when
// the total is reached. Returns whether the job completed.
func (r *GenerationJobRepository) RecordProgress(id uint, saved int) (bool, error) {
	completed := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var job models.GenerationJob
		if err := tx.Where("id = ?", id).First(&job).Error; err != nil {
			return err
		}

		newCount := job.GeneratedCount + saved
		if newCount > job.TotalCount {
			newCount = job.TotalCount
		}

		updates := map[string]interface{}{
			"generated_count": newCount,
			"error_count":     0,
			"last_error":      "",
		}
		if newCount >= job.TotalCount {
			completed = true
			now := time.Now()
			updates["status"] = models.JobStatusCompleted
			updates["completed_at"] = &now
		}

		return tx.Model(&models.GenerationJob{}).
			Where("id = ?", id).
			Updates(updates).Error
	})
	return completed, err
}

// RecordFailure increments the consecutive-error counter and marks the job
// failed once the threshold is reached. Returns whether the job failed.
func (r *GenerationJobRepository) RecordFailure(id uint, errMsg string, maxErrors int) (bool, error) {
	failed := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var job models.GenerationJob
		if err := tx.Where("id = ?", id).First(&job).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"error_count": job.ErrorCount + 1,
			"last_error":  errMsg,
		}
		if maxErrors > 0 && job.ErrorCount+1 >= maxErrors {
			failed = true
			updates["status"] = models.JobStatusFailed
		}

		return tx.Model(&models.GenerationJob{}).
			Where("id = ?", id).
			Updates(updates).Error
	})
	return failed, err
}

// Pause parks any job that has not already finished.
func (r *GenerationJobRepository) Pause(id uint) error {
	return r.db.Model(&models.GenerationJob{}).
		Where("id = ? AND status IN ?", id,
			[]string{models.JobStatusPending, models.JobStatusRunning, models.JobStatusFailed}).
		Update("status", models.JobStatusPaused).Error
}

// Resume returns a paused or failed job to the queue with a clean error slate.
func (r *GenerationJobRepository) Resume(id uint) error {
	return r.db.Model(&models.GenerationJob{}).
		Where("id = ? AND status IN ?", id,
			[]string{models.JobStatusPaused, models.JobStatusFailed}).
		Updates(map[string]interface{}{
			"status":      models.JobStatusPending,
			"error_count": 0,
			"last_error":  "",
		}).Error
}

// Delete removes a job and its log rows in one transaction.
func (r *GenerationJobRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", id).Delete(&models.GenerationLog{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.GenerationJob{}).Error
	})
}

// FindByID returns a job by primary key.
func (r *GenerationJobRepository) FindByID(id uint) (*models.GenerationJob, error) {
	var job models.GenerationJob
	if err := r.db.Where("id = ?", id).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// FindByPublicID returns a job by its public UUID.
func (r *GenerationJobRepository) FindByPublicID(publicID string) (*models.GenerationJob, error) {
	var job models.GenerationJob
	if err := r.db.Where("public_id = ?", publicID).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// FindAll returns jobs newest first with pagination.
func (r *GenerationJobRepository) FindAll(limit, page int) ([]models.GenerationJob, int64, error) {
	var jobs []models.GenerationJob
	var total int64

	db := r.db.Model(&models.GenerationJob{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	err := db.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&jobs).Error
	return jobs, total, err
}

package repository

import (
	"gorm.io/gorm"

	"nurseprep/internal/models"
)

// GenerationLogRepository handles the append-only generation audit trail.
type GenerationLogRepository struct {
	db *gorm.DB
}

func NewGenerationLogRepository(db *gorm.DB) *GenerationLogRepository {
	return &GenerationLogRepository{db: db}
}

// Create appends one attempt record.
func (r *GenerationLogRepository) Create(entry *models.GenerationLog) error {
	return r.db.Create(entry).Error
}

// FindByJob returns a job's attempt history, newest first.
func (r *GenerationLogRepository) FindByJob(jobID uint, limit int) ([]models.GenerationLog, error) {
	var logs []models.GenerationLog
	q := r.db.Where("job_id = ?", jobID).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&logs).Error
	return logs, err
}

// FindRecent returns the most recent attempts across both loops.
func (r *GenerationLogRepository) FindRecent(limit int) ([]models.GenerationLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []models.GenerationLog
	err := r.db.Order("id DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

// CountByJob returns how many attempts a job has logged.
func (r *GenerationLogRepository) CountByJob(jobID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.GenerationLog{}).
		Where("job_id = ?", jobID).
		Count(&count).Error
	return count, err
}

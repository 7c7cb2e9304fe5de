package repository

import (
	"gorm.io/gorm"

	"nurseprep/internal/models"
)

// QuestionRepository handles the question bank.
type QuestionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// CreateBatch inserts all questions from one generation attempt.
func (r *QuestionRepository) CreateBatch(questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return r.db.Create(&questions).Error
}

// FindAll returns questions with pagination and optional category/subject filters.
func (r *QuestionRepository) FindAll(limit, page int, category, subject string) ([]models.Question, int64, error) {
	var questions []models.Question
	var total int64

	db := r.db.Model(&models.Question{})
	if category != "" {
		db = db.Where("category = ?", category)
	}
	if subject != "" {
		db = db.Where("subject = ?", subject)
	}

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

	err := db.Order("id DESC").Limit(limit).Offset(offset).Find(&questions).Error
	return questions, total, err
}

// Count returns the total question count.
func (r *QuestionRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Question{}).Count(&count).Error
	return count, err
}

// CountByCategory returns question counts grouped by category.
func (r *QuestionRepository) CountByCategory() (map[string]int64, error) {
	type row struct {
		Category string
		Count    int64
	}
	var rows []row
	err := r.db.Model(&models.Question{}).
		Select("category, COUNT(*) as count").
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Category] = rw.Count
	}
	return counts, nil
}

// DeleteBySubject removes all questions for one (category, subject) pair.
// Returns how many rows were deleted.
func (r *QuestionRepository) DeleteBySubject(category, subject string) (int64, error) {
	res := r.db.Where("category = ? AND subject = ?", category, subject).
		Delete(&models.Question{})
	return res.RowsAffected, res.Error
}

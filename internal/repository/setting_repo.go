package repository

import (
	"gorm.io/gorm"

	"nurseprep/internal/models"
)

// SettingRepository handles the single-row settings table.
type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// DB returns the underlying gorm.DB instance.
func (r *SettingRepository) DB() *gorm.DB {
	return r.db
}

// GetSettings returns the single settings row.
func (r *SettingRepository) GetSettings() (*models.Setting, error) {
	var setting models.Setting
	if err := r.db.First(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

// UpdateSetting updates a specific setting column.
func (r *SettingRepository) UpdateSetting(column string, value interface{}) error {
	return r.db.Model(&models.Setting{}).Where("1=1").Update(column, value).Error
}

// AutoGenEnabled reports whether the subject tracker's global toggle is on.
// A missing settings row counts as disabled.
func (r *SettingRepository) AutoGenEnabled() bool {
	setting, err := r.GetSettings()
	if err != nil {
		return false
	}
	return setting.AutoGenStatus == "on"
}

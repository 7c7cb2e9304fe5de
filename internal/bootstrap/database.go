package bootstrap

import (
	"fmt"

	"gorm.io/gorm"

	"nurseprep/internal/models"
)

// MigrateAndSeed ensures required tables exist and inserts baseline rows for
// the settings table and the subject catalog.
func MigrateAndSeed(db *gorm.DB) error {
	if err := db.AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	if err := seedDefaults(db); err != nil {
		return fmt.Errorf("seed defaults failed: %w", err)
	}
	return nil
}

func allModels() []interface{} {
	return []interface{}{
		&models.Setting{},
		&models.SubjectProgress{},
		&models.GenerationJob{},
		&models.GenerationLog{},
		&models.Question{},
	}
}

func seedDefaults(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := ensureDefaultSetting(tx); err != nil {
			return err
		}
		return ensureSubjectCatalog(tx)
	})
}

func ensureDefaultSetting(tx *gorm.DB) error {
	var count int64
	if err := tx.Model(&models.Setting{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return tx.Create(&models.Setting{AutoGenStatus: "on"}).Error
}

type seedSubject struct {
	subject string
	target  int
}

// The standing catalog. Targets are per (category, subject) pair; the
// subject tracker fills each to its target and then stops.
var subjectCatalog = map[string][]seedSubject{
	models.CategoryNCLEXRN: {
		{"Fundamentals of Nursing", 100},
		{"Pharmacology", 100},
		{"Medical-Surgical Nursing", 100},
		{"Pediatric Nursing", 100},
		{"Maternal & Newborn Nursing", 100},
		{"Mental Health Nursing", 100},
		{"Leadership & Management", 100},
		{"Infection Control", 100},
	},
	models.CategoryNCLEXPN: {
		{"Fundamentals of Nursing", 100},
		{"Pharmacology", 100},
		{"Medical-Surgical Nursing", 100},
		{"Maternal & Newborn Nursing", 100},
		{"Mental Health Nursing", 100},
		{"Infection Control", 100},
	},
	models.CategoryHESIA2: {
		{"Anatomy & Physiology", 100},
		{"Biology", 100},
		{"Chemistry", 100},
		{"Math", 100},
		{"Reading Comprehension", 100},
		{"Vocabulary", 100},
		{"Grammar", 100},
	},
}

// Categories in a stable seeding order so sort_order is deterministic.
var catalogOrder = []string{
	models.CategoryNCLEXRN,
	models.CategoryNCLEXPN,
	models.CategoryHESIA2,
}

func ensureSubjectCatalog(tx *gorm.DB) error {
	sortOrder := 0
	for _, category := range catalogOrder {
		for _, entry := range subjectCatalog[category] {
			sortOrder++

			var count int64
			err := tx.Model(&models.SubjectProgress{}).
				Where("category = ? AND subject = ?", category, entry.subject).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count > 0 {
				continue
			}

			row := models.SubjectProgress{
				Category:    category,
				Subject:     entry.subject,
				TargetCount: entry.target,
				Status:      models.SubjectStatusPending,
				SortOrder:   sortOrder,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

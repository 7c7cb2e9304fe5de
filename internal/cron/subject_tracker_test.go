package cron

import (
	"testing"

	"nurseprep/internal/models"
)

func TestSubjectTrackerAdvancesAndCompletes(t *testing.T) {
	db := openTestDB(t)
	seedAutoGen(t, db, "on")
	db.Create(&models.SubjectProgress{
		Category:       models.CategoryNCLEXRN,
		Subject:        "Pharmacology",
		TargetCount:    20,
		GeneratedCount: 15,
		Status:         models.SubjectStatusPending,
		SortOrder:      1,
	})

	llm := &stubLLM{resp: validQuestionsJSON(5)}
	tracker := newTestTracker(t, db, llm)
	tracker.Tick()

	var row models.SubjectProgress
	if err := db.First(&row).Error; err != nil {
		t.Fatalf("reload subject: %v", err)
	}
	if row.GeneratedCount != 20 {
		t.Errorf("GeneratedCount = %d, want 20", row.GeneratedCount)
	}
	if row.Status != models.SubjectStatusCompleted {
		t.Errorf("Status = %q, want completed", row.Status)
	}
	if row.LastRunAt == nil {
		t.Error("LastRunAt should be set")
	}

	// Batch is clamped to what the target still needs.
	var entry models.GenerationLog
	if err := db.First(&entry).Error; err != nil {
		t.Fatalf("reload log: %v", err)
	}
	if entry.QuestionsRequested != 5 {
		t.Errorf("QuestionsRequested = %d, want 5", entry.QuestionsRequested)
	}
	if entry.Status != models.LogStatusSuccess {
		t.Errorf("log Status = %q, want success", entry.Status)
	}

	var saved int64
	db.Model(&models.Question{}).Count(&saved)
	if saved != 5 {
		t.Errorf("saved questions = %d, want 5", saved)
	}
}

func TestSubjectTrackerReclaimsWithoutGenerating(t *testing.T) {
	db := openTestDB(t)
	seedAutoGen(t, db, "on")
	db.Create(&models.SubjectProgress{
		Category:    models.CategoryNCLEXRN,
		Subject:     "Pharmacology",
		TargetCount: 20,
		Status:      models.SubjectStatusRunning,
	})

	llm := &stubLLM{resp: validQuestionsJSON(5)}
	tracker := newTestTracker(t, db, llm)
	tracker.Tick()

	var row models.SubjectProgress
	db.First(&row)
	if row.Status != models.SubjectStatusPending {
		t.Errorf("Status = %q, want pending after reclaim", row.Status)
	}
	if row.GeneratedCount != 0 {
		t.Errorf("GeneratedCount = %d, want 0", row.GeneratedCount)
	}
	if llm.callCount() != 0 {
		t.Errorf("llm calls = %d, want 0 in a reclaim tick", llm.callCount())
	}
}

func TestSubjectTrackerRecordsFailure(t *testing.T) {
	db := openTestDB(t)
	seedAutoGen(t, db, "on")
	db.Create(&models.SubjectProgress{
		Category:    models.CategoryHESIA2,
		Subject:     "Chemistry",
		TargetCount: 10,
		Status:      models.SubjectStatusPending,
	})

	llm := &stubLLM{resp: "not json at all"}
	tracker := newTestTracker(t, db, llm)
	tracker.Tick()

	var row models.SubjectProgress
	db.First(&row)
	if row.Status != models.SubjectStatusError {
		t.Errorf("Status = %q, want error", row.Status)
	}
	if row.ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", row.ErrorCount)
	}
	if row.LastError == "" {
		t.Error("LastError should be set")
	}
	if row.GeneratedCount != 0 {
		t.Errorf("GeneratedCount = %d, want 0", row.GeneratedCount)
	}

	var entry models.GenerationLog
	db.First(&entry)
	if entry.Status != models.LogStatusFailed {
		t.Errorf("log Status = %q, want failed", entry.Status)
	}

	// Errored subjects stay eligible and recover on the next tick.
	llm.resp = validQuestionsJSON(10)
	tracker.Tick()
	db.First(&row)
	if row.Status != models.SubjectStatusCompleted {
		t.Errorf("Status = %q, want completed after retry", row.Status)
	}
	if row.ErrorCount != 0 {
		t.Errorf("ErrorCount = %d, want 0 after success", row.ErrorCount)
	}
}

func TestSubjectTrackerSwitchesOffWhenCatalogDone(t *testing.T) {
	db := openTestDB(t)
	seedAutoGen(t, db, "on")
	db.Create(&models.SubjectProgress{
		Category:       models.CategoryNCLEXRN,
		Subject:        "Pharmacology",
		TargetCount:    10,
		GeneratedCount: 10,
		Status:         models.SubjectStatusCompleted,
	})

	llm := &stubLLM{resp: validQuestionsJSON(5)}
	tracker := newTestTracker(t, db, llm)
	tracker.Tick()

	var setting models.Setting
	db.First(&setting)
	if setting.AutoGenStatus != "off" {
		t.Errorf("AutoGenStatus = %q, want off", setting.AutoGenStatus)
	}
	if llm.callCount() != 0 {
		t.Errorf("llm calls = %d, want 0", llm.callCount())
	}
}

func TestSubjectTrackerRespectsDisabledToggle(t *testing.T) {
	db := openTestDB(t)
	seedAutoGen(t, db, "off")
	db.Create(&models.SubjectProgress{
		Category:    models.CategoryNCLEXRN,
		Subject:     "Pharmacology",
		TargetCount: 10,
		Status:      models.SubjectStatusPending,
	})

	llm := &stubLLM{resp: validQuestionsJSON(5)}
	tracker := newTestTracker(t, db, llm)
	tracker.Tick()

	var row models.SubjectProgress
	db.First(&row)
	if row.Status != models.SubjectStatusPending {
		t.Errorf("Status = %q, want pending", row.Status)
	}
	if llm.callCount() != 0 {
		t.Errorf("llm calls = %d, want 0 when disabled", llm.callCount())
	}
}

func TestSubjectTrackerClampsOverDelivery(t *testing.T) {
	db := openTestDB(t)
	seedAutoGen(t, db, "on")
	db.Create(&models.SubjectProgress{
		Category:       models.CategoryNCLEXPN,
		Subject:        "Fundamentals of Nursing",
		TargetCount:    10,
		GeneratedCount: 8,
		Status:         models.SubjectStatusPending,
	})

	// Model returns more than the two requested.
	llm := &stubLLM{resp: validQuestionsJSON(5)}
	tracker := newTestTracker(t, db, llm)
	tracker.Tick()

	var row models.SubjectProgress
	db.First(&row)
	if row.GeneratedCount != 10 {
		t.Errorf("GeneratedCount = %d, want 10 (clamped)", row.GeneratedCount)
	}
	if row.Status != models.SubjectStatusCompleted {
		t.Errorf("Status = %q, want completed", row.Status)
	}

	// Extra questions are still kept in the bank.
	var saved int64
	db.Model(&models.Question{}).Count(&saved)
	if saved != 5 {
		t.Errorf("saved questions = %d, want 5", saved)
	}
}

package cron

import (
	"testing"

	"github.com/google/uuid"

	"nurseprep/internal/models"
	"nurseprep/internal/repository"
)

func newJob(total, batch int) *models.GenerationJob {
	return &models.GenerationJob{
		PublicID:   uuid.NewString(),
		Category:   models.CategoryNCLEXRN,
		Topic:      "Cardiac medications",
		Difficulty: models.DifficultyHard,
		TotalCount: total,
		BatchSize:  batch,
		Status:     models.JobStatusPending,
		CreatedBy:  "admin@example.com",
	}
}

func TestJobQueueAdvancesAndCompletes(t *testing.T) {
	db := openTestDB(t)
	job := newJob(5, 3)
	db.Create(job)

	llm := &stubLLM{queue: []stubReply{
		{resp: validQuestionsJSON(3)},
		{resp: validQuestionsJSON(2)},
	}}
	queue := newTestQueue(t, db, llm)

	queue.Tick()
	var got models.GenerationJob
	db.First(&got)
	if got.GeneratedCount != 3 {
		t.Errorf("GeneratedCount = %d, want 3", got.GeneratedCount)
	}
	if got.Status != models.JobStatusRunning {
		t.Errorf("Status = %q, want running", got.Status)
	}

	queue.Tick()
	db.First(&got)
	if got.GeneratedCount != 5 {
		t.Errorf("GeneratedCount = %d, want 5", got.GeneratedCount)
	}
	if got.Status != models.JobStatusCompleted {
		t.Errorf("Status = %q, want completed", got.Status)
	}
	if got.CompletedAt == nil {
		t.Error("CompletedAt should be set")
	}

	// Last batch only asks for what is left.
	var logs []models.GenerationLog
	db.Order("id ASC").Find(&logs)
	if len(logs) != 2 {
		t.Fatalf("logs = %d, want 2", len(logs))
	}
	if logs[0].QuestionsRequested != 3 || logs[1].QuestionsRequested != 2 {
		t.Errorf("requested = %d, %d, want 3, 2",
			logs[0].QuestionsRequested, logs[1].QuestionsRequested)
	}

	var saved int64
	db.Model(&models.Question{}).Count(&saved)
	if saved != 5 {
		t.Errorf("saved questions = %d, want 5", saved)
	}
}

func TestJobQueueFailsAfterConsecutiveErrors(t *testing.T) {
	db := openTestDB(t)
	job := newJob(10, 5)
	db.Create(job)

	llm := &stubLLM{resp: "no json here"}
	queue := newTestQueue(t, db, llm)

	for i := 0; i < 3; i++ {
		queue.Tick()
	}

	var got models.GenerationJob
	db.First(&got)
	if got.Status != models.JobStatusFailed {
		t.Errorf("Status = %q, want failed", got.Status)
	}
	if got.ErrorCount != 3 {
		t.Errorf("ErrorCount = %d, want 3", got.ErrorCount)
	}
	if got.GeneratedCount != 0 {
		t.Errorf("GeneratedCount = %d, want 0", got.GeneratedCount)
	}

	// Failed jobs are no longer picked up.
	queue.Tick()
	if llm.callCount() != 3 {
		t.Errorf("llm calls = %d, want 3", llm.callCount())
	}
}

func TestJobQueueErrorCountResetsOnSuccess(t *testing.T) {
	db := openTestDB(t)
	job := newJob(9, 3)
	db.Create(job)

	llm := &stubLLM{
		queue: []stubReply{
			{resp: "garbage"},
			{resp: "garbage"},
			{resp: validQuestionsJSON(3)},
		},
	}
	queue := newTestQueue(t, db, llm)

	queue.Tick()
	queue.Tick()
	var got models.GenerationJob
	db.First(&got)
	if got.ErrorCount != 2 {
		t.Errorf("ErrorCount = %d, want 2", got.ErrorCount)
	}
	if got.Status == models.JobStatusFailed {
		t.Error("job should not fail before the error limit")
	}

	queue.Tick()
	db.First(&got)
	if got.ErrorCount != 0 {
		t.Errorf("ErrorCount = %d, want 0 after success", got.ErrorCount)
	}
	if got.LastError != "" {
		t.Errorf("LastError = %q, want empty", got.LastError)
	}
	if got.GeneratedCount != 3 {
		t.Errorf("GeneratedCount = %d, want 3", got.GeneratedCount)
	}
}

func TestJobQueuePauseAndResume(t *testing.T) {
	db := openTestDB(t)
	job := newJob(10, 5)
	job.Status = models.JobStatusRunning
	job.ErrorCount = 2
	job.LastError = "provider timeout"
	db.Create(job)

	jobs := repository.NewGenerationJobRepository(db)
	llm := &stubLLM{resp: validQuestionsJSON(5)}
	queue := newTestQueue(t, db, llm)

	if err := jobs.Pause(job.ID); err != nil {
		t.Fatalf("pause: %v", err)
	}
	queue.Tick()
	if llm.callCount() != 0 {
		t.Errorf("llm calls = %d, want 0 while paused", llm.callCount())
	}

	if err := jobs.Resume(job.ID); err != nil {
		t.Fatalf("resume: %v", err)
	}
	var got models.GenerationJob
	db.First(&got)
	if got.Status != models.JobStatusPending {
		t.Errorf("Status = %q, want pending after resume", got.Status)
	}
	if got.ErrorCount != 0 || got.LastError != "" {
		t.Errorf("resume should clear error state, got count=%d last=%q",
			got.ErrorCount, got.LastError)
	}

	queue.Tick()
	db.First(&got)
	if got.GeneratedCount != 5 {
		t.Errorf("GeneratedCount = %d, want 5 after resume tick", got.GeneratedCount)
	}
}

func TestJobQueueCompletesStrandedJobWithoutGenerating(t *testing.T) {
	db := openTestDB(t)
	job := newJob(6, 3)
	job.Status = models.JobStatusRunning
	job.GeneratedCount = 6
	db.Create(job)

	llm := &stubLLM{resp: validQuestionsJSON(3)}
	queue := newTestQueue(t, db, llm)
	queue.Tick()

	var got models.GenerationJob
	db.First(&got)
	if got.Status != models.JobStatusCompleted {
		t.Errorf("Status = %q, want completed", got.Status)
	}
	if got.CompletedAt == nil {
		t.Error("CompletedAt should be set")
	}
	if llm.callCount() != 0 {
		t.Errorf("llm calls = %d, want 0", llm.callCount())
	}
}

func TestJobQueueDeleteCascadesLogs(t *testing.T) {
	db := openTestDB(t)
	job := newJob(5, 5)
	db.Create(job)
	db.Create(&models.GenerationLog{
		SourceType: models.LogSourceJob,
		JobID:      &job.ID,
		Category:   job.Category,
		Subject:    job.Topic,
		Status:     models.LogStatusFailed,
	})

	jobs := repository.NewGenerationJobRepository(db)
	if err := jobs.Delete(job.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var jobCount, logCount int64
	db.Model(&models.GenerationJob{}).Count(&jobCount)
	db.Model(&models.GenerationLog{}).Count(&logCount)
	if jobCount != 0 || logCount != 0 {
		t.Errorf("after delete: jobs=%d logs=%d, want 0, 0", jobCount, logCount)
	}
}

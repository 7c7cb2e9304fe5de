package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"nurseprep/internal/config"
	"nurseprep/internal/generator"
	"nurseprep/internal/models"
	"nurseprep/internal/repository"
)

// SubjectTracker advances the per-subject question catalog one batch per
// tick. One subject per tick keeps provider load predictable; the cron
// interval is the pacing knob.
type SubjectTracker struct {
	cfg       *config.Config
	logger    *zap.Logger
	subjects  *repository.SubjectProgressRepository
	questions *repository.QuestionRepository
	logs      *repository.GenerationLogRepository
	settings  *repository.SettingRepository
	gen       *generator.Generator

	running atomic.Bool
}

func NewSubjectTracker(
	cfg *config.Config,
	logger *zap.Logger,
	subjects *repository.SubjectProgressRepository,
	questions *repository.QuestionRepository,
	logs *repository.GenerationLogRepository,
	settings *repository.SettingRepository,
	gen *generator.Generator,
) *SubjectTracker {
	return &SubjectTracker{
		cfg:       cfg,
		logger:    logger,
		subjects:  subjects,
		questions: questions,
		logs:      logs,
		settings:  settings,
		gen:       gen,
	}
}

// Tick runs one pass of the subject loop. Overlapping ticks are skipped.
func (t *SubjectTracker) Tick() {
	if !t.running.CompareAndSwap(false, true) {
		t.logger.Debug("Subject tick still in progress, skipping")
		return
	}
	defer t.running.Store(false)
	defer t.recoverFromPanic("subject tracker")

	if !t.settings.AutoGenEnabled() {
		return
	}

	// Rows stuck in `running` mean a previous process died mid-batch.
	// Reclaim them and let the next tick pick up cleanly.
	reclaimed, err := t.subjects.ReclaimRunning()
	if err != nil {
		t.logger.Error("Failed to reclaim stuck subjects", zap.Error(err))
		return
	}
	if reclaimed > 0 {
		t.logger.Warn("Reclaimed subjects left running by a previous run",
			zap.Int64("count", reclaimed))
		return
	}

	row, err := t.subjects.FindNextEligible()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Catalog is done. Flip the toggle off so ticks stay cheap
			// until an admin re-enables or raises targets.
			if err := t.settings.UpdateSetting("auto_gen_status", "off"); err != nil {
				t.logger.Error("Failed to switch off auto generation", zap.Error(err))
				return
			}
			t.logger.Info("Subject catalog complete, auto generation switched off")
			return
		}
		t.logger.Error("Failed to pick next subject", zap.Error(err))
		return
	}

	if err := t.subjects.MarkRunning(row.ID); err != nil {
		t.logger.Error("Failed to mark subject running",
			zap.Uint("id", row.ID), zap.Error(err))
		return
	}

	batch := t.cfg.Generation.SubjectBatchSize
	if remaining := row.Remaining(); remaining < batch {
		batch = remaining
	}

	t.logger.Info("Generating subject batch",
		zap.String("category", row.Category),
		zap.String("subject", row.Subject),
		zap.Int("batch", batch),
		zap.Int("generated", row.GeneratedCount),
		zap.Int("target", row.TargetCount))

	ctx, cancel := context.WithTimeout(context.Background(), t.cfg.LLM.Timeout)
	defer cancel()

	start := time.Now()
	questions, stats, err := t.gen.Generate(ctx, generator.GenerateRequest{
		Category: row.Category,
		Count:    batch,
		Subject:  row.Subject,
		Source:   models.SourceSubject,
	})
	durationMs := time.Since(start).Milliseconds()

	if err != nil {
		t.logger.Error("Subject batch failed",
			zap.String("category", row.Category),
			zap.String("subject", row.Subject),
			zap.Error(err))
		if err := t.subjects.RecordFailure(row.ID, err.Error()); err != nil {
			t.logger.Error("Failed to record subject failure", zap.Error(err))
		}
		t.appendLog(row, stats, models.LogStatusFailed, err.Error(), durationMs)
		return
	}

	if err := t.questions.CreateBatch(questions); err != nil {
		t.logger.Error("Failed to save subject batch", zap.Error(err))
		if err := t.subjects.RecordFailure(row.ID, err.Error()); err != nil {
			t.logger.Error("Failed to record subject failure", zap.Error(err))
		}
		t.appendLog(row, stats, models.LogStatusFailed, err.Error(), durationMs)
		return
	}

	if err := t.subjects.RecordSuccess(row.ID, len(questions)); err != nil {
		t.logger.Error("Failed to record subject progress", zap.Error(err))
		return
	}
	t.appendLog(row, stats, models.LogStatusSuccess, "", durationMs)

	t.logger.Info("Subject batch saved",
		zap.String("category", row.Category),
		zap.String("subject", row.Subject),
		zap.Int("saved", len(questions)))
}

// TriggerNow fires a tick in the background unless one is already running.
func (t *SubjectTracker) TriggerNow() bool {
	if t.running.Load() {
		return false
	}
	go t.Tick()
	return true
}

func (t *SubjectTracker) appendLog(row *models.SubjectProgress, stats generator.GenerateStats, status, errMsg string, durationMs int64) {
	entry := &models.GenerationLog{
		SourceType:         models.LogSourceSubject,
		SubjectProgressID:  &row.ID,
		Category:           row.Category,
		Subject:            row.Subject,
		QuestionsRequested: stats.Requested,
		QuestionsGenerated: stats.Generated,
		QuestionsSaved:     stats.Saved,
		Status:             status,
		ErrorMessage:       errMsg,
		DurationMs:         durationMs,
	}
	if err := t.logs.Create(entry); err != nil {
		t.logger.Error("Failed to append generation log", zap.Error(err))
	}
}

func (t *SubjectTracker) recoverFromPanic(name string) {
	if r := recover(); r != nil {
		t.logger.Error("Recovered from panic", zap.String("loop", name), zap.Any("panic", r))
	}
}

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

// JobQueue advances admin-initiated generation jobs, oldest active job
// first, one batch per tick.
type JobQueue struct {
	cfg       *config.Config
	logger    *zap.Logger
	jobs      *repository.GenerationJobRepository
	questions *repository.QuestionRepository
	logs      *repository.GenerationLogRepository
	gen       *generator.Generator

	running atomic.Bool
}

func NewJobQueue(
	cfg *config.Config,
	logger *zap.Logger,
	jobs *repository.GenerationJobRepository,
	questions *repository.QuestionRepository,
	logs *repository.GenerationLogRepository,
	gen *generator.Generator,
) *JobQueue {
	return &JobQueue{
		cfg:       cfg,
		logger:    logger,
		jobs:      jobs,
		questions: questions,
		logs:      logs,
		gen:       gen,
	}
}

// Tick runs one pass of the job loop. Overlapping ticks are skipped.
func (q *JobQueue) Tick() {
	if !q.running.CompareAndSwap(false, true) {
		q.logger.Debug("Job tick still in progress, skipping")
		return
	}
	defer q.running.Store(false)
	defer q.recoverFromPanic("job queue")

	job, err := q.jobs.FindNextActive()
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			q.logger.Error("Failed to pick next job", zap.Error(err))
		}
		return
	}

	if job.Status == models.JobStatusPending {
		if err := q.jobs.MarkRunning(job.ID); err != nil {
			q.logger.Error("Failed to mark job running",
				zap.Uint("id", job.ID), zap.Error(err))
			return
		}
	}

	// A job can sit at its total with status still running when the
	// process died between the last batch and completion.
	if job.GeneratedCount >= job.TotalCount {
		if err := q.jobs.MarkCompleted(job.ID); err != nil {
			q.logger.Error("Failed to complete job",
				zap.Uint("id", job.ID), zap.Error(err))
		}
		return
	}

	batchSize := job.BatchSize
	if batchSize <= 0 {
		batchSize = q.cfg.Generation.DefaultBatchSize
	}
	batch := batchSize
	if remaining := job.Remaining(); remaining < batch {
		batch = remaining
	}

	q.logger.Info("Generating job batch",
		zap.String("job", job.PublicID),
		zap.String("category", job.Category),
		zap.String("topic", job.Topic),
		zap.Int("batch", batch),
		zap.Int("generated", job.GeneratedCount),
		zap.Int("total", job.TotalCount))

	ctx, cancel := context.WithTimeout(context.Background(), q.cfg.LLM.Timeout)
	defer cancel()

	start := time.Now()
	questions, stats, err := q.gen.Generate(ctx, generator.GenerateRequest{
		Category:       job.Category,
		Count:          batch,
		Subject:        job.Topic,
		Difficulty:     job.Difficulty,
		SampleQuestion: job.SampleQuestion,
		AreasToCover:   job.AreasToCover,
		Source:         models.SourceJob,
	})
	durationMs := time.Since(start).Milliseconds()

	if err != nil {
		failed, ferr := q.jobs.RecordFailure(job.ID, err.Error(), q.cfg.Generation.MaxJobErrors)
		if ferr != nil {
			q.logger.Error("Failed to record job failure", zap.Error(ferr))
		}
		if failed {
			q.logger.Warn("Job hit the consecutive error limit and was marked failed",
				zap.String("job", job.PublicID),
				zap.Int("max_errors", q.cfg.Generation.MaxJobErrors),
				zap.Error(err))
		} else {
			q.logger.Error("Job batch failed",
				zap.String("job", job.PublicID), zap.Error(err))
		}
		q.appendLog(job, stats, models.LogStatusFailed, err.Error(), durationMs)
		return
	}

	if err := q.questions.CreateBatch(questions); err != nil {
		q.logger.Error("Failed to save job batch",
			zap.String("job", job.PublicID), zap.Error(err))
		if _, ferr := q.jobs.RecordFailure(job.ID, err.Error(), q.cfg.Generation.MaxJobErrors); ferr != nil {
			q.logger.Error("Failed to record job failure", zap.Error(ferr))
		}
		q.appendLog(job, stats, models.LogStatusFailed, err.Error(), durationMs)
		return
	}

	completed, err := q.jobs.RecordProgress(job.ID, len(questions))
	if err != nil {
		q.logger.Error("Failed to record job progress", zap.Error(err))
		return
	}
	q.appendLog(job, stats, models.LogStatusSuccess, "", durationMs)

	if completed {
		q.logger.Info("Job completed",
			zap.String("job", job.PublicID),
			zap.Int("total", job.TotalCount))
	} else {
		q.logger.Info("Job batch saved",
			zap.String("job", job.PublicID),
			zap.Int("saved", len(questions)))
	}
}

// KickSoon schedules a near-immediate tick, used right after a job is
// created or resumed so the admin sees movement before the next cron fire.
func (q *JobQueue) KickSoon() {
	delay := q.cfg.Generation.JobKickDelay
	if delay <= 0 {
		delay = time.Second
	}
	time.AfterFunc(delay, q.Tick)
}

func (q *JobQueue) appendLog(job *models.GenerationJob, stats generator.GenerateStats, status, errMsg string, durationMs int64) {
	entry := &models.GenerationLog{
		SourceType:         models.LogSourceJob,
		JobID:              &job.ID,
		Category:           job.Category,
		Subject:            job.Topic,
		QuestionsRequested: stats.Requested,
		QuestionsGenerated: stats.Generated,
		QuestionsSaved:     stats.Saved,
		Status:             status,
		ErrorMessage:       errMsg,
		DurationMs:         durationMs,
	}
	if err := q.logs.Create(entry); err != nil {
		q.logger.Error("Failed to append generation log", zap.Error(err))
	}
}

func (q *JobQueue) recoverFromPanic(name string) {
	if r := recover(); r != nil {
		q.logger.Error("Recovered from panic", zap.String("loop", name), zap.Any("panic", r))
	}
}

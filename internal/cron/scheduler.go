package cron

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"nurseprep/internal/config"
)

// Scheduler drives the two generation loops on their cron specs.
type Scheduler struct {
	cron    *cron.Cron
	cfg     *config.Config
	logger  *zap.Logger
	tracker *SubjectTracker
	queue   *JobQueue
}

// New creates a new cron scheduler.
func New(cfg *config.Config, tracker *SubjectTracker, queue *JobQueue, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		cfg:     cfg,
		logger:  logger,
		tracker: tracker,
		queue:   queue,
	}
}

// Start registers and starts both loops.
func (s *Scheduler) Start() {
	s.logger.Info("Starting cron scheduler...")

	// Subject tracker - every 5 minutes by default
	s.cron.AddFunc(s.cfg.Generation.SubjectCronSpec, func() {
		s.logger.Debug("Running: subject tracker")
		s.tracker.Tick()
	})

	// Ad-hoc job queue - every 30 seconds by default
	s.cron.AddFunc(s.cfg.Generation.JobCronSpec, func() {
		s.logger.Debug("Running: job queue")
		s.queue.Tick()
	})

	s.cron.Start()
	s.logger.Info("Cron scheduler started",
		zap.String("subject_spec", s.cfg.Generation.SubjectCronSpec),
		zap.String("job_spec", s.cfg.Generation.JobCronSpec))
}

// Stop gracefully stops the scheduler. The returned context is done once
// any in-flight jobs have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

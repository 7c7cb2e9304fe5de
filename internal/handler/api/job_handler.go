package api

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"nurseprep/internal/models"
)

// JobKicker is implemented by the job loop so the API can request a
// near-immediate tick after creating or resuming a job.
type JobKicker interface {
	KickSoon()
}

// JobHandler manages ad-hoc generation jobs.
type JobHandler struct {
	repos  *Repos
	logger *zap.Logger
	queue  JobKicker
}

func NewJobHandler(repos *Repos, queue JobKicker, logger *zap.Logger) *JobHandler {
	return &JobHandler{repos: repos, logger: logger, queue: queue}
}

type createJobRequest struct {
	Category       string `json:"category"`
	Topic          string `json:"topic"`
	Difficulty     string `json:"difficulty"`
	TotalCount     int    `json:"total_count"`
	BatchSize      int    `json:"batch_size"`
	SampleQuestion string `json:"sample_question"`
	AreasToCover   string `json:"areas_to_cover"`
}

// Create enqueues a new generation job.
func (h *JobHandler) Create(c echo.Context) error {
	var req createJobRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, "invalid request body")
	}

	req.Category = strings.TrimSpace(req.Category)
	req.Topic = strings.TrimSpace(req.Topic)
	req.Difficulty = strings.ToLower(strings.TrimSpace(req.Difficulty))

	if !models.ValidCategory(req.Category) {
		return errorResponse(c, "unknown category")
	}
	if req.Topic == "" {
		return errorResponse(c, "topic is required")
	}
	if !models.ValidDifficulty(req.Difficulty) {
		return errorResponse(c, "unknown difficulty")
	}
	if req.TotalCount <= 0 || req.TotalCount > 1000 {
		return errorResponse(c, "total_count must be between 1 and 1000")
	}
	if req.BatchSize < 0 || req.BatchSize > 50 {
		return errorResponse(c, "batch_size must be between 0 and 50")
	}

	job := &models.GenerationJob{
		PublicID:       uuid.NewString(),
		Category:       req.Category,
		Topic:          req.Topic,
		Difficulty:     req.Difficulty,
		TotalCount:     req.TotalCount,
		BatchSize:      req.BatchSize,
		SampleQuestion: req.SampleQuestion,
		AreasToCover:   req.AreasToCover,
		Status:         models.JobStatusPending,
		CreatedBy:      c.Request().Header.Get("X-Admin-ID"),
	}

	if err := h.repos.Job.Create(job); err != nil {
		h.logger.Error("Failed to create job", zap.Error(err))
		return errorResponse(c, "failed to create job")
	}

	h.logger.Info("Generation job created",
		zap.String("job", job.PublicID),
		zap.String("category", job.Category),
		zap.String("topic", job.Topic),
		zap.Int("total", job.TotalCount))

	h.queue.KickSoon()
	return successResponse(c, "job created", job)
}

// List returns jobs newest first.
func (h *JobHandler) List(c echo.Context) error {
	limit, page := parsePagination(c)
	jobs, total, err := h.repos.Job.FindAll(limit, page)
	if err != nil {
		h.logger.Error("Failed to list jobs", zap.Error(err))
		return errorResponse(c, "failed to list jobs")
	}
	return successResponse(c, "jobs", paginatedResponse(jobs, total, page, limit))
}

// Get returns one job with its attempt history.
func (h *JobHandler) Get(c echo.Context) error {
	job, err := h.findJob(c)
	if err != nil {
		return errorResponse(c, "job not found")
	}

	logs, err := h.repos.Log.FindByJob(job.ID, 50)
	if err != nil {
		h.logger.Error("Failed to load job logs", zap.Error(err))
		return errorResponse(c, "failed to load job logs")
	}

	return successResponse(c, "job", map[string]interface{}{
		"job":  job,
		"logs": logs,
	})
}

// Pause parks a job so the queue skips it.
func (h *JobHandler) Pause(c echo.Context) error {
	job, err := h.findJob(c)
	if err != nil {
		return errorResponse(c, "job not found")
	}
	if job.Status == models.JobStatusCompleted {
		return errorResponse(c, "job is already completed")
	}

	if err := h.repos.Job.Pause(job.ID); err != nil {
		h.logger.Error("Failed to pause job", zap.String("job", job.PublicID), zap.Error(err))
		return errorResponse(c, "failed to pause job")
	}
	return successResponse(c, "job paused", nil)
}

// Resume returns a paused or failed job to the queue with a clean error
// slate, and kicks a tick so the admin sees movement right away.
func (h *JobHandler) Resume(c echo.Context) error {
	job, err := h.findJob(c)
	if err != nil {
		return errorResponse(c, "job not found")
	}
	if job.Status != models.JobStatusPaused && job.Status != models.JobStatusFailed {
		return errorResponse(c, "only paused or failed jobs can be resumed")
	}

	if err := h.repos.Job.Resume(job.ID); err != nil {
		h.logger.Error("Failed to resume job", zap.String("job", job.PublicID), zap.Error(err))
		return errorResponse(c, "failed to resume job")
	}

	h.queue.KickSoon()
	return successResponse(c, "job resumed", nil)
}

// Delete removes a job and its logs. Generated questions stay in the bank.
func (h *JobHandler) Delete(c echo.Context) error {
	job, err := h.findJob(c)
	if err != nil {
		return errorResponse(c, "job not found")
	}

	if err := h.repos.Job.Delete(job.ID); err != nil {
		h.logger.Error("Failed to delete job", zap.String("job", job.PublicID), zap.Error(err))
		return errorResponse(c, "failed to delete job")
	}

	h.logger.Info("Generation job deleted", zap.String("job", job.PublicID))
	return successResponse(c, "job deleted", nil)
}

func (h *JobHandler) findJob(c echo.Context) (*models.GenerationJob, error) {
	publicID := strings.TrimSpace(c.Param("id"))
	if publicID == "" {
		return nil, gorm.ErrRecordNotFound
	}

	job, err := h.repos.Job.FindByPublicID(publicID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			h.logger.Error("Failed to load job", zap.String("job", publicID), zap.Error(err))
		}
		return nil, err
	}
	return job, nil
}

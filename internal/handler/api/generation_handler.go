package api

import (
	"encoding/json"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"nurseprep/internal/pkg/cache"
)

// SubjectRunner is implemented by the subject loop so the API can trigger
// an out-of-schedule tick.
type SubjectRunner interface {
	TriggerNow() bool
}

// GenerationHandler exposes the subject tracker's state and controls.
type GenerationHandler struct {
	repos    *Repos
	logger   *zap.Logger
	overview cache.OverviewCache
	tracker  SubjectRunner
}

func NewGenerationHandler(repos *Repos, overview cache.OverviewCache, tracker SubjectRunner, logger *zap.Logger) *GenerationHandler {
	return &GenerationHandler{
		repos:    repos,
		logger:   logger,
		overview: overview,
		tracker:  tracker,
	}
}

// Status returns the catalog overview. The payload is cached for a few
// seconds because dashboards poll it.
func (h *GenerationHandler) Status(c echo.Context) error {
	ctx := c.Request().Context()

	if payload, ok := h.overview.Get(ctx); ok {
		return successResponse(c, "generation status", json.RawMessage(payload))
	}

	subjects, err := h.repos.Subject.FindAll()
	if err != nil {
		h.logger.Error("Failed to load subject catalog", zap.Error(err))
		return errorResponse(c, "failed to load subjects")
	}

	target, generated, err := h.repos.Subject.Totals()
	if err != nil {
		h.logger.Error("Failed to load catalog totals", zap.Error(err))
		return errorResponse(c, "failed to load totals")
	}

	questionCount, err := h.repos.Question.Count()
	if err != nil {
		h.logger.Error("Failed to count questions", zap.Error(err))
		return errorResponse(c, "failed to count questions")
	}

	recent, err := h.repos.Log.FindRecent(20)
	if err != nil {
		h.logger.Error("Failed to load recent generation logs", zap.Error(err))
		return errorResponse(c, "failed to load logs")
	}

	overview := map[string]interface{}{
		"auto_generation": h.repos.Setting.AutoGenEnabled(),
		"total_target":    target,
		"total_generated": generated,
		"total_questions": questionCount,
		"subjects":        subjects,
		"recent_logs":     recent,
	}

	payload, err := json.Marshal(overview)
	if err != nil {
		return errorResponse(c, "failed to encode status")
	}
	h.overview.Set(ctx, payload)

	return successResponse(c, "generation status", json.RawMessage(payload))
}

// Pause switches the subject loop off. Ticks become no-ops until resumed.
func (h *GenerationHandler) Pause(c echo.Context) error {
	if err := h.repos.Setting.UpdateSetting("auto_gen_status", "off"); err != nil {
		h.logger.Error("Failed to pause auto generation", zap.Error(err))
		return errorResponse(c, "failed to pause generation")
	}
	return successResponse(c, "auto generation paused", nil)
}

// Resume switches the subject loop back on.
func (h *GenerationHandler) Resume(c echo.Context) error {
	if err := h.repos.Setting.UpdateSetting("auto_gen_status", "on"); err != nil {
		h.logger.Error("Failed to resume auto generation", zap.Error(err))
		return errorResponse(c, "failed to resume generation")
	}
	return successResponse(c, "auto generation resumed", nil)
}

// Run triggers one subject tick immediately instead of waiting for cron.
func (h *GenerationHandler) Run(c echo.Context) error {
	if !h.tracker.TriggerNow() {
		return errorResponse(c, "a generation run is already in progress")
	}
	return successResponse(c, "generation run started", nil)
}

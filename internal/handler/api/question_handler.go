package api

import (
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"nurseprep/internal/models"
)

// QuestionHandler exposes the generated question bank.
type QuestionHandler struct {
	repos  *Repos
	logger *zap.Logger
}

func NewQuestionHandler(repos *Repos, logger *zap.Logger) *QuestionHandler {
	return &QuestionHandler{repos: repos, logger: logger}
}

// List returns questions with optional category/subject filters.
func (h *QuestionHandler) List(c echo.Context) error {
	category := strings.TrimSpace(c.QueryParam("category"))
	subject := strings.TrimSpace(c.QueryParam("subject"))
	if category != "" && !models.ValidCategory(category) {
		return errorResponse(c, "unknown category")
	}

	limit, page := parsePagination(c)
	questions, total, err := h.repos.Question.FindAll(limit, page, category, subject)
	if err != nil {
		h.logger.Error("Failed to list questions", zap.Error(err))
		return errorResponse(c, "failed to list questions")
	}

	return successResponse(c, "questions", paginatedResponse(questions, total, page, limit))
}

// Stats returns bank totals broken down by category.
func (h *QuestionHandler) Stats(c echo.Context) error {
	total, err := h.repos.Question.Count()
	if err != nil {
		h.logger.Error("Failed to count questions", zap.Error(err))
		return errorResponse(c, "failed to count questions")
	}

	byCategory, err := h.repos.Question.CountByCategory()
	if err != nil {
		h.logger.Error("Failed to count questions by category", zap.Error(err))
		return errorResponse(c, "failed to count questions")
	}

	return successResponse(c, "question stats", map[string]interface{}{
		"total":       total,
		"by_category": byCategory,
	})
}

// DeleteBySubject wipes one (category, subject) slice of the bank. The
// subject's progress row is untouched; lowering it is a separate decision.
func (h *QuestionHandler) DeleteBySubject(c echo.Context) error {
	category := strings.TrimSpace(c.QueryParam("category"))
	subject := strings.TrimSpace(c.QueryParam("subject"))
	if !models.ValidCategory(category) {
		return errorResponse(c, "unknown category")
	}
	if subject == "" {
		return errorResponse(c, "subject is required")
	}

	deleted, err := h.repos.Question.DeleteBySubject(category, subject)
	if err != nil {
		h.logger.Error("Failed to delete questions",
			zap.String("category", category),
			zap.String("subject", subject),
			zap.Error(err))
		return errorResponse(c, "failed to delete questions")
	}

	h.logger.Info("Questions deleted",
		zap.String("category", category),
		zap.String("subject", subject),
		zap.Int64("deleted", deleted))

	return successResponse(c, "questions deleted", map[string]interface{}{
		"deleted": deleted,
	})
}

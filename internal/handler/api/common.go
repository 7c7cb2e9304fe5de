package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"nurseprep/internal/models"
	"nurseprep/internal/repository"
)

func successResponse(c echo.Context, msg string, obj interface{}) error {
	return c.JSON(http.StatusOK, models.APIResponse{
		Status: true,
		Msg:    msg,
		Obj:    obj,
	})
}

func errorResponse(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, models.APIResponse{
		Status: false,
		Msg:    msg,
		Obj:    nil,
	})
}

func paginatedResponse(data interface{}, total int64, page, limit int) models.PaginatedResponse {
	return models.PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		limit = 50
	}
	pages := int(total) / limit
	if int(total)%limit != 0 {
		pages++
	}
	if pages == 0 {
		pages = 1
	}
	return pages
}

// parsePagination reads limit/page query params with sane defaults.
func parsePagination(c echo.Context) (limit, page int) {
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if page <= 0 {
		page = 1
	}
	return limit, page
}

// Repos bundles all repositories needed by API handlers.
type Repos struct {
	Subject  *repository.SubjectProgressRepository
	Job      *repository.GenerationJobRepository
	Log      *repository.GenerationLogRepository
	Question *repository.QuestionRepository
	Setting  *repository.SettingRepository
}

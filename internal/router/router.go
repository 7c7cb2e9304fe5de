package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"nurseprep/internal/handler/api"
	"nurseprep/internal/middleware"
	"nurseprep/internal/pkg/cache"
	"nurseprep/internal/repository"
)

// Setup configures all routes for the Echo server.
func Setup(
	e *echo.Echo,
	db *gorm.DB,
	overview cache.OverviewCache,
	tracker api.SubjectRunner,
	queue api.JobKicker,
	logger *zap.Logger,
	apiKey string,
) {
	// Global middleware
	e.Use(echomw.Recover())
	e.Use(middleware.CORS())

	// Repositories
	repos := &api.Repos{
		Subject:  repository.NewSubjectProgressRepository(db),
		Job:      repository.NewGenerationJobRepository(db),
		Log:      repository.NewGenerationLogRepository(db),
		Question: repository.NewQuestionRepository(db),
		Setting:  repository.NewSettingRepository(db),
	}

	// Handlers
	generationHandler := api.NewGenerationHandler(repos, overview, tracker, logger)
	jobHandler := api.NewJobHandler(repos, queue, logger)
	questionHandler := api.NewQuestionHandler(repos, logger)

	// API group with auth middleware
	apiGroup := e.Group("/api")
	apiGroup.Use(middleware.APIAuth(apiKey))

	// Subject tracker state and controls
	apiGroup.GET("/generation/status", generationHandler.Status)
	apiGroup.POST("/generation/pause", generationHandler.Pause)
	apiGroup.POST("/generation/resume", generationHandler.Resume)
	apiGroup.POST("/generation/run", generationHandler.Run)

	// Ad-hoc jobs
	apiGroup.POST("/jobs", jobHandler.Create)
	apiGroup.GET("/jobs", jobHandler.List)
	apiGroup.GET("/jobs/:id", jobHandler.Get)
	apiGroup.POST("/jobs/:id/pause", jobHandler.Pause)
	apiGroup.POST("/jobs/:id/resume", jobHandler.Resume)
	apiGroup.DELETE("/jobs/:id", jobHandler.Delete)

	// Question bank
	apiGroup.GET("/questions", questionHandler.List)
	apiGroup.GET("/questions/stats", questionHandler.Stats)
	apiGroup.DELETE("/questions", questionHandler.DeleteBySubject)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"nurseprep/internal/bootstrap"
	"nurseprep/internal/config"
	cronpkg "nurseprep/internal/cron"
	"nurseprep/internal/generator"
	"nurseprep/internal/pkg/cache"
	"nurseprep/internal/repository"
	"nurseprep/internal/router"
)

func main() {
	// --- Logger ---
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if hasArg("--bootstrap-db") {
		if err := runDBBootstrap(logger); err != nil {
			logger.Fatal("Database bootstrap failed", zap.Error(err))
		}
		logger.Info("Database bootstrap completed")
		return
	}

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// --- Database ---
	db, err := config.NewDatabase(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := bootstrap.MigrateAndSeed(db); err != nil {
		logger.Fatal("Failed to bootstrap database schema", zap.Error(err))
	}

	// --- Repositories ---
	subjectRepo := repository.NewSubjectProgressRepository(db)
	jobRepo := repository.NewGenerationJobRepository(db)
	logRepo := repository.NewGenerationLogRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	// --- Question generator ---
	llm, err := generator.NewClient(&cfg.LLM, logger)
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}
	gen := generator.New(llm, logger)
	logger.Info("Question generator ready",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", llm.ModelName()))

	// --- Generation loops ---
	tracker := cronpkg.NewSubjectTracker(cfg, logger, subjectRepo, questionRepo, logRepo, settingRepo, gen)
	queue := cronpkg.NewJobQueue(cfg, logger, jobRepo, questionRepo, logRepo, gen)

	scheduler := cronpkg.New(cfg, tracker, queue, logger)
	scheduler.Start()

	// --- Status overview cache (Redis with in-memory fallback) ---
	overview, cacheErr := cache.NewOverviewCache(
		cfg.Redis.Addr,
		cfg.Redis.Pass,
		cfg.Redis.DB,
		10*time.Second,
	)
	if cacheErr != nil {
		logger.Warn("Redis unavailable for status cache, using in-memory fallback", zap.Error(cacheErr))
	}

	// --- Echo ---
	e := echo.New()
	e.HideBanner = true
	router.Setup(e, db, overview, tracker, queue, logger, cfg.API.Key)

	// --- Start Server ---
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		logger.Info("Starting NursePrep generation server", zap.String("addr", addr))
		if err := e.Start(addr); err != nil {
			logger.Info("Server stopped", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	// Stop cron and wait for in-flight batches
	ctx := scheduler.Stop()
	<-ctx.Done()

	// Stop HTTP server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func hasArg(name string) bool {
	for _, arg := range os.Args[1:] {
		if arg == name {
			return true
		}
	}
	return false
}

func runDBBootstrap(logger *zap.Logger) error {
	dbCfg, err := config.LoadDatabaseOnly()
	if err != nil {
		return err
	}
	db, err := config.NewDatabase(dbCfg)
	if err != nil {
		return err
	}
	if err := bootstrap.MigrateAndSeed(db); err != nil {
		return err
	}
	logger.Info("Schema migration and default seed completed")
	return nil
}

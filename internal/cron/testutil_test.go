package cron

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"nurseprep/internal/config"
	"nurseprep/internal/generator"
	"nurseprep/internal/models"
	"nurseprep/internal/repository"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&models.Setting{},
		&models.SubjectProgress{},
		&models.GenerationJob{},
		&models.GenerationLog{},
		&models.Question{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type stubReply struct {
	resp string
	err  error
}

// stubLLM returns queued replies first, then the fixed resp/err pair.
type stubLLM struct {
	mu    sync.Mutex
	resp  string
	err   error
	queue []stubReply
	calls int
}

func (s *stubLLM) Generate(_ context.Context, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.queue) > 0 {
		r := s.queue[0]
		s.queue = s.queue[1:]
		return r.resp, r.err
	}
	return s.resp, s.err
}

func (s *stubLLM) ModelName() string { return "stub" }

func (s *stubLLM) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func validQuestionsJSON(n int) string {
	items := make([]string, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, fmt.Sprintf(`{
			"question": "Question %d?",
			"options": ["Option A", "Option B", "Option C", "Option D"],
			"correct_answer": "Option A",
			"explanation": "A is correct.",
			"difficulty": "medium",
			"subject": "Pharmacology"
		}`, i+1))
	}
	return "[" + strings.Join(items, ",") + "]"
}

func testConfig() *config.Config {
	return &config.Config{
		LLM: config.LLMConfig{Timeout: time.Minute},
		Generation: config.GenerationConfig{
			SubjectBatchSize: 10,
			DefaultBatchSize: 5,
			MaxJobErrors:     3,
			JobKickDelay:     time.Millisecond,
		},
	}
}

func newTestTracker(t *testing.T, db *gorm.DB, llm *stubLLM) *SubjectTracker {
	t.Helper()
	logger := zap.NewNop()
	return NewSubjectTracker(
		testConfig(),
		logger,
		repository.NewSubjectProgressRepository(db),
		repository.NewQuestionRepository(db),
		repository.NewGenerationLogRepository(db),
		repository.NewSettingRepository(db),
		generator.New(llm, logger),
	)
}

func newTestQueue(t *testing.T, db *gorm.DB, llm *stubLLM) *JobQueue {
	t.Helper()
	logger := zap.NewNop()
	return NewJobQueue(
		testConfig(),
		logger,
		repository.NewGenerationJobRepository(db),
		repository.NewQuestionRepository(db),
		repository.NewGenerationLogRepository(db),
		generator.New(llm, logger),
	)
}

func seedAutoGen(t *testing.T, db *gorm.DB, status string) {
	t.Helper()
	if err := db.Create(&models.Setting{AutoGenStatus: status}).Error; err != nil {
		t.Fatalf("seed setting: %v", err)
	}
}

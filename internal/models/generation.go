package models

import "time"

// SubjectProgress statuses.
const (
	SubjectStatusPending   = "pending"
	SubjectStatusRunning   = "running"
	SubjectStatusCompleted = "completed"
	SubjectStatusError     = "error"
)

// GenerationJob statuses.
const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusPaused    = "paused"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// GenerationLog statuses.
const (
	LogStatusSuccess = "success"
	LogStatusFailed  = "failed"
)

// GenerationLog source types.
const (
	LogSourceSubject = "subject"
	LogSourceJob     = "job"
)

// SubjectProgress tracks the standing goal of filling one (category, subject)
// pair to a fixed question target. Rows are seeded once at bootstrap and only
// ever mutated by the subject tracker.
type SubjectProgress struct {
	ID             uint       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Category       string     `gorm:"column:category;size:30;uniqueIndex:idx_subject_progress_cat_subject,priority:1" json:"category"`
	Subject        string     `gorm:"column:subject;size:255;uniqueIndex:idx_subject_progress_cat_subject,priority:2" json:"subject"`
	TargetCount    int        `gorm:"column:target_count;default:0" json:"target_count"`
	GeneratedCount int        `gorm:"column:generated_count;default:0" json:"generated_count"`
	Status         string     `gorm:"column:status;size:20;index:idx_subject_progress_status" json:"status"`
	ErrorCount     int        `gorm:"column:error_count;default:0" json:"error_count"`
	LastError      string     `gorm:"column:last_error;type:text" json:"last_error"`
	LastRunAt      *time.Time `gorm:"column:last_run_at" json:"last_run_at"`
	SortOrder      int        `gorm:"column:sort_order;default:0;index:idx_subject_progress_sort" json:"sort_order"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (SubjectProgress) TableName() string {
	return "subject_progress"
}

// Remaining returns how many questions are still missing for the target.
func (s *SubjectProgress) Remaining() int {
	if r := s.TargetCount - s.GeneratedCount; r > 0 {
		return r
	}
	return 0
}

// GenerationJob is an admin-initiated, bounded generation request advanced by
// the job queue one batch per tick.
type GenerationJob struct {
	ID             uint       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PublicID       string     `gorm:"column:public_id;size:36;uniqueIndex:idx_generation_jobs_public_id" json:"public_id"`
	Category       string     `gorm:"column:category;size:30" json:"category"`
	Topic          string     `gorm:"column:topic;size:255" json:"topic"`
	Difficulty     string     `gorm:"column:difficulty;size:20" json:"difficulty"`
	TotalCount     int        `gorm:"column:total_count;default:0" json:"total_count"`
	BatchSize      int        `gorm:"column:batch_size;default:0" json:"batch_size"`
	SampleQuestion string     `gorm:"column:sample_question;type:text" json:"sample_question"`
	AreasToCover   string     `gorm:"column:areas_to_cover;type:text" json:"areas_to_cover"`
	GeneratedCount int        `gorm:"column:generated_count;default:0" json:"generated_count"`
	Status         string     `gorm:"column:status;size:20;index:idx_generation_jobs_status" json:"status"`
	ErrorCount     int        `gorm:"column:error_count;default:0" json:"error_count"`
	LastError      string     `gorm:"column:last_error;type:text" json:"last_error"`
	CreatedBy      string     `gorm:"column:created_by;size:255" json:"created_by"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	CompletedAt    *time.Time `gorm:"column:completed_at" json:"completed_at"`
}

func (GenerationJob) TableName() string {
	return "generation_jobs"
}

// Remaining returns how many questions the job still has to generate.
func (j *GenerationJob) Remaining() int {
	if r := j.TotalCount - j.GeneratedCount; r > 0 {
		return r
	}
	return 0
}

// GenerationLog is an append-only audit record of one generation attempt for
// either a subject or a job. Rows are only removed when their job is deleted.
type GenerationLog struct {
	ID                 uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SourceType         string    `gorm:"column:source_type;size:20" json:"source_type"`
	SubjectProgressID  *uint     `gorm:"column:subject_progress_id;index:idx_generation_logs_subject" json:"subject_progress_id"`
	JobID              *uint     `gorm:"column:job_id;index:idx_generation_logs_job" json:"job_id"`
	Category           string    `gorm:"column:category;size:30" json:"category"`
	Subject            string    `gorm:"column:subject;size:255" json:"subject"`
	QuestionsRequested int       `gorm:"column:questions_requested;default:0" json:"questions_requested"`
	QuestionsGenerated int       `gorm:"column:questions_generated;default:0" json:"questions_generated"`
	QuestionsSaved     int       `gorm:"column:questions_saved;default:0" json:"questions_saved"`
	Status             string    `gorm:"column:status;size:20" json:"status"`
	ErrorMessage       string    `gorm:"column:error_message;type:text" json:"error_message"`
	DurationMs         int64     `gorm:"column:duration_ms;default:0" json:"duration_ms"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (GenerationLog) TableName() string {
	return "generation_logs"
}

package models

import "time"

// Exam categories supported by the question bank.
const (
	CategoryNCLEXRN = "nclex_rn"
	CategoryNCLEXPN = "nclex_pn"
	CategoryHESIA2  = "hesi_a2"
)

// Difficulty levels. Empty means mixed difficulty.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Question sources.
const (
	SourceSubject = "subject"
	SourceJob     = "job"
)

// ValidCategory reports whether cat is one of the supported exam categories.
func ValidCategory(cat string) bool {
	switch cat {
	case CategoryNCLEXRN, CategoryNCLEXPN, CategoryHESIA2:
		return true
	}
	return false
}

// ValidDifficulty reports whether d is a known difficulty or empty (mixed).
func ValidDifficulty(d string) bool {
	switch d {
	case "", DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Question is a single exam question with exactly four answer options.
// Rows are immutable after insert except for bulk admin delete by subject.
type Question struct {
	ID            uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Category      string    `gorm:"column:category;size:30;index:idx_questions_category_subject,priority:1" json:"category"`
	QuestionText  string    `gorm:"column:question_text;type:text" json:"question_text"`
	OptionA       string    `gorm:"column:option_a;type:text" json:"option_a"`
	OptionB       string    `gorm:"column:option_b;type:text" json:"option_b"`
	OptionC       string    `gorm:"column:option_c;type:text" json:"option_c"`
	OptionD       string    `gorm:"column:option_d;type:text" json:"option_d"`
	CorrectAnswer string    `gorm:"column:correct_answer;type:text" json:"correct_answer"`
	Explanation   string    `gorm:"column:explanation;type:text" json:"explanation"`
	Difficulty    string    `gorm:"column:difficulty;size:20" json:"difficulty"`
	Subject       string    `gorm:"column:subject;size:255;index:idx_questions_category_subject,priority:2" json:"subject"`
	Source        string    `gorm:"column:source;size:20" json:"source"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Question) TableName() string {
	return "questions"
}

// Options returns the four answer options in order.
func (q *Question) Options() [4]string {
	return [4]string{q.OptionA, q.OptionB, q.OptionC, q.OptionD}
}

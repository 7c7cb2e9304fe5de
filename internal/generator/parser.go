package generator

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"nurseprep/internal/models"
)

// GenerationError marks failures of the generation pipeline itself, as
// opposed to transport errors from the provider.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("generation failed: %s", e.Reason)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// ParsedQuestion mirrors the JSON shape the model is asked to produce.
type ParsedQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
	Difficulty    string   `json:"difficulty"`
	Subject       string   `json:"subject"`
}

// ParseQuestions extracts the question array from raw model output.
// Invalid items are dropped rather than failing the batch; the second
// return value is how many items the model produced before validation.
// Returns a *GenerationError when nothing usable comes out.
func ParseQuestions(raw string) ([]ParsedQuestion, int, error) {
	cleaned := stripCodeFences(raw)
	if strings.TrimSpace(cleaned) == "" {
		return nil, 0, &GenerationError{Reason: "model returned empty content"}
	}

	var items []ParsedQuestion
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		repaired := RepairJSON(cleaned)
		if repaired == "" {
			return nil, 0, &GenerationError{Reason: "output is not a JSON array", Err: err}
		}
		if err2 := json.Unmarshal([]byte(repaired), &items); err2 != nil {
			return nil, 0, &GenerationError{Reason: "output is not a JSON array", Err: err2}
		}
	}

	if len(items) == 0 {
		return nil, 0, &GenerationError{Reason: "model returned an empty question array"}
	}

	valid := make([]ParsedQuestion, 0, len(items))
	for i := range items {
		if err := validateQuestion(&items[i]); err != nil {
			continue
		}
		valid = append(valid, items[i])
	}

	if len(valid) == 0 {
		return nil, len(items), &GenerationError{
			Reason: fmt.Sprintf("all %d questions failed validation", len(items)),
		}
	}
	return valid, len(items), nil
}

var codeFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// stripCodeFences unwraps markdown code fences the model sometimes adds
// despite being told not to.
func stripCodeFences(s string) string {
	if m := codeFenceRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return strings.TrimSpace(s)
}

// RepairJSON recovers an array from output with leading or trailing prose
// and from trailing commas before a closing bracket or brace. Returns ""
// when no array brackets are found.
func RepairJSON(s string) string {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return ""
	}
	arr := s[start : end+1]
	arr = trailingCommaRe.ReplaceAllString(arr, "$1")
	return arr
}

var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

// validateQuestion checks one parsed item, normalizing its difficulty.
func validateQuestion(q *ParsedQuestion) error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("empty question text")
	}
	if strings.TrimSpace(q.Explanation) == "" {
		return fmt.Errorf("empty explanation")
	}
	if len(q.Options) != 4 {
		return fmt.Errorf("expected 4 options, got %d", len(q.Options))
	}
	for i, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("option %d is empty", i+1)
		}
	}

	answer := strings.TrimSpace(q.CorrectAnswer)
	if answer == "" {
		return fmt.Errorf("empty correct answer")
	}
	matched := false
	for _, opt := range q.Options {
		if strings.EqualFold(strings.TrimSpace(opt), answer) {
			matched = true
			break
		}
	}
	if !matched {
		return fmt.Errorf("correct answer does not match any option")
	}

	q.Difficulty = strings.ToLower(strings.TrimSpace(q.Difficulty))
	switch q.Difficulty {
	case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
	case "":
		q.Difficulty = models.DifficultyMedium
	default:
		return fmt.Errorf("unknown difficulty %q", q.Difficulty)
	}

	return nil
}

package generator

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func questionJSON(n int) string {
	items := make([]string, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, fmt.Sprintf(`{
			"question": "Question %d?",
			"options": ["Option A", "Option B", "Option C", "Option D"],
			"correct_answer": "Option B",
			"explanation": "Because B is right.",
			"difficulty": "medium",
			"subject": "Pharmacology"
		}`, i+1))
	}
	return "[" + strings.Join(items, ",") + "]"
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no fences", `[{"a":1}]`, `[{"a":1}]`},
		{"json fence", "```json\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"bare fence", "```\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"surrounding whitespace", "  \n[{\"a\":1}]\n  ", `[{"a":1}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripCodeFences(tt.input)
			if got != tt.want {
				t.Errorf("stripCodeFences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"leading prose", `Here are your questions: [{"a":1}]`, `[{"a":1}]`},
		{"trailing prose", `[{"a":1}] Hope these help!`, `[{"a":1}]`},
		{"trailing comma in array", `[{"a":1},]`, `[{"a":1}]`},
		{"trailing comma in object", `[{"a":1,}]`, `[{"a":1}]`},
		{"no array at all", `just words`, ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RepairJSON(tt.input)
			if got != tt.want {
				t.Errorf("RepairJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseQuestionsValid(t *testing.T) {
	parsed, total, err := ParseQuestions(questionJSON(5))
	if err != nil {
		t.Fatalf("ParseQuestions() error = %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(parsed) != 5 {
		t.Errorf("len(parsed) = %d, want 5", len(parsed))
	}
	if parsed[0].CorrectAnswer != "Option B" {
		t.Errorf("CorrectAnswer = %q", parsed[0].CorrectAnswer)
	}
}

func TestParseQuestionsFenced(t *testing.T) {
	raw := "```json\n" + questionJSON(2) + "\n```"
	parsed, _, err := ParseQuestions(raw)
	if err != nil {
		t.Fatalf("ParseQuestions() error = %v", err)
	}
	if len(parsed) != 2 {
		t.Errorf("len(parsed) = %d, want 2", len(parsed))
	}
}

func TestParseQuestionsWithProse(t *testing.T) {
	raw := "Sure! Here are the questions:\n" + questionJSON(3) + "\nLet me know if you need more."
	parsed, _, err := ParseQuestions(raw)
	if err != nil {
		t.Fatalf("ParseQuestions() error = %v", err)
	}
	if len(parsed) != 3 {
		t.Errorf("len(parsed) = %d, want 3", len(parsed))
	}
}

func TestParseQuestionsDropsInvalid(t *testing.T) {
	good := questionJSON(7)
	bad := `{
		"question": "Only three options?",
		"options": ["A", "B", "C"],
		"correct_answer": "A",
		"explanation": "x",
		"difficulty": "easy",
		"subject": "s"
	},{
		"question": "Answer not in options?",
		"options": ["A", "B", "C", "D"],
		"correct_answer": "E",
		"explanation": "x",
		"difficulty": "easy",
		"subject": "s"
	},{
		"question": "",
		"options": ["A", "B", "C", "D"],
		"correct_answer": "A",
		"explanation": "x",
		"difficulty": "easy",
		"subject": "s"
	}`
	raw := strings.TrimSuffix(good, "]") + "," + bad + "]"

	parsed, total, err := ParseQuestions(raw)
	if err != nil {
		t.Fatalf("ParseQuestions() error = %v", err)
	}
	if total != 10 {
		t.Errorf("total = %d, want 10", total)
	}
	if len(parsed) != 7 {
		t.Errorf("len(parsed) = %d, want 7", len(parsed))
	}
}

func TestParseQuestionsAllInvalid(t *testing.T) {
	raw := `[{
		"question": "Missing explanation",
		"options": ["A", "B", "C", "D"],
		"correct_answer": "A",
		"explanation": "",
		"difficulty": "easy",
		"subject": "s"
	}]`

	_, total, err := ParseQuestions(raw)
	if err == nil {
		t.Fatal("expected error for all-invalid output")
	}
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("error = %T, want *GenerationError", err)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1", total)
	}
}

func TestParseQuestionsEmptyContent(t *testing.T) {
	for _, raw := range []string{"", "   \n  ", "```json\n```"} {
		_, _, err := ParseQuestions(raw)
		var genErr *GenerationError
		if !errors.As(err, &genErr) {
			t.Errorf("ParseQuestions(%q) error = %v, want *GenerationError", raw, err)
		}
	}
}

func TestParseQuestionsNotAnArray(t *testing.T) {
	_, _, err := ParseQuestions(`{"question": "single object, not array"}`)
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("error = %v, want *GenerationError", err)
	}
}

func TestParseQuestionsEmptyArray(t *testing.T) {
	_, _, err := ParseQuestions(`[]`)
	if err == nil {
		t.Fatal("expected error for empty array")
	}
}

func TestValidateQuestionNormalizesDifficulty(t *testing.T) {
	q := ParsedQuestion{
		Question:      "Q?",
		Options:       []string{"A", "B", "C", "D"},
		CorrectAnswer: " a ",
		Explanation:   "x",
		Difficulty:    " Medium ",
		Subject:       "s",
	}
	if err := validateQuestion(&q); err != nil {
		t.Fatalf("validateQuestion() error = %v", err)
	}
	if q.Difficulty != "medium" {
		t.Errorf("Difficulty = %q, want medium", q.Difficulty)
	}

	q.Difficulty = ""
	if err := validateQuestion(&q); err != nil {
		t.Fatalf("validateQuestion() error = %v", err)
	}
	if q.Difficulty != "medium" {
		t.Errorf("empty difficulty should default to medium, got %q", q.Difficulty)
	}

	q.Difficulty = "impossible"
	if err := validateQuestion(&q); err == nil {
		t.Error("expected error for unknown difficulty")
	}
}

package generator

import (
	"fmt"
	"strings"

	"nurseprep/internal/models"
)

const systemPreamble = `You are an expert nursing educator who writes exam practice questions. You always answer with raw JSON and nothing else.`

var categoryLabels = map[string]string{
	models.CategoryNCLEXRN: "NCLEX-RN (registered nurse licensure exam)",
	models.CategoryNCLEXPN: "NCLEX-PN (practical nurse licensure exam)",
	models.CategoryHESIA2:  "HESI A2 (nursing school entrance exam)",
}

// BuildQuestionPrompt assembles the generation prompt for one batch.
// subject narrows the content area; difficulty may be empty for a mixed
// spread; sample and areasToCover are optional ad-hoc hints.
func BuildQuestionPrompt(category string, count int, subject, difficulty, sample, areasToCover string) string {
	label, ok := categoryLabels[category]
	if !ok {
		label = category
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Write %d multiple-choice practice questions for the %s.\n", count, label)
	if subject != "" {
		fmt.Fprintf(&sb, "All questions must cover the subject: %s.\n", subject)
	}
	if difficulty != "" {
		fmt.Fprintf(&sb, "All questions must be %s difficulty.\n", difficulty)
	} else {
		sb.WriteString("Mix the difficulty: roughly one third easy, one third medium, one third hard.\n")
	}
	if areasToCover != "" {
		fmt.Fprintf(&sb, "Make sure the questions cover these areas: %s.\n", areasToCover)
	}
	if sample != "" {
		sb.WriteString("Match the style and depth of this sample question:\n")
		sb.WriteString(sample)
		sb.WriteString("\n")
	}

	sb.WriteString(`
Respond with ONLY a JSON array, no markdown fences and no commentary. Each element must have exactly these fields:
  "question": the question text
  "options": an array of exactly 4 answer choices
  "correct_answer": the correct choice, copied verbatim from options
  "explanation": why the correct answer is right
  "difficulty": "easy", "medium" or "hard"
  "subject": the content area the question belongs to

Every question must be clinically accurate and unambiguous, with exactly one defensible correct answer.`)

	return sb.String()
}

package generator

import (
	"context"

	"go.uber.org/zap"

	"nurseprep/internal/models"
)

// GenerateRequest describes one generation batch. Subject narrows the
// content area; Difficulty may be empty for a mixed spread.
type GenerateRequest struct {
	Category       string
	Count          int
	Subject        string
	Difficulty     string
	SampleQuestion string
	AreasToCover   string
	Source         string
}

// GenerateStats reports what one attempt produced. Generated counts items
// the model returned before validation; Saved is what survived it.
type GenerateStats struct {
	Requested int
	Generated int
	Saved     int
}

// Generator turns a batch request into validated question rows. It does
// not retry and does not persist; callers own both.
type Generator struct {
	llm    LLMClient
	logger *zap.Logger
}

func New(llm LLMClient, logger *zap.Logger) *Generator {
	return &Generator{llm: llm, logger: logger}
}

func (g *Generator) Generate(ctx context.Context, req GenerateRequest) ([]models.Question, GenerateStats, error) {
	stats := GenerateStats{Requested: req.Count}

	prompt := BuildQuestionPrompt(req.Category, req.Count, req.Subject, req.Difficulty,
		req.SampleQuestion, req.AreasToCover)

	raw, err := g.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, stats, err
	}

	parsed, total, err := ParseQuestions(raw)
	stats.Generated = total
	if err != nil {
		return nil, stats, err
	}
	stats.Saved = len(parsed)

	if dropped := total - len(parsed); dropped > 0 {
		g.logger.Debug("Dropped invalid questions from model output",
			zap.Int("dropped", dropped),
			zap.Int("kept", len(parsed)),
			zap.String("category", req.Category),
			zap.String("subject", req.Subject))
	}

	questions := make([]models.Question, 0, len(parsed))
	for _, p := range parsed {
		subject := p.Subject
		if req.Subject != "" {
			subject = req.Subject
		}
		questions = append(questions, models.Question{
			Category:      req.Category,
			QuestionText:  p.Question,
			OptionA:       p.Options[0],
			OptionB:       p.Options[1],
			OptionC:       p.Options[2],
			OptionD:       p.Options[3],
			CorrectAnswer: p.CorrectAnswer,
			Explanation:   p.Explanation,
			Difficulty:    p.Difficulty,
			Subject:       subject,
			Source:        req.Source,
		})
	}

	return questions, stats, nil
}

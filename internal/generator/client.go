package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"go.uber.org/zap"

	"nurseprep/internal/config"
	"nurseprep/internal/pkg/httpclient"
)

// LLMClient is the outbound boundary to the text-generation provider:
// one prompt in, raw text out.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
	ModelName() string
}

// NewClient builds the configured provider client.
func NewClient(cfg *config.LLMConfig, logger *zap.Logger) (LLMClient, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
		return NewGeminiClient(cfg.GeminiAPIKey, cfg.Model, cfg.Timeout, logger), nil
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
		return NewAnthropicClient(cfg.AnthropicAPIKey, cfg.Model, logger), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.Provider)
	}
}

// ── Gemini (REST) ─────────────────────────────────────────────────────

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Probed in order when no model is configured. A 404 means the model id is
// unknown to the API and the next candidate is tried; any other response
// selects the candidate.
var geminiModelCandidates = []string{
	"gemini-2.0-flash",
	"gemini-1.5-flash",
	"gemini-1.5-flash-8b",
	"gemini-1.5-pro",
	"gemini-pro",
}

// GeminiClient calls the Google Generative Language REST API.
type GeminiClient struct {
	http   *httpclient.Client
	apiKey string
	logger *zap.Logger

	mu    sync.Mutex
	model string // configured, or cached after discovery
}

func NewGeminiClient(apiKey, model string, timeout time.Duration, logger *zap.Logger) *GeminiClient {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &GeminiClient{
		http:   httpclient.New().WithTimeout(timeout).WithRetries(0),
		apiKey: apiKey,
		logger: logger,
		model:  model,
	}
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *geminiAPIError `json:"error"`
}

type geminiAPIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (c *GeminiClient) ModelName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.model == "" {
		return "gemini:auto"
	}
	return c.model
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	model, err := c.resolveModel(ctx)
	if err != nil {
		return "", err
	}

	body := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: systemPreamble + "\n\n" + prompt}}},
		},
		GenerationConfig: &geminiGenerationConfig{Temperature: 0.7},
	}

	resp, err := c.http.Request().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(c.endpoint(model))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", fmt.Errorf("gemini response decode failed: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("gemini api error %d (%s): %s",
			parsed.Error.Code, parsed.Error.Status, parsed.Error.Message)
	}

	var sb strings.Builder
	for _, cand := range parsed.Candidates {
		for _, part := range cand.Content.Parts {
			sb.WriteString(part.Text)
		}
		break
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini returned no content")
	}
	return text, nil
}

// resolveModel returns the configured model, or probes the candidate list and
// caches the first responder. Unknown models (404) are skipped; transient
// errors do not disqualify a candidate.
func (c *GeminiClient) resolveModel(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.model != "" {
		return c.model, nil
	}

	for _, candidate := range geminiModelCandidates {
		status, err := c.probe(ctx, candidate)
		if err != nil {
			c.logger.Debug("Gemini model probe errored, accepting candidate",
				zap.String("model", candidate), zap.Error(err))
			c.model = candidate
			return candidate, nil
		}
		if status == http.StatusNotFound {
			c.logger.Debug("Gemini model not available, skipping",
				zap.String("model", candidate))
			continue
		}
		c.logger.Info("Gemini model detected", zap.String("model", candidate))
		c.model = candidate
		return candidate, nil
	}

	return "", fmt.Errorf("no usable gemini model among %d candidates", len(geminiModelCandidates))
}

func (c *GeminiClient) probe(ctx context.Context, model string) (int, error) {
	body := geminiRequest{
		Contents:         []geminiContent{{Parts: []geminiPart{{Text: "ping"}}}},
		GenerationConfig: &geminiGenerationConfig{MaxOutputTokens: 1},
	}

	resp, err := c.http.Request().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(c.endpoint(model))
	if err != nil {
		return 0, err
	}
	return resp.StatusCode(), nil
}

func (c *GeminiClient) endpoint(model string) string {
	return fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		geminiBaseURL, url.PathEscape(model), url.QueryEscape(c.apiKey))
}

// ── Anthropic (SDK) ───────────────────────────────────────────────────

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"

// AnthropicClient calls the Anthropic messages API.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
	logger *zap.Logger
}

func NewAnthropicClient(apiKey, model string, logger *zap.Logger) *AnthropicClient {
	if model == "" {
		model = defaultAnthropicModel
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicClient{client: &client, model: model, logger: logger}
}

func (c *AnthropicClient) ModelName() string {
	return c.model
}

func (c *AnthropicClient) Generate(ctx context.Context, prompt string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   8192,
		Temperature: param.NewOpt(0.7),
		System: []anthropic.TextBlockParam{
			{Text: systemPreamble},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic api failed: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in API response")
}

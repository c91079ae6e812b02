package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/roadmap-api/internal/config"
	"github.com/phrazzld/roadmap-api/internal/generation"
	"google.golang.org/genai"
)

const providerName = "gemini"

// ContentGenerator is the subset of genai.Models used by Completer.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Completer implements generation.RoadmapCompleter using Gemini.
type Completer struct {
	models    ContentGenerator
	model     string
	maxTokens int32
	timeout   time.Duration
	logger    *slog.Logger
}

var _ generation.RoadmapCompleter = (*Completer)(nil)

// NewCompleter creates a Gemini client from cfg.
func NewCompleter(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*Completer, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return NewCompleterWithModels(client.Models, cfg, logger)
}

// NewCompleterWithModels builds a Completer around an existing generator.
func NewCompleterWithModels(models ContentGenerator, cfg config.LLMConfig, logger *slog.Logger) (*Completer, error) {
	if models == nil {
		return nil, fmt.Errorf("%w: content generator cannot be nil", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Completer{
		models:    models,
		model:     cfg.ModelName,
		maxTokens: int32(cfg.MaxOutputTokens),
		logger:    logger.With(slog.String("component", "gemini_completer"), slog.String("model", cfg.ModelName)),
	}
	if cfg.RequestTimeoutSeconds > 0 {
		c.timeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	}
	return c, nil
}

// CompleteRoadmap sends prompt and returns the model's raw text. The model
// is asked for an application/json response. There are no retries.
func (c *Completer) CompleteRoadmap(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("%w: prompt cannot be empty", generation.ErrCompletionFailed)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	genConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	if c.maxTokens > 0 {
		genConfig.MaxOutputTokens = c.maxTokens
	}

	start := time.Now()
	c.logger.DebugContext(ctx, "calling Gemini", slog.Int("prompt_length", len(prompt)))

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), genConfig)
	if err != nil {
		return "", c.mapError(ctx, err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		c.logger.WarnContext(ctx, "prompt blocked by Gemini",
			slog.String("block_reason", string(resp.PromptFeedback.BlockReason)))
		return "", fmt.Errorf("%w: prompt blocked (%s)", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: response stopped by safety filters", generation.ErrContentBlocked)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %w", generation.ErrCompletionFailed, generation.ErrEmptyResponse)
	}

	c.logger.InfoContext(ctx, "Gemini completion received",
		slog.Int("response_length", len(text)),
		slog.Duration("duration", time.Since(start)))
	return text, nil
}

func (c *Completer) mapError(ctx context.Context, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		c.logger.ErrorContext(ctx, "Gemini API error",
			slog.Int("status_code", apiErr.Code),
			slog.String("status", apiErr.Status))
		return &generation.APIError{
			Provider:   providerName,
			StatusCode: apiErr.Code,
			Message:    apiErr.Message,
			Err:        generation.ErrCompletionFailed,
		}
	}

	c.logger.ErrorContext(ctx, "Gemini call failed", slog.String("error", err.Error()))
	return fmt.Errorf("%w: %v", generation.ErrCompletionFailed, err)
}

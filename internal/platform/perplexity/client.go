package perplexity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/phrazzld/roadmap-api/internal/config"
	"github.com/phrazzld/roadmap-api/internal/generation"
)

const (
	providerName       = "perplexity"
	completionsPath    = "/chat/completions"
	maxErrorBodyBytes  = 64 << 10
	maxResponseBytes   = 8 << 20
	unknownErrorReason = "Unknown error"
)

// thinkBlock matches the reasoning preamble emitted by deep-research models.
var thinkBlock = regexp.MustCompile(`(?s)^\s*<think>.*?</think>\s*`)

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Client calls the Perplexity API.
type Client struct {
	httpClient  *http.Client
	endpoint    string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	logger      *slog.Logger
}

var _ generation.MarketResearcher = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its timeout takes precedence.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a client from cfg.
func NewClient(cfg config.ResearchConfig, logger *slog.Logger, opts ...Option) (*Client, error) {
	if cfg.PerplexityAPIKey == "" {
		return nil, fmt.Errorf("%w: perplexity API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: perplexity base URL cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: perplexity model cannot be empty", generation.ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		httpClient:  &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		endpoint:    strings.TrimRight(cfg.BaseURL, "/") + completionsPath,
		apiKey:      cfg.PerplexityAPIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      logger.With(slog.String("component", "perplexity_client"), slog.String("model", cfg.Model)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Research sends prompt as a single user message and returns the content
// of the first choice. Non-2xx responses become *generation.APIError
// carrying the API's error.message.
func (c *Client) Research(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    []message{{Role: "user", Content: prompt}},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to encode request: %v", generation.ErrResearchFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: failed to build request: %v", generation.ErrResearchFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	c.logger.InfoContext(ctx, "sending research prompt", slog.Int("prompt_length", len(prompt)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "research request failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return "", fmt.Errorf("%w: %v", generation.ErrResearchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := c.decodeError(resp)
		c.logger.ErrorContext(ctx, "research API returned an error",
			slog.Int("status_code", resp.StatusCode),
			slog.String("message", apiErr.Message))
		return "", apiErr
	}

	var parsed completionResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", generation.ErrResearchFailed, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: response has no choices", generation.ErrResearchFailed)
	}

	content := strings.TrimSpace(thinkBlock.ReplaceAllString(parsed.Choices[0].Message.Content, ""))
	if content == "" {
		return "", fmt.Errorf("%w: %w", generation.ErrResearchFailed, generation.ErrEmptyResponse)
	}

	c.logger.InfoContext(ctx, "research response received",
		slog.Int("response_length", len(content)),
		slog.Duration("duration", time.Since(start)))
	return content, nil
}

func (c *Client) decodeError(resp *http.Response) *generation.APIError {
	apiErr := &generation.APIError{
		Provider:   providerName,
		StatusCode: resp.StatusCode,
		Message:    unknownErrorReason,
		Err:        generation.ErrResearchFailed,
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil {
		return apiErr
	}

	var parsed errorResponse
	if err := json.Unmarshal(raw, &parsed); err == nil {
		if parsed.Error.Message != "" {
			apiErr.Message = parsed.Error.Message
		}
		return apiErr
	}

	// Not JSON: surface the raw body.
	if text := strings.TrimSpace(string(raw)); text != "" {
		apiErr.Message = text
	}
	return apiErr
}

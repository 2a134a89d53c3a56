package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/xtlz/xtlz-english/internal/config"
	"github.com/xtlz/xtlz-english/internal/domain"
	"github.com/xtlz/xtlz-english/internal/generation"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = goopenai.GPT4oMini

// Client sends prompts as single-message chat completions and asks for a
// JSON object answer.
type Client struct {
	api         *goopenai.Client
	model       string
	temperature float32
	logger      *slog.Logger
}

var _ generation.Completer = (*Client)(nil)

// NewClient creates a client from the LLM configuration. OpenAIBaseURL, when
// set, points the client at a compatible provider.
func NewClient(cfg config.LLMConfig, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		return nil, fmt.Errorf("%w: openai API key cannot be empty", generation.ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}

	apiConfig := goopenai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		apiConfig.BaseURL = strings.TrimRight(cfg.OpenAIBaseURL, "/")
	}
	apiConfig.HTTPClient = &http.Client{Timeout: 60 * time.Second}

	model := strings.TrimSpace(cfg.ModelName)
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		api:         goopenai.NewClientWithConfig(apiConfig),
		model:       model,
		temperature: cfg.Temperature,
		logger:      logger.With(slog.String("component", "openai"), slog.String("model", model)),
	}, nil
}

// Complete implements generation.Completer.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no candidate choice in response", generation.ErrInvalidResponse)
	}
	choice := resp.Choices[0]
	if choice.FinishReason == goopenai.FinishReasonContentFilter {
		return "", fmt.Errorf("%w: answer removed by content filter", generation.ErrContentBlocked)
	}

	text := choice.Message.Content
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty answer", generation.ErrInvalidResponse)
	}

	c.logger.DebugContext(ctx, "openai answered",
		slog.Duration("duration", time.Since(start)),
		slog.Int("response_length", len(text)))
	return text, nil
}

// classify maps HTTP status codes first and falls back to message matching.
func classify(err error) error {
	status := 0
	var apiErr *goopenai.APIError
	var reqErr *goopenai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", generation.ErrQuotaExceeded, err)
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return fmt.Errorf("%w: %w", generation.ErrUnauthorized, err)
	case status >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %w", generation.ErrTransientFailure, err)
	}
	return generation.Classify(err)
}

// NewGenerator creates a generation.LLMGenerator backed by the chat API.
func NewGenerator(cfg config.LLMConfig, level domain.Level, logger *slog.Logger) (*generation.LLMGenerator, error) {
	client, err := NewClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	policy := generation.RetryPolicy{
		MaxRetries: cfg.MaxRetries,
		BaseDelay:  time.Duration(cfg.RetryDelaySeconds) * time.Second,
	}
	return generation.NewLLMGenerator(client, policy, level, logger), nil
}

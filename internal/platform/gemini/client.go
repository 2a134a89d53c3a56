package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/xtlz/xtlz-english/internal/config"
	"github.com/xtlz/xtlz-english/internal/domain"
	"github.com/xtlz/xtlz-english/internal/generation"
)

// DefaultModel is used when no model name is configured. It is available
// on the free tier.
const DefaultModel = "gemini-2.0-flash"

// contentGenerator is the part of the genai client used here.
// *genai.Models implements it.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Client sends prompts to Gemini and returns the JSON text of the answer.
type Client struct {
	models      contentGenerator
	model       string
	temperature float32
	logger      *slog.Logger
}

var _ generation.Completer = (*Client)(nil)

// NewClient creates a Gemini client from the LLM configuration.
func NewClient(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return newClient(client.Models, cfg, logger), nil
}

func newClient(models contentGenerator, cfg config.LLMConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	model := strings.TrimSpace(cfg.ModelName)
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		models:      models,
		model:       model,
		temperature: cfg.Temperature,
		logger:      logger.With(slog.String("component", "gemini"), slog.String("model", model)),
	}
}

// Complete implements generation.Completer.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	temperature := c.temperature
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}}

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      &temperature,
	})
	if err != nil {
		return "", generation.Classify(err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", err
	}

	c.logger.DebugContext(ctx, "gemini answered",
		slog.Duration("duration", time.Since(start)),
		slog.Int("response_length", len(text)))
	return text, nil
}

// responseText extracts the text of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked (%s)", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", fmt.Errorf("%w: no candidate in response", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: answer blocked by safety filters", generation.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty candidate content", generation.ErrInvalidResponse)
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", errors.Join(generation.ErrInvalidResponse, errors.New("candidate has no text"))
	}
	return b.String(), nil
}

// NewGenerator creates a generation.LLMGenerator backed by Gemini.
func NewGenerator(ctx context.Context, cfg config.LLMConfig, level domain.Level, logger *slog.Logger) (*generation.LLMGenerator, error) {
	client, err := NewClient(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	policy := generation.RetryPolicy{
		MaxRetries: cfg.MaxRetries,
		BaseDelay:  time.Duration(cfg.RetryDelaySeconds) * time.Second,
	}
	return generation.NewLLMGenerator(client, policy, level, logger), nil
}

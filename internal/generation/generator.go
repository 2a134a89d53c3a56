package generation

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/xtlz/xtlz-english/internal/domain"
)

// Generator drafts learning content with a language model.
type Generator interface {
	// DraftCard suggests a translation, level, kind and example for term.
	DraftCard(ctx context.Context, term string) (*domain.CardDraft, error)

	// DraftRule suggests an explanation and examples for a grammar topic.
	DraftRule(ctx context.Context, topic string) (*domain.RuleDraft, error)
}

// Completer sends one prompt to a language model and returns its JSON answer.
// Implementations should return errors that Classify understands; raw
// provider errors are classified by message.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// RetryPolicy controls how transient failures are retried.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// BaseDelay is the delay before the first retry. Later retries double it,
	// scaled by a random factor between 0.5 and 1.
	BaseDelay time.Duration
}

// DefaultRetryPolicy is used when a policy field is invalid.
var DefaultRetryPolicy = RetryPolicy{MaxRetries: 3, BaseDelay: 2 * time.Second}

// LLMGenerator implements Generator on top of a Completer.
type LLMGenerator struct {
	completer Completer
	policy    RetryPolicy
	level     domain.Level
	logger    *slog.Logger
}

// NewLLMGenerator creates a generator. level is the learner's level and is
// passed to rule prompts.
func NewLLMGenerator(completer Completer, policy RetryPolicy, level domain.Level, logger *slog.Logger) *LLMGenerator {
	if completer == nil {
		panic("completer cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if policy.MaxRetries < 0 {
		policy.MaxRetries = DefaultRetryPolicy.MaxRetries
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = DefaultRetryPolicy.BaseDelay
	}
	return &LLMGenerator{
		completer: completer,
		policy:    policy,
		level:     level,
		logger:    logger.With(slog.String("component", "generator")),
	}
}

var _ Generator = (*LLMGenerator)(nil)

// DraftCard implements Generator.
func (g *LLMGenerator) DraftCard(ctx context.Context, term string) (*domain.CardDraft, error) {
	prompt, err := CardPrompt(term)
	if err != nil {
		return nil, err
	}

	raw, err := g.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	draft, err := ParseCardDraft(term, raw)
	if err != nil {
		g.logger.WarnContext(ctx, "unusable card draft", slog.String("error", err.Error()))
		return nil, err
	}
	return draft, nil
}

// DraftRule implements Generator.
func (g *LLMGenerator) DraftRule(ctx context.Context, topic string) (*domain.RuleDraft, error) {
	prompt, err := RulePrompt(topic, string(g.level))
	if err != nil {
		return nil, err
	}

	raw, err := g.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	draft, err := ParseRuleDraft(topic, raw)
	if err != nil {
		g.logger.WarnContext(ctx, "unusable rule draft", slog.String("error", err.Error()))
		return nil, err
	}
	return draft, nil
}

// complete calls the model with exponential backoff and jitter for
// transient errors. Other errors are returned immediately.
func (g *LLMGenerator) complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}

	for attempt := 0; ; attempt++ {
		raw, err := g.completer.Complete(ctx, prompt)
		if err == nil {
			g.logger.DebugContext(ctx, "model call succeeded", slog.Int("attempt", attempt+1))
			return raw, nil
		}

		err = Classify(err)
		g.logger.WarnContext(ctx, "model call failed",
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", g.policy.MaxRetries+1),
			slog.String("error", err.Error()))

		if !IsRetryable(err) {
			return "", err
		}
		if attempt >= g.policy.MaxRetries {
			return "", err
		}

		delay := g.backoff(attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", Classify(ctx.Err())
		}
	}
}

// backoff returns base * 2^attempt * (0.5 + rand[0, 0.5)).
func (g *LLMGenerator) backoff(attempt int) time.Duration {
	jitter := 0.5 + rand.Float64()*0.5
	return time.Duration(float64(g.policy.BaseDelay) * math.Pow(2, float64(attempt)) * jitter)
}

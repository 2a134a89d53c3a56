package generation

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/xtlz/xtlz-english/internal/domain"
)

// rateLimited spaces out calls to the wrapped generator.
type rateLimited struct {
	next    Generator
	limiter *rate.Limiter
}

// RateLimited wraps gen so that calls are admitted at most at limit per
// second with the given burst. Callers block until admitted or until their
// context ends. A limit of rate.Inf disables limiting.
func RateLimited(gen Generator, limit rate.Limit, burst int) Generator {
	if burst < 1 {
		burst = 1
	}
	return &rateLimited{next: gen, limiter: rate.NewLimiter(limit, burst)}
}

// PerMinute converts a requests-per-minute quota into a rate.Limit.
// Zero or negative means unlimited.
func PerMinute(n int) rate.Limit {
	if n <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(n) / 60)
}

func (r *rateLimited) DraftCard(ctx context.Context, term string) (*domain.CardDraft, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.next.DraftCard(ctx, term)
}

func (r *rateLimited) DraftRule(ctx context.Context, topic string) (*domain.RuleDraft, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.next.DraftRule(ctx, topic)
}

func (r *rateLimited) wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: waiting for rate limiter: %w", ErrQuotaExceeded, err)
	}
	return nil
}

type disabled struct{}

// Disabled returns a Generator whose calls all fail with ErrDisabled.
func Disabled() Generator { return disabled{} }

func (disabled) DraftCard(context.Context, string) (*domain.CardDraft, error) {
	return nil, ErrDisabled
}

func (disabled) DraftRule(context.Context, string) (*domain.RuleDraft, error) {
	return nil, ErrDisabled
}

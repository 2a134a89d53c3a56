package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Common errors that may be returned by Generator implementations.
var (
	// ErrGenerationFailed indicates a general failure that does not fit a
	// more specific category.
	ErrGenerationFailed = errors.New("failed to generate content")

	// ErrInvalidResponse indicates that the model answered with something
	// that could not be parsed into a draft.
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked indicates that the provider's safety filters
	// refused to answer.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure indicates a temporary failure (network, timeout,
	// server error) that may succeed if retried.
	ErrTransientFailure = errors.New("transient error during generation")

	// ErrInvalidConfig indicates that the generator is misconfigured.
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrQuotaExceeded indicates that the provider's rate limit or quota was hit.
	ErrQuotaExceeded = errors.New("language model quota exceeded")

	// ErrUnauthorized indicates that the API key was rejected.
	ErrUnauthorized = errors.New("language model API key rejected")

	// ErrRegionUnavailable indicates that the provider does not serve the
	// caller's location.
	ErrRegionUnavailable = errors.New("language model unavailable in this region")

	// ErrEmptyPrompt is returned when there is nothing to generate from.
	ErrEmptyPrompt = errors.New("prompt input cannot be empty")

	// ErrDisabled is returned when no provider is configured.
	ErrDisabled = errors.New("content generation is disabled")
)

// categories are checked in order; the first matching category wins.
var categories = []struct {
	err      error
	keywords []string
}{
	{ErrQuotaExceeded, []string{"429", "quota", "resource_exhausted", "rate limit"}},
	{ErrUnauthorized, []string{"key", "401", "403", "permission_denied", "unauthenticated"}},
	{ErrRegionUnavailable, []string{"location", "region"}},
	{ErrTransientFailure, []string{"fetch", "network", "timeout", "connection", "no such host", "eof", "500", "502", "503", "504", "unavailable"}},
	{ErrInvalidResponse, []string{"candidate"}},
}

// Classify wraps a raw provider error with the matching sentinel error.
// Errors that already carry a sentinel, and nil, are returned unchanged.
// Unrecognised errors are wrapped with ErrGenerationFailed.
func Classify(err error) error {
	if err == nil || hasSentinel(err) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTransientFailure, err)
	}

	msg := strings.ToLower(err.Error())
	for _, c := range categories {
		for _, kw := range c.keywords {
			if strings.Contains(msg, kw) {
				return fmt.Errorf("%w: %w", c.err, err)
			}
		}
	}

	return fmt.Errorf("%w: %w", ErrGenerationFailed, err)
}

// IsRetryable reports whether err is worth another attempt.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransientFailure)
}

func hasSentinel(err error) bool {
	for _, sentinel := range []error{
		ErrGenerationFailed, ErrInvalidResponse, ErrContentBlocked, ErrTransientFailure,
		ErrInvalidConfig, ErrQuotaExceeded, ErrUnauthorized, ErrRegionUnavailable,
		ErrEmptyPrompt, ErrDisabled,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// Learner-facing messages. The learner's interface language is Russian.
const (
	MessageQuota    = "Превышен лимит бесплатной версии. Подождите минутку и попробуйте снова."
	MessageKey      = "Ошибка ключа API. Проверьте ключ в настройках сервера."
	MessageRegion   = "API недоступно в вашем регионе (попробуйте VPN)."
	MessageNetwork  = "Ошибка сети. Проверьте подключение к интернету."
	MessageNoAnswer = "ИИ не смог сгенерировать ответ. Попробуйте изменить запрос."
	MessageDisabled = "Генерация с помощью ИИ не настроена."
	MessageDefault  = "Произошла ошибка при обращении к ИИ. Попробуйте позже."
)

// FriendlyMessage returns a short learner-facing explanation of a
// generation error. It never includes the raw error text.
func FriendlyMessage(err error) string {
	if err == nil {
		return ""
	}

	err = Classify(err)
	switch {
	case errors.Is(err, ErrQuotaExceeded):
		return MessageQuota
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidConfig):
		return MessageKey
	case errors.Is(err, ErrRegionUnavailable):
		return MessageRegion
	case errors.Is(err, ErrTransientFailure):
		return MessageNetwork
	case errors.Is(err, ErrInvalidResponse), errors.Is(err, ErrContentBlocked), errors.Is(err, ErrEmptyPrompt):
		return MessageNoAnswer
	case errors.Is(err, ErrDisabled):
		return MessageDisabled
	default:
		return MessageDefault
	}
}

package generation_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xtlz/xtlz-english/internal/generation"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "quota status code", err: errors.New("Error 429: Too Many Requests"), want: generation.ErrQuotaExceeded},
		{name: "resource exhausted", err: errors.New("RESOURCE_EXHAUSTED: try later"), want: generation.ErrQuotaExceeded},
		{name: "bad key", err: errors.New("API key not valid. Please pass a valid API key."), want: generation.ErrUnauthorized},
		{name: "forbidden", err: errors.New("status 403"), want: generation.ErrUnauthorized},
		{name: "region", err: errors.New("User location is not supported for the API use."), want: generation.ErrRegionUnavailable},
		{name: "network", err: errors.New("dial tcp: lookup example.org: no such host"), want: generation.ErrTransientFailure},
		{name: "server error", err: errors.New("Error 503: model overloaded"), want: generation.ErrTransientFailure},
		{name: "deadline", err: fmt.Errorf("call: %w", context.DeadlineExceeded), want: generation.ErrTransientFailure},
		{name: "no candidate", err: errors.New("response has no candidate"), want: generation.ErrInvalidResponse},
		{name: "unknown", err: errors.New("something odd"), want: generation.ErrGenerationFailed},
		{name: "already classified", err: generation.ErrContentBlocked, want: generation.ErrContentBlocked},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := generation.Classify(tc.err)

			assert.ErrorIs(t, got, tc.want)
			assert.ErrorIs(t, got, tc.err, "original error stays reachable")
		})
	}

	assert.NoError(t, generation.Classify(nil))
}

func TestFriendlyMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "quota", err: errors.New("429 quota exceeded"), want: generation.MessageQuota},
		{name: "key", err: generation.ErrUnauthorized, want: generation.MessageKey},
		{name: "region", err: errors.New("unsupported region"), want: generation.MessageRegion},
		{name: "network", err: errors.New("network is unreachable"), want: generation.MessageNetwork},
		{name: "blocked", err: generation.ErrContentBlocked, want: generation.MessageNoAnswer},
		{name: "unparseable", err: fmt.Errorf("%w: bad json", generation.ErrInvalidResponse), want: generation.MessageNoAnswer},
		{name: "disabled", err: generation.ErrDisabled, want: generation.MessageDisabled},
		{name: "other", err: errors.New("boom"), want: generation.MessageDefault},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, generation.FriendlyMessage(tc.err))
		})
	}
}

func TestFriendlyMessageHidesDetails(t *testing.T) {
	t.Parallel()

	msg := generation.FriendlyMessage(errors.New("API key AIzaSecret123 not valid"))
	assert.NotContains(t, msg, "AIzaSecret123")
}

package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xtlz/xtlz-english/internal/domain"
)

var baseTime = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func shownAt(status domain.Status, lastShown time.Time) domain.ReviewState {
	state := domain.ReviewState{Status: status, LastShownDate: &lastShown}
	switch status {
	case domain.StatusWeak:
		state.ViewCount, state.ErrorCount = 1, 1
	case domain.StatusLearning:
		state.ViewCount, state.SuccessCount, state.ConsecutiveSuccesses = 1, 1, 1
	case domain.StatusKnown:
		state.ViewCount, state.SuccessCount, state.ConsecutiveSuccesses = 3, 3, 3
	}
	return state
}

func TestApplyReviewOutcome(t *testing.T) {
	t.Parallel()

	earlier := baseTime.Add(-48 * time.Hour)

	testCases := []struct {
		name       string
		state      domain.ReviewState
		remembered bool
		want       domain.ReviewState
	}{
		{
			name:       "new remembered becomes learning",
			state:      domain.NewReviewState(),
			remembered: true,
			want: domain.ReviewState{
				Status: domain.StatusLearning, ViewCount: 1, SuccessCount: 1, ConsecutiveSuccesses: 1,
			},
		},
		{
			name:       "new forgotten becomes weak",
			state:      domain.NewReviewState(),
			remembered: false,
			want: domain.ReviewState{
				Status: domain.StatusWeak, ViewCount: 1, ErrorCount: 1,
			},
		},
		{
			name: "third consecutive success graduates",
			state: domain.ReviewState{
				Status: domain.StatusLearning, ViewCount: 2, SuccessCount: 2,
				LastShownDate: &earlier, ConsecutiveSuccesses: 2,
			},
			remembered: true,
			want: domain.ReviewState{
				Status: domain.StatusKnown, ViewCount: 3, SuccessCount: 3, ConsecutiveSuccesses: 3,
			},
		},
		{
			name: "success after a lapse restarts in learning",
			state: domain.ReviewState{
				Status: domain.StatusWeak, ViewCount: 4, SuccessCount: 3, ErrorCount: 1,
				LastShownDate: &earlier,
			},
			remembered: true,
			want: domain.ReviewState{
				Status: domain.StatusLearning, ViewCount: 5, SuccessCount: 4, ErrorCount: 1,
				ConsecutiveSuccesses: 1,
			},
		},
		{
			name: "known forgotten becomes weak and loses streak",
			state: domain.ReviewState{
				Status: domain.StatusKnown, ViewCount: 5, SuccessCount: 5,
				LastShownDate: &earlier, ConsecutiveSuccesses: 5,
			},
			remembered: false,
			want: domain.ReviewState{
				Status: domain.StatusWeak, ViewCount: 6, SuccessCount: 5, ErrorCount: 1,
			},
		},
		{
			name: "known remembered stays known",
			state: domain.ReviewState{
				Status: domain.StatusKnown, ViewCount: 3, SuccessCount: 3,
				LastShownDate: &earlier, ConsecutiveSuccesses: 3,
			},
			remembered: true,
			want: domain.ReviewState{
				Status: domain.StatusKnown, ViewCount: 4, SuccessCount: 4, ConsecutiveSuccesses: 4,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := ApplyReviewOutcome(tc.state, tc.remembered, baseTime)

			require.NotNil(t, got.LastShownDate)
			assert.Equal(t, baseTime, *got.LastShownDate)

			tc.want.LastShownDate = got.LastShownDate
			assert.Equal(t, tc.want, got)
			assert.NoError(t, got.Validate())
		})
	}
}

func TestApplyReviewOutcomeDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	earlier := baseTime.Add(-time.Hour)
	input := domain.ReviewState{
		Status: domain.StatusWeak, ViewCount: 1, ErrorCount: 1, LastShownDate: &earlier,
	}
	snapshot := input.Clone()

	got := ApplyReviewOutcome(input, true, baseTime)

	assert.Equal(t, snapshot, input)
	assert.Equal(t, earlier, *input.LastShownDate)
	assert.NotSame(t, input.LastShownDate, got.LastShownDate)
}

func TestApplyReviewOutcomeIsTotal(t *testing.T) {
	t.Parallel()

	// States that fail validation are still transitioned.
	odd := domain.ReviewState{Status: "Mystery", ViewCount: 7}

	got := ApplyReviewOutcome(odd, false, baseTime)

	assert.Equal(t, domain.StatusWeak, got.Status)
	assert.Equal(t, 8, got.ViewCount)
	assert.Equal(t, 1, got.ErrorCount)
}

func TestReviewLifecycle(t *testing.T) {
	t.Parallel()

	type step struct {
		remembered bool
		status     domain.Status
		streak     int
	}

	steps := []step{
		{remembered: true, status: domain.StatusLearning, streak: 1},
		{remembered: true, status: domain.StatusLearning, streak: 2},
		{remembered: true, status: domain.StatusKnown, streak: 3},
		{remembered: false, status: domain.StatusWeak, streak: 0},
		{remembered: true, status: domain.StatusLearning, streak: 1},
	}

	state := domain.NewReviewState()
	now := baseTime
	for i, s := range steps {
		now = now.Add(time.Duration(i+1) * time.Hour)
		state = ApplyReviewOutcome(state, s.remembered, now)

		assert.Equal(t, s.status, state.Status, "step %d", i+1)
		assert.Equal(t, s.streak, state.ConsecutiveSuccesses, "step %d", i+1)
		assert.Equal(t, i+1, state.ViewCount, "step %d", i+1)
		require.NoError(t, state.Validate(), "step %d", i+1)
	}

	assert.Equal(t, 4, state.SuccessCount)
	assert.Equal(t, 1, state.ErrorCount)
	assert.Equal(t, now, *state.LastShownDate)
}

func TestPriorityValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 4, PriorityValue(domain.StatusWeak))
	assert.Equal(t, 3, PriorityValue(domain.StatusLearning))
	assert.Equal(t, 2, PriorityValue(domain.StatusNew))
	assert.Equal(t, 1, PriorityValue(domain.StatusKnown))
	assert.Equal(t, 0, PriorityValue("Archived"))
}

func TestIsDueBoundaries(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		state   domain.ReviewState
		elapsed time.Duration
		want    bool
	}{
		{name: "new is always due", state: domain.NewReviewState(), want: true},
		{name: "weak at 119 minutes", state: shownAt(domain.StatusWeak, baseTime), elapsed: 119 * time.Minute, want: false},
		{name: "weak at 120 minutes", state: shownAt(domain.StatusWeak, baseTime), elapsed: 120 * time.Minute, want: true},
		{name: "learning at 23h59m", state: shownAt(domain.StatusLearning, baseTime), elapsed: 23*time.Hour + 59*time.Minute, want: false},
		{name: "learning at 24h", state: shownAt(domain.StatusLearning, baseTime), elapsed: 24 * time.Hour, want: true},
		{name: "known at 119h", state: shownAt(domain.StatusKnown, baseTime), elapsed: 119 * time.Hour, want: false},
		{name: "known at 120h", state: shownAt(domain.StatusKnown, baseTime), elapsed: 120 * time.Hour, want: true},
		{name: "known one nanosecond short", state: shownAt(domain.StatusKnown, baseTime), elapsed: 120*time.Hour - time.Nanosecond, want: false},
		{
			name:  "never shown learning item is due",
			state: domain.ReviewState{Status: domain.StatusLearning, ViewCount: 1, SuccessCount: 1},
			want:  true,
		},
		{name: "unknown status has no threshold", state: shownAt("Archived", baseTime), elapsed: time.Minute, want: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, IsDue(tc.state, baseTime.Add(tc.elapsed)))
		})
	}
}

func TestIsDueUsesElapsedTimeNotCalendarDays(t *testing.T) {
	t.Parallel()

	// Shown just before midnight; a calendar-day rule would make it due right after.
	lateEvening := time.Date(2024, 1, 15, 23, 50, 0, 0, time.UTC)
	state := shownAt(domain.StatusLearning, lateEvening)

	assert.False(t, IsDue(state, lateEvening.Add(20*time.Minute)))
	assert.True(t, IsDue(state, lateEvening.Add(24*time.Hour)))
}

func TestApplyReviewOutcomeEveryOutcomeSequence(t *testing.T) {
	t.Parallel()

	const maxLength = 7

	starts := map[string]domain.ReviewState{
		"new":      domain.NewReviewState(),
		"weak":     shownAt(domain.StatusWeak, baseTime),
		"learning": shownAt(domain.StatusLearning, baseTime),
		"known":    shownAt(domain.StatusKnown, baseTime),
	}

	for name, start := range starts {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			// Each bit of mask is one outcome, lowest bit first.
			for length := 1; length <= maxLength; length++ {
				for mask := 0; mask < 1<<length; mask++ {
					state := start
					now := baseTime
					for step := 0; step < length; step++ {
						remembered := mask&(1<<step) != 0
						now = now.Add(3 * time.Hour)
						prev := state
						state = ApplyReviewOutcome(prev, remembered, now)

						require.NoError(t, state.Validate(), "mask %b step %d", mask, step)
						assert.Equal(t, state.SuccessCount+state.ErrorCount, state.ViewCount)
						assert.Equal(t, prev.ViewCount+1, state.ViewCount)
						assert.Equal(t, now, *state.LastShownDate)

						if remembered {
							assert.Equal(t, prev.ConsecutiveSuccesses+1, state.ConsecutiveSuccesses,
								"mask %b step %d", mask, step)
						} else {
							assert.Zero(t, state.ConsecutiveSuccesses, "mask %b step %d", mask, step)
							assert.Equal(t, domain.StatusWeak, state.Status, "mask %b step %d", mask, step)
						}
						assert.Equal(t, state.ConsecutiveSuccesses >= DefaultGraduationStreak,
							state.Status == domain.StatusKnown, "mask %b step %d", mask, step)
					}
				}
			}
		})
	}
}

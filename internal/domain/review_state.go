package domain

import (
	"fmt"
	"time"
)

// ReviewState holds the spaced-repetition fields shared by every reviewable item.
//
// A valid state satisfies:
//   - ViewCount == SuccessCount + ErrorCount
//   - ConsecutiveSuccesses <= SuccessCount
//   - LastShownDate is nil exactly when ViewCount is zero, which is exactly
//     when Status is New
type ReviewState struct {
	Status               Status     `json:"status"`
	ViewCount            int        `json:"view_count"`
	SuccessCount         int        `json:"success_count"`
	ErrorCount           int        `json:"error_count"`
	LastShownDate        *time.Time `json:"last_shown_date"`
	ConsecutiveSuccesses int        `json:"consecutive_successes"`
}

// NewReviewState returns the state of an item that has never been shown.
func NewReviewState() ReviewState {
	return ReviewState{Status: StatusNew}
}

// LastShown returns the last-shown time and whether the item was ever shown.
func (s ReviewState) LastShown() (time.Time, bool) {
	if s.LastShownDate == nil {
		return time.Time{}, false
	}
	return *s.LastShownDate, true
}

// Clone returns a copy that shares no memory with s.
func (s ReviewState) Clone() ReviewState {
	clone := s
	if s.LastShownDate != nil {
		t := *s.LastShownDate
		clone.LastShownDate = &t
	}
	return clone
}

// Validate checks the state's internal consistency.
// It is meant for boundaries (imports, decoded requests, whole collections
// loaded from storage); the transition and scheduling functions never call it.
func (s ReviewState) Validate() error {
	if !s.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, s.Status)
	}

	if s.ViewCount < 0 || s.SuccessCount < 0 || s.ErrorCount < 0 || s.ConsecutiveSuccesses < 0 {
		return fmt.Errorf("%w: counters cannot be negative", ErrInvalidReviewState)
	}

	if s.ViewCount != s.SuccessCount+s.ErrorCount {
		return fmt.Errorf("%w: view count %d does not equal %d successes plus %d errors",
			ErrInvalidReviewState, s.ViewCount, s.SuccessCount, s.ErrorCount)
	}

	if s.ConsecutiveSuccesses > s.SuccessCount {
		return fmt.Errorf("%w: streak %d exceeds %d successes",
			ErrInvalidReviewState, s.ConsecutiveSuccesses, s.SuccessCount)
	}

	shown := s.LastShownDate != nil
	if shown != (s.ViewCount > 0) {
		return fmt.Errorf("%w: last shown date must be set exactly when the item was viewed",
			ErrInvalidReviewState)
	}

	if (s.Status == StatusNew) != (s.ViewCount == 0) {
		return fmt.Errorf("%w: status %s with %d views", ErrInvalidReviewState, s.Status, s.ViewCount)
	}

	return nil
}

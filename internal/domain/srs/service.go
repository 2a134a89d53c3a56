package srs

import (
	"time"

	"github.com/xtlz/xtlz-english/internal/domain"
)

// Service defines the interface for scheduler operations
type Service interface {
	// ApplyReviewOutcome computes the state after one review
	ApplyReviewOutcome(state domain.ReviewState, remembered bool, now time.Time) domain.ReviewState

	// IsDue reports whether an item in the given state is due at now
	IsDue(state domain.ReviewState, now time.Time) bool

	// SelectDueBatch orders and truncates the due subset of items
	SelectDueBatch(items []domain.Reviewable, limit int, now time.Time) []domain.Reviewable

	// Params returns the parameters the service schedules with
	Params() Params
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduler service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new scheduler service with custom parameters.
// A nil params falls back to the defaults.
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{
		params: params,
	}
}

// ApplyReviewOutcome implements the Service interface
func (s *defaultService) ApplyReviewOutcome(
	state domain.ReviewState,
	remembered bool,
	now time.Time,
) domain.ReviewState {
	return applyReviewOutcome(state, remembered, now, s.params)
}

// IsDue implements the Service interface
func (s *defaultService) IsDue(state domain.ReviewState, now time.Time) bool {
	return isDue(state, now, s.params)
}

// SelectDueBatch implements the Service interface
func (s *defaultService) SelectDueBatch(
	items []domain.Reviewable,
	limit int,
	now time.Time,
) []domain.Reviewable {
	return selectDueBatch(items, limit, now, s.params)
}

// Params returns a copy of the service parameters
func (s *defaultService) Params() Params {
	p := *s.params
	p.DueAfter = make(map[domain.Status]time.Duration, len(s.params.DueAfter))
	for status, d := range s.params.DueAfter {
		p.DueAfter[status] = d
	}
	return p
}

package srs

import (
	"sort"
	"time"

	"github.com/xtlz/xtlz-english/internal/domain"
)

// defaultParams backs the package-level functions. It is never modified.
var defaultParams = NewDefaultParams()

// ApplyReviewOutcome returns the review state that results from showing an
// item once and recording whether the learner remembered it.
//
// The transition is pure: the input state is not modified and the returned
// state shares no memory with it.
//
// Behavior:
//   - every review increments ViewCount and sets LastShownDate to now
//   - a remembered item gains a success and extends its streak; it becomes
//     Known once the streak reaches the graduation streak, Learning otherwise
//   - a forgotten item gains an error, loses its streak and becomes Weak
//
// The function is total: any state, including one that fails Validate, is
// accepted and transitioned by the same rules.
func ApplyReviewOutcome(state domain.ReviewState, remembered bool, now time.Time) domain.ReviewState {
	return applyReviewOutcome(state, remembered, now, defaultParams)
}

func applyReviewOutcome(
	state domain.ReviewState,
	remembered bool,
	now time.Time,
	params *Params,
) domain.ReviewState {
	next := state.Clone()

	next.ViewCount++
	shown := now
	next.LastShownDate = &shown

	if remembered {
		next.SuccessCount++
		next.ConsecutiveSuccesses++
		if next.ConsecutiveSuccesses >= params.GraduationStreak {
			next.Status = domain.StatusKnown
		} else {
			next.Status = domain.StatusLearning
		}
		return next
	}

	next.ErrorCount++
	next.ConsecutiveSuccesses = 0
	next.Status = domain.StatusWeak
	return next
}

// PriorityValue ranks statuses for review ordering; higher is shown first.
// Weak items come first, then Learning, then New, then Known. An unknown
// status ranks 0, below every valid one.
func PriorityValue(status domain.Status) int {
	switch status {
	case domain.StatusWeak:
		return 4
	case domain.StatusLearning:
		return 3
	case domain.StatusNew:
		return 2
	case domain.StatusKnown:
		return 1
	default:
		return 0
	}
}

// IsDue reports whether an item with the given state should be offered at now.
//
// New items, and any item that was never shown, are always due. Otherwise
// the item is due once the time elapsed since it was last shown reaches the
// status threshold (2h Weak, 24h Learning, 120h Known by default). Thresholds
// are exact durations, not calendar days. An item with an unknown status has
// no threshold and is treated like a New one.
func IsDue(state domain.ReviewState, now time.Time) bool {
	return isDue(state, now, defaultParams)
}

func isDue(state domain.ReviewState, now time.Time, params *Params) bool {
	if state.Status == domain.StatusNew || state.LastShownDate == nil {
		return true
	}

	threshold, ok := params.DueAfter[state.Status]
	if !ok {
		return true
	}

	return now.Sub(*state.LastShownDate) >= threshold
}

// SelectDueBatch picks the items to review at now.
//
// Parameters:
//   - items: candidate items; the slice and its elements are not modified
//   - limit: maximum batch size; zero or negative selects the default (15)
//   - now: the moment the batch is built for
//
// Returns the due items ordered by PriorityValue (highest first), then by
// LastShownDate (oldest first, never-shown items count as the epoch). Items
// that tie on both keep their input order, so the result is deterministic for
// a given input. The result is a new slice, empty rather than nil when
// nothing is due.
func SelectDueBatch[T domain.Reviewable](items []T, limit int, now time.Time) []T {
	return selectDueBatch(items, limit, now, defaultParams)
}

func selectDueBatch[T domain.Reviewable](items []T, limit int, now time.Time, params *Params) []T {
	if limit <= 0 {
		limit = params.DefaultBatchLimit
	}

	type candidate struct {
		item      T
		priority  int
		lastShown time.Time
	}

	due := make([]candidate, 0, len(items))
	for _, item := range items {
		state := item.State()
		if !isDue(state, now, params) {
			continue
		}

		lastShown, ok := state.LastShown()
		if !ok {
			lastShown = time.Unix(0, 0)
		}

		due = append(due, candidate{item: item, priority: PriorityValue(state.Status), lastShown: lastShown})
	}

	sort.SliceStable(due, func(i, j int) bool {
		if due[i].priority != due[j].priority {
			return due[i].priority > due[j].priority
		}
		return due[i].lastShown.Before(due[j].lastShown)
	})

	if len(due) > limit {
		due = due[:limit]
	}

	batch := make([]T, len(due))
	for i, c := range due {
		batch[i] = c.item
	}
	return batch
}

package srs

import (
	"time"

	"github.com/xtlz/xtlz-english/internal/domain"
)

// Default scheduling constants
const (
	DefaultWeakInterval     = 2 * time.Hour
	DefaultLearningInterval = 24 * time.Hour
	DefaultKnownInterval    = 120 * time.Hour
	DefaultGraduationStreak = 3
	DefaultBatchLimit       = 15
)

// Params defines all configurable parameters for the scheduler
type Params struct {
	// Minimum time since the item was last shown before it is due again.
	// New items have no entry: they are always due.
	DueAfter map[domain.Status]time.Duration

	// Consecutive successes needed for an item to become Known
	GraduationStreak int

	// Batch size used when the caller does not ask for one
	DefaultBatchLimit int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the default.
type ParamsConfig struct {
	WeakInterval      time.Duration
	LearningInterval  time.Duration
	KnownInterval     time.Duration
	GraduationStreak  int
	DefaultBatchLimit int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		DueAfter: map[domain.Status]time.Duration{
			domain.StatusWeak:     DefaultWeakInterval,
			domain.StatusLearning: DefaultLearningInterval,
			domain.StatusKnown:    DefaultKnownInterval,
		},
		GraduationStreak:  DefaultGraduationStreak,
		DefaultBatchLimit: DefaultBatchLimit,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.WeakInterval > 0 {
		params.DueAfter[domain.StatusWeak] = config.WeakInterval
	}
	if config.LearningInterval > 0 {
		params.DueAfter[domain.StatusLearning] = config.LearningInterval
	}
	if config.KnownInterval > 0 {
		params.DueAfter[domain.StatusKnown] = config.KnownInterval
	}

	if config.GraduationStreak > 0 {
		params.GraduationStreak = config.GraduationStreak
	}
	if config.DefaultBatchLimit > 0 {
		params.DefaultBatchLimit = config.DefaultBatchLimit
	}

	return params
}

package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/xtlz/xtlz-english/internal/domain"
	"github.com/xtlz/xtlz-english/internal/domain/srs"
	"github.com/xtlz/xtlz-english/internal/platform/logger"
)

const (
	recentStatsDays = 7
	weakCardsShown  = 5
)

// Overview summarises the learner's progress.
type Overview struct {
	Profile domain.Profile `json:"profile"`
	// Streak is the streak as of today; a lapsed streak reads zero.
	Streak  int `json:"streak"`
	Words   int `json:"words"`
	Phrases int `json:"phrases"`
	Rules   int `json:"rules"`
	// StatusCounts counts cards and rules together.
	StatusCounts map[domain.Status]int `json:"status_counts"`
	DueCount     int                   `json:"due_count"`
	Today        domain.DailyStat      `json:"today"`
	RecentStats  []domain.DailyStat    `json:"recent_stats"`
	WeakCards    []domain.Card         `json:"weak_cards"`
}

// DashboardService builds the progress overview.
type DashboardService interface {
	Overview(ctx context.Context) (*Overview, error)
}

type dashboardServiceImpl struct {
	stores    Stores
	scheduler srs.Service
	opts      options
	logger    *slog.Logger
}

var _ DashboardService = (*dashboardServiceImpl)(nil)

// NewDashboardService creates a DashboardService.
func NewDashboardService(
	stores Stores,
	scheduler srs.Service,
	logger *slog.Logger,
	opts ...Option,
) (DashboardService, error) {
	if err := stores.validate(); err != nil {
		return nil, err
	}
	if scheduler == nil {
		return nil, errors.New("scheduler cannot be nil")
	}

	return &dashboardServiceImpl{
		stores:    stores,
		scheduler: scheduler,
		opts:      newOptions(opts),
		logger:    componentLogger(logger, "dashboard_service"),
	}, nil
}

// Overview implements DashboardService.Overview.
func (s *dashboardServiceImpl) Overview(ctx context.Context) (*Overview, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.opts.now()

	collection, err := s.stores.Collections.Load(ctx)
	if err != nil {
		log.Error("failed to load collection", slog.String("error", err.Error()))
		return nil, NewServiceError("overview", "failed to load collection", err)
	}

	overview := &Overview{
		Profile:      collection.Profile,
		Streak:       collection.Profile.EffectiveStreak(now),
		Rules:        len(collection.Rules),
		StatusCounts: make(map[domain.Status]int, len(domain.Statuses)),
		Today:        collection.Profile.StatFor(now),
		RecentStats:  collection.Profile.RecentStats(recentStatsDays),
		WeakCards:    []domain.Card{},
	}
	for _, status := range domain.Statuses {
		overview.StatusCounts[status] = 0
	}

	for _, card := range collection.Cards {
		switch card.Kind {
		case domain.KindPhrase:
			overview.Phrases++
		default:
			overview.Words++
		}
		if card.Status == domain.StatusWeak && len(overview.WeakCards) < weakCardsShown {
			overview.WeakCards = append(overview.WeakCards, card)
		}
	}

	for _, item := range collection.Reviewables() {
		state := item.State()
		overview.StatusCounts[state.Status]++
		if s.scheduler.IsDue(state, now) {
			overview.DueCount++
		}
	}

	return overview, nil
}

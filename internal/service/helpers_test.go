package service_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xtlz/xtlz-english/internal/domain"
	"github.com/xtlz/xtlz-english/internal/domain/srs"
	"github.com/xtlz/xtlz-english/internal/events"
	"github.com/xtlz/xtlz-english/internal/generation"
	"github.com/xtlz/xtlz-english/internal/platform/sqlstore"
	"github.com/xtlz/xtlz-english/internal/service"
	"github.com/xtlz/xtlz-english/internal/store"
	"github.com/xtlz/xtlz-english/internal/testdb"
)

var baseTime = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// fixture is a migrated SQLite database with stores and a fixed clock.
type fixture struct {
	db      *sql.DB
	stores  service.Stores
	now     time.Time
	profile domain.Profile
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, dialect := testdb.NewSQLite(t)
	cards := sqlstore.NewCardStore(db, dialect, discard)
	rules := sqlstore.NewRuleStore(db, dialect, discard)
	profiles := sqlstore.NewProfileStore(db, dialect, discard)
	profile := domain.NewProfile("Ann", domain.LevelB2)

	return &fixture{
		db: db,
		stores: service.Stores{
			DB:          db,
			Cards:       cards,
			Rules:       rules,
			Profiles:    profiles,
			Collections: sqlstore.NewCollectionStore(db, cards, rules, profiles, profile, discard),
		},
		now:     baseTime,
		profile: profile,
	}
}

func (f *fixture) options() []service.Option {
	return []service.Option{
		service.WithClock(func() time.Time { return f.now }),
		service.WithDefaultProfile(f.profile),
	}
}

func (f *fixture) reviewService(t *testing.T) service.ReviewService {
	t.Helper()
	svc, err := service.NewReviewService(f.stores, srs.NewDefaultService(), discard, f.options()...)
	require.NoError(t, err)
	return svc
}

func (f *fixture) collectionService(
	t *testing.T,
	gen generation.Generator,
	emitter events.EventEmitter,
) service.CollectionService {
	t.Helper()
	svc, err := service.NewCollectionService(f.stores, gen, emitter, discard, f.options()...)
	require.NoError(t, err)
	return svc
}

func (f *fixture) dashboardService(t *testing.T) service.DashboardService {
	t.Helper()
	svc, err := service.NewDashboardService(f.stores, srs.NewDefaultService(), discard, f.options()...)
	require.NoError(t, err)
	return svc
}

// addCard stores a card created at created with the given review state.
func (f *fixture) addCard(t *testing.T, front string, created time.Time, state domain.ReviewState) *domain.Card {
	t.Helper()
	card, err := domain.NewCard(domain.CardContent{Front: front, Back: "перевод " + front}, created)
	require.NoError(t, err)
	card.ReviewState = state
	require.NoError(t, f.stores.Cards.Create(t.Context(), card))
	return card
}

func (f *fixture) addRule(t *testing.T, title string, created time.Time, state domain.ReviewState) *domain.Rule {
	t.Helper()
	rule, err := domain.NewRule(domain.RuleContent{Title: title, Explanation: title + " explained"}, created)
	require.NoError(t, err)
	rule.ReviewState = state
	require.NoError(t, f.stores.Rules.Create(t.Context(), rule))
	return rule
}

func (f *fixture) savedProfile(t *testing.T) *domain.Profile {
	t.Helper()
	profile, err := f.stores.Profiles.Get(t.Context())
	require.NoError(t, err)
	return profile
}

// reviewedAt applies outcomes to a new state, all at the same instant.
func reviewedAt(at time.Time, outcomes ...bool) domain.ReviewState {
	state := domain.NewReviewState()
	for _, remembered := range outcomes {
		state = srs.ApplyReviewOutcome(state, remembered, at)
	}
	return state
}

// failingRuleStore fails every rule update, inside or outside transactions.
type failingRuleStore struct {
	store.RuleStore
	err error
}

func (s failingRuleStore) Update(_ context.Context, _ *domain.Rule) error {
	return s.err
}

func (s failingRuleStore) WithTx(tx *sql.Tx) store.RuleStore {
	return failingRuleStore{RuleStore: s.RuleStore.WithTx(tx), err: s.err}
}

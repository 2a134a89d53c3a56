package sqlstore_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xtlz/xtlz-english/internal/domain"
	"github.com/xtlz/xtlz-english/internal/platform/sqlstore"
	"github.com/xtlz/xtlz-english/internal/store"
)

// openFunc returns a fresh, migrated database.
type openFunc func(t *testing.T) (*sql.DB, sqlstore.Dialect)

var baseTime = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

func newCard(t *testing.T, id, front string, created time.Time) *domain.Card {
	t.Helper()
	card, err := domain.NewCard(domain.CardContent{
		Front: front,
		Back:  "перевод " + front,
		Tags:  []string{"test"},
	}, created)
	require.NoError(t, err)
	card.ID = id
	return card
}

func newRule(t *testing.T, id, title string, created time.Time) *domain.Rule {
	t.Helper()
	rule, err := domain.NewRule(domain.RuleContent{
		Title:       title,
		Explanation: "**" + title + "** explained",
		Examples:    []string{"Example one.", "Example two."},
	}, created)
	require.NoError(t, err)
	rule.ID = id
	return rule
}

func reviewed(t *testing.T, state domain.ReviewState, remembered bool, at time.Time) domain.ReviewState {
	t.Helper()
	next := state.Clone()
	next.ViewCount++
	shown := at
	next.LastShownDate = &shown
	if remembered {
		next.SuccessCount++
		next.ConsecutiveSuccesses++
		next.Status = domain.StatusLearning
	} else {
		next.ErrorCount++
		next.ConsecutiveSuccesses = 0
		next.Status = domain.StatusWeak
	}
	require.NoError(t, next.Validate())
	return next
}

func runCardStoreTests(t *testing.T, open openFunc) {
	t.Run("create and get", func(t *testing.T) {
		db, dialect := open(t)
		cards := sqlstore.NewCardStore(db, dialect, nil)
		ctx := context.Background()

		card := newCard(t, "c1", "serendipity", baseTime)
		card.Example = "It was serendipity."
		card.RelatedRuleIDs = []string{"r1"}
		card.ReviewState = reviewed(t, card.ReviewState, true, baseTime.Add(time.Hour))

		require.NoError(t, cards.Create(ctx, card))

		got, err := cards.GetByID(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, card, got)
	})

	t.Run("create duplicate", func(t *testing.T) {
		db, dialect := open(t)
		cards := sqlstore.NewCardStore(db, dialect, nil)
		ctx := context.Background()

		require.NoError(t, cards.Create(ctx, newCard(t, "c1", "one", baseTime)))
		err := cards.Create(ctx, newCard(t, "c1", "two", baseTime))

		assert.ErrorIs(t, err, store.ErrDuplicate)
	})

	t.Run("create invalid", func(t *testing.T) {
		db, dialect := open(t)
		cards := sqlstore.NewCardStore(db, dialect, nil)

		card := newCard(t, "c1", "one", baseTime)
		card.ViewCount = 3

		err := cards.Create(context.Background(), card)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.ErrorIs(t, err, domain.ErrInvalidReviewState)
	})

	t.Run("get missing", func(t *testing.T) {
		db, dialect := open(t)
		cards := sqlstore.NewCardStore(db, dialect, nil)

		_, err := cards.GetByID(context.Background(), "nope")
		assert.ErrorIs(t, err, store.ErrCardNotFound)
		assert.True(t, store.IsNotFoundError(err))
	})

	t.Run("update", func(t *testing.T) {
		db, dialect := open(t)
		cards := sqlstore.NewCardStore(db, dialect, nil)
		ctx := context.Background()

		card := newCard(t, "c1", "one", baseTime)
		require.NoError(t, cards.Create(ctx, card))

		content := card.Content()
		content.Back = "один"
		content.IsFavorite = true
		require.NoError(t, card.UpdateContent(content, baseTime.Add(time.Minute)))
		*card = card.WithReviewState(reviewed(t, card.ReviewState, false, baseTime.Add(time.Minute)), baseTime.Add(time.Minute))
		require.NoError(t, cards.Update(ctx, card))

		got, err := cards.GetByID(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, card, got)
		assert.Equal(t, domain.StatusWeak, got.Status)
	})

	t.Run("update missing", func(t *testing.T) {
		db, dialect := open(t)
		cards := sqlstore.NewCardStore(db, dialect, nil)

		err := cards.Update(context.Background(), newCard(t, "c1", "one", baseTime))
		assert.ErrorIs(t, err, store.ErrCardNotFound)
	})

	t.Run("upsert", func(t *testing.T) {
		db, dialect := open(t)
		cards := sqlstore.NewCardStore(db, dialect, nil)
		ctx := context.Background()

		card := newCard(t, "c1", "one", baseTime)
		require.NoError(t, cards.Upsert(ctx, card))
		card.Front = "uno"
		require.NoError(t, cards.Upsert(ctx, card))

		got, err := cards.GetByID(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, "uno", got.Front)
	})

	t.Run("delete", func(t *testing.T) {
		db, dialect := open(t)
		cards := sqlstore.NewCardStore(db, dialect, nil)
		ctx := context.Background()

		require.NoError(t, cards.Create(ctx, newCard(t, "c1", "one", baseTime)))
		require.NoError(t, cards.Delete(ctx, "c1"))

		_, err := cards.GetByID(ctx, "c1")
		assert.ErrorIs(t, err, store.ErrCardNotFound)
		assert.ErrorIs(t, cards.Delete(ctx, "c1"), store.ErrCardNotFound)
	})

	t.Run("list filters and order", func(t *testing.T) {
		db, dialect := open(t)
		cards := sqlstore.NewCardStore(db, dialect, nil)
		ctx := context.Background()

		apple := newCard(t, "c1", "Apple", baseTime)
		phrase := newCard(t, "c2", "Piece of cake", baseTime.Add(time.Minute))
		phrase.Kind = domain.KindPhrase
		phrase.IsFavorite = true
		weak := newCard(t, "c3", "pineapple", baseTime.Add(2*time.Minute))
		weak.ReviewState = reviewed(t, weak.ReviewState, false, baseTime.Add(3*time.Minute))
		for _, c := range []*domain.Card{apple, phrase, weak} {
			require.NoError(t, cards.Create(ctx, c))
		}

		tests := []struct {
			name   string
			filter store.CardFilter
			want   []string
		}{
			{name: "all newest first", filter: store.CardFilter{}, want: []string{"c3", "c2", "c1"}},
			{name: "search is case-insensitive", filter: store.CardFilter{Search: "APPLE"}, want: []string{"c3", "c1"}},
			{name: "search matches back", filter: store.CardFilter{Search: "перевод piece"}, want: []string{"c2"}},
			{name: "search escapes wildcards", filter: store.CardFilter{Search: "%"}, want: []string{}},
			{name: "favorites", filter: store.CardFilter{FavoritesOnly: true}, want: []string{"c2"}},
			{name: "status", filter: store.CardFilter{Status: domain.StatusWeak}, want: []string{"c3"}},
			{name: "kind", filter: store.CardFilter{Kind: domain.KindPhrase}, want: []string{"c2"}},
			{name: "combined", filter: store.CardFilter{Search: "apple", Status: domain.StatusNew}, want: []string{"c1"}},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				got, err := cards.List(ctx, tc.filter)
				require.NoError(t, err)

				ids := make([]string, 0, len(got))
				for _, c := range got {
					ids = append(ids, c.ID)
				}
				assert.Equal(t, tc.want, ids)
			})
		}
	})

	t.Run("needing enrichment and counts", func(t *testing.T) {
		db, dialect := open(t)
		cards := sqlstore.NewCardStore(db, dialect, nil)
		ctx := context.Background()

		bare := newCard(t, "c1", "bare", baseTime)
		bare.Back = ""
		bare2 := newCard(t, "c2", "bare too", baseTime.Add(time.Minute))
		bare2.Back = ""
		done := newCard(t, "c3", "done", baseTime)
		done.ReviewState = reviewed(t, done.ReviewState, true, baseTime)
		for _, c := range []*domain.Card{bare, bare2, done} {
			require.NoError(t, cards.Create(ctx, c))
		}

		pending, err := cards.ListNeedingEnrichment(ctx, 1)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "c1", pending[0].ID, "oldest first")

		counts, err := cards.CountByStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[domain.Status]int{
			domain.StatusNew:      2,
			domain.StatusLearning: 1,
			domain.StatusKnown:    0,
			domain.StatusWeak:     0,
		}, counts)
	})

	t.Run("with tx rolls back", func(t *testing.T) {
		db, dialect := open(t)
		cards := sqlstore.NewCardStore(db, dialect, nil)
		ctx := context.Background()

		tx, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)
		require.NoError(t, cards.WithTx(tx).Create(ctx, newCard(t, "c1", "one", baseTime)))
		require.NoError(t, tx.Rollback())

		_, err = cards.GetByID(ctx, "c1")
		assert.ErrorIs(t, err, store.ErrCardNotFound)
	})
}

func runRuleStoreTests(t *testing.T, open openFunc) {
	t.Run("crud", func(t *testing.T) {
		db, dialect := open(t)
		rules := sqlstore.NewRuleStore(db, dialect, nil)
		ctx := context.Background()

		rule := newRule(t, "r1", "Present Perfect", baseTime)
		require.NoError(t, rules.Create(ctx, rule))
		assert.ErrorIs(t, rules.Create(ctx, rule), store.ErrDuplicate)

		got, err := rules.GetByID(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, rule, got)

		*rule = rule.WithReviewState(reviewed(t, rule.ReviewState, true, baseTime.Add(time.Hour)), baseTime.Add(time.Hour))
		require.NoError(t, rules.Update(ctx, rule))
		got, err = rules.GetByID(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, rule, got)

		require.NoError(t, rules.Delete(ctx, "r1"))
		_, err = rules.GetByID(ctx, "r1")
		assert.ErrorIs(t, err, store.ErrRuleNotFound)
		assert.ErrorIs(t, rules.Update(ctx, rule), store.ErrRuleNotFound)
	})

	t.Run("list", func(t *testing.T) {
		db, dialect := open(t)
		rules := sqlstore.NewRuleStore(db, dialect, nil)
		ctx := context.Background()

		perfect := newRule(t, "r1", "Present Perfect", baseTime)
		articles := newRule(t, "r2", "Articles", baseTime.Add(time.Minute))
		articles.IsFavorite = true
		require.NoError(t, rules.Create(ctx, perfect))
		require.NoError(t, rules.Create(ctx, articles))

		all, err := rules.List(ctx, store.RuleFilter{})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "r2", all[0].ID)

		found, err := rules.List(ctx, store.RuleFilter{Search: "perfect"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "r1", found[0].ID)

		favs, err := rules.List(ctx, store.RuleFilter{FavoritesOnly: true})
		require.NoError(t, err)
		require.Len(t, favs, 1)
		assert.Equal(t, "r2", favs[0].ID)

		require.NoError(t, rules.DeleteAll(ctx))
		all, err = rules.List(ctx, store.RuleFilter{})
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}

func runProfileStoreTests(t *testing.T, open openFunc) {
	t.Run("save and get", func(t *testing.T) {
		db, dialect := open(t)
		profiles := sqlstore.NewProfileStore(db, dialect, nil)
		ctx := context.Background()

		_, err := profiles.Get(ctx)
		assert.ErrorIs(t, err, store.ErrProfileNotFound)

		profile := domain.NewProfile("Ann", domain.LevelB2).
			RecordActivity(2, 0, baseTime.AddDate(0, 0, -1)).
			RecordActivity(0, 5, baseTime)
		require.NoError(t, profiles.Save(ctx, profile))

		got, err := profiles.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, profile, *got)

		renamed := domain.NewProfile("Bob", domain.LevelA2)
		require.NoError(t, profiles.Save(ctx, renamed))
		got, err = profiles.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, renamed, *got, "stats are replaced")
	})

	t.Run("invalid profile", func(t *testing.T) {
		db, dialect := open(t)
		profiles := sqlstore.NewProfileStore(db, dialect, nil)

		err := profiles.Save(context.Background(), domain.Profile{Name: "Ann", Level: "Z9"})
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})
}

func newCollectionStore(db *sql.DB, dialect sqlstore.Dialect) *sqlstore.SQLCollectionStore {
	return sqlstore.NewCollectionStore(
		db,
		sqlstore.NewCardStore(db, dialect, nil),
		sqlstore.NewRuleStore(db, dialect, nil),
		sqlstore.NewProfileStore(db, dialect, nil),
		domain.NewProfile("Learner", domain.DefaultLevel),
		nil,
	)
}

func runCollectionStoreTests(t *testing.T, open openFunc) {
	t.Run("load empty uses fallback profile", func(t *testing.T) {
		db, dialect := open(t)
		collections := newCollectionStore(db, dialect)

		got, err := collections.Load(context.Background())
		require.NoError(t, err)
		assert.Empty(t, got.Cards)
		assert.Empty(t, got.Rules)
		assert.Equal(t, domain.NewProfile("Learner", domain.DefaultLevel), got.Profile)
	})

	t.Run("save replace round trip", func(t *testing.T) {
		db, dialect := open(t)
		collections := newCollectionStore(db, dialect)
		ctx := context.Background()

		old := &domain.Collection{
			Cards:   []domain.Card{*newCard(t, "old", "old", baseTime)},
			Profile: domain.NewProfile("Ann", domain.LevelB1),
		}
		require.NoError(t, collections.Save(ctx, old, false))

		card := newCard(t, "c1", "one", baseTime)
		card.ReviewState = reviewed(t, card.ReviewState, false, baseTime.Add(time.Hour))
		snapshot := &domain.Collection{
			Cards:   []domain.Card{*card},
			Rules:   []domain.Rule{*newRule(t, "r1", "Articles", baseTime)},
			Profile: domain.NewProfile("Bob", domain.LevelC1).RecordActivity(1, 1, baseTime),
		}
		require.NoError(t, collections.Save(ctx, snapshot, true))

		got, err := collections.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, snapshot, got)
	})

	t.Run("save merge keeps missing items", func(t *testing.T) {
		db, dialect := open(t)
		collections := newCollectionStore(db, dialect)
		ctx := context.Background()

		first := &domain.Collection{
			Cards:   []domain.Card{*newCard(t, "c1", "one", baseTime)},
			Profile: domain.NewProfile("Ann", domain.LevelB1),
		}
		require.NoError(t, collections.Save(ctx, first, false))

		updated := newCard(t, "c1", "uno", baseTime)
		second := &domain.Collection{
			Cards:   []domain.Card{*newCard(t, "c2", "two", baseTime.Add(time.Minute)), *updated},
			Profile: domain.NewProfile("Ann", domain.LevelB1),
		}
		require.NoError(t, collections.Save(ctx, second, false))

		got, err := collections.Load(ctx)
		require.NoError(t, err)
		require.Len(t, got.Cards, 2)
		assert.Equal(t, "c2", got.Cards[0].ID)
		assert.Equal(t, "uno", got.Cards[1].Front)
	})

	t.Run("merge rejects card and rule sharing an ID", func(t *testing.T) {
		db, dialect := open(t)
		collections := newCollectionStore(db, dialect)
		ctx := context.Background()

		existing := &domain.Collection{
			Rules:   []domain.Rule{*newRule(t, "shared", "Articles", baseTime)},
			Profile: domain.NewProfile("Ann", domain.LevelB1),
		}
		require.NoError(t, collections.Save(ctx, existing, false))

		clashing := &domain.Collection{
			Cards:   []domain.Card{*newCard(t, "shared", "one", baseTime)},
			Profile: domain.NewProfile("Ann", domain.LevelB1),
		}
		err := collections.Save(ctx, clashing, false)
		assert.ErrorIs(t, err, store.ErrDuplicate)

		got, err := collections.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, got.Cards)
		require.Len(t, got.Rules, 1)

		// Replacing drops the rule first, so the ID is free again.
		require.NoError(t, collections.Save(ctx, clashing, true))
		got, err = collections.Load(ctx)
		require.NoError(t, err)
		require.Len(t, got.Cards, 1)
		assert.Empty(t, got.Rules)
	})

	t.Run("load rejects an inconsistent stored collection", func(t *testing.T) {
		db, dialect := open(t)
		collections := newCollectionStore(db, dialect)
		ctx := context.Background()

		require.NoError(t, sqlstore.NewCardStore(db, dialect, nil).Create(ctx, newCard(t, "shared", "one", baseTime)))
		require.NoError(t, sqlstore.NewRuleStore(db, dialect, nil).Create(ctx, newRule(t, "shared", "Articles", baseTime)))

		_, err := collections.Load(ctx)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.ErrorIs(t, err, domain.ErrInvalidID)
	})

	t.Run("invalid collection is rejected", func(t *testing.T) {
		db, dialect := open(t)
		collections := newCollectionStore(db, dialect)

		dup := *newCard(t, "x", "one", baseTime)
		err := collections.Save(context.Background(), &domain.Collection{
			Cards:   []domain.Card{dup, dup},
			Profile: domain.NewProfile("Ann", domain.LevelB1),
		}, true)

		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})
}

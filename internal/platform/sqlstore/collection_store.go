package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/xtlz/xtlz-english/internal/domain"
	"github.com/xtlz/xtlz-english/internal/platform/logger"
	"github.com/xtlz/xtlz-english/internal/store"
)

// SQLCollectionStore implements store.CollectionStore on top of the item
// and profile stores.
type SQLCollectionStore struct {
	db       *sql.DB
	cards    store.CardStore
	rules    store.RuleStore
	profiles store.ProfileStore
	fallback domain.Profile
	logger   *slog.Logger
}

// NewCollectionStore creates a collection store. fallback is the profile
// returned by Load when none has been saved yet.
func NewCollectionStore(
	db *sql.DB,
	cards store.CardStore,
	rules store.RuleStore,
	profiles store.ProfileStore,
	fallback domain.Profile,
	logger *slog.Logger,
) *SQLCollectionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLCollectionStore{
		db:       db,
		cards:    cards,
		rules:    rules,
		profiles: profiles,
		fallback: fallback,
		logger:   logger.With(slog.String("component", "collection_store")),
	}
}

var _ store.CollectionStore = (*SQLCollectionStore)(nil)

// Load implements store.CollectionStore.
func (s *SQLCollectionStore) Load(ctx context.Context) (*domain.Collection, error) {
	var collection *domain.Collection
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		collection, err = loadCollection(ctx, s.cards.WithTx(tx), s.rules.WithTx(tx), s.profiles.WithTx(tx), s.fallback)
		return err
	})
	if err != nil {
		return nil, err
	}
	return collection, nil
}

// Save implements store.CollectionStore.
func (s *SQLCollectionStore) Save(ctx context.Context, collection *domain.Collection, replace bool) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := collection.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		cards := s.cards.WithTx(tx)
		rules := s.rules.WithTx(tx)

		if replace {
			if err := cards.DeleteAll(ctx); err != nil {
				return err
			}
			if err := rules.DeleteAll(ctx); err != nil {
				return err
			}
		} else if err := checkKindClashes(ctx, cards, rules, collection); err != nil {
			return err
		}

		for i := range collection.Cards {
			if err := cards.Upsert(ctx, &collection.Cards[i]); err != nil {
				return err
			}
		}
		for i := range collection.Rules {
			if err := rules.Upsert(ctx, &collection.Rules[i]); err != nil {
				return err
			}
		}

		return s.profiles.WithTx(tx).Save(ctx, collection.Profile)
	})
	if err != nil {
		log.Error("failed to save collection", slog.Bool("replace", replace), slog.String("error", err.Error()))
		return err
	}

	log.Info("collection saved",
		slog.Int("cards", len(collection.Cards)),
		slog.Int("rules", len(collection.Rules)),
		slog.Bool("replace", replace))
	return nil
}

func loadCollection(
	ctx context.Context,
	cards store.CardStore,
	rules store.RuleStore,
	profiles store.ProfileStore,
	fallback domain.Profile,
) (*domain.Collection, error) {
	cardList, err := cards.List(ctx, store.CardFilter{})
	if err != nil {
		return nil, err
	}
	ruleList, err := rules.List(ctx, store.RuleFilter{})
	if err != nil {
		return nil, err
	}

	profile, err := profiles.Get(ctx)
	switch {
	case errors.Is(err, store.ErrProfileNotFound):
		p := fallback
		p.Stats = append([]domain.DailyStat{}, fallback.Stats...)
		profile = &p
	case err != nil:
		return nil, err
	}

	collection := &domain.Collection{Cards: cardList, Rules: ruleList, Profile: *profile}
	if err := collection.Validate(); err != nil {
		return nil, fmt.Errorf("%w: stored collection: %w", store.ErrInvalidEntity, err)
	}
	return collection, nil
}

// checkKindClashes rejects a merge that would give a card and a rule the
// same ID. IDs are unique across both kinds, but each kind has its own
// table, so the database cannot enforce it.
func checkKindClashes(
	ctx context.Context,
	cards store.CardStore,
	rules store.RuleStore,
	collection *domain.Collection,
) error {
	storedCards, err := cards.List(ctx, store.CardFilter{})
	if err != nil {
		return err
	}
	storedRules, err := rules.List(ctx, store.RuleFilter{})
	if err != nil {
		return err
	}

	cardIDs := make(map[string]struct{}, len(storedCards))
	for _, c := range storedCards {
		cardIDs[c.ID] = struct{}{}
	}
	ruleIDs := make(map[string]struct{}, len(storedRules))
	for _, r := range storedRules {
		ruleIDs[r.ID] = struct{}{}
	}

	for _, c := range collection.Cards {
		if _, clash := ruleIDs[c.ID]; clash {
			return fmt.Errorf("%w: card ID %q is already used by a rule", store.ErrDuplicate, c.ID)
		}
	}
	for _, r := range collection.Rules {
		if _, clash := cardIDs[r.ID]; clash {
			return fmt.Errorf("%w: rule ID %q is already used by a card", store.ErrDuplicate, r.ID)
		}
	}
	return nil
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xtlz/xtlz-english/internal/domain"
	"github.com/xtlz/xtlz-english/internal/events"
	"github.com/xtlz/xtlz-english/internal/generation"
	"github.com/xtlz/xtlz-english/internal/platform/logger"
	"github.com/xtlz/xtlz-english/internal/store"
)

// CollectionService manages the learner's cards and rules.
type CollectionService interface {
	// AddCard saves a new card and counts it in today's stats. With autoFill
	// and an empty back, an enrichment event is emitted after the save.
	AddCard(ctx context.Context, content domain.CardContent, autoFill bool) (*domain.Card, error)
	// UpdateCard replaces the card's content. Review state is preserved.
	UpdateCard(ctx context.Context, id string, content domain.CardContent) (*domain.Card, error)
	DeleteCard(ctx context.Context, id string) error
	GetCard(ctx context.Context, id string) (*domain.Card, error)
	ListCards(ctx context.Context, filter store.CardFilter) ([]domain.Card, error)
	SetCardFavorite(ctx context.Context, id string, favorite bool) (*domain.Card, error)

	AddRule(ctx context.Context, content domain.RuleContent) (*domain.Rule, error)
	UpdateRule(ctx context.Context, id string, content domain.RuleContent) (*domain.Rule, error)
	DeleteRule(ctx context.Context, id string) error
	GetRule(ctx context.Context, id string) (*domain.Rule, error)
	ListRules(ctx context.Context, filter store.RuleFilter) ([]domain.Rule, error)
	SetRuleFavorite(ctx context.Context, id string, favorite bool) (*domain.Rule, error)

	// DraftCard asks the generator for a translation of term.
	DraftCard(ctx context.Context, term string) (*domain.CardDraft, error)
	// DraftRule asks the generator for an explanation of a grammar topic.
	DraftRule(ctx context.Context, topic string) (*domain.RuleDraft, error)
	// EnrichCard fills the empty fields of a stored card from a generated
	// draft. Fields the learner entered are kept.
	EnrichCard(ctx context.Context, id string) (*domain.Card, error)
	// PendingEnrichment returns the IDs of up to limit cards without a back.
	PendingEnrichment(ctx context.Context, limit int) ([]string, error)

	// Export returns the whole collection.
	Export(ctx context.Context) (*domain.Collection, error)
	// Import validates every item and saves the collection in one
	// transaction. With replace, items missing from it are deleted.
	Import(ctx context.Context, collection *domain.Collection, replace bool) error
	// SeedIfEmpty saves the starter collection when no card or rule exists.
	SeedIfEmpty(ctx context.Context) (bool, error)
}

type collectionServiceImpl struct {
	stores    Stores
	generator generation.Generator
	emitter   events.EventEmitter
	opts      options
	logger    *slog.Logger
}

var _ CollectionService = (*collectionServiceImpl)(nil)

// NewCollectionService creates a CollectionService. A nil generator behaves
// like generation.Disabled; a nil emitter turns auto-fill off.
func NewCollectionService(
	stores Stores,
	generator generation.Generator,
	emitter events.EventEmitter,
	logger *slog.Logger,
	opts ...Option,
) (CollectionService, error) {
	if err := stores.validate(); err != nil {
		return nil, err
	}
	if generator == nil {
		generator = generation.Disabled()
	}

	return &collectionServiceImpl{
		stores:    stores,
		generator: generator,
		emitter:   emitter,
		opts:      newOptions(opts),
		logger:    componentLogger(logger, "collection_service"),
	}, nil
}

// AddCard implements CollectionService.AddCard.
func (s *collectionServiceImpl) AddCard(
	ctx context.Context,
	content domain.CardContent,
	autoFill bool,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.opts.now()

	card, err := domain.NewCard(content, now)
	if err != nil {
		return nil, invalidInput(err)
	}

	err = store.RunInTransaction(ctx, s.stores.DB, func(ctx context.Context, tx *sql.Tx) error {
		stores := s.stores.withTx(tx)
		if err := stores.cards.Create(ctx, card); err != nil {
			return err
		}
		return recordActivity(ctx, stores.profiles, s.opts.profile, 1, 0, now)
	})
	if err != nil {
		log.Error("failed to add card", slog.String("error", err.Error()))
		return nil, NewServiceError("add_card", "failed to save card", err)
	}

	log.Info("card added", slog.String("card_id", card.ID), slog.String("kind", string(card.Kind)))

	if autoFill && card.NeedsEnrichment() {
		s.requestEnrichment(ctx, card.ID)
	}
	return card, nil
}

// requestEnrichment emits the enrichment event. Failures are logged only:
// the card is already saved and is picked up again at the next start-up.
func (s *collectionServiceImpl) requestEnrichment(ctx context.Context, cardID string) {
	if s.emitter == nil {
		return
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewCardEnrichmentEvent(cardID)
	if err == nil {
		err = s.emitter.EmitEvent(ctx, event)
	}
	if err != nil {
		log.Warn("failed to request card enrichment",
			slog.String("card_id", cardID),
			slog.String("error", err.Error()))
		return
	}
	log.Debug("card enrichment requested", slog.String("card_id", cardID))
}

// UpdateCard implements CollectionService.UpdateCard.
func (s *collectionServiceImpl) UpdateCard(
	ctx context.Context,
	id string,
	content domain.CardContent,
) (*domain.Card, error) {
	return s.mutateCard(ctx, "update_card", id, func(card *domain.Card) error {
		return card.UpdateContent(content, s.opts.now())
	})
}

// SetCardFavorite implements CollectionService.SetCardFavorite.
func (s *collectionServiceImpl) SetCardFavorite(
	ctx context.Context,
	id string,
	favorite bool,
) (*domain.Card, error) {
	return s.mutateCard(ctx, "set_card_favorite", id, func(card *domain.Card) error {
		content := card.Content()
		content.IsFavorite = favorite
		return card.UpdateContent(content, s.opts.now())
	})
}

func (s *collectionServiceImpl) mutateCard(
	ctx context.Context,
	operation, id string,
	mutate func(*domain.Card) error,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var card *domain.Card
	err := store.RunInTransaction(ctx, s.stores.DB, func(ctx context.Context, tx *sql.Tx) error {
		cards := s.stores.Cards.WithTx(tx)

		var err error
		card, err = cards.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := mutate(card); err != nil {
			return invalidInput(err)
		}
		return cards.Update(ctx, card)
	})
	if err != nil {
		return nil, s.wrap(log, operation, id, err)
	}
	return card, nil
}

// DeleteCard implements CollectionService.DeleteCard.
func (s *collectionServiceImpl) DeleteCard(ctx context.Context, id string) error {
	if err := s.stores.Cards.Delete(ctx, id); err != nil {
		return s.wrap(logger.FromContextOrDefault(ctx, s.logger), "delete_card", id, err)
	}
	return nil
}

// GetCard implements CollectionService.GetCard.
func (s *collectionServiceImpl) GetCard(ctx context.Context, id string) (*domain.Card, error) {
	card, err := s.stores.Cards.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrap(logger.FromContextOrDefault(ctx, s.logger), "get_card", id, err)
	}
	return card, nil
}

// ListCards implements CollectionService.ListCards.
func (s *collectionServiceImpl) ListCards(ctx context.Context, filter store.CardFilter) ([]domain.Card, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, invalidInput(fmt.Errorf("%w: %q", domain.ErrInvalidStatus, filter.Status))
	}
	if filter.Kind != "" && !filter.Kind.IsCardKind() {
		return nil, invalidInput(fmt.Errorf("%w: %q", domain.ErrInvalidItemKind, filter.Kind))
	}

	cards, err := s.stores.Cards.List(ctx, filter)
	if err != nil {
		return nil, NewServiceError("list_cards", "failed to list cards", err)
	}
	return cards, nil
}

// AddRule implements CollectionService.AddRule.
func (s *collectionServiceImpl) AddRule(ctx context.Context, content domain.RuleContent) (*domain.Rule, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rule, err := domain.NewRule(content, s.opts.now())
	if err != nil {
		return nil, invalidInput(err)
	}
	if err := s.stores.Rules.Create(ctx, rule); err != nil {
		log.Error("failed to add rule", slog.String("error", err.Error()))
		return nil, NewServiceError("add_rule", "failed to save rule", err)
	}

	log.Info("rule added", slog.String("rule_id", rule.ID))
	return rule, nil
}

// UpdateRule implements CollectionService.UpdateRule.
func (s *collectionServiceImpl) UpdateRule(
	ctx context.Context,
	id string,
	content domain.RuleContent,
) (*domain.Rule, error) {
	return s.mutateRule(ctx, "update_rule", id, func(rule *domain.Rule) error {
		return rule.UpdateContent(content, s.opts.now())
	})
}

// SetRuleFavorite implements CollectionService.SetRuleFavorite.
func (s *collectionServiceImpl) SetRuleFavorite(
	ctx context.Context,
	id string,
	favorite bool,
) (*domain.Rule, error) {
	return s.mutateRule(ctx, "set_rule_favorite", id, func(rule *domain.Rule) error {
		content := rule.Content()
		content.IsFavorite = favorite
		return rule.UpdateContent(content, s.opts.now())
	})
}

func (s *collectionServiceImpl) mutateRule(
	ctx context.Context,
	operation, id string,
	mutate func(*domain.Rule) error,
) (*domain.Rule, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var rule *domain.Rule
	err := store.RunInTransaction(ctx, s.stores.DB, func(ctx context.Context, tx *sql.Tx) error {
		rules := s.stores.Rules.WithTx(tx)

		var err error
		rule, err = rules.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := mutate(rule); err != nil {
			return invalidInput(err)
		}
		return rules.Update(ctx, rule)
	})
	if err != nil {
		return nil, s.wrap(log, operation, id, err)
	}
	return rule, nil
}

// DeleteRule implements CollectionService.DeleteRule.
func (s *collectionServiceImpl) DeleteRule(ctx context.Context, id string) error {
	if err := s.stores.Rules.Delete(ctx, id); err != nil {
		return s.wrap(logger.FromContextOrDefault(ctx, s.logger), "delete_rule", id, err)
	}
	return nil
}

// GetRule implements CollectionService.GetRule.
func (s *collectionServiceImpl) GetRule(ctx context.Context, id string) (*domain.Rule, error) {
	rule, err := s.stores.Rules.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrap(logger.FromContextOrDefault(ctx, s.logger), "get_rule", id, err)
	}
	return rule, nil
}

// ListRules implements CollectionService.ListRules.
func (s *collectionServiceImpl) ListRules(ctx context.Context, filter store.RuleFilter) ([]domain.Rule, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, invalidInput(fmt.Errorf("%w: %q", domain.ErrInvalidStatus, filter.Status))
	}

	rules, err := s.stores.Rules.List(ctx, filter)
	if err != nil {
		return nil, NewServiceError("list_rules", "failed to list rules", err)
	}
	return rules, nil
}

// DraftCard implements CollectionService.DraftCard.
// Generation errors are returned unwrapped so callers can classify them.
func (s *collectionServiceImpl) DraftCard(ctx context.Context, term string) (*domain.CardDraft, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, invalidInput(domain.ErrCardFrontEmpty)
	}
	return s.generator.DraftCard(ctx, term)
}

// DraftRule implements CollectionService.DraftRule.
func (s *collectionServiceImpl) DraftRule(ctx context.Context, topic string) (*domain.RuleDraft, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, invalidInput(domain.ErrRuleTitleEmpty)
	}
	return s.generator.DraftRule(ctx, topic)
}

// EnrichCard implements CollectionService.EnrichCard.
// The generator is called outside any transaction; the card is re-read
// before saving so edits made meanwhile win over the draft.
func (s *collectionServiceImpl) EnrichCard(ctx context.Context, id string) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("card_id", id))

	card, err := s.stores.Cards.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrap(log, "enrich_card", id, err)
	}
	if !card.NeedsEnrichment() {
		log.Debug("card already has a translation")
		return card, nil
	}

	draft, err := s.generator.DraftCard(ctx, card.Front)
	if err != nil {
		log.Warn("failed to draft card", slog.String("error", err.Error()))
		return nil, err
	}

	enriched, err := s.mutateCard(ctx, "enrich_card", id, func(card *domain.Card) error {
		content := card.Content()
		// Level and kind always carry defaults; only back and example are
		// empty on a card awaiting enrichment, so let the draft decide them.
		if card.NeedsEnrichment() {
			content.Level, content.Kind = "", ""
			content = draft.ApplyTo(content)
		}
		return card.UpdateContent(content, s.opts.now())
	})
	if err != nil {
		return nil, err
	}

	log.Info("card enriched", slog.String("level", string(enriched.Level)))
	return enriched, nil
}

// PendingEnrichment implements CollectionService.PendingEnrichment.
func (s *collectionServiceImpl) PendingEnrichment(ctx context.Context, limit int) ([]string, error) {
	cards, err := s.stores.Cards.ListNeedingEnrichment(ctx, limit)
	if err != nil {
		return nil, NewServiceError("pending_enrichment", "failed to list cards", err)
	}
	ids := make([]string, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

// Export implements CollectionService.Export.
func (s *collectionServiceImpl) Export(ctx context.Context) (*domain.Collection, error) {
	collection, err := s.stores.Collections.Load(ctx)
	if err != nil {
		return nil, NewServiceError("export", "failed to load collection", err)
	}
	return collection, nil
}

// Import implements CollectionService.Import.
func (s *collectionServiceImpl) Import(ctx context.Context, collection *domain.Collection, replace bool) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if collection == nil {
		return invalidInput(domain.ErrEmptyContent)
	}
	if collection.Cards == nil {
		collection.Cards = []domain.Card{}
	}
	if collection.Rules == nil {
		collection.Rules = []domain.Rule{}
	}
	if collection.Profile.Stats == nil {
		collection.Profile.Stats = []domain.DailyStat{}
	}
	if err := collection.Validate(); err != nil {
		log.Warn("rejected invalid collection", slog.String("error", err.Error()))
		return invalidInput(err)
	}

	if err := s.stores.Collections.Save(ctx, collection, replace); err != nil {
		if errors.Is(err, store.ErrInvalidEntity) {
			return invalidInput(err)
		}
		return NewServiceError("import", "failed to save collection", err)
	}
	return nil
}

// SeedIfEmpty implements CollectionService.SeedIfEmpty.
func (s *collectionServiceImpl) SeedIfEmpty(ctx context.Context) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	current, err := s.stores.Collections.Load(ctx)
	if err != nil {
		return false, NewServiceError("seed", "failed to load collection", err)
	}
	if len(current.Cards) > 0 || len(current.Rules) > 0 {
		return false, nil
	}

	seed, err := SeedCollection(current.Profile, s.opts.now())
	if err != nil {
		return false, NewServiceError("seed", "failed to build starter collection", err)
	}
	if err := s.stores.Collections.Save(ctx, seed, false); err != nil {
		return false, NewServiceError("seed", "failed to save starter collection", err)
	}

	log.Info("starter collection saved",
		slog.Int("cards", len(seed.Cards)),
		slog.Int("rules", len(seed.Rules)))
	return true, nil
}

// wrap translates store errors into service errors.
func (s *collectionServiceImpl) wrap(log *slog.Logger, operation, id string, err error) error {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return err
	case store.IsNotFoundError(err):
		log.Debug("item not found", slog.String("operation", operation), slog.String("id", id))
		return itemNotFound(id)
	default:
		log.Error("collection operation failed",
			slog.String("operation", operation),
			slog.String("id", id),
			slog.String("error", err.Error()))
		return NewServiceError(operation, "store operation failed", err)
	}
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xtlz/xtlz-english/internal/domain"
	"github.com/xtlz/xtlz-english/internal/domain/srs"
	"github.com/xtlz/xtlz-english/internal/platform/logger"
	"github.com/xtlz/xtlz-english/internal/store"
)

// ReviewItem is one card or rule in a review batch. Exactly one of Card and
// Rule is set.
type ReviewItem struct {
	ID   string          `json:"id"`
	Kind domain.ItemKind `json:"type"`
	Card *domain.Card    `json:"card,omitempty"`
	Rule *domain.Rule    `json:"rule,omitempty"`
}

// State returns the review state of the wrapped item.
func (i ReviewItem) State() domain.ReviewState {
	if i.Rule != nil {
		return i.Rule.State()
	}
	if i.Card != nil {
		return i.Card.State()
	}
	return domain.ReviewState{}
}

// ReviewBatch is the ordered list of items to review now.
type ReviewBatch struct {
	Items []ReviewItem `json:"items"`
	// DueCount is the number of due items before truncation to the limit.
	DueCount    int       `json:"due_count"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ReviewResult is the learner's answer for one item of a session.
type ReviewResult struct {
	ItemID     string `json:"item_id"`
	Remembered bool   `json:"remembered"`
}

// ReviewedItem is an item after a review outcome was applied to it.
type ReviewedItem struct {
	Item           ReviewItem    `json:"item"`
	PreviousStatus domain.Status `json:"previous_status"`
}

// SessionSummary reports the effect of a completed session.
type SessionSummary struct {
	Applied    int `json:"applied"`
	Remembered int `json:"remembered"`
	Forgotten  int `json:"forgotten"`
	// Graduated counts outcomes that moved an item into Known.
	Graduated int `json:"graduated"`
	// Demoted counts outcomes that moved an item out of Known.
	Demoted int `json:"demoted"`
	// Items holds the final state of every reviewed item, in first-seen order.
	Items []ReviewedItem `json:"items"`
	// Skipped lists result IDs that matched no item.
	Skipped []string `json:"skipped"`
}

// ReviewService runs review sessions over cards and rules.
type ReviewService interface {
	// NextBatch returns the items due now, most urgent first. A limit <= 0
	// uses the scheduler's default. An empty batch is not an error.
	NextBatch(ctx context.Context, limit int) (*ReviewBatch, error)

	// SubmitOutcome applies one outcome to the item with the given ID and
	// counts one repetition in the learner profile.
	// Returns ErrItemNotFound if no card or rule has that ID.
	SubmitOutcome(ctx context.Context, itemID string, remembered bool) (*ReviewedItem, error)

	// CompleteSession applies the results in order inside one transaction.
	// Repeated IDs are applied repeatedly; unknown IDs are reported as skipped.
	// Returns ErrEmptySession when results is empty.
	CompleteSession(ctx context.Context, results []ReviewResult) (*SessionSummary, error)
}

type reviewServiceImpl struct {
	stores    Stores
	scheduler srs.Service
	opts      options
	logger    *slog.Logger
}

var _ ReviewService = (*reviewServiceImpl)(nil)

// NewReviewService creates a ReviewService.
// It returns an error if any of the required dependencies are nil.
func NewReviewService(
	stores Stores,
	scheduler srs.Service,
	logger *slog.Logger,
	opts ...Option,
) (ReviewService, error) {
	if err := stores.validate(); err != nil {
		return nil, err
	}
	if scheduler == nil {
		return nil, errors.New("scheduler cannot be nil")
	}

	return &reviewServiceImpl{
		stores:    stores,
		scheduler: scheduler,
		opts:      newOptions(opts),
		logger:    componentLogger(logger, "review_service"),
	}, nil
}

// NextBatch implements ReviewService.NextBatch.
func (s *reviewServiceImpl) NextBatch(ctx context.Context, limit int) (*ReviewBatch, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.opts.now()

	cards, err := s.stores.Cards.List(ctx, store.CardFilter{})
	if err != nil {
		log.Error("failed to list cards", slog.String("error", err.Error()))
		return nil, NewServiceError("next_batch", "failed to list cards", err)
	}
	rules, err := s.stores.Rules.List(ctx, store.RuleFilter{})
	if err != nil {
		log.Error("failed to list rules", slog.String("error", err.Error()))
		return nil, NewServiceError("next_batch", "failed to list rules", err)
	}

	collection := domain.Collection{Cards: cards, Rules: rules}
	all := collection.Reviewables()

	due := 0
	for _, item := range all {
		if s.scheduler.IsDue(item.State(), now) {
			due++
		}
	}

	selected := s.scheduler.SelectDueBatch(all, limit, now)
	items := make([]ReviewItem, 0, len(selected))
	for _, r := range selected {
		items = append(items, toReviewItem(r))
	}

	log.Debug("selected review batch",
		slog.Int("limit", limit),
		slog.Int("due", due),
		slog.Int("selected", len(items)))

	return &ReviewBatch{Items: items, DueCount: due, GeneratedAt: now.UTC()}, nil
}

// SubmitOutcome implements ReviewService.SubmitOutcome.
func (s *reviewServiceImpl) SubmitOutcome(
	ctx context.Context,
	itemID string,
	remembered bool,
) (*ReviewedItem, error) {
	summary, err := s.apply(ctx, "submit_outcome", []ReviewResult{{ItemID: itemID, Remembered: remembered}})
	if err != nil {
		return nil, err
	}
	if len(summary.Items) == 0 {
		return nil, itemNotFound(itemID)
	}
	return &summary.Items[0], nil
}

// CompleteSession implements ReviewService.CompleteSession.
func (s *reviewServiceImpl) CompleteSession(
	ctx context.Context,
	results []ReviewResult,
) (*SessionSummary, error) {
	if len(results) == 0 {
		return nil, ErrEmptySession
	}
	return s.apply(ctx, "complete_session", results)
}

// sessionItem tracks one item across the results of a session.
type sessionItem struct {
	card     *domain.Card
	rule     *domain.Rule
	previous domain.Status
}

func (i *sessionItem) state() domain.ReviewState {
	if i.rule != nil {
		return i.rule.ReviewState
	}
	return i.card.ReviewState
}

func (i *sessionItem) setState(state domain.ReviewState, now time.Time) {
	if i.rule != nil {
		updated := i.rule.WithReviewState(state, now)
		i.rule = &updated
		return
	}
	updated := i.card.WithReviewState(state, now)
	i.card = &updated
}

func (i *sessionItem) reviewed() ReviewedItem {
	item := ReviewItem{Card: i.card, Rule: i.rule}
	if i.rule != nil {
		item.ID, item.Kind = i.rule.ID, domain.KindRule
	} else {
		item.ID, item.Kind = i.card.ID, i.card.Kind
	}
	return ReviewedItem{Item: item, PreviousStatus: i.previous}
}

// apply runs results against the stored items in one transaction. All
// outcomes of the call share a single timestamp.
func (s *reviewServiceImpl) apply(
	ctx context.Context,
	operation string,
	results []ReviewResult,
) (*SessionSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.opts.now()

	summary := &SessionSummary{Items: []ReviewedItem{}, Skipped: []string{}}

	err := store.RunInTransaction(ctx, s.stores.DB, func(ctx context.Context, tx *sql.Tx) error {
		stores := s.stores.withTx(tx)
		seen := make(map[string]*sessionItem)
		var order []*sessionItem

		for _, result := range results {
			item, ok := seen[result.ItemID]
			if !ok {
				loaded, err := loadSessionItem(ctx, stores, result.ItemID)
				if err != nil {
					return err
				}
				if loaded == nil {
					summary.Skipped = append(summary.Skipped, result.ItemID)
					continue
				}
				item = loaded
				seen[result.ItemID] = item
				order = append(order, item)
			}

			before := item.state().Status
			after := s.scheduler.ApplyReviewOutcome(item.state(), result.Remembered, now)
			item.setState(after, now)

			summary.Applied++
			if result.Remembered {
				summary.Remembered++
			} else {
				summary.Forgotten++
			}
			if after.Status == domain.StatusKnown && before != domain.StatusKnown {
				summary.Graduated++
			}
			if before == domain.StatusKnown && after.Status != domain.StatusKnown {
				summary.Demoted++
			}
		}

		for _, item := range order {
			if err := saveSessionItem(ctx, stores, item); err != nil {
				return err
			}
			summary.Items = append(summary.Items, item.reviewed())
		}

		if summary.Applied == 0 {
			return nil
		}
		return recordActivity(ctx, stores.profiles, s.opts.profile, 0, summary.Applied, now)
	})
	if err != nil {
		log.Error("failed to apply review outcomes",
			slog.String("operation", operation),
			slog.Int("results", len(results)),
			slog.String("error", err.Error()))
		return nil, NewServiceError(operation, "failed to apply review outcomes", err)
	}

	log.Info("review outcomes applied",
		slog.String("operation", operation),
		slog.Int("applied", summary.Applied),
		slog.Int("skipped", len(summary.Skipped)),
		slog.Int("graduated", summary.Graduated),
		slog.Int("demoted", summary.Demoted))

	return summary, nil
}

// loadSessionItem looks the ID up among cards, then rules. It returns nil
// when neither store has it.
func loadSessionItem(ctx context.Context, stores txStores, id string) (*sessionItem, error) {
	card, err := stores.cards.GetByID(ctx, id)
	if err == nil {
		return &sessionItem{card: card, previous: card.Status}, nil
	}
	if !errors.Is(err, store.ErrCardNotFound) {
		return nil, fmt.Errorf("load card %q: %w", id, err)
	}

	rule, err := stores.rules.GetByID(ctx, id)
	if err == nil {
		return &sessionItem{rule: rule, previous: rule.Status}, nil
	}
	if !errors.Is(err, store.ErrRuleNotFound) {
		return nil, fmt.Errorf("load rule %q: %w", id, err)
	}
	return nil, nil
}

func saveSessionItem(ctx context.Context, stores txStores, item *sessionItem) error {
	if item.rule != nil {
		return stores.rules.Update(ctx, item.rule)
	}
	return stores.cards.Update(ctx, item.card)
}

func toReviewItem(r domain.Reviewable) ReviewItem {
	switch v := r.(type) {
	case domain.Card:
		return ReviewItem{ID: v.ID, Kind: v.Kind, Card: &v}
	case domain.Rule:
		return ReviewItem{ID: v.ID, Kind: domain.KindRule, Rule: &v}
	default:
		return ReviewItem{ID: r.ReviewKey(), Kind: r.ReviewKind()}
	}
}

package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/xtlz/xtlz-english/internal/domain"
	"github.com/xtlz/xtlz-english/internal/platform/logger"
	"github.com/xtlz/xtlz-english/internal/store"
)

const cardsTable = "cards"

var cardContentColumns = []string{
	"id",
	"front",
	"back",
	"example",
	"tags",
	"level",
	"kind",
	"is_favorite",
	"related_rule_ids",
}

var cardColumns = concat(cardContentColumns, reviewColumns, []string{"created_at", "updated_at"})

// SQLCardStore implements store.CardStore.
type SQLCardStore struct {
	db      store.DBTX
	dialect Dialect
	logger  *slog.Logger
}

// NewCardStore creates a new card store.
// It accepts a database connection or transaction that implements store.DBTX.
// If logger is nil, a default logger will be used.
func NewCardStore(db store.DBTX, dialect Dialect, logger *slog.Logger) *SQLCardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLCardStore{
		db:      db,
		dialect: dialect,
		logger:  logger.With(slog.String("component", "card_store"), slog.String("dialect", dialect.Name)),
	}
}

// Ensure SQLCardStore implements store.CardStore interface
var _ store.CardStore = (*SQLCardStore)(nil)

// WithTx returns a new CardStore instance that uses the provided transaction.
func (s *SQLCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &SQLCardStore{db: tx, dialect: s.dialect, logger: s.logger}
}

// Create implements store.CardStore.
func (s *SQLCardStore) Create(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("invalid card", slog.String("card_id", card.ID), slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	insert, err := s.insert(card)
	if err != nil {
		return err
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build card insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		err = s.dialect.mapError(err)
		log.Error("failed to create card", slog.String("card_id", card.ID), slog.String("error", err.Error()))
		return store.NewStoreError("card", "create", "failed to create card", err)
	}

	log.Debug("card created", slog.String("card_id", card.ID))
	return nil
}

// Upsert implements store.CardStore.
func (s *SQLCardStore) Upsert(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	insert, err := s.insert(card)
	if err != nil {
		return err
	}

	query, args, err := insert.Suffix(upsertSuffix(cardColumns)).ToSql()
	if err != nil {
		return fmt.Errorf("build card upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return store.NewStoreError("card", "upsert", "failed to upsert card", s.dialect.mapError(err))
	}
	return nil
}

// GetByID implements store.CardStore.
func (s *SQLCardStore) GetByID(ctx context.Context, id string) (*domain.Card, error) {
	query, args, err := s.dialect.builder().
		Select(cardColumns...).
		From(cardsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build card select: %w", err)
	}

	card, err := scanCard(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).
			Error("failed to get card", slog.String("card_id", id), slog.String("error", err.Error()))
		return nil, store.NewStoreError("card", "get", "failed to get card", s.dialect.mapError(err))
	}

	return card, nil
}

// Update implements store.CardStore.
func (s *SQLCardStore) Update(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	values, err := cardValues(card)
	if err != nil {
		return err
	}

	update := s.dialect.builder().Update(cardsTable)
	for i, col := range cardColumns {
		if col == "id" || col == "created_at" {
			continue
		}
		update = update.Set(col, values[i])
	}

	query, args, err := update.Where(sq.Eq{"id": card.ID}).ToSql()
	if err != nil {
		return fmt.Errorf("build card update: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		err = s.dialect.mapError(err)
		log.Error("failed to update card", slog.String("card_id", card.ID), slog.String("error", err.Error()))
		return store.NewStoreError("card", "update", "failed to update card",
			fmt.Errorf("%w: %w", store.ErrUpdateFailed, err))
	}

	return CheckRowsAffected(result, store.ErrCardNotFound)
}

// Delete implements store.CardStore.
func (s *SQLCardStore) Delete(ctx context.Context, id string) error {
	query, args, err := s.dialect.builder().Delete(cardsTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build card delete: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return store.NewStoreError("card", "delete", "failed to delete card",
			fmt.Errorf("%w: %w", store.ErrDeleteFailed, s.dialect.mapError(err)))
	}

	return CheckRowsAffected(result, store.ErrCardNotFound)
}

// DeleteAll implements store.CardStore.
func (s *SQLCardStore) DeleteAll(ctx context.Context) error {
	query, args, err := s.dialect.builder().Delete(cardsTable).ToSql()
	if err != nil {
		return fmt.Errorf("build card delete: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return store.NewStoreError("card", "delete_all", "failed to delete cards",
			fmt.Errorf("%w: %w", store.ErrDeleteFailed, s.dialect.mapError(err)))
	}
	return nil
}

// List implements store.CardStore.
func (s *SQLCardStore) List(ctx context.Context, filter store.CardFilter) ([]domain.Card, error) {
	selectQ := s.dialect.builder().
		Select(cardColumns...).
		From(cardsTable).
		OrderBy("created_at DESC", "id DESC")

	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		selectQ = selectQ.Where(sq.Or{
			sq.Expr(`LOWER(front) LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(`LOWER(back) LIKE ? ESCAPE '\'`, pattern),
		})
	}
	if filter.FavoritesOnly {
		selectQ = selectQ.Where(sq.Eq{"is_favorite": true})
	}
	if filter.Status != "" {
		selectQ = selectQ.Where(sq.Eq{"status": string(filter.Status)})
	}
	if filter.Kind != "" {
		selectQ = selectQ.Where(sq.Eq{"kind": string(filter.Kind)})
	}

	return s.query(ctx, selectQ)
}

// ListNeedingEnrichment implements store.CardStore.
func (s *SQLCardStore) ListNeedingEnrichment(ctx context.Context, limit int) ([]domain.Card, error) {
	selectQ := s.dialect.builder().
		Select(cardColumns...).
		From(cardsTable).
		Where(sq.Eq{"back": ""}).
		OrderBy("created_at ASC", "id ASC")
	if limit > 0 {
		selectQ = selectQ.Limit(uint64(limit))
	}
	return s.query(ctx, selectQ)
}

// CountByStatus implements store.CardStore.
func (s *SQLCardStore) CountByStatus(ctx context.Context) (map[domain.Status]int, error) {
	query, args, err := s.dialect.builder().
		Select("status", "COUNT(*)").
		From(cardsTable).
		GroupBy("status").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build card count: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("card", "count", "failed to count cards", s.dialect.mapError(err))
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[domain.Status]int, len(domain.Statuses))
	for _, status := range domain.Statuses {
		counts[status] = 0
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, store.NewStoreError("card", "count", "failed to scan count", err)
		}
		counts[domain.Status(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("card", "count", "failed to iterate counts", err)
	}

	return counts, nil
}

func (s *SQLCardStore) insert(card *domain.Card) (sq.InsertBuilder, error) {
	values, err := cardValues(card)
	if err != nil {
		return sq.InsertBuilder{}, err
	}
	return s.dialect.builder().Insert(cardsTable).Columns(cardColumns...).Values(values...), nil
}

func (s *SQLCardStore) query(ctx context.Context, selectQ sq.SelectBuilder) ([]domain.Card, error) {
	query, args, err := selectQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build card query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list cards", slog.String("error", err.Error()))
		return nil, store.NewStoreError("card", "list", "failed to list cards", s.dialect.mapError(err))
	}
	defer func() { _ = rows.Close() }()

	cards := []domain.Card{}
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, store.NewStoreError("card", "list", "failed to scan card", err)
		}
		cards = append(cards, *card)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("card", "list", "failed to iterate cards", err)
	}

	return cards, nil
}

func cardValues(card *domain.Card) ([]any, error) {
	tags, err := encodeList(card.Tags)
	if err != nil {
		return nil, err
	}
	related, err := encodeList(card.RelatedRuleIDs)
	if err != nil {
		return nil, err
	}

	values := []any{
		card.ID,
		card.Front,
		card.Back,
		card.Example,
		tags,
		string(card.Level),
		string(card.Kind),
		card.IsFavorite,
		related,
	}
	values = append(values, reviewValues(card.ReviewState)...)
	return append(values, card.CreatedAt.UTC(), card.UpdatedAt.UTC()), nil
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var card domain.Card
	var tags, related, level, kind string
	var createdAt, updatedAt time.Time

	reviewDest, finish := reviewTargets(&card.ReviewState)
	dest := []any{&card.ID, &card.Front, &card.Back, &card.Example, &tags, &level, &kind, &card.IsFavorite, &related}
	dest = append(dest, reviewDest...)
	dest = append(dest, &createdAt, &updatedAt)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	finish()

	var err error
	if card.Tags, err = decodeList(tags); err != nil {
		return nil, err
	}
	if card.RelatedRuleIDs, err = decodeList(related); err != nil {
		return nil, err
	}
	card.Level = domain.Level(level)
	card.Kind = domain.ItemKind(kind)
	card.CreatedAt = createdAt.UTC()
	card.UpdatedAt = updatedAt.UTC()

	return &card, nil
}

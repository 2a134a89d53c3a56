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

const rulesTable = "rules"

var ruleColumns = concat(
	[]string{"id", "title", "explanation", "examples", "level", "is_favorite"},
	reviewColumns,
	[]string{"created_at", "updated_at"},
)

// SQLRuleStore implements store.RuleStore.
type SQLRuleStore struct {
	db      store.DBTX
	dialect Dialect
	logger  *slog.Logger
}

// NewRuleStore creates a new rule store.
func NewRuleStore(db store.DBTX, dialect Dialect, logger *slog.Logger) *SQLRuleStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLRuleStore{
		db:      db,
		dialect: dialect,
		logger:  logger.With(slog.String("component", "rule_store"), slog.String("dialect", dialect.Name)),
	}
}

var _ store.RuleStore = (*SQLRuleStore)(nil)

// WithTx returns a new RuleStore instance that uses the provided transaction.
func (s *SQLRuleStore) WithTx(tx *sql.Tx) store.RuleStore {
	return &SQLRuleStore{db: tx, dialect: s.dialect, logger: s.logger}
}

// Create implements store.RuleStore.
func (s *SQLRuleStore) Create(ctx context.Context, rule *domain.Rule) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := rule.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	insert, err := s.insert(rule)
	if err != nil {
		return err
	}
	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build rule insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		err = s.dialect.mapError(err)
		log.Error("failed to create rule", slog.String("rule_id", rule.ID), slog.String("error", err.Error()))
		return store.NewStoreError("rule", "create", "failed to create rule", err)
	}

	log.Debug("rule created", slog.String("rule_id", rule.ID))
	return nil
}

// Upsert implements store.RuleStore.
func (s *SQLRuleStore) Upsert(ctx context.Context, rule *domain.Rule) error {
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	insert, err := s.insert(rule)
	if err != nil {
		return err
	}
	query, args, err := insert.Suffix(upsertSuffix(ruleColumns)).ToSql()
	if err != nil {
		return fmt.Errorf("build rule upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return store.NewStoreError("rule", "upsert", "failed to upsert rule", s.dialect.mapError(err))
	}
	return nil
}

// GetByID implements store.RuleStore.
func (s *SQLRuleStore) GetByID(ctx context.Context, id string) (*domain.Rule, error) {
	query, args, err := s.dialect.builder().
		Select(ruleColumns...).
		From(rulesTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build rule select: %w", err)
	}

	rule, err := scanRule(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrRuleNotFound
		}
		return nil, store.NewStoreError("rule", "get", "failed to get rule", s.dialect.mapError(err))
	}

	return rule, nil
}

// Update implements store.RuleStore.
func (s *SQLRuleStore) Update(ctx context.Context, rule *domain.Rule) error {
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	values, err := ruleValues(rule)
	if err != nil {
		return err
	}

	update := s.dialect.builder().Update(rulesTable)
	for i, col := range ruleColumns {
		if col == "id" || col == "created_at" {
			continue
		}
		update = update.Set(col, values[i])
	}

	query, args, err := update.Where(sq.Eq{"id": rule.ID}).ToSql()
	if err != nil {
		return fmt.Errorf("build rule update: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return store.NewStoreError("rule", "update", "failed to update rule",
			fmt.Errorf("%w: %w", store.ErrUpdateFailed, s.dialect.mapError(err)))
	}

	return CheckRowsAffected(result, store.ErrRuleNotFound)
}

// Delete implements store.RuleStore.
func (s *SQLRuleStore) Delete(ctx context.Context, id string) error {
	query, args, err := s.dialect.builder().Delete(rulesTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build rule delete: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return store.NewStoreError("rule", "delete", "failed to delete rule",
			fmt.Errorf("%w: %w", store.ErrDeleteFailed, s.dialect.mapError(err)))
	}

	return CheckRowsAffected(result, store.ErrRuleNotFound)
}

// DeleteAll implements store.RuleStore.
func (s *SQLRuleStore) DeleteAll(ctx context.Context) error {
	query, args, err := s.dialect.builder().Delete(rulesTable).ToSql()
	if err != nil {
		return fmt.Errorf("build rule delete: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return store.NewStoreError("rule", "delete_all", "failed to delete rules",
			fmt.Errorf("%w: %w", store.ErrDeleteFailed, s.dialect.mapError(err)))
	}
	return nil
}

// List implements store.RuleStore.
func (s *SQLRuleStore) List(ctx context.Context, filter store.RuleFilter) ([]domain.Rule, error) {
	selectQ := s.dialect.builder().
		Select(ruleColumns...).
		From(rulesTable).
		OrderBy("created_at DESC", "id DESC")

	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		selectQ = selectQ.Where(sq.Or{
			sq.Expr(`LOWER(title) LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(`LOWER(explanation) LIKE ? ESCAPE '\'`, pattern),
		})
	}
	if filter.FavoritesOnly {
		selectQ = selectQ.Where(sq.Eq{"is_favorite": true})
	}
	if filter.Status != "" {
		selectQ = selectQ.Where(sq.Eq{"status": string(filter.Status)})
	}

	query, args, err := selectQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build rule query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("rule", "list", "failed to list rules", s.dialect.mapError(err))
	}
	defer func() { _ = rows.Close() }()

	rules := []domain.Rule{}
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, store.NewStoreError("rule", "list", "failed to scan rule", err)
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("rule", "list", "failed to iterate rules", err)
	}

	return rules, nil
}

func (s *SQLRuleStore) insert(rule *domain.Rule) (sq.InsertBuilder, error) {
	values, err := ruleValues(rule)
	if err != nil {
		return sq.InsertBuilder{}, err
	}
	return s.dialect.builder().Insert(rulesTable).Columns(ruleColumns...).Values(values...), nil
}

func ruleValues(rule *domain.Rule) ([]any, error) {
	examples, err := encodeList(rule.Examples)
	if err != nil {
		return nil, err
	}

	values := []any{rule.ID, rule.Title, rule.Explanation, examples, string(rule.Level), rule.IsFavorite}
	values = append(values, reviewValues(rule.ReviewState)...)
	return append(values, rule.CreatedAt.UTC(), rule.UpdatedAt.UTC()), nil
}

func scanRule(row rowScanner) (*domain.Rule, error) {
	var rule domain.Rule
	var examples, level string
	var createdAt, updatedAt time.Time

	reviewDest, finish := reviewTargets(&rule.ReviewState)
	dest := []any{&rule.ID, &rule.Title, &rule.Explanation, &examples, &level, &rule.IsFavorite}
	dest = append(dest, reviewDest...)
	dest = append(dest, &createdAt, &updatedAt)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	finish()

	var err error
	if rule.Examples, err = decodeList(examples); err != nil {
		return nil, err
	}
	rule.Level = domain.Level(level)
	rule.CreatedAt = createdAt.UTC()
	rule.UpdatedAt = updatedAt.UTC()

	return &rule, nil
}

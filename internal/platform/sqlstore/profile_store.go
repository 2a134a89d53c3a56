package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/xtlz/xtlz-english/internal/domain"
	"github.com/xtlz/xtlz-english/internal/store"
)

const (
	profileTable    = "profile"
	dailyStatsTable = "daily_stats"

	// profileRowID is the key of the single profile row.
	profileRowID = 1
)

// SQLProfileStore implements store.ProfileStore.
type SQLProfileStore struct {
	db      store.DBTX
	dialect Dialect
	logger  *slog.Logger
}

// NewProfileStore creates a new profile store.
func NewProfileStore(db store.DBTX, dialect Dialect, logger *slog.Logger) *SQLProfileStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLProfileStore{
		db:      db,
		dialect: dialect,
		logger:  logger.With(slog.String("component", "profile_store"), slog.String("dialect", dialect.Name)),
	}
}

var _ store.ProfileStore = (*SQLProfileStore)(nil)

// WithTx returns a new ProfileStore instance that uses the provided transaction.
func (s *SQLProfileStore) WithTx(tx *sql.Tx) store.ProfileStore {
	return &SQLProfileStore{db: tx, dialect: s.dialect, logger: s.logger}
}

// Get implements store.ProfileStore.
func (s *SQLProfileStore) Get(ctx context.Context) (*domain.Profile, error) {
	query, args, err := s.dialect.builder().
		Select("name", "level", "streak", "last_active_date").
		From(profileTable).
		Where(sq.Eq{"id": profileRowID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build profile select: %w", err)
	}

	var profile domain.Profile
	var level string
	var lastActive sql.NullString
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&profile.Name, &level, &profile.Streak, &lastActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProfileNotFound
		}
		return nil, store.NewStoreError("profile", "get", "failed to get profile", s.dialect.mapError(err))
	}
	profile.Level = domain.Level(level)
	profile.LastActiveDate = lastActive.String

	stats, err := s.listStats(ctx)
	if err != nil {
		return nil, err
	}
	profile.Stats = stats

	return &profile, nil
}

// Save implements store.ProfileStore. It issues several statements; callers
// that need atomicity run it on a transaction store.
func (s *SQLProfileStore) Save(ctx context.Context, profile domain.Profile) error {
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	lastActive := sql.NullString{String: profile.LastActiveDate, Valid: profile.LastActiveDate != ""}
	query, args, err := s.dialect.builder().
		Insert(profileTable).
		Columns("id", "name", "level", "streak", "last_active_date").
		Values(profileRowID, profile.Name, string(profile.Level), profile.Streak, lastActive).
		Suffix(upsertSuffix([]string{"name", "level", "streak", "last_active_date"})).
		ToSql()
	if err != nil {
		return fmt.Errorf("build profile upsert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return store.NewStoreError("profile", "save", "failed to save profile", s.dialect.mapError(err))
	}

	query, args, err = s.dialect.builder().Delete(dailyStatsTable).ToSql()
	if err != nil {
		return fmt.Errorf("build stats delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return store.NewStoreError("profile", "save", "failed to clear daily stats", s.dialect.mapError(err))
	}

	if len(profile.Stats) == 0 {
		return nil
	}

	insert := s.dialect.builder().
		Insert(dailyStatsTable).
		Columns("stat_date", "added_count", "repeated_count")
	for _, stat := range profile.Stats {
		insert = insert.Values(stat.Date, stat.AddedCount, stat.RepeatedCount)
	}
	query, args, err = insert.ToSql()
	if err != nil {
		return fmt.Errorf("build stats insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return store.NewStoreError("profile", "save", "failed to save daily stats", s.dialect.mapError(err))
	}

	return nil
}

func (s *SQLProfileStore) listStats(ctx context.Context) ([]domain.DailyStat, error) {
	query, args, err := s.dialect.builder().
		Select("stat_date", "added_count", "repeated_count").
		From(dailyStatsTable).
		OrderBy("stat_date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build stats select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("profile", "get", "failed to list daily stats", s.dialect.mapError(err))
	}
	defer func() { _ = rows.Close() }()

	stats := []domain.DailyStat{}
	for rows.Next() {
		var stat domain.DailyStat
		if err := rows.Scan(&stat.Date, &stat.AddedCount, &stat.RepeatedCount); err != nil {
			return nil, store.NewStoreError("profile", "get", "failed to scan daily stat", err)
		}
		stats = append(stats, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("profile", "get", "failed to iterate daily stats", err)
	}

	return stats, nil
}

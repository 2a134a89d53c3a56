package testdb

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xtlz/xtlz-english/internal/platform/sqlite"
	"github.com/xtlz/xtlz-english/internal/platform/sqlstore"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 30 * time.Second

// NewSQLite returns a migrated in-memory SQLite database private to the test.
// The database is closed when the test ends.
func NewSQLite(t *testing.T) (*sql.DB, sqlstore.Dialect) {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err, "open sqlite")
	t.Cleanup(func() { _ = db.Close() })

	dialect := sqlite.Dialect()
	Migrate(t, db, dialect)

	return db, dialect
}

// Migrate applies every migration of dialect to db.
func Migrate(t *testing.T, db *sql.DB, dialect sqlstore.Dialect) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	migrator, err := sqlstore.NewMigrator(db, dialect, nil)
	require.NoError(t, err, "create migrator")
	require.NoError(t, migrator.Up(ctx), "apply migrations")
}

// WithTx executes fn within a transaction that is rolled back afterwards.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "Failed to begin transaction")

	defer func() {
		// sql.ErrTxDone is expected if the test committed or rolled back itself
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("Warning: failed to rollback transaction: %v", err)
		}
	}()

	fn(t, tx)
}

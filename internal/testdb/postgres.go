//go:build integration

package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/xtlz/xtlz-english/internal/ciutil"
	"github.com/xtlz/xtlz-english/internal/platform/postgres"
	"github.com/xtlz/xtlz-english/internal/platform/sqlstore"
)

var (
	pgOnce    sync.Once
	pgDSN     string
	pgInitErr error
)

// NewPostgres returns a migrated PostgreSQL database. The URL from
// ciutil.TestDatabaseURL is used when set; otherwise one container is
// started for the whole test binary.
// Tables are emptied when the test ends.
func NewPostgres(t *testing.T) (*sql.DB, sqlstore.Dialect) {
	t.Helper()

	pgOnce.Do(func() {
		pgDSN = ciutil.TestDatabaseURL(nil)
		if pgDSN == "" {
			pgDSN, pgInitErr = startPostgresContainer()
		}
	})
	if pgInitErr != nil {
		t.Fatalf("testdb: failed to start postgres: %v", pgInitErr)
	}

	db, err := sql.Open(postgres.DriverName, pgDSN)
	require.NoError(t, err, "open postgres")

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "ping postgres")

	dialect := postgres.Dialect()
	Migrate(t, db, dialect)

	t.Cleanup(func() {
		_, _ = db.Exec("TRUNCATE cards, rules, profile, daily_stats")
		_ = db.Close()
	})

	return db, dialect
}

func startPostgresContainer() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:17-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "xtlz",
			"POSTGRES_PASSWORD": "xtlz",
			"POSTGRES_DB":       "xtlz_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("get mapped port: %w", err)
	}

	return fmt.Sprintf("postgres://xtlz:xtlz@%s:%s/xtlz_test?sslmode=disable", host, port.Port()), nil
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/xtlz/xtlz-english/internal/config"
	"github.com/xtlz/xtlz-english/internal/platform/postgres"
	"github.com/xtlz/xtlz-english/internal/platform/sqlite"
	"github.com/xtlz/xtlz-english/internal/platform/sqlstore"
	"github.com/xtlz/xtlz-english/internal/redact"
)

// pingTimeout bounds the connection check made when the database is opened.
const pingTimeout = 5 * time.Second

// openDatabase opens the configured database and checks the connection.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, sqlstore.Dialect, error) {
	var (
		db      *sql.DB
		dialect sqlstore.Dialect
		err     error
	)

	switch cfg.Driver {
	case config.DriverPostgres:
		db, err = postgres.Open(cfg)
		dialect = postgres.Dialect()
	case config.DriverSQLite:
		db, err = sqlite.Open(cfg.URL)
		dialect = sqlite.Dialect()
	default:
		return nil, sqlstore.Dialect{}, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, sqlstore.Dialect{}, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, sqlstore.Dialect{}, fmt.Errorf("failed to ping database: %s", redact.Error(err))
	}

	logger.Info("database connection established", slog.String("driver", cfg.Driver))
	return db, dialect, nil
}

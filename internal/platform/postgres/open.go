package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/xtlz/xtlz-english/internal/config"
)

// Open opens a PostgreSQL database through the pgx driver and applies the
// configured pool limits. The connection is not checked.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(DriverName, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	return db, nil
}

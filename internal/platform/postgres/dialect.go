package postgres

import (
	"embed"
	"io/fs"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/pressly/goose/v3"
	"github.com/xtlz/xtlz-english/internal/platform/sqlstore"
)

// DriverName is the database/sql driver registered by pgx.
const DriverName = "pgx"

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Dialect returns the PostgreSQL dialect.
func Dialect() sqlstore.Dialect {
	migrations, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err) // the directory is embedded at build time
	}

	return sqlstore.Dialect{
		Name:        "postgres",
		Placeholder: sq.Dollar,
		Goose:       goose.DialectPostgres,
		Migrations:  migrations,
		MapError:    MapError,
	}
}

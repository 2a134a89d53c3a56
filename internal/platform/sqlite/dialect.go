package sqlite

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/pressly/goose/v3"
	"github.com/xtlz/xtlz-english/internal/platform/sqlstore"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Dialect returns the SQLite dialect.
func Dialect() sqlstore.Dialect {
	migrations, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err) // the directory is embedded at build time
	}

	return sqlstore.Dialect{
		Name:        "sqlite",
		Placeholder: sq.Question,
		Goose:       goose.DialectSQLite3,
		Migrations:  migrations,
		MapError:    MapError,
	}
}

// DSN turns a file path (or ":memory:") into a modernc DSN with the pragmas
// the stores rely on. Values that already look like DSNs are returned as is.
func DSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	if path == ":memory:" {
		return "file::memory:?_pragma=foreign_keys(1)&_time_format=sqlite"
	}
	return fmt.Sprintf(
		"file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_time_format=sqlite",
		path,
	)
}

// Open opens a SQLite database. The pool is limited to one connection, so
// work inside a transaction must go through the transaction.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, DSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

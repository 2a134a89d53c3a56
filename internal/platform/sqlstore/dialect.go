package sqlstore

import (
	"io/fs"

	sq "github.com/Masterminds/squirrel"
	"github.com/pressly/goose/v3"
)

// Dialect describes one SQL engine.
type Dialect struct {
	// Name is the configured driver name ("postgres" or "sqlite").
	Name string

	// Placeholder is the bind-parameter style of the engine.
	Placeholder sq.PlaceholderFormat

	// Goose is the goose dialect used to track applied migrations.
	Goose goose.Dialect

	// Migrations holds the engine's goose SQL files at its root.
	Migrations fs.FS

	// MapError translates driver errors into store errors. It must return
	// nil for nil and leave unknown errors unchanged.
	MapError func(error) error
}

// builder returns a statement builder using the dialect's placeholders.
func (d Dialect) builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(d.Placeholder)
}

// mapError applies the dialect's mapping and then the generic one.
func (d Dialect) mapError(err error) error {
	if err == nil {
		return nil
	}
	if d.MapError != nil {
		err = d.MapError(err)
	}
	return MapError(err)
}

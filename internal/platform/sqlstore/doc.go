// Package sqlstore implements the store interfaces over database/sql.
//
// The same stores serve PostgreSQL (through the pgx stdlib driver) and SQLite
// (through modernc.org/sqlite). Everything that differs between the two is
// captured in a Dialect: placeholder style, goose dialect, embedded
// migrations and driver error mapping. Queries are built with squirrel and
// only use SQL both engines accept.
package sqlstore

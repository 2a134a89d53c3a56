// Package postgres supplies the PostgreSQL dialect for the sqlstore package:
// driver registration (pgx stdlib), driver error mapping and the embedded
// goose migrations.
package postgres

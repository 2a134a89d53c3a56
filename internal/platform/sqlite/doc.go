// Package sqlite supplies the SQLite dialect for the sqlstore package using
// the pure-Go modernc.org/sqlite driver.
package sqlite

// Package testdb provides migrated databases for store and service tests.
//
// NewSQLite returns a private in-memory SQLite database and needs nothing
// installed. NewPostgres (integration build tag) returns a PostgreSQL
// database, either from DATABASE_URL or from a throwaway container started
// with testcontainers.
//
// Use WithTx to run a test inside a transaction that is always rolled back:
//
//	func TestMyFeature(t *testing.T) {
//	    db, dialect := testdb.NewSQLite(t)
//
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        cards := sqlstore.NewCardStore(tx, dialect, nil)
//	        // ...
//	    })
//	}
package testdb

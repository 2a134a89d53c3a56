//go:build integration

package sqlstore_test

import (
	"testing"

	"github.com/xtlz/xtlz-english/internal/testdb"
)

// The PostgreSQL tests share one database and are not run in parallel.

func TestPostgresCardStore(t *testing.T) {
	runCardStoreTests(t, testdb.NewPostgres)
}

func TestPostgresRuleStore(t *testing.T) {
	runRuleStoreTests(t, testdb.NewPostgres)
}

func TestPostgresProfileStore(t *testing.T) {
	runProfileStoreTests(t, testdb.NewPostgres)
}

func TestPostgresCollectionStore(t *testing.T) {
	runCollectionStoreTests(t, testdb.NewPostgres)
}

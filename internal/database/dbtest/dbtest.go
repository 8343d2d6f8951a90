// Package dbtest opens throwaway SQLite databases for tests.
package dbtest

import (
	"testing"

	"gamevault/backend/internal/database"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// New returns a migrated in-memory database that lives until the test ends.
// The pool is pinned to one connection: an in-memory SQLite database exists
// per connection, and concurrent transactions queue on the pool instead of
// failing with SQLITE_BUSY.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

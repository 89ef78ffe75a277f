// Package dbtest opens throwaway databases for service and handler tests.
package dbtest

import (
	"testing"

	"github.com/desmin2102/HostelApp/pkg/internal/database"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Open creates an in-memory database, migrates it and installs it as database.C.
// Every call gets its own database so tests never see each other's rows.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), database.NewConfig())
	require.NoError(t, err)

	raw, err := db.DB()
	require.NoError(t, err)
	raw.SetMaxOpenConns(1)

	require.NoError(t, database.RunMigration(db))

	prev := database.C
	database.C = db
	t.Cleanup(func() {
		database.C = prev
		_ = raw.Close()
	})

	return db
}

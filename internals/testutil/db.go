// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	database "garderie_backend/internals/databases"
	"garderie_backend/internals/helpers/dbtime"
)

// NewDB returns a migrated in-memory SQLite database private to t.
// The pool holds a single connection so concurrent callers queue on it,
// the same way row locks serialize them on PostgreSQL.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dbtime.SetLocation(time.UTC)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000&_foreign_keys=off", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig(zap.NewNop(), gormLogger.Silent))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(context.Background(), db))
	return db
}

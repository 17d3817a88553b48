// Package testkit holds helpers shared by package tests.
package testkit

import (
	"fmt"
	"testing"
	"time"

	"campus-canteen-api/config"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory sqlite database with the full schema migrated
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

// Clock returns a function yielding strictly increasing whole-second UTC times
func Clock(start time.Time) func() time.Time {
	next := start.UTC().Truncate(time.Second)
	return func() time.Time {
		now := next
		next = next.Add(time.Second)
		return now
	}
}

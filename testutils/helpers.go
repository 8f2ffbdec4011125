package testutils

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory sqlite database and migrates models.
// The pool is capped at one connection so every query sees the same database.
func SetupTestDB(t *testing.T, models ...any) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	if len(models) > 0 {
		require.NoError(t, db.AutoMigrate(models...))
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

func AssertErrorType(t *testing.T, expected error, actual error) {
	t.Helper()
	require.Error(t, actual)
	require.ErrorIs(t, actual, expected)
}

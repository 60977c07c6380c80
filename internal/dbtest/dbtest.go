// Package dbtest opens throwaway SQLite databases for tests.
package dbtest

import (
	"io"
	"path/filepath"
	"testing"

	"occupancy/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// New returns a migrated database backed by a file in t.TempDir(). The file
// is needed so several connections share it and transactions really block on
// each other.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := config.ConnectionDb(config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		URL:          filepath.Join(t.TempDir(), "occupancy.db"),
		MaxOpenConns: 8,
	}, Logger())
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// Logger discards everything.
func Logger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

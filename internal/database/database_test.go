package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSettings(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetSetting("token")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, db.SetSetting("token", "abc"))
	require.NoError(t, db.SetSetting("token", "def"))

	setting, err := db.GetSetting("token")
	require.NoError(t, err)
	assert.Equal(t, "def", setting.Value)

	require.NoError(t, db.DeleteSetting("token"))
	_, err = db.GetSetting("token")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSQLDB(t *testing.T) {
	db := setupTestDB(t)

	sqlDB, err := db.SQLDB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())
}

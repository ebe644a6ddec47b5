package db

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/hybrid-warden/internal/config"
)

func TestNewDatabaseSQLite(t *testing.T) {
	cfg := &config.DBConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "warden.db"),
	}

	db, cleanup, err := NewDatabase(cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, config.DriverSQLite, db.Driver())

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM analysis_records"))
	assert.Zero(t, count)

	// Applying again is a no-op.
	assert.NoError(t, db.RunMigrations())
}

func TestNewDatabaseUnknownDriver(t *testing.T) {
	_, cleanup, err := NewDatabase(&config.DBConfig{Driver: "oracle"}, slog.New(slog.DiscardHandler))
	assert.Error(t, err)
	assert.NotNil(t, cleanup)
}

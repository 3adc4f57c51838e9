package database

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDefaultsToSQLite(t *testing.T) {
	cfg := Config{}
	require.NoError(t, cfg.Normalize())
	assert.Equal(t, DriverSQLite, cfg.Driver)
	assert.Equal(t, 1, cfg.MaxConnections)
	assert.True(t, strings.HasPrefix(cfg.ConnString(), "file:data/cinebot.db?"))
}

func TestNormalizePostgres(t *testing.T) {
	cfg := Config{Driver: "PostgreSQL", Host: "db", User: "bot", Password: "p@ss", Name: "cinebot"}
	require.NoError(t, cfg.Normalize())
	assert.Equal(t, DriverPostgres, cfg.Driver)
	assert.Equal(t, "disable", cfg.SSLMode)
	assert.Equal(t, 10, cfg.MaxConnections)
	assert.Equal(t, "postgres://bot:p%40ss@db:5432/cinebot?sslmode=disable", cfg.ConnString())
	assert.Equal(t, "db:5432/cinebot", cfg.Target())
}

func TestNormalizeRejects(t *testing.T) {
	assert.Error(t, (&Config{Driver: "postgres"}).Normalize())
	assert.Error(t, (&Config{Driver: "mysql"}).Normalize())
}

func TestDSNOverrides(t *testing.T) {
	cfg := Config{Driver: "postgres", DSN: "postgres://x/y"}
	require.NoError(t, cfg.Normalize())
	assert.Equal(t, "postgres://x/y", cfg.ConnString())
	assert.Equal(t, "dsn", cfg.Target())
}

func TestMigrateSQLiteIsIdempotent(t *testing.T) {
	cfg := Config{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "m.db")}
	require.NoError(t, RunMigrations(cfg))
	require.NoError(t, RunMigrations(cfg))

	db, err := Connect(cfg)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM items`))
	assert.Zero(t, n)
}

func TestSelectApplied(t *testing.T) {
	files := []string{"0001_init.up.sql", "0002_more.up.sql", "0003_last.up.sql"}
	assert.Equal(t, []string{"0002_more.up.sql", "0003_last.up.sql"}, selectApplied(files, 1, 3))
	assert.Nil(t, selectApplied(files, 3, 3))
}

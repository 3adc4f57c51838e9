// Package storetest opens a migrated SQLite store in a temp dir.
package storetest

import (
	"path/filepath"
	"testing"

	coredatabase "github.com/m3rciful/cinebot/core/database"
	"github.com/m3rciful/cinebot/internal/store"
)

// New returns a fresh store closed when the test ends.
func New(t testing.TB) *store.Store {
	t.Helper()
	cfg := coredatabase.Config{
		Driver: coredatabase.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "cinebot.db"),
	}
	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("storetest: open: %v", err)
	}
	t.Cleanup(func() { _ = st.DB().Close() })
	return st
}

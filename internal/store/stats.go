package store

import (
	"context"

	"github.com/m3rciful/cinebot/internal/domain"
)

type statsRow struct {
	Items    int   `db:"items"`
	Users    int   `db:"users"`
	Admins   int   `db:"admins"`
	Channels int   `db:"channels"`
	Views    int64 `db:"views"`
}

// Stats gathers the catalog counters in one round trip.
func (s *Store) Stats(ctx context.Context) (domain.Stats, error) {
	var row statsRow
	if err := s.get(ctx, "stats", &row, `
		SELECT
			(SELECT COUNT(*) FROM items) AS items,
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(*) FROM admins) AS admins,
			(SELECT COUNT(*) FROM channels) AS channels,
			(SELECT COALESCE(SUM(views), 0) FROM items) AS views`); err != nil {
		return domain.Stats{}, err
	}
	return domain.Stats(row), nil
}

package app

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/cinebot/core/bootstrap"
	"github.com/m3rciful/cinebot/core/logger"
	"github.com/m3rciful/cinebot/internal/domain"
	"github.com/m3rciful/cinebot/internal/store"
)

// ChannelSeeder inserts the configured required channels that are missing.
func ChannelSeeder(seeds []ChannelSeed) bootstrap.Seeder {
	return bootstrap.SeederFunc(func(ctx context.Context, db *sqlx.DB) error {
		st := store.New(db)
		added := 0
		for _, s := range seeds {
			ok, err := st.InsertChannelIfMissing(ctx, domain.Channel{
				ChatID:     s.ChatID,
				Handle:     s.Handle,
				Title:      s.Title,
				InviteLink: s.InviteLink,
			})
			if err != nil {
				return err
			}
			if ok {
				added++
			}
		}
		logger.SEED.Info("required channels seeded",
			slog.String("event", "db.seed.channels"),
			slog.Int("configured", len(seeds)),
			slog.Int("added", added),
		)
		return nil
	})
}

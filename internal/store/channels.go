package store

import (
	"context"

	"github.com/m3rciful/cinebot/internal/domain"
)

type channelRow struct {
	ChatID     int64  `db:"chat_id"`
	Handle     string `db:"handle"`
	Title      string `db:"title"`
	InviteLink string `db:"invite_link"`
	AddedAt    int64  `db:"added_at"`
}

// InsertChannelIfMissing adds a required channel. It reports false when
// the channel was already required.
func (s *Store) InsertChannelIfMissing(ctx context.Context, ch domain.Channel) (bool, error) {
	added := toMillis(ch.AddedAt)
	if added == 0 {
		added = s.nowMillis()
	}
	res, err := s.exec(ctx, "insert_channel", `
		INSERT INTO channels (chat_id, handle, title, invite_link, added_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (chat_id) DO NOTHING`,
		ch.ChatID, ch.Handle, ch.Title, ch.InviteLink, added)
	if err != nil {
		return false, err
	}
	return affected(res) == 1, nil
}

// ListChannels returns required channels in the order they were added.
func (s *Store) ListChannels(ctx context.Context) ([]domain.Channel, error) {
	var rows []channelRow
	if err := s.selectAll(ctx, "list_channels", &rows, `
		SELECT chat_id, handle, title, invite_link, added_at FROM channels
		ORDER BY added_at, chat_id`); err != nil {
		return nil, err
	}
	out := make([]domain.Channel, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Channel{
			ChatID:     r.ChatID,
			Handle:     r.Handle,
			Title:      r.Title,
			InviteLink: r.InviteLink,
			AddedAt:    fromMillis(r.AddedAt),
		})
	}
	return out, nil
}

// DeleteChannel reports whether the channel was required.
func (s *Store) DeleteChannel(ctx context.Context, chatID int64) (bool, error) {
	res, err := s.exec(ctx, "delete_channel", `DELETE FROM channels WHERE chat_id = ?`, chatID)
	if err != nil {
		return false, err
	}
	return affected(res) > 0, nil
}

package store

import (
	"context"

	"github.com/m3rciful/cinebot/internal/domain"
)

type userRow struct {
	ID             int64  `db:"user_id"`
	DisplayName    string `db:"display_name"`
	Handle         string `db:"handle"`
	JoinedAt       int64  `db:"joined_at"`
	LastActivityAt int64  `db:"last_activity_at"`
}

func (r userRow) domain() domain.User {
	return domain.User{
		ID:             r.ID,
		DisplayName:    r.DisplayName,
		Handle:         r.Handle,
		JoinedAt:       fromMillis(r.JoinedAt),
		LastActivityAt: fromMillis(r.LastActivityAt),
	}
}

// UpsertUser creates the user on first contact and refreshes names and
// activity on later ones. joined_at is never changed.
func (s *Store) UpsertUser(ctx context.Context, u domain.User) error {
	now := s.nowMillis()
	_, err := s.exec(ctx, "upsert_user", `
		INSERT INTO users (user_id, display_name, handle, joined_at, last_activity_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			display_name = excluded.display_name,
			handle = excluded.handle,
			last_activity_at = excluded.last_activity_at`,
		u.ID, u.DisplayName, u.Handle, now, now)
	return err
}

// User returns domain.ErrNotFound for an unknown id.
func (s *Store) User(ctx context.Context, id int64) (domain.User, error) {
	var row userRow
	if err := s.get(ctx, "user", &row, `
		SELECT user_id, display_name, handle, joined_at, last_activity_at
		FROM users WHERE user_id = ?`, id); err != nil {
		return domain.User{}, err
	}
	return row.domain(), nil
}

// TouchUser bumps last activity for an existing user.
func (s *Store) TouchUser(ctx context.Context, id int64) error {
	_, err := s.exec(ctx, "touch_user", `UPDATE users SET last_activity_at = ? WHERE user_id = ?`, s.nowMillis(), id)
	return err
}

// ListUserIDs returns every known user id in join order.
func (s *Store) ListUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.selectAll(ctx, "list_user_ids", &ids, `SELECT user_id FROM users ORDER BY joined_at, user_id`)
	return ids, err
}

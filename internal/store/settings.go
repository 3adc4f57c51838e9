package store

import (
	"context"
	"errors"

	"github.com/m3rciful/cinebot/internal/domain"
)

// Setting returns the stored value and whether the key exists.
func (s *Store) Setting(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.get(ctx, "setting", &v, `SELECT value FROM settings WHERE key = ?`, key)
	if errors.Is(err, domain.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.exec(ctx, "set_setting", `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.nowMillis())
	return err
}

func (s *Store) DeleteSetting(ctx context.Context, key string) error {
	_, err := s.exec(ctx, "delete_setting", `DELETE FROM settings WHERE key = ?`, key)
	return err
}

package store

import (
	"context"
	"errors"

	"github.com/m3rciful/cinebot/internal/domain"
)

type adminRow struct {
	UserID    int64       `db:"user_id"`
	Role      domain.Role `db:"role"`
	GrantedBy int64       `db:"granted_by"`
	GrantedAt int64       `db:"granted_at"`
}

// AdminRole returns RoleNone for users without a grant.
func (s *Store) AdminRole(ctx context.Context, userID int64) (domain.Role, error) {
	var role domain.Role
	err := s.get(ctx, "admin_role", &role, `SELECT role FROM admins WHERE user_id = ?`, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.RoleNone, nil
	}
	return role, err
}

// UpsertAdmin stores the grant, replacing any previous role for the user.
func (s *Store) UpsertAdmin(ctx context.Context, g domain.AdminGrant) error {
	at := toMillis(g.GrantedAt)
	if at == 0 {
		at = s.nowMillis()
	}
	_, err := s.exec(ctx, "upsert_admin", `
		INSERT INTO admins (user_id, role, granted_by, granted_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			role = excluded.role,
			granted_by = excluded.granted_by,
			granted_at = excluded.granted_at`,
		g.UserID, g.Role.String(), g.GrantedBy, at)
	return err
}

// DeleteAdmin reports whether a grant existed.
func (s *Store) DeleteAdmin(ctx context.Context, userID int64) (bool, error) {
	res, err := s.exec(ctx, "delete_admin", `DELETE FROM admins WHERE user_id = ?`, userID)
	if err != nil {
		return false, err
	}
	return affected(res) > 0, nil
}

// ListAdmins returns grants ordered by role then user id.
func (s *Store) ListAdmins(ctx context.Context) ([]domain.AdminGrant, error) {
	var rows []adminRow
	if err := s.selectAll(ctx, "list_admins", &rows, `
		SELECT user_id, role, granted_by, granted_at FROM admins
		ORDER BY role, user_id`); err != nil {
		return nil, err
	}
	out := make([]domain.AdminGrant, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.AdminGrant{
			UserID:    r.UserID,
			Role:      r.Role,
			GrantedBy: r.GrantedBy,
			GrantedAt: fromMillis(r.GrantedAt),
		})
	}
	return out, nil
}

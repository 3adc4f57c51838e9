package access

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/cinebot/core/logger"
	"github.com/m3rciful/cinebot/internal/domain"
)

// RoleStore is the slice of storage the resolver reads and writes.
type RoleStore interface {
	AdminRole(ctx context.Context, userID int64) (domain.Role, error)
	UpsertAdmin(ctx context.Context, g domain.AdminGrant) error
	DeleteAdmin(ctx context.Context, userID int64) (bool, error)
	ListAdmins(ctx context.Context) ([]domain.AdminGrant, error)
}

// Resolver answers role and capability questions. Reads are never cached.
type Resolver struct {
	store   RoleStore
	superID int64
}

func NewResolver(store RoleStore, superAdminID int64) *Resolver {
	return &Resolver{store: store, superID: superAdminID}
}

// SuperAdminID is the configured super admin.
func (r *Resolver) SuperAdminID() int64 { return r.superID }

// RoleOf returns the effective role of id.
func (r *Resolver) RoleOf(ctx context.Context, id int64) (domain.Role, error) {
	if id != 0 && id == r.superID {
		return domain.RoleSuper, nil
	}
	role, err := r.store.AdminRole(ctx, id)
	if err != nil {
		return domain.RoleNone, domain.Storage("access.role_of", err)
	}
	return role, nil
}

// Can reports whether id holds capability. A lookup failure denies.
func (r *Resolver) Can(ctx context.Context, id int64, c Capability) bool {
	role, err := r.RoleOf(ctx, id)
	if err != nil {
		logger.Warn(ctx, "service.access", "access.check",
			slog.String("status", "fail"),
			slog.Int64("user_id", id),
			slog.String("capability", string(c)),
			slog.String("err", err.Error()),
		)
		return false
	}
	return CapabilitiesOf(role).Has(c)
}

// Require returns an authorization error unless id holds capability.
func (r *Resolver) Require(ctx context.Context, id int64, c Capability) error {
	role, err := r.RoleOf(ctx, id)
	if err != nil {
		return err
	}
	if !CapabilitiesOf(role).Has(c) {
		return domain.Unauthorized("access.require", fmt.Sprintf("%s required", c))
	}
	return nil
}

// IsAdmin reports whether id holds any admin role.
func (r *Resolver) IsAdmin(ctx context.Context, id int64) bool {
	role, err := r.RoleOf(ctx, id)
	return err == nil && role.IsAdmin()
}

// requiredFor names the capability needed to change a grant to or from role.
func requiredFor(role domain.Role) Capability {
	if role == domain.RoleHead {
		return CapGrantHead
	}
	return CapAdmins
}

// Grant stores role for target on behalf of actor.
func (r *Resolver) Grant(ctx context.Context, actor, target int64, role domain.Role) error {
	if role != domain.RoleJunior && role != domain.RoleHead {
		return domain.Validation("access.grant", "only junior or head admin can be granted")
	}
	if target <= 0 {
		return domain.Validation("access.grant", "user id must be a positive number")
	}
	if target == r.superID {
		return domain.Validation("access.grant", "the super admin cannot be changed")
	}
	if err := r.Require(ctx, actor, requiredFor(role)); err != nil {
		return err
	}
	// Demoting or overwriting an existing head admin needs the same rank.
	current, err := r.RoleOf(ctx, target)
	if err != nil {
		return err
	}
	if current == domain.RoleHead {
		if err := r.Require(ctx, actor, CapGrantHead); err != nil {
			return err
		}
	}
	if err := r.store.UpsertAdmin(ctx, domain.AdminGrant{UserID: target, Role: role, GrantedBy: actor}); err != nil {
		return domain.Storage("access.grant", err)
	}
	logger.Info(ctx, "service.access", "admin.granted",
		slog.String("status", "ok"),
		slog.Int64("target_id", target),
		slog.String("role", role.String()),
	)
	return nil
}

// Revoke removes target's grant. It returns NotFound when there was none.
func (r *Resolver) Revoke(ctx context.Context, actor, target int64) (domain.Role, error) {
	if target == r.superID {
		return domain.RoleNone, domain.Validation("access.revoke", "the super admin cannot be changed")
	}
	current, err := r.RoleOf(ctx, target)
	if err != nil {
		return domain.RoleNone, err
	}
	if current == domain.RoleNone {
		if err := r.Require(ctx, actor, CapAdmins); err != nil {
			return domain.RoleNone, err
		}
		return domain.RoleNone, domain.NotFound("access.revoke", "admin")
	}
	if err := r.Require(ctx, actor, requiredFor(current)); err != nil {
		return domain.RoleNone, err
	}
	if _, err := r.store.DeleteAdmin(ctx, target); err != nil {
		return domain.RoleNone, domain.Storage("access.revoke", err)
	}
	logger.Info(ctx, "service.access", "admin.revoked",
		slog.String("status", "ok"),
		slog.Int64("target_id", target),
		slog.String("role", current.String()),
	)
	return current, nil
}

// Admins lists stored grants.
func (r *Resolver) Admins(ctx context.Context) ([]domain.AdminGrant, error) {
	list, err := r.store.ListAdmins(ctx)
	if err != nil {
		return nil, domain.Storage("access.admins", err)
	}
	return list, nil
}

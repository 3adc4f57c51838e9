package access_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/cinebot/internal/access"
	"github.com/m3rciful/cinebot/internal/domain"
	"github.com/m3rciful/cinebot/internal/store/storetest"
)

const superID = 42

func newResolver(t *testing.T) *access.Resolver {
	t.Helper()
	return access.NewResolver(storetest.New(t), superID)
}

func TestCapabilitySets(t *testing.T) {
	assert.False(t, access.CapabilitiesOf(domain.RoleNone).Has(access.CapPanel))
	assert.True(t, access.CapabilitiesOf(domain.RoleJunior).Has(access.CapUpload))
	assert.False(t, access.CapabilitiesOf(domain.RoleJunior).Has(access.CapDelete))
	assert.True(t, access.CapabilitiesOf(domain.RoleHead).Has(access.CapBroadcast))
	assert.False(t, access.CapabilitiesOf(domain.RoleHead).Has(access.CapGrantHead))
	assert.True(t, access.CapabilitiesOf(domain.RoleSuper).Has(access.CapGrantHead))
}

func TestRoleOf(t *testing.T) {
	ctx := context.Background()
	r := newResolver(t)

	role, err := r.RoleOf(ctx, superID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSuper, role)

	role, err = r.RoleOf(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleNone, role)

	require.NoError(t, r.Grant(ctx, superID, 1, domain.RoleJunior))
	assert.True(t, r.Can(ctx, 1, access.CapUpload))
	assert.False(t, r.Can(ctx, 1, access.CapBroadcast))

	err = r.Require(ctx, 1, access.CapBroadcast)
	assert.True(t, domain.IsKind(err, domain.KindAuthorization))
}

func TestHeadAdminGrantsJuniorOnly(t *testing.T) {
	ctx := context.Background()
	r := newResolver(t)
	require.NoError(t, r.Grant(ctx, superID, 10, domain.RoleHead))
	require.NoError(t, r.Grant(ctx, superID, 11, domain.RoleHead))

	require.NoError(t, r.Grant(ctx, 10, 20, domain.RoleJunior))

	err := r.Grant(ctx, 10, 21, domain.RoleHead)
	assert.True(t, domain.IsKind(err, domain.KindAuthorization))

	err = r.Grant(ctx, 10, 11, domain.RoleJunior)
	assert.True(t, domain.IsKind(err, domain.KindAuthorization), "head cannot demote a peer")

	_, err = r.Revoke(ctx, 10, 11)
	assert.True(t, domain.IsKind(err, domain.KindAuthorization))

	prev, err := r.Revoke(ctx, 10, 20)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleJunior, prev)

	_, err = r.Revoke(ctx, 10, 20)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestSuperAdminIsImmutable(t *testing.T) {
	ctx := context.Background()
	r := newResolver(t)
	err := r.Grant(ctx, superID, superID, domain.RoleJunior)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	_, err = r.Revoke(ctx, superID, superID)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestJuniorCannotManageAdmins(t *testing.T) {
	ctx := context.Background()
	r := newResolver(t)
	require.NoError(t, r.Grant(ctx, superID, 5, domain.RoleJunior))
	err := r.Grant(ctx, 5, 6, domain.RoleJunior)
	assert.True(t, domain.IsKind(err, domain.KindAuthorization))
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrapSeedsAdminWithFullCatalog(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	boot := NewBootstrapService(env.userRepo, env.roleRepo, env.permRepo, env.rpRepo,
		env.syncService("user.view", "leave.approve"))

	report, err := boot.Run(ctx, "admin", "supersecret1")
	require.NoError(t, err)
	assert.Len(t, report.Inserted, 2)

	admin, err := env.userRepo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	require.NotNil(t, admin.RoleID)

	role, err := env.roleRepo.FindByCode(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, role.IsSystem)
	assert.Equal(t, role.ID, *admin.RoleID)

	for _, key := range []string{"user.view", "leave.approve"} {
		allowed, err := env.access.HasPermission(ctx, admin.ID, key)
		require.NoError(t, err)
		assert.True(t, allowed, key)
	}
}

func TestBootstrapIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	boot := NewBootstrapService(env.userRepo, env.roleRepo, env.permRepo, env.rpRepo,
		env.syncService("user.view", "leave.approve"))

	_, err := boot.Run(ctx, "admin", "supersecret1")
	require.NoError(t, err)

	report, err := boot.Run(ctx, "admin", "supersecret1")
	require.NoError(t, err)
	assert.Zero(t, report.Mutations())

	role, err := env.roleRepo.FindByCode(ctx, "admin")
	require.NoError(t, err)
	rows, err := env.rpRepo.ListForRole(ctx, role.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasPermissionViaRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	role := env.seedRole(t, "hr")
	perm := env.seedPermission(t, "leave.approve", model.PermissionActive)
	env.seedAssignment(t, role.ID, perm.ID)
	member := env.seedUser(t, "alice", &role.ID)
	outsider := env.seedUser(t, "bob", nil)

	allowed, err := env.access.HasPermission(ctx, member.ID, "leave.approve")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = env.access.HasPermission(ctx, outsider.ID, "leave.approve")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestHasPermissionDeniesUnknownKey(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "alice", nil)

	allowed, err := env.access.HasPermission(context.Background(), user.ID, "never.declared")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestHasPermissionDeniesSoftDeletedPermission(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	role := env.seedRole(t, "hr")
	perm := env.seedPermission(t, "leave.approve", model.PermissionDeleted)
	env.seedAssignment(t, role.ID, perm.ID)
	user := env.seedUser(t, "alice", &role.ID)
	// Even a granted override cannot resurrect a soft-deleted permission.
	env.seedOverride(t, user.ID, perm.ID, model.OverrideGranted)

	allowed, err := env.access.HasPermission(ctx, user.ID, "leave.approve")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestHasPermissionDeniesMissingUser(t *testing.T) {
	env := newTestEnv(t)
	env.seedPermission(t, "leave.approve", model.PermissionActive)

	allowed, err := env.access.HasPermission(context.Background(), uuid.New(), "leave.approve")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestOverrideShortCircuitsRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	role := env.seedRole(t, "hr")
	perm := env.seedPermission(t, "leave.approve", model.PermissionActive)
	env.seedAssignment(t, role.ID, perm.ID)

	// Revoked override masks the role grant.
	revokedUser := env.seedUser(t, "alice", &role.ID)
	env.seedOverride(t, revokedUser.ID, perm.ID, model.OverrideRevoked)
	allowed, err := env.access.HasPermission(ctx, revokedUser.ID, "leave.approve")
	require.NoError(t, err)
	assert.False(t, allowed)

	// Granted override allows without any role at all.
	grantedUser := env.seedUser(t, "bob", nil)
	env.seedOverride(t, grantedUser.ID, perm.ID, model.OverrideGranted)
	allowed, err = env.access.HasPermission(ctx, grantedUser.ID, "leave.approve")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestVerify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	role := env.seedRole(t, "hr")
	perm := env.seedPermission(t, "leave.approve", model.PermissionActive)
	env.seedAssignment(t, role.ID, perm.ID)
	user := env.seedUser(t, "alice", &role.ID)

	assert.NoError(t, env.access.Verify(ctx, user.ID, "leave.approve"))

	err := env.access.Verify(ctx, user.ID, "leave.reject")
	require.ErrorIs(t, err, apperror.ErrForbidden)
	assert.Contains(t, err.Error(), "leave.reject")
}

func TestVerifyAny(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	role := env.seedRole(t, "hr")
	perm := env.seedPermission(t, "leave.view.team", model.PermissionActive)
	env.seedAssignment(t, role.ID, perm.ID)
	user := env.seedUser(t, "alice", &role.ID)

	assert.NoError(t, env.access.VerifyAny(ctx, user.ID, []string{"leave.approve", "leave.view.team"}))

	err := env.access.VerifyAny(ctx, user.ID, []string{"leave.approve", "leave.reject"})
	require.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestEffectivePermissionsBreakdown(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	role := env.seedRole(t, "hr")
	view := env.seedPermission(t, "leave.view.team", model.PermissionActive)
	approve := env.seedPermission(t, "leave.approve", model.PermissionActive)
	mark := env.seedPermission(t, "attendance.mark", model.PermissionActive)
	env.seedAssignment(t, role.ID, view.ID)
	env.seedAssignment(t, role.ID, approve.ID)

	user := env.seedUser(t, "alice", &role.ID)
	env.seedOverride(t, user.ID, mark.ID, model.OverrideGranted)
	env.seedOverride(t, user.ID, approve.ID, model.OverrideRevoked)

	eff, err := env.access.EffectivePermissions(ctx, user.ID)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"leave.view.team", "leave.approve"}, eff.RolePermissions)
	assert.Equal(t, []string{"attendance.mark"}, eff.GrantedExtra)
	assert.Equal(t, []string{"leave.approve"}, eff.RevokedFromRole)
	assert.Equal(t, []string{"attendance.mark", "leave.view.team"}, eff.Effective)
	assert.Equal(t, 2, eff.Counts.RolePermissions)
	assert.Equal(t, 2, eff.Counts.Effective)
}

func TestEffectivePermissionsUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.access.EffectivePermissions(context.Background(), uuid.New())
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDecisionCacheInvalidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	role := env.seedRole(t, "hr")
	perm := env.seedPermission(t, "leave.approve", model.PermissionActive)
	env.seedAssignment(t, role.ID, perm.ID)
	user := env.seedUser(t, "alice", &role.ID)

	allowed, err := env.access.HasPermission(ctx, user.ID, "leave.approve")
	require.NoError(t, err)
	require.True(t, allowed)

	// Pull the assignment out from under the cache: the stale decision stays
	// until someone invalidates.
	_, err = env.rpRepo.DeletePair(ctx, role.ID, perm.ID)
	require.NoError(t, err)

	allowed, err = env.access.HasPermission(ctx, user.ID, "leave.approve")
	require.NoError(t, err)
	assert.True(t, allowed)

	env.access.InvalidateUser(user.ID)

	allowed, err = env.access.HasPermission(ctx, user.ID, "leave.approve")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestInvalidateAllClearsEveryUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	role := env.seedRole(t, "hr")
	perm := env.seedPermission(t, "leave.approve", model.PermissionActive)
	env.seedAssignment(t, role.ID, perm.ID)
	alice := env.seedUser(t, "alice", &role.ID)
	bob := env.seedUser(t, "bob", &role.ID)

	for _, id := range []uuid.UUID{alice.ID, bob.ID} {
		allowed, err := env.access.HasPermission(ctx, id, "leave.approve")
		require.NoError(t, err)
		require.True(t, allowed)
	}

	_, err := env.rpRepo.DeletePair(ctx, role.ID, perm.ID)
	require.NoError(t, err)
	env.access.InvalidateAll()

	for _, id := range []uuid.UUID{alice.ID, bob.ID} {
		allowed, err := env.access.HasPermission(ctx, id, "leave.approve")
		require.NoError(t, err)
		assert.False(t, allowed)
	}
}

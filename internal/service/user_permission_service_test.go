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

func TestGrantExtraCreatesOverride(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userPermissionService()
	ctx := context.Background()

	user := env.seedUser(t, "alice", nil)
	perm := env.seedPermission(t, "leave.approve", model.PermissionActive)

	up, err := svc.GrantExtra(ctx, user.ID.String(), perm.ID.String(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, string(model.OverrideGranted), up.Status)
	assert.Equal(t, "leave.approve", up.PermissionKey)
	assert.Equal(t, "alice", up.Username)

	// The override is immediately effective.
	allowed, err := env.access.HasPermission(ctx, user.ID, "leave.approve")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.EqualValues(t, 1, env.auditCount(t, model.ActionGrantUserPermission))
}

func TestGrantExtraTwiceIsConflict(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userPermissionService()
	ctx := context.Background()

	user := env.seedUser(t, "alice", nil)
	perm := env.seedPermission(t, "leave.approve", model.PermissionActive)

	_, err := svc.GrantExtra(ctx, user.ID.String(), perm.ID.String(), uuid.New())
	require.NoError(t, err)

	_, err = svc.GrantExtra(ctx, user.ID.String(), perm.ID.String(), uuid.New())
	require.ErrorIs(t, err, apperror.ErrAlreadyInState)
}

func TestOverrideFlipsInPlace(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userPermissionService()
	ctx := context.Background()

	role := env.seedRole(t, "hr")
	perm := env.seedPermission(t, "leave.approve", model.PermissionActive)
	env.seedAssignment(t, role.ID, perm.ID)
	user := env.seedUser(t, "alice", &role.ID)

	revoked, err := svc.RevokeFromRole(ctx, user.ID.String(), perm.ID.String(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, string(model.OverrideRevoked), revoked.Status)

	allowed, err := env.access.HasPermission(ctx, user.ID, "leave.approve")
	require.NoError(t, err)
	assert.False(t, allowed)

	granted, err := svc.GrantExtra(ctx, user.ID.String(), perm.ID.String(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, string(model.OverrideGranted), granted.Status)
	// Flip, not a second row.
	assert.Equal(t, revoked.ID, granted.ID)

	rows, err := svc.ListForUser(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestRemoveRestoresRoleOutcome(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userPermissionService()
	ctx := context.Background()

	role := env.seedRole(t, "hr")
	perm := env.seedPermission(t, "leave.approve", model.PermissionActive)
	env.seedAssignment(t, role.ID, perm.ID)
	user := env.seedUser(t, "alice", &role.ID)

	_, err := svc.RevokeFromRole(ctx, user.ID.String(), perm.ID.String(), uuid.New())
	require.NoError(t, err)

	removed, err := svc.Remove(ctx, user.ID.String(), perm.ID.String())
	require.NoError(t, err)
	assert.True(t, removed)

	// Back to the pure role-derived answer.
	allowed, err := env.access.HasPermission(ctx, user.ID, "leave.approve")
	require.NoError(t, err)
	assert.True(t, allowed)

	removed, err = svc.Remove(ctx, user.ID.String(), perm.ID.String())
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestGrantRejectsUnknownTargets(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userPermissionService()
	ctx := context.Background()

	user := env.seedUser(t, "alice", nil)
	perm := env.seedPermission(t, "leave.approve", model.PermissionActive)
	deleted := env.seedPermission(t, "leave.reject", model.PermissionDeleted)

	_, err := svc.GrantExtra(ctx, uuid.NewString(), perm.ID.String(), uuid.New())
	require.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.GrantExtra(ctx, user.ID.String(), uuid.NewString(), uuid.New())
	require.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.GrantExtra(ctx, user.ID.String(), deleted.ID.String(), uuid.New())
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestBulkGrant(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userPermissionService()
	ctx := context.Background()

	alice := env.seedUser(t, "alice", nil)
	bob := env.seedUser(t, "bob", nil)
	approve := env.seedPermission(t, "leave.approve", model.PermissionActive)
	reject := env.seedPermission(t, "leave.reject", model.PermissionActive)

	// alice already holds one granted and one revoked override.
	env.seedOverride(t, alice.ID, approve.ID, model.OverrideGranted)
	env.seedOverride(t, alice.ID, reject.ID, model.OverrideRevoked)

	report, err := svc.BulkGrant(ctx,
		[]string{alice.ID.String(), bob.ID.String()},
		[]string{approve.ID.String(), reject.ID.String()},
		uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 4, report.Attempted)
	// alice/approve already granted -> skipped; alice/reject flipped -> succeeded.
	assert.Equal(t, 3, report.Succeeded)
	assert.Equal(t, 1, report.Skipped)

	for _, key := range []string{"leave.approve", "leave.reject"} {
		for _, id := range []uuid.UUID{alice.ID, bob.ID} {
			allowed, err := env.access.HasPermission(ctx, id, key)
			require.NoError(t, err)
			assert.True(t, allowed, "user %s key %s", id, key)
		}
	}
}

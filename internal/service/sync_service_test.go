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

func TestSyncInsertsMissingKeys(t *testing.T) {
	env := newTestEnv(t)
	svc := env.syncService("user.view", "user.create")
	actor := uuid.New()

	report, err := svc.Sync(context.Background(), actor)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"user.view", "user.create"}, report.Inserted)
	assert.Empty(t, report.Reactivated)
	assert.Empty(t, report.SoftDeleted)
	assert.Equal(t, model.PermissionActive, env.permissionStatus(t, "user.view"))
	assert.Equal(t, model.PermissionActive, env.permissionStatus(t, "user.create"))

	perm, err := env.permRepo.GetByKey(context.Background(), "user.view")
	require.NoError(t, err)
	assert.Equal(t, "User permission", perm.Description)
	assert.Equal(t, actor, perm.UpdatedBy)

	assert.EqualValues(t, 1, env.auditCount(t, model.ActionSyncPermissions))
}

func TestSyncIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	svc := env.syncService("user.view", "user.create")

	_, err := svc.Sync(context.Background(), uuid.New())
	require.NoError(t, err)

	report, err := svc.Sync(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Zero(t, report.Mutations())
	assert.ElementsMatch(t, []string{"user.view", "user.create"}, report.Unchanged)
	// No mutations, no audit entry for the second run.
	assert.EqualValues(t, 1, env.auditCount(t, model.ActionSyncPermissions))
}

func TestSyncSoftDeletesRemovedKeys(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.syncService("user.view", "user.create").Sync(ctx, uuid.New())
	require.NoError(t, err)

	// Assignments referencing the vanished key must survive the soft delete.
	role := env.seedRole(t, "hr")
	perm, err := env.permRepo.GetByKey(ctx, "user.create")
	require.NoError(t, err)
	env.seedAssignment(t, role.ID, perm.ID)

	report, err := env.syncService("user.view").Sync(ctx, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, []string{"user.create"}, report.SoftDeleted)
	assert.Equal(t, model.PermissionDeleted, env.permissionStatus(t, "user.create"))

	_, err = env.rpRepo.GetPair(ctx, role.ID, perm.ID)
	assert.NoError(t, err)
	keys, err := env.rpRepo.ActiveKeysForRole(ctx, role.ID)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestSyncReactivatesSoftDeletedKeys(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.syncService("user.view", "user.create").Sync(ctx, uuid.New())
	require.NoError(t, err)
	_, err = env.syncService("user.view").Sync(ctx, uuid.New())
	require.NoError(t, err)

	report, err := env.syncService("user.view", "user.create").Sync(ctx, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, []string{"user.create"}, report.Reactivated)
	assert.Empty(t, report.Inserted)
	assert.Equal(t, model.PermissionActive, env.permissionStatus(t, "user.create"))
}

func TestSyncRejectsMalformedKey(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.syncService("user.view", "NotAKey").Sync(context.Background(), uuid.New())
	require.ErrorIs(t, err, apperror.ErrSyncFailure)

	// Nothing was written, not even the well-formed key.
	var count int64
	require.NoError(t, env.db.Model(&model.Permission{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSyncStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.syncService("user.view", "user.create").Sync(ctx, uuid.New())
	require.NoError(t, err)

	// Catalog moved on: one key dropped, one added, nothing synced yet.
	svc := env.syncService("user.view", "leave.apply")

	status, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, status.CodeTotal)
	assert.Equal(t, 2, status.StoreActive)
	assert.Equal(t, []string{"leave.apply"}, status.MissingInDB)
	assert.Equal(t, []string{"user.create"}, status.ExtraInDB)
	assert.False(t, status.InSync)

	_, err = svc.Sync(ctx, uuid.New())
	require.NoError(t, err)

	status, err = svc.Status(ctx)
	require.NoError(t, err)
	assert.Empty(t, status.MissingInDB)
	assert.Empty(t, status.ExtraInDB)
	assert.Equal(t, 1, status.StoreDeleted)
	assert.True(t, status.InSync)
}

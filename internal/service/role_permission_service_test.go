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

func TestAssignCreatesAssociation(t *testing.T) {
	env := newTestEnv(t)
	svc := env.rolePermissionService()
	ctx := context.Background()

	role := env.seedRole(t, "hr")
	perm := env.seedPermission(t, "leave.approve", model.PermissionActive)
	actor := uuid.New()

	rp, err := svc.Assign(ctx, role.ID.String(), perm.ID.String(), actor)
	require.NoError(t, err)
	assert.Equal(t, role.ID.String(), rp.RoleID)
	assert.Equal(t, "leave.approve", rp.PermissionKey)
	assert.Equal(t, actor.String(), rp.UpdatedBy)

	has, err := env.rpRepo.HasActiveKey(ctx, role.ID, "leave.approve")
	require.NoError(t, err)
	assert.True(t, has)
	assert.EqualValues(t, 1, env.auditCount(t, model.ActionAssignRolePermission))
}

func TestAssignIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	svc := env.rolePermissionService()
	ctx := context.Background()

	role := env.seedRole(t, "hr")
	perm := env.seedPermission(t, "leave.approve", model.PermissionActive)

	first, err := svc.Assign(ctx, role.ID.String(), perm.ID.String(), uuid.New())
	require.NoError(t, err)

	second, err := svc.Assign(ctx, role.ID.String(), perm.ID.String(), uuid.New())
	require.NoError(t, err)

	// Same row, refreshed audit fields, no duplicate.
	assert.Equal(t, first.ID, second.ID)
	rows, err := svc.ListForRole(ctx, role.ID.String())
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestAssignRejectsUnknownRole(t *testing.T) {
	env := newTestEnv(t)
	svc := env.rolePermissionService()

	perm := env.seedPermission(t, "leave.approve", model.PermissionActive)

	_, err := svc.Assign(context.Background(), uuid.NewString(), perm.ID.String(), uuid.New())
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestAssignRejectsSoftDeletedPermission(t *testing.T) {
	env := newTestEnv(t)
	svc := env.rolePermissionService()

	role := env.seedRole(t, "hr")
	perm := env.seedPermission(t, "leave.approve", model.PermissionDeleted)

	_, err := svc.Assign(context.Background(), role.ID.String(), perm.ID.String(), uuid.New())
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestRemoveReportsExistence(t *testing.T) {
	env := newTestEnv(t)
	svc := env.rolePermissionService()
	ctx := context.Background()

	role := env.seedRole(t, "hr")
	perm := env.seedPermission(t, "leave.approve", model.PermissionActive)
	env.seedAssignment(t, role.ID, perm.ID)

	removed, err := svc.Remove(ctx, role.ID.String(), perm.ID.String())
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = svc.Remove(ctx, role.ID.String(), perm.ID.String())
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestBulkAssignSkipsExistingPairs(t *testing.T) {
	env := newTestEnv(t)
	svc := env.rolePermissionService()
	ctx := context.Background()

	hr := env.seedRole(t, "hr")
	lead := env.seedRole(t, "lead")
	approve := env.seedPermission(t, "leave.approve", model.PermissionActive)
	reject := env.seedPermission(t, "leave.reject", model.PermissionActive)
	env.seedAssignment(t, hr.ID, approve.ID)

	report, err := svc.BulkAssign(ctx,
		[]string{hr.ID.String(), lead.ID.String()},
		[]string{approve.ID.String(), reject.ID.String()},
		uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 4, report.Attempted)
	assert.Equal(t, 3, report.Succeeded)
	assert.Equal(t, 1, report.Skipped)
	assert.EqualValues(t, 1, env.auditCount(t, model.ActionBulkAssignPermissions))
}

func TestBulkAssignFailsClosedOnValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := env.rolePermissionService()
	ctx := context.Background()

	hr := env.seedRole(t, "hr")
	approve := env.seedPermission(t, "leave.approve", model.PermissionActive)

	// One bad permission id fails the whole batch before any write.
	_, err := svc.BulkAssign(ctx,
		[]string{hr.ID.String()},
		[]string{approve.ID.String(), uuid.NewString()},
		uuid.New())
	require.ErrorIs(t, err, apperror.ErrNotFound)

	rows, err := env.rpRepo.ListForRole(ctx, hr.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

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

func (e *testEnv) roleService() RoleService {
	return NewRoleService(e.roleRepo, e.rpRepo, e.auditRepo, e.access)
}

func TestCreateRoleDuplicateIsConflict(t *testing.T) {
	env := newTestEnv(t)
	svc := env.roleService()
	ctx := context.Background()

	_, err := svc.CreateRole(ctx, CreateRoleRequest{Code: "hr", Name: "HR"}, uuid.New())
	require.NoError(t, err)

	_, err = svc.CreateRole(ctx, CreateRoleRequest{Code: "hr", Name: "Other"}, uuid.New())
	require.ErrorIs(t, err, apperror.ErrAlreadyInState)
}

func TestDeleteRoleGuards(t *testing.T) {
	env := newTestEnv(t)
	svc := env.roleService()
	ctx := context.Background()

	system := &model.Role{Code: "admin", Name: "Administrator", IsSystem: true, UpdatedBy: uuid.New()}
	require.NoError(t, env.db.Create(system).Error)
	err := svc.DeleteRole(ctx, system.ID.String(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "system role")

	occupied := env.seedRole(t, "hr")
	env.seedUser(t, "alice", &occupied.ID)
	err = svc.DeleteRole(ctx, occupied.ID.String(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "still assigned")

	empty := env.seedRole(t, "tmp")
	require.NoError(t, svc.DeleteRole(ctx, empty.ID.String(), uuid.New()))
	_, err = svc.GetRole(ctx, empty.ID.String())
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetRoleListsActivePermissionKeys(t *testing.T) {
	env := newTestEnv(t)
	svc := env.roleService()
	ctx := context.Background()

	role := env.seedRole(t, "hr")
	active := env.seedPermission(t, "leave.approve", model.PermissionActive)
	deleted := env.seedPermission(t, "leave.reject", model.PermissionDeleted)
	env.seedAssignment(t, role.ID, active.ID)
	env.seedAssignment(t, role.ID, deleted.ID)

	got, err := svc.GetRole(ctx, role.ID.String())
	require.NoError(t, err)
	assert.Equal(t, []string{"leave.approve"}, got.Permissions)
}

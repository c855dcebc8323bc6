package service

import (
	"testing"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testEnv wires real repositories over an in-memory sqlite database so the
// service tests exercise the same SQL paths production runs against postgres.
type testEnv struct {
	db        *gorm.DB
	txManager repository.TransactionManager
	userRepo  repository.UserRepository
	roleRepo  repository.RoleRepository
	permRepo  repository.PermissionRepository
	rpRepo    repository.RolePermissionRepository
	upRepo    repository.UserPermissionRepository
	auditRepo repository.AuditRepository
	access    AccessService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// One connection, or each pooled conn would get its own empty :memory: db.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Role{},
		&model.Permission{},
		&model.RolePermission{},
		&model.UserPermission{},
		&model.AuditLog{},
	))

	env := &testEnv{
		db:        db,
		txManager: repository.NewTransactionManager(db),
		userRepo:  repository.NewUserRepository(db),
		roleRepo:  repository.NewRoleRepository(db),
		permRepo:  repository.NewPermissionRepository(db),
		rpRepo:    repository.NewRolePermissionRepository(db),
		upRepo:    repository.NewUserPermissionRepository(db),
		auditRepo: repository.NewAuditRepository(db),
	}
	env.access = NewAccessService(env.permRepo, env.rpRepo, env.upRepo, env.userRepo)
	return env
}

func (e *testEnv) syncService(keys ...string) SyncService {
	return NewSyncService(keys, e.permRepo, e.auditRepo, e.txManager, nil, e.access)
}

func (e *testEnv) rolePermissionService() RolePermissionService {
	return NewRolePermissionService(e.rpRepo, e.roleRepo, e.permRepo, e.auditRepo, e.txManager, nil, e.access)
}

func (e *testEnv) userPermissionService() UserPermissionService {
	return NewUserPermissionService(e.upRepo, e.userRepo, e.permRepo, e.auditRepo, e.txManager, nil, e.access)
}

// --- fixtures ---

func (e *testEnv) seedRole(t *testing.T, code string) *model.Role {
	t.Helper()
	role := &model.Role{Code: code, Name: code + " role", UpdatedBy: uuid.New()}
	require.NoError(t, e.db.Create(role).Error)
	return role
}

func (e *testEnv) seedUser(t *testing.T, username string, roleID *uuid.UUID) *model.User {
	t.Helper()
	user := &model.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "irrelevant",
		RoleID:   roleID,
		Active:   true,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) seedPermission(t *testing.T, key string, status model.PermissionStatus) *model.Permission {
	t.Helper()
	perm := &model.Permission{Key: key, Description: key, Status: status, UpdatedBy: uuid.New()}
	require.NoError(t, e.db.Create(perm).Error)
	return perm
}

func (e *testEnv) seedAssignment(t *testing.T, roleID, permissionID uuid.UUID) *model.RolePermission {
	t.Helper()
	rp := &model.RolePermission{RoleID: roleID, PermissionID: permissionID, UpdatedBy: uuid.New()}
	require.NoError(t, e.db.Create(rp).Error)
	return rp
}

func (e *testEnv) seedOverride(t *testing.T, userID, permissionID uuid.UUID, status model.OverrideStatus) *model.UserPermission {
	t.Helper()
	up := &model.UserPermission{UserID: userID, PermissionID: permissionID, Status: status, UpdatedBy: uuid.New()}
	require.NoError(t, e.db.Create(up).Error)
	return up
}

func (e *testEnv) permissionStatus(t *testing.T, key string) model.PermissionStatus {
	t.Helper()
	var perm model.Permission
	require.NoError(t, e.db.First(&perm, "key = ?", key).Error)
	return perm.Status
}

func (e *testEnv) auditCount(t *testing.T, action string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&model.AuditLog{}).Where("action = ?", action).Count(&count).Error)
	return count
}

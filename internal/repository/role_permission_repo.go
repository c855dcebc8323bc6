package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RolePermissionRepository owns the role <-> permission associations.
type RolePermissionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.RolePermission, error)
	GetPair(ctx context.Context, roleID, permissionID uuid.UUID) (*model.RolePermission, error)
	ListForRole(ctx context.Context, roleID uuid.UUID) ([]model.RolePermission, error)
	ListForPermission(ctx context.Context, permissionID uuid.UUID) ([]model.RolePermission, error)
	Create(ctx context.Context, rp *model.RolePermission) error
	Save(ctx context.Context, rp *model.RolePermission) error
	DeleteByID(ctx context.Context, id uuid.UUID) (bool, error)
	DeletePair(ctx context.Context, roleID, permissionID uuid.UUID) (bool, error)
	ActiveKeysForRole(ctx context.Context, roleID uuid.UUID) ([]string, error)
	HasActiveKey(ctx context.Context, roleID uuid.UUID, key string) (bool, error)
}

type rolePermissionRepository struct {
	db *gorm.DB
}

func NewRolePermissionRepository(db *gorm.DB) RolePermissionRepository {
	return &rolePermissionRepository{db: db}
}

func (r *rolePermissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.RolePermission, error) {
	var rp model.RolePermission
	err := GetDB(ctx, r.db).Preload("Role").Preload("Permission").
		First(&rp, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &rp, nil
}

func (r *rolePermissionRepository) GetPair(ctx context.Context, roleID, permissionID uuid.UUID) (*model.RolePermission, error) {
	var rp model.RolePermission
	err := GetDB(ctx, r.db).
		Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		First(&rp).Error
	if err != nil {
		return nil, err
	}
	return &rp, nil
}

func (r *rolePermissionRepository) ListForRole(ctx context.Context, roleID uuid.UUID) ([]model.RolePermission, error) {
	var rps []model.RolePermission
	err := GetDB(ctx, r.db).Preload("Permission").
		Where("role_id = ?", roleID).
		Order("updated_at desc").
		Find(&rps).Error
	if err != nil {
		return nil, err
	}
	return rps, nil
}

func (r *rolePermissionRepository) ListForPermission(ctx context.Context, permissionID uuid.UUID) ([]model.RolePermission, error) {
	var rps []model.RolePermission
	err := GetDB(ctx, r.db).Preload("Role").
		Where("permission_id = ?", permissionID).
		Order("updated_at desc").
		Find(&rps).Error
	if err != nil {
		return nil, err
	}
	return rps, nil
}

func (r *rolePermissionRepository) Create(ctx context.Context, rp *model.RolePermission) error {
	return GetDB(ctx, r.db).Create(rp).Error
}

func (r *rolePermissionRepository) Save(ctx context.Context, rp *model.RolePermission) error {
	return GetDB(ctx, r.db).Save(rp).Error
}

func (r *rolePermissionRepository) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.RolePermission{})
	return res.RowsAffected > 0, res.Error
}

func (r *rolePermissionRepository) DeletePair(ctx context.Context, roleID, permissionID uuid.UUID) (bool, error) {
	res := GetDB(ctx, r.db).
		Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		Delete(&model.RolePermission{})
	return res.RowsAffected > 0, res.Error
}

// ActiveKeysForRole returns the keys of every active permission assigned to
// the role. Soft-deleted permissions are filtered out here, not by the caller.
func (r *rolePermissionRepository) ActiveKeysForRole(ctx context.Context, roleID uuid.UUID) ([]string, error) {
	var keys []string
	err := GetDB(ctx, r.db).Model(&model.RolePermission{}).
		Joins("INNER JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("role_permissions.role_id = ? AND permissions.status = ?", roleID, model.PermissionActive).
		Order("permissions.key asc").
		Pluck("permissions.key", &keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *rolePermissionRepository) HasActiveKey(ctx context.Context, roleID uuid.UUID, key string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.RolePermission{}).
		Joins("INNER JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("role_permissions.role_id = ? AND permissions.key = ? AND permissions.status = ?",
			roleID, key, model.PermissionActive).
		Count(&count).Error
	return count > 0, err
}

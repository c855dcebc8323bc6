package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserPermissionRepository owns the per-user override rows.
type UserPermissionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.UserPermission, error)
	GetPair(ctx context.Context, userID, permissionID uuid.UUID) (*model.UserPermission, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]model.UserPermission, error)
	ListForPermission(ctx context.Context, permissionID uuid.UUID) ([]model.UserPermission, error)
	Create(ctx context.Context, up *model.UserPermission) error
	Save(ctx context.Context, up *model.UserPermission) error
	DeleteByID(ctx context.Context, id uuid.UUID) (bool, error)
	DeletePair(ctx context.Context, userID, permissionID uuid.UUID) (bool, error)
	OverrideKeys(ctx context.Context, userID uuid.UUID, status model.OverrideStatus) ([]string, error)
}

type userPermissionRepository struct {
	db *gorm.DB
}

func NewUserPermissionRepository(db *gorm.DB) UserPermissionRepository {
	return &userPermissionRepository{db: db}
}

func (r *userPermissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.UserPermission, error) {
	var up model.UserPermission
	err := GetDB(ctx, r.db).Preload("User").Preload("Permission").
		First(&up, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &up, nil
}

func (r *userPermissionRepository) GetPair(ctx context.Context, userID, permissionID uuid.UUID) (*model.UserPermission, error) {
	var up model.UserPermission
	err := GetDB(ctx, r.db).
		Where("user_id = ? AND permission_id = ?", userID, permissionID).
		First(&up).Error
	if err != nil {
		return nil, err
	}
	return &up, nil
}

func (r *userPermissionRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.UserPermission, error) {
	var ups []model.UserPermission
	err := GetDB(ctx, r.db).Preload("Permission").
		Where("user_id = ?", userID).
		Order("updated_at desc").
		Find(&ups).Error
	if err != nil {
		return nil, err
	}
	return ups, nil
}

func (r *userPermissionRepository) ListForPermission(ctx context.Context, permissionID uuid.UUID) ([]model.UserPermission, error) {
	var ups []model.UserPermission
	err := GetDB(ctx, r.db).Preload("User").
		Where("permission_id = ?", permissionID).
		Order("updated_at desc").
		Find(&ups).Error
	if err != nil {
		return nil, err
	}
	return ups, nil
}

func (r *userPermissionRepository) Create(ctx context.Context, up *model.UserPermission) error {
	return GetDB(ctx, r.db).Create(up).Error
}

func (r *userPermissionRepository) Save(ctx context.Context, up *model.UserPermission) error {
	return GetDB(ctx, r.db).Save(up).Error
}

func (r *userPermissionRepository) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.UserPermission{})
	return res.RowsAffected > 0, res.Error
}

func (r *userPermissionRepository) DeletePair(ctx context.Context, userID, permissionID uuid.UUID) (bool, error) {
	res := GetDB(ctx, r.db).
		Where("user_id = ? AND permission_id = ?", userID, permissionID).
		Delete(&model.UserPermission{})
	return res.RowsAffected > 0, res.Error
}

// OverrideKeys returns the keys of the user's overrides in the given status,
// restricted to active permissions.
func (r *userPermissionRepository) OverrideKeys(ctx context.Context, userID uuid.UUID, status model.OverrideStatus) ([]string, error) {
	var keys []string
	err := GetDB(ctx, r.db).Model(&model.UserPermission{}).
		Joins("INNER JOIN permissions ON permissions.id = user_permissions.permission_id").
		Where("user_permissions.user_id = ? AND user_permissions.status = ? AND permissions.status = ?",
			userID, status, model.PermissionActive).
		Order("permissions.key asc").
		Pluck("permissions.key", &keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}

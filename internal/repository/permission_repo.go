package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PermissionRepository reads the permission mirror. The mutating methods
// (Create, SetStatus) exist for the catalog synchronizer only; no user-facing
// write path may touch this table.
type PermissionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Permission, error)
	GetByKey(ctx context.Context, key string) (*model.Permission, error)
	GetActiveByKey(ctx context.Context, key string) (*model.Permission, error)
	List(ctx context.Context, page, limit int, activeOnly bool) ([]model.Permission, int64, error)
	Search(ctx context.Context, term string, activeOnly bool, page, limit int) ([]model.Permission, int64, error)
	ListAll(ctx context.Context, activeOnly bool) ([]model.Permission, error)
	StatusByKey(ctx context.Context) (map[string]model.PermissionStatus, error)
	RoleCount(ctx context.Context, permissionID uuid.UUID) (int64, error)

	Create(ctx context.Context, perm *model.Permission) error
	SetStatus(ctx context.Context, key string, status model.PermissionStatus, actor uuid.UUID) error
}

type permissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &permissionRepository{db: db}
}

func (r *permissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Permission, error) {
	var perm model.Permission
	if err := GetDB(ctx, r.db).First(&perm, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &perm, nil
}

func (r *permissionRepository) GetByKey(ctx context.Context, key string) (*model.Permission, error) {
	var perm model.Permission
	if err := GetDB(ctx, r.db).First(&perm, "key = ?", key).Error; err != nil {
		return nil, err
	}
	return &perm, nil
}

func (r *permissionRepository) GetActiveByKey(ctx context.Context, key string) (*model.Permission, error) {
	var perm model.Permission
	err := GetDB(ctx, r.db).
		Where("key = ? AND status = ?", key, model.PermissionActive).
		First(&perm).Error
	if err != nil {
		return nil, err
	}
	return &perm, nil
}

func (r *permissionRepository) List(ctx context.Context, page, limit int, activeOnly bool) ([]model.Permission, int64, error) {
	var perms []model.Permission
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Permission{})
	if activeOnly {
		db = db.Where("status = ?", model.PermissionActive)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("key asc").Offset(offset).Limit(limit).Find(&perms).Error; err != nil {
		return nil, 0, err
	}
	return perms, total, nil
}

func (r *permissionRepository) Search(ctx context.Context, term string, activeOnly bool, page, limit int) ([]model.Permission, int64, error) {
	var perms []model.Permission
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Permission{})
	if activeOnly {
		db = db.Where("status = ?", model.PermissionActive)
	}
	if term != "" {
		like := "%" + term + "%"
		db = db.Where("key LIKE ? OR description LIKE ?", like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("key asc").Offset(offset).Limit(limit).Find(&perms).Error; err != nil {
		return nil, 0, err
	}
	return perms, total, nil
}

func (r *permissionRepository) ListAll(ctx context.Context, activeOnly bool) ([]model.Permission, error) {
	var perms []model.Permission
	db := GetDB(ctx, r.db)
	if activeOnly {
		db = db.Where("status = ?", model.PermissionActive)
	}
	if err := db.Order("key asc").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

// StatusByKey returns the full mirror as key -> status, the shape the sync
// diff works on.
func (r *permissionRepository) StatusByKey(ctx context.Context) (map[string]model.PermissionStatus, error) {
	var perms []model.Permission
	if err := GetDB(ctx, r.db).Select("key", "status").Find(&perms).Error; err != nil {
		return nil, err
	}

	statuses := make(map[string]model.PermissionStatus, len(perms))
	for _, p := range perms {
		statuses[p.Key] = p.Status
	}
	return statuses, nil
}

func (r *permissionRepository) RoleCount(ctx context.Context, permissionID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.RolePermission{}).
		Where("permission_id = ?", permissionID).
		Count(&count).Error
	return count, err
}

func (r *permissionRepository) Create(ctx context.Context, perm *model.Permission) error {
	return GetDB(ctx, r.db).Create(perm).Error
}

func (r *permissionRepository) SetStatus(ctx context.Context, key string, status model.PermissionStatus, actor uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.Permission{}).
		Where("key = ?", key).
		Updates(map[string]interface{}{"status": status, "updated_by": actor}).Error
}

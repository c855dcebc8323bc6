package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoleRepository is the role directory consulted before any assignment.
type RoleRepository interface {
	Create(ctx context.Context, role *model.Role) error
	Update(ctx context.Context, role *model.Role) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Role, error)
	FindByCode(ctx context.Context, code string) (*model.Role, error)
	FindByName(ctx context.Context, name string) (*model.Role, error)
	ListAll(ctx context.Context) ([]model.Role, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	UserCount(ctx context.Context, id uuid.UUID) (int64, error)
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Create(ctx context.Context, role *model.Role) error {
	return GetDB(ctx, r.db).Create(role).Error
}

func (r *roleRepository) Update(ctx context.Context, role *model.Role) error {
	return GetDB(ctx, r.db).Save(role).Error
}

func (r *roleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Role{}).Error
}

func (r *roleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Role, error) {
	var role model.Role
	if err := GetDB(ctx, r.db).First(&role, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) FindByCode(ctx context.Context, code string) (*model.Role, error) {
	var role model.Role
	if err := GetDB(ctx, r.db).Where("code = ?", code).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	if err := GetDB(ctx, r.db).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) ListAll(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	if err := GetDB(ctx, r.db).Order("name asc").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *roleRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Role{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *roleRepository) UserCount(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.User{}).Where("role_id = ?", id).Count(&count).Error
	return count, err
}

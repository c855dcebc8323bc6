package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateRoleRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateRoleRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type RoleResponse struct {
	ID          string   `json:"id"`
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	IsSystem    bool     `json:"is_system"`
	Permissions []string `json:"permissions,omitempty"`
	UpdatedAt   string   `json:"updated_at"`
}

// --- Interface ---

// RoleService is the role directory: CRUD plus permission-key listing. The
// actual role -> permission associations are managed by RolePermissionService.
type RoleService interface {
	ListRoles(ctx context.Context) ([]RoleResponse, error)
	GetRole(ctx context.Context, id string) (*RoleResponse, error)
	CreateRole(ctx context.Context, req CreateRoleRequest, actor uuid.UUID) (*RoleResponse, error)
	UpdateRole(ctx context.Context, id string, req UpdateRoleRequest, actor uuid.UUID) (*RoleResponse, error)
	DeleteRole(ctx context.Context, id string, actor uuid.UUID) error
}

type roleService struct {
	roleRepo  repository.RoleRepository
	rpRepo    repository.RolePermissionRepository
	auditRepo repository.AuditRepository
	cache     EffectiveCache
}

func NewRoleService(
	roleRepo repository.RoleRepository,
	rpRepo repository.RolePermissionRepository,
	auditRepo repository.AuditRepository,
	cache EffectiveCache,
) RoleService {
	return &roleService{roleRepo: roleRepo, rpRepo: rpRepo, auditRepo: auditRepo, cache: cache}
}

// --- Implementation ---

func (s *roleService) ListRoles(ctx context.Context) ([]RoleResponse, error) {
	roles, err := s.roleRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roles: %w", err)
	}

	res := make([]RoleResponse, 0, len(roles))
	for i := range roles {
		keys, err := s.rpRepo.ActiveKeysForRole(ctx, roles[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list permissions for role %q: %w", roles[i].Name, err)
		}
		res = append(res, toRoleResponse(&roles[i], keys))
	}
	return res, nil
}

func (s *roleService) GetRole(ctx context.Context, id string) (*RoleResponse, error) {
	roleID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid role id: %w", err)
	}

	role, err := s.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: role %s", apperror.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch role: %w", err)
	}

	keys, err := s.rpRepo.ActiveKeysForRole(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions for role: %w", err)
	}

	resp := toRoleResponse(role, keys)
	return &resp, nil
}

func (s *roleService) CreateRole(ctx context.Context, req CreateRoleRequest, actor uuid.UUID) (*RoleResponse, error) {
	role := &model.Role{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		IsSystem:    false,
		UpdatedBy:   actor,
	}

	if err := s.roleRepo.Create(ctx, role); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: role code or name already taken", apperror.ErrAlreadyInState)
		}
		return nil, fmt.Errorf("failed to create role: %w", err)
	}

	s.logAction(ctx, actor, model.ActionCreateRole, role)

	resp := toRoleResponse(role, nil)
	return &resp, nil
}

func (s *roleService) UpdateRole(ctx context.Context, id string, req UpdateRoleRequest, actor uuid.UUID) (*RoleResponse, error) {
	roleID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid role id: %w", err)
	}

	role, err := s.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: role %s", apperror.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch role: %w", err)
	}

	role.Name = req.Name
	role.Description = req.Description
	role.UpdatedBy = actor

	if err := s.roleRepo.Update(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	s.logAction(ctx, actor, model.ActionUpdateRole, role)
	return s.GetRole(ctx, id)
}

func (s *roleService) DeleteRole(ctx context.Context, id string, actor uuid.UUID) error {
	roleID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid role id: %w", err)
	}

	role, err := s.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: role %s", apperror.ErrNotFound, id)
		}
		return fmt.Errorf("failed to fetch role: %w", err)
	}

	if role.IsSystem {
		return fmt.Errorf("cannot delete system role '%s'", role.Name)
	}

	if count, err := s.roleRepo.UserCount(ctx, roleID); err != nil {
		return fmt.Errorf("failed to count users on role: %w", err)
	} else if count > 0 {
		return fmt.Errorf("cannot delete role '%s': %d user(s) still assigned", role.Name, count)
	}

	if err := s.roleRepo.Delete(ctx, roleID); err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}

	s.cache.InvalidateAll()
	s.logAction(ctx, actor, model.ActionDeleteRole, role)
	return nil
}

// --- Helpers ---

func (s *roleService) logAction(ctx context.Context, actor uuid.UUID, action string, role *model.Role) {
	details, _ := json.Marshal(map[string]interface{}{"code": role.Code, "name": role.Name})
	_ = s.auditRepo.Log(ctx, &model.AuditLog{
		UserID:     &actor,
		Action:     action,
		EntityID:   role.ID.String(),
		EntityName: role.Name,
		Details:    string(details),
	})
}

func toRoleResponse(r *model.Role, permissionKeys []string) RoleResponse {
	return RoleResponse{
		ID:          r.ID.String(),
		Code:        r.Code,
		Name:        r.Name,
		Description: r.Description,
		IsSystem:    r.IsSystem,
		Permissions: permissionKeys,
		UpdatedAt:   r.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

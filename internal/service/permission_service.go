package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"backend/internal/catalog"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type PermissionResponse struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	Description string `json:"description"`
	Status      string `json:"status"`
	RoleCount   int64  `json:"role_count"`
	UpdatedBy   string `json:"updated_by"`
	UpdatedAt   string `json:"updated_at"`
}

type PermissionGroupResponse struct {
	Module      string               `json:"module"`
	Permissions []PermissionResponse `json:"permissions"`
}

// --- Interface ---

// PermissionService is the READ-ONLY view over the permission mirror. All
// writes go through the catalog synchronizer; there is deliberately no
// create/update/delete here.
type PermissionService interface {
	Get(ctx context.Context, id string) (*PermissionResponse, error)
	GetByKey(ctx context.Context, key string) (*PermissionResponse, error)
	List(ctx context.Context, page, limit int, activeOnly bool) ([]PermissionResponse, int64, error)
	Search(ctx context.Context, term string, activeOnly bool, page, limit int) ([]PermissionResponse, int64, error)
	GroupedByModule(ctx context.Context, activeOnly bool) ([]PermissionGroupResponse, error)
}

type permissionService struct {
	permRepo repository.PermissionRepository
}

func NewPermissionService(permRepo repository.PermissionRepository) PermissionService {
	return &permissionService{permRepo: permRepo}
}

// --- Implementation ---

func (s *permissionService) Get(ctx context.Context, id string) (*PermissionResponse, error) {
	permID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid permission id: %w", err)
	}

	perm, err := s.permRepo.GetByID(ctx, permID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: permission %s", apperror.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch permission: %w", err)
	}
	return s.toResponse(ctx, perm)
}

func (s *permissionService) GetByKey(ctx context.Context, key string) (*PermissionResponse, error) {
	perm, err := s.permRepo.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: permission %q", apperror.ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to fetch permission: %w", err)
	}
	return s.toResponse(ctx, perm)
}

func (s *permissionService) List(ctx context.Context, page, limit int, activeOnly bool) ([]PermissionResponse, int64, error) {
	perms, total, err := s.permRepo.List(ctx, page, limit, activeOnly)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch permissions: %w", err)
	}
	res, err := s.toResponses(ctx, perms)
	if err != nil {
		return nil, 0, err
	}
	return res, total, nil
}

func (s *permissionService) Search(ctx context.Context, term string, activeOnly bool, page, limit int) ([]PermissionResponse, int64, error) {
	perms, total, err := s.permRepo.Search(ctx, term, activeOnly, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search permissions: %w", err)
	}
	res, err := s.toResponses(ctx, perms)
	if err != nil {
		return nil, 0, err
	}
	return res, total, nil
}

// GroupedByModule buckets permissions by their key's module prefix, e.g.
// "attendance.mark" lands under "attendance".
func (s *permissionService) GroupedByModule(ctx context.Context, activeOnly bool) ([]PermissionGroupResponse, error) {
	perms, err := s.permRepo.ListAll(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch permissions: %w", err)
	}

	groups := make(map[string][]PermissionResponse)
	for i := range perms {
		resp, err := s.toResponse(ctx, &perms[i])
		if err != nil {
			return nil, err
		}
		module := catalog.Module(perms[i].Key)
		groups[module] = append(groups[module], *resp)
	}

	modules := make([]string, 0, len(groups))
	for module := range groups {
		modules = append(modules, module)
	}
	sort.Strings(modules)

	res := make([]PermissionGroupResponse, 0, len(modules))
	for _, module := range modules {
		res = append(res, PermissionGroupResponse{Module: module, Permissions: groups[module]})
	}
	return res, nil
}

// --- Helpers ---

func (s *permissionService) toResponse(ctx context.Context, perm *model.Permission) (*PermissionResponse, error) {
	count, err := s.permRepo.RoleCount(ctx, perm.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count roles for permission %q: %w", perm.Key, err)
	}
	return &PermissionResponse{
		ID:          perm.ID.String(),
		Key:         perm.Key,
		Description: perm.Description,
		Status:      string(perm.Status),
		RoleCount:   count,
		UpdatedBy:   perm.UpdatedBy.String(),
		UpdatedAt:   perm.UpdatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

func (s *permissionService) toResponses(ctx context.Context, perms []model.Permission) ([]PermissionResponse, error) {
	res := make([]PermissionResponse, 0, len(perms))
	for i := range perms {
		resp, err := s.toResponse(ctx, &perms[i])
		if err != nil {
			return nil, err
		}
		res = append(res, *resp)
	}
	return res, nil
}

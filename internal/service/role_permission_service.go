package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type RolePermissionResponse struct {
	ID            string `json:"id"`
	RoleID        string `json:"role_id"`
	RoleName      string `json:"role_name,omitempty"`
	PermissionID  string `json:"permission_id"`
	PermissionKey string `json:"permission_key,omitempty"`
	UpdatedBy     string `json:"updated_by"`
	UpdatedAt     string `json:"updated_at"`
}

// BulkReport summarizes a bulk cartesian apply. The call only fails when
// upfront existence validation does; per-pair duplicates are skipped and
// counted here.
type BulkReport struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Skipped   int `json:"skipped"`
}

// --- Interface ---

// RolePermissionService manages role -> permission assignments.
type RolePermissionService interface {
	Assign(ctx context.Context, roleID, permissionID string, actor uuid.UUID) (*RolePermissionResponse, error)
	Remove(ctx context.Context, roleID, permissionID string) (bool, error)
	RemoveByID(ctx context.Context, id string) (bool, error)
	BulkAssign(ctx context.Context, roleIDs, permissionIDs []string, actor uuid.UUID) (*BulkReport, error)
	ListForRole(ctx context.Context, roleID string) ([]RolePermissionResponse, error)
	ListRolesForPermission(ctx context.Context, permissionID string) ([]RolePermissionResponse, error)
}

type rolePermissionService struct {
	rpRepo    repository.RolePermissionRepository
	roleRepo  repository.RoleRepository
	permRepo  repository.PermissionRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	hub       *ws.Hub
	cache     EffectiveCache
}

func NewRolePermissionService(
	rpRepo repository.RolePermissionRepository,
	roleRepo repository.RoleRepository,
	permRepo repository.PermissionRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
	cache EffectiveCache,
) RolePermissionService {
	return &rolePermissionService{
		rpRepo:    rpRepo,
		roleRepo:  roleRepo,
		permRepo:  permRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		hub:       hub,
		cache:     cache,
	}
}

// --- Implementation ---

func (s *rolePermissionService) Assign(ctx context.Context, roleID, permissionID string, actor uuid.UUID) (*RolePermissionResponse, error) {
	rID, err := uuid.Parse(roleID)
	if err != nil {
		return nil, fmt.Errorf("invalid role id: %w", err)
	}
	pID, err := uuid.Parse(permissionID)
	if err != nil {
		return nil, fmt.Errorf("invalid permission id: %w", err)
	}

	role, perm, err := s.validatePair(ctx, rID, pID)
	if err != nil {
		return nil, err
	}

	var rp *model.RolePermission
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		rp, err = s.upsert(txCtx, rID, pID, actor)
		if err != nil {
			return err
		}

		details, _ := json.Marshal(map[string]interface{}{
			"role_id":        rID,
			"permission_id":  pID,
			"permission_key": perm.Key,
		})
		audit := &model.AuditLog{
			UserID:     &actor,
			Action:     model.ActionAssignRolePermission,
			EntityID:   rp.ID.String(),
			EntityName: role.Name + " / " + perm.Key,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Role-derived permissions may change for every user on the role.
	s.cache.InvalidateAll()
	s.hub.Notify("role_permission.assigned", map[string]interface{}{
		"role_id":        rID.String(),
		"permission_key": perm.Key,
	})

	return &RolePermissionResponse{
		ID:            rp.ID.String(),
		RoleID:        rID.String(),
		RoleName:      role.Name,
		PermissionID:  pID.String(),
		PermissionKey: perm.Key,
		UpdatedBy:     rp.UpdatedBy.String(),
		UpdatedAt:     rp.UpdatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

// upsert performs the idempotent assign: an existing pair only refreshes its
// audit fields; a new pair inserts. A duplicate-key error from a concurrent
// insert is resolved by re-reading the winner's row.
func (s *rolePermissionService) upsert(ctx context.Context, roleID, permissionID, actor uuid.UUID) (*model.RolePermission, error) {
	existing, err := s.rpRepo.GetPair(ctx, roleID, permissionID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up assignment: %w", err)
	}
	if existing != nil {
		existing.UpdatedBy = actor
		if err := s.rpRepo.Save(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to refresh assignment: %w", err)
		}
		return existing, nil
	}

	rp := &model.RolePermission{RoleID: roleID, PermissionID: permissionID, UpdatedBy: actor}
	if err := s.rpRepo.Create(ctx, rp); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			winner, ferr := s.rpRepo.GetPair(ctx, roleID, permissionID)
			if ferr != nil {
				return nil, fmt.Errorf("failed to resolve concurrent assignment: %w", ferr)
			}
			return winner, nil
		}
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}
	return rp, nil
}

func (s *rolePermissionService) Remove(ctx context.Context, roleID, permissionID string) (bool, error) {
	rID, err := uuid.Parse(roleID)
	if err != nil {
		return false, fmt.Errorf("invalid role id: %w", err)
	}
	pID, err := uuid.Parse(permissionID)
	if err != nil {
		return false, fmt.Errorf("invalid permission id: %w", err)
	}

	existed, err := s.rpRepo.DeletePair(ctx, rID, pID)
	if err != nil {
		return false, fmt.Errorf("failed to remove assignment: %w", err)
	}
	if existed {
		s.cache.InvalidateAll()
		s.hub.Notify("role_permission.removed", map[string]interface{}{
			"role_id":       rID.String(),
			"permission_id": pID.String(),
		})
	}
	return existed, nil
}

func (s *rolePermissionService) RemoveByID(ctx context.Context, id string) (bool, error) {
	rpID, err := uuid.Parse(id)
	if err != nil {
		return false, fmt.Errorf("invalid role permission id: %w", err)
	}

	existed, err := s.rpRepo.DeleteByID(ctx, rpID)
	if err != nil {
		return false, fmt.Errorf("failed to remove assignment: %w", err)
	}
	if existed {
		s.cache.InvalidateAll()
		s.hub.Notify("role_permission.removed", map[string]interface{}{"id": rpID.String()})
	}
	return existed, nil
}

func (s *rolePermissionService) BulkAssign(ctx context.Context, roleIDs, permissionIDs []string, actor uuid.UUID) (*BulkReport, error) {
	rIDs := make([]uuid.UUID, 0, len(roleIDs))
	for _, id := range roleIDs {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid role id '%s': %w", id, err)
		}
		rIDs = append(rIDs, parsed)
	}
	pIDs := make([]uuid.UUID, 0, len(permissionIDs))
	for _, id := range permissionIDs {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid permission id '%s': %w", id, err)
		}
		pIDs = append(pIDs, parsed)
	}

	// Validate everything upfront; one missing role or inactive permission
	// fails the whole call before any row is written.
	for _, rID := range rIDs {
		if _, _, err := s.validateRole(ctx, rID); err != nil {
			return nil, err
		}
	}
	for _, pID := range pIDs {
		if _, err := s.validateActivePermission(ctx, pID); err != nil {
			return nil, err
		}
	}

	report := &BulkReport{Attempted: len(rIDs) * len(pIDs)}
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for _, rID := range rIDs {
			for _, pID := range pIDs {
				_, err := s.rpRepo.GetPair(txCtx, rID, pID)
				switch {
				case err == nil:
					report.Skipped++
					continue
				case !errors.Is(err, gorm.ErrRecordNotFound):
					return fmt.Errorf("failed to look up assignment: %w", err)
				}

				rp := &model.RolePermission{RoleID: rID, PermissionID: pID, UpdatedBy: actor}
				if err := s.rpRepo.Create(txCtx, rp); err != nil {
					if errors.Is(err, gorm.ErrDuplicatedKey) {
						report.Skipped++
						continue
					}
					return fmt.Errorf("failed to create assignment: %w", err)
				}
				report.Succeeded++
			}
		}

		if report.Succeeded > 0 {
			details, _ := json.Marshal(map[string]interface{}{
				"role_ids":       roleIDs,
				"permission_ids": permissionIDs,
				"report":         report,
			})
			audit := &model.AuditLog{
				UserID:  &actor,
				Action:  model.ActionBulkAssignPermissions,
				Details: string(details),
			}
			if err := s.auditRepo.Log(txCtx, audit); err != nil {
				return fmt.Errorf("failed to write audit log: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if report.Succeeded > 0 {
		s.cache.InvalidateAll()
		s.hub.Notify("role_permission.bulk_assigned", map[string]interface{}{
			"succeeded": report.Succeeded,
			"skipped":   report.Skipped,
		})
	}
	return report, nil
}

func (s *rolePermissionService) ListForRole(ctx context.Context, roleID string) ([]RolePermissionResponse, error) {
	rID, err := uuid.Parse(roleID)
	if err != nil {
		return nil, fmt.Errorf("invalid role id: %w", err)
	}
	if _, _, err := s.validateRole(ctx, rID); err != nil {
		return nil, err
	}

	rps, err := s.rpRepo.ListForRole(ctx, rID)
	if err != nil {
		return nil, fmt.Errorf("failed to list role permissions: %w", err)
	}

	res := make([]RolePermissionResponse, 0, len(rps))
	for _, rp := range rps {
		item := RolePermissionResponse{
			ID:           rp.ID.String(),
			RoleID:       rp.RoleID.String(),
			PermissionID: rp.PermissionID.String(),
			UpdatedBy:    rp.UpdatedBy.String(),
			UpdatedAt:    rp.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		if rp.Permission != nil {
			item.PermissionKey = rp.Permission.Key
		}
		res = append(res, item)
	}
	return res, nil
}

func (s *rolePermissionService) ListRolesForPermission(ctx context.Context, permissionID string) ([]RolePermissionResponse, error) {
	pID, err := uuid.Parse(permissionID)
	if err != nil {
		return nil, fmt.Errorf("invalid permission id: %w", err)
	}

	rps, err := s.rpRepo.ListForPermission(ctx, pID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles for permission: %w", err)
	}

	res := make([]RolePermissionResponse, 0, len(rps))
	for _, rp := range rps {
		item := RolePermissionResponse{
			ID:           rp.ID.String(),
			RoleID:       rp.RoleID.String(),
			PermissionID: rp.PermissionID.String(),
			UpdatedBy:    rp.UpdatedBy.String(),
			UpdatedAt:    rp.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		if rp.Role != nil {
			item.RoleName = rp.Role.Name
		}
		res = append(res, item)
	}
	return res, nil
}

// --- Validation helpers ---

func (s *rolePermissionService) validateRole(ctx context.Context, roleID uuid.UUID) (*model.Role, bool, error) {
	role, err := s.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, fmt.Errorf("%w: role %s", apperror.ErrNotFound, roleID)
		}
		return nil, false, fmt.Errorf("failed to look up role: %w", err)
	}
	return role, true, nil
}

func (s *rolePermissionService) validateActivePermission(ctx context.Context, permissionID uuid.UUID) (*model.Permission, error) {
	perm, err := s.permRepo.GetByID(ctx, permissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: permission %s", apperror.ErrNotFound, permissionID)
		}
		return nil, fmt.Errorf("failed to look up permission: %w", err)
	}
	if !perm.IsActive() {
		return nil, fmt.Errorf("%w: permission %s is soft-deleted", apperror.ErrNotFound, perm.Key)
	}
	return perm, nil
}

func (s *rolePermissionService) validatePair(ctx context.Context, roleID, permissionID uuid.UUID) (*model.Role, *model.Permission, error) {
	role, _, err := s.validateRole(ctx, roleID)
	if err != nil {
		return nil, nil, err
	}
	perm, err := s.validateActivePermission(ctx, permissionID)
	if err != nil {
		return nil, nil, err
	}
	return role, perm, nil
}

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

type UserPermissionResponse struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	Username      string `json:"username,omitempty"`
	PermissionID  string `json:"permission_id"`
	PermissionKey string `json:"permission_key,omitempty"`
	Status        string `json:"status"`
	UpdatedBy     string `json:"updated_by"`
	UpdatedAt     string `json:"updated_at"`
}

// --- Interface ---

// UserPermissionService manages per-user overrides layered on top of role
// membership. An override row moves through {absent, granted, revoked}:
// grant and revoke flip an existing row, same-state transitions are rejected,
// and Remove hard-deletes the row so the pure role-derived outcome applies.
type UserPermissionService interface {
	GrantExtra(ctx context.Context, userID, permissionID string, actor uuid.UUID) (*UserPermissionResponse, error)
	RevokeFromRole(ctx context.Context, userID, permissionID string, actor uuid.UUID) (*UserPermissionResponse, error)
	Remove(ctx context.Context, userID, permissionID string) (bool, error)
	BulkGrant(ctx context.Context, userIDs, permissionIDs []string, actor uuid.UUID) (*BulkReport, error)
	ListForUser(ctx context.Context, userID string) ([]UserPermissionResponse, error)
	ListUsersForPermission(ctx context.Context, permissionID string) ([]UserPermissionResponse, error)
}

type userPermissionService struct {
	upRepo    repository.UserPermissionRepository
	userRepo  repository.UserRepository
	permRepo  repository.PermissionRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	hub       *ws.Hub
	cache     EffectiveCache
}

func NewUserPermissionService(
	upRepo repository.UserPermissionRepository,
	userRepo repository.UserRepository,
	permRepo repository.PermissionRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
	cache EffectiveCache,
) UserPermissionService {
	return &userPermissionService{
		upRepo:    upRepo,
		userRepo:  userRepo,
		permRepo:  permRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		hub:       hub,
		cache:     cache,
	}
}

// --- Implementation ---

func (s *userPermissionService) GrantExtra(ctx context.Context, userID, permissionID string, actor uuid.UUID) (*UserPermissionResponse, error) {
	return s.applyOverride(ctx, userID, permissionID, actor, model.OverrideGranted, model.ActionGrantUserPermission)
}

func (s *userPermissionService) RevokeFromRole(ctx context.Context, userID, permissionID string, actor uuid.UUID) (*UserPermissionResponse, error) {
	return s.applyOverride(ctx, userID, permissionID, actor, model.OverrideRevoked, model.ActionRevokeUserPermission)
}

// applyOverride runs the override state machine for one (user, permission)
// pair: absent -> create in target status, opposite status -> flip in place,
// same status -> AlreadyInState.
func (s *userPermissionService) applyOverride(ctx context.Context, userID, permissionID string, actor uuid.UUID, target model.OverrideStatus, action string) (*UserPermissionResponse, error) {
	uID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	pID, err := uuid.Parse(permissionID)
	if err != nil {
		return nil, fmt.Errorf("invalid permission id: %w", err)
	}

	user, err := s.validateUser(ctx, uID)
	if err != nil {
		return nil, err
	}
	perm, err := s.validateActivePermission(ctx, pID)
	if err != nil {
		return nil, err
	}

	var up *model.UserPermission
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		up, err = s.transition(txCtx, uID, pID, actor, target)
		if err != nil {
			return err
		}

		details, _ := json.Marshal(map[string]interface{}{
			"user_id":        uID,
			"permission_id":  pID,
			"permission_key": perm.Key,
			"status":         target,
		})
		audit := &model.AuditLog{
			UserID:     &actor,
			Action:     action,
			EntityID:   up.ID.String(),
			EntityName: user.Username + " / " + perm.Key,
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

	s.cache.InvalidateUser(uID)
	s.hub.Notify("user_permission.changed", map[string]interface{}{
		"user_id":        uID.String(),
		"permission_key": perm.Key,
		"status":         string(target),
	})

	return &UserPermissionResponse{
		ID:            up.ID.String(),
		UserID:        uID.String(),
		Username:      user.Username,
		PermissionID:  pID.String(),
		PermissionKey: perm.Key,
		Status:        string(up.Status),
		UpdatedBy:     up.UpdatedBy.String(),
		UpdatedAt:     up.UpdatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

func (s *userPermissionService) transition(ctx context.Context, userID, permissionID, actor uuid.UUID, target model.OverrideStatus) (*model.UserPermission, error) {
	existing, err := s.upRepo.GetPair(ctx, userID, permissionID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up override: %w", err)
	}

	if existing != nil {
		if existing.Status == target {
			return nil, fmt.Errorf("%w: override is already %s", apperror.ErrAlreadyInState, target)
		}
		existing.Status = target
		existing.UpdatedBy = actor
		if err := s.upRepo.Save(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to flip override: %w", err)
		}
		return existing, nil
	}

	up := &model.UserPermission{
		UserID:       userID,
		PermissionID: permissionID,
		Status:       target,
		UpdatedBy:    actor,
	}
	if err := s.upRepo.Create(ctx, up); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Concurrent create for the same pair: re-read and retry the
			// transition against the winner's row.
			return s.transition(ctx, userID, permissionID, actor, target)
		}
		return nil, fmt.Errorf("failed to create override: %w", err)
	}
	return up, nil
}

func (s *userPermissionService) Remove(ctx context.Context, userID, permissionID string) (bool, error) {
	uID, err := uuid.Parse(userID)
	if err != nil {
		return false, fmt.Errorf("invalid user id: %w", err)
	}
	pID, err := uuid.Parse(permissionID)
	if err != nil {
		return false, fmt.Errorf("invalid permission id: %w", err)
	}

	existed, err := s.upRepo.DeletePair(ctx, uID, pID)
	if err != nil {
		return false, fmt.Errorf("failed to remove override: %w", err)
	}
	if existed {
		s.cache.InvalidateUser(uID)
		s.hub.Notify("user_permission.removed", map[string]interface{}{
			"user_id":       uID.String(),
			"permission_id": pID.String(),
		})
	}
	return existed, nil
}

func (s *userPermissionService) BulkGrant(ctx context.Context, userIDs, permissionIDs []string, actor uuid.UUID) (*BulkReport, error) {
	uIDs := make([]uuid.UUID, 0, len(userIDs))
	for _, id := range userIDs {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid user id '%s': %w", id, err)
		}
		uIDs = append(uIDs, parsed)
	}
	pIDs := make([]uuid.UUID, 0, len(permissionIDs))
	for _, id := range permissionIDs {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid permission id '%s': %w", id, err)
		}
		pIDs = append(pIDs, parsed)
	}

	for _, uID := range uIDs {
		if _, err := s.validateUser(ctx, uID); err != nil {
			return nil, err
		}
	}
	for _, pID := range pIDs {
		if _, err := s.validateActivePermission(ctx, pID); err != nil {
			return nil, err
		}
	}

	report := &BulkReport{Attempted: len(uIDs) * len(pIDs)}
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for _, uID := range uIDs {
			for _, pID := range pIDs {
				existing, err := s.upRepo.GetPair(txCtx, uID, pID)
				if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("failed to look up override: %w", err)
				}

				if existing != nil {
					if existing.IsGranted() {
						report.Skipped++
						continue
					}
					existing.Status = model.OverrideGranted
					existing.UpdatedBy = actor
					if err := s.upRepo.Save(txCtx, existing); err != nil {
						return fmt.Errorf("failed to flip override: %w", err)
					}
					report.Succeeded++
					continue
				}

				up := &model.UserPermission{
					UserID:       uID,
					PermissionID: pID,
					Status:       model.OverrideGranted,
					UpdatedBy:    actor,
				}
				if err := s.upRepo.Create(txCtx, up); err != nil {
					if errors.Is(err, gorm.ErrDuplicatedKey) {
						report.Skipped++
						continue
					}
					return fmt.Errorf("failed to create override: %w", err)
				}
				report.Succeeded++
			}
		}

		if report.Succeeded > 0 {
			details, _ := json.Marshal(map[string]interface{}{
				"user_ids":       userIDs,
				"permission_ids": permissionIDs,
				"report":         report,
			})
			audit := &model.AuditLog{
				UserID:  &actor,
				Action:  model.ActionBulkGrantPermissions,
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
		for _, uID := range uIDs {
			s.cache.InvalidateUser(uID)
		}
		s.hub.Notify("user_permission.bulk_granted", map[string]interface{}{
			"succeeded": report.Succeeded,
			"skipped":   report.Skipped,
		})
	}
	return report, nil
}

func (s *userPermissionService) ListForUser(ctx context.Context, userID string) ([]UserPermissionResponse, error) {
	uID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	if _, err := s.validateUser(ctx, uID); err != nil {
		return nil, err
	}

	ups, err := s.upRepo.ListForUser(ctx, uID)
	if err != nil {
		return nil, fmt.Errorf("failed to list overrides: %w", err)
	}

	res := make([]UserPermissionResponse, 0, len(ups))
	for _, up := range ups {
		item := UserPermissionResponse{
			ID:           up.ID.String(),
			UserID:       up.UserID.String(),
			PermissionID: up.PermissionID.String(),
			Status:       string(up.Status),
			UpdatedBy:    up.UpdatedBy.String(),
			UpdatedAt:    up.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		if up.Permission != nil {
			item.PermissionKey = up.Permission.Key
		}
		res = append(res, item)
	}
	return res, nil
}

func (s *userPermissionService) ListUsersForPermission(ctx context.Context, permissionID string) ([]UserPermissionResponse, error) {
	pID, err := uuid.Parse(permissionID)
	if err != nil {
		return nil, fmt.Errorf("invalid permission id: %w", err)
	}

	ups, err := s.upRepo.ListForPermission(ctx, pID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users for permission: %w", err)
	}

	res := make([]UserPermissionResponse, 0, len(ups))
	for _, up := range ups {
		item := UserPermissionResponse{
			ID:           up.ID.String(),
			UserID:       up.UserID.String(),
			PermissionID: up.PermissionID.String(),
			Status:       string(up.Status),
			UpdatedBy:    up.UpdatedBy.String(),
			UpdatedAt:    up.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		if up.User != nil {
			item.Username = up.User.Username
		}
		res = append(res, item)
	}
	return res, nil
}

// --- Validation helpers ---

func (s *userPermissionService) validateUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", apperror.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}

func (s *userPermissionService) validateActivePermission(ctx context.Context, permissionID uuid.UUID) (*model.Permission, error) {
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

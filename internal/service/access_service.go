package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EffectiveCache invalidates cached authorization decisions. Every service
// that mutates assignments or overrides must call it, because the policy is
// deny-until-confirmed, not eventually-consistent.
type EffectiveCache interface {
	InvalidateUser(userID uuid.UUID)
	InvalidateAll()
}

// EffectivePermissions is the full breakdown for one user:
// effective = (role ∪ granted) − revoked, restricted to active permissions.
type EffectivePermissions struct {
	UserID          uuid.UUID  `json:"user_id"`
	RoleID          *uuid.UUID `json:"role_id"`
	RolePermissions []string   `json:"role_permissions"`
	GrantedExtra    []string   `json:"granted_extra"`
	RevokedFromRole []string   `json:"revoked_from_role"`
	Effective       []string   `json:"effective"`
	Counts          struct {
		RolePermissions int `json:"role_permissions"`
		GrantedExtra    int `json:"granted_extra"`
		RevokedFromRole int `json:"revoked_from_role"`
		Effective       int `json:"effective"`
	} `json:"counts"`
}

// AccessService is the authorization gate: the only surface other subsystems
// depend on. Resolver internals (stores, cache) do not leak through it.
type AccessService interface {
	// HasPermission resolves one check: active permission required,
	// an override short-circuits, otherwise role membership decides.
	// A definitive false is a normal outcome, not an error.
	HasPermission(ctx context.Context, userID uuid.UUID, key string) (bool, error)
	// EffectivePermissions computes the audit/summary breakdown.
	EffectivePermissions(ctx context.Context, userID uuid.UUID) (*EffectivePermissions, error)
	// Verify returns nil when the user holds the permission, ErrForbidden
	// otherwise. No other side effect.
	Verify(ctx context.Context, userID uuid.UUID, key string) error
	// VerifyAny passes when at least one key resolves true.
	VerifyAny(ctx context.Context, userID uuid.UUID, keys []string) error

	EffectiveCache
}

type decisionKey struct {
	userID uuid.UUID
	key    string
}

type decisionEntry struct {
	allowed   bool
	expiresAt time.Time
}

type accessService struct {
	permRepo repository.PermissionRepository
	rpRepo   repository.RolePermissionRepository
	upRepo   repository.UserPermissionRepository
	userRepo repository.UserRepository

	// Short-TTL per-(user, permission) decision cache. Mutating services
	// invalidate through the EffectiveCache interface.
	cache    sync.Map // decisionKey -> decisionEntry
	cacheTTL time.Duration
}

// NewAccessService wires the resolver over the injected stores.
func NewAccessService(
	permRepo repository.PermissionRepository,
	rpRepo repository.RolePermissionRepository,
	upRepo repository.UserPermissionRepository,
	userRepo repository.UserRepository,
) AccessService {
	return &accessService{
		permRepo: permRepo,
		rpRepo:   rpRepo,
		upRepo:   upRepo,
		userRepo: userRepo,
		cacheTTL: 5 * time.Minute,
	}
}

func (s *accessService) HasPermission(ctx context.Context, userID uuid.UUID, key string) (bool, error) {
	ck := decisionKey{userID: userID, key: key}
	if entry, ok := s.cache.Load(ck); ok {
		cached := entry.(decisionEntry)
		if time.Now().Before(cached.expiresAt) {
			return cached.allowed, nil
		}
		s.cache.Delete(ck)
	}

	allowed, err := s.resolve(ctx, userID, key)
	if err != nil {
		return false, err
	}

	s.cache.Store(ck, decisionEntry{allowed: allowed, expiresAt: time.Now().Add(s.cacheTTL)})
	return allowed, nil
}

// resolve is the precedence algorithm. Order matters: deny-by-default for
// unknown or soft-deleted keys, then the override short-circuit, then the
// user's single role.
func (s *accessService) resolve(ctx context.Context, userID uuid.UUID, key string) (bool, error) {
	perm, err := s.permRepo.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up permission %q: %w", key, err)
	}
	if !perm.IsActive() {
		return false, nil
	}

	override, err := s.upRepo.GetPair(ctx, userID, perm.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to look up override: %w", err)
	}
	if override != nil {
		return override.IsGranted(), nil
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up user: %w", err)
	}
	if user.RoleID == nil {
		return false, nil
	}

	_, err = s.rpRepo.GetPair(ctx, *user.RoleID, perm.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up role assignment: %w", err)
	}
	return true, nil
}

func (s *accessService) EffectivePermissions(ctx context.Context, userID uuid.UUID) (*EffectivePermissions, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", apperror.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	result := &EffectivePermissions{
		UserID:          userID,
		RoleID:          user.RoleID,
		RolePermissions: []string{},
		GrantedExtra:    []string{},
		RevokedFromRole: []string{},
		Effective:       []string{},
	}

	if user.RoleID != nil {
		keys, err := s.rpRepo.ActiveKeysForRole(ctx, *user.RoleID)
		if err != nil {
			return nil, fmt.Errorf("failed to list role permissions: %w", err)
		}
		result.RolePermissions = keys
	}

	granted, err := s.upRepo.OverrideKeys(ctx, userID, model.OverrideGranted)
	if err != nil {
		return nil, fmt.Errorf("failed to list granted overrides: %w", err)
	}
	result.GrantedExtra = granted

	revoked, err := s.upRepo.OverrideKeys(ctx, userID, model.OverrideRevoked)
	if err != nil {
		return nil, fmt.Errorf("failed to list revoked overrides: %w", err)
	}
	result.RevokedFromRole = revoked

	revokedSet := make(map[string]bool, len(revoked))
	for _, key := range revoked {
		revokedSet[key] = true
	}
	effective := make(map[string]bool)
	for _, key := range result.RolePermissions {
		if !revokedSet[key] {
			effective[key] = true
		}
	}
	for _, key := range granted {
		if !revokedSet[key] {
			effective[key] = true
		}
	}
	for key := range effective {
		result.Effective = append(result.Effective, key)
	}
	sort.Strings(result.Effective)

	result.Counts.RolePermissions = len(result.RolePermissions)
	result.Counts.GrantedExtra = len(result.GrantedExtra)
	result.Counts.RevokedFromRole = len(result.RevokedFromRole)
	result.Counts.Effective = len(result.Effective)

	return result, nil
}

func (s *accessService) Verify(ctx context.Context, userID uuid.UUID, key string) error {
	allowed, err := s.HasPermission(ctx, userID, key)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("%w: permission required: %s", apperror.ErrForbidden, key)
	}
	return nil
}

func (s *accessService) VerifyAny(ctx context.Context, userID uuid.UUID, keys []string) error {
	for _, key := range keys {
		allowed, err := s.HasPermission(ctx, userID, key)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: requires any of: %s", apperror.ErrForbidden, strings.Join(keys, ", "))
}

func (s *accessService) InvalidateUser(userID uuid.UUID) {
	s.cache.Range(func(k, _ interface{}) bool {
		if k.(decisionKey).userID == userID {
			s.cache.Delete(k)
		}
		return true
	})
}

func (s *accessService) InvalidateAll() {
	s.cache.Range(func(k, _ interface{}) bool {
		s.cache.Delete(k)
		return true
	})
}

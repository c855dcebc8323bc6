package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"backend/internal/model"
	"backend/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const adminRoleCode = "admin"

// BootstrapService seeds the defaults the engine needs to be usable on an
// empty database: the built-in admin role, the initial admin account, a full
// catalog sync, and the admin role's grant over every active permission.
// Every step is an upsert, so repeated startups are harmless.
type BootstrapService interface {
	Run(ctx context.Context, adminUsername, adminPassword string) (*SyncReport, error)
}

type bootstrapService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
	permRepo repository.PermissionRepository
	rpRepo   repository.RolePermissionRepository
	syncSvc  SyncService
}

func NewBootstrapService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	permRepo repository.PermissionRepository,
	rpRepo repository.RolePermissionRepository,
	syncSvc SyncService,
) BootstrapService {
	return &bootstrapService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		permRepo: permRepo,
		rpRepo:   rpRepo,
		syncSvc:  syncSvc,
	}
}

func (s *bootstrapService) Run(ctx context.Context, adminUsername, adminPassword string) (*SyncReport, error) {
	role, err := s.ensureAdminRole(ctx)
	if err != nil {
		return nil, err
	}

	admin, err := s.ensureAdminUser(ctx, role, adminUsername, adminPassword)
	if err != nil {
		return nil, err
	}

	// The admin account is the actor recorded on startup sync mutations.
	report, err := s.syncSvc.Sync(ctx, admin.ID)
	if err != nil {
		return nil, err
	}

	if err := s.grantCatalogToAdmin(ctx, role, admin); err != nil {
		return nil, err
	}

	return report, nil
}

func (s *bootstrapService) ensureAdminRole(ctx context.Context) (*model.Role, error) {
	role, err := s.roleRepo.FindByCode(ctx, adminRoleCode)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up admin role: %w", err)
	}

	role = &model.Role{
		Code:        adminRoleCode,
		Name:        "Administrator",
		Description: "Built-in role holding every catalog permission",
		IsSystem:    true,
	}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.roleRepo.FindByCode(ctx, adminRoleCode)
		}
		return nil, fmt.Errorf("failed to seed admin role: %w", err)
	}

	log.Printf("bootstrap: created admin role %s", role.ID)
	return role, nil
}

func (s *bootstrapService) ensureAdminUser(ctx context.Context, role *model.Role, username, password string) (*model.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up admin user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	user = &model.User{
		Username: username,
		Email:    username + "@localhost",
		FullName: "Administrator",
		Password: string(hashed),
		RoleID:   &role.ID,
		Active:   true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.userRepo.GetByUsername(ctx, username)
		}
		return nil, fmt.Errorf("failed to seed admin user: %w", err)
	}

	log.Printf("bootstrap: created admin user %q", username)
	return user, nil
}

// grantCatalogToAdmin assigns every active permission to the admin role. The
// resolver has no role bypass, so admin power comes from real assignments.
func (s *bootstrapService) grantCatalogToAdmin(ctx context.Context, role *model.Role, admin *model.User) error {
	perms, err := s.permRepo.ListAll(ctx, true)
	if err != nil {
		return fmt.Errorf("failed to load active permissions: %w", err)
	}

	granted := 0
	for i := range perms {
		if _, err := s.rpRepo.GetPair(ctx, role.ID, perms[i].ID); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check admin assignment for %q: %w", perms[i].Key, err)
		}

		rp := &model.RolePermission{
			RoleID:       role.ID,
			PermissionID: perms[i].ID,
			UpdatedBy:    admin.ID,
		}
		if err := s.rpRepo.Create(ctx, rp); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return fmt.Errorf("failed to assign %q to admin role: %w", perms[i].Key, err)
		}
		granted++
	}

	if granted > 0 {
		log.Printf("bootstrap: granted %d permission(s) to admin role", granted)
	}
	return nil
}

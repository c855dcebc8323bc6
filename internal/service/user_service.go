package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name"`
	Password string `json:"password" binding:"required,min=8"`
	RoleID   string `json:"role_id"`
}

type UpdateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name"`
	RoleID   string `json:"role_id"`
	Active   *bool  `json:"active"`
}

type LoginUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	RoleID   string `json:"role_id,omitempty"`
	RoleName string `json:"role_name,omitempty"`
	Active   bool   `json:"active"`
}

// --- Interface ---

// UserService is the user directory plus the authenticator host: it verifies
// stored credentials and issues the bearer token the middleware later checks.
type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest, actor uuid.UUID) (*UserResponse, error)
	Login(ctx context.Context, req LoginUserRequest, secret []byte) (*TokenResponse, error)
	GetUserByID(ctx context.Context, id string) (*UserResponse, error)
	ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error)
	UpdateUser(ctx context.Context, id string, req UpdateUserRequest, actor uuid.UUID) (*UserResponse, error)
	DeleteUser(ctx context.Context, id string) error
}

type userService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
	cache    EffectiveCache
}

func NewUserService(userRepo repository.UserRepository, roleRepo repository.RoleRepository, cache EffectiveCache) UserService {
	return &userService{userRepo: userRepo, roleRepo: roleRepo, cache: cache}
}

// --- Implementation ---

func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest, actor uuid.UUID) (*UserResponse, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: string(hashedPassword),
		Active:   true,
	}

	if req.RoleID != "" {
		roleID, err := uuid.Parse(req.RoleID)
		if err != nil {
			return nil, fmt.Errorf("invalid role id: %w", err)
		}
		if _, err := s.roleRepo.FindByID(ctx, roleID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: role %s", apperror.ErrNotFound, req.RoleID)
			}
			return nil, fmt.Errorf("failed to look up role: %w", err)
		}
		user.RoleID = &roleID
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: username or email already taken", apperror.ErrAlreadyInState)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapToUserResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req LoginUserRequest, secret []byte) (*TokenResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", apperror.ErrUnauthenticated)
	}

	if !user.Active {
		return nil, fmt.Errorf("%w: account deactivated", apperror.ErrUnauthenticated)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", apperror.ErrUnauthenticated)
	}

	expiresIn := int64(24 * 3600)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.ID.String(),
		"exp": time.Now().Add(time.Duration(expiresIn) * time.Second).Unix(),
		"iat": time.Now().Unix(),
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &TokenResponse{AccessToken: signed, TokenType: "Bearer", ExpiresIn: expiresIn}, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*UserResponse, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", apperror.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return mapToUserResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error) {
	users, total, err := s.userRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	res := make([]UserResponse, 0, len(users))
	for i := range users {
		res = append(res, *mapToUserResponse(&users[i]))
	}
	return res, total, nil
}

func (s *userService) UpdateUser(ctx context.Context, id string, req UpdateUserRequest, actor uuid.UUID) (*UserResponse, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", apperror.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	user.Email = req.Email
	user.FullName = req.FullName
	if req.Active != nil {
		user.Active = *req.Active
	}

	roleChanged := false
	if req.RoleID != "" {
		roleID, err := uuid.Parse(req.RoleID)
		if err != nil {
			return nil, fmt.Errorf("invalid role id: %w", err)
		}
		if _, err := s.roleRepo.FindByID(ctx, roleID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: role %s", apperror.ErrNotFound, req.RoleID)
			}
			return nil, fmt.Errorf("failed to look up role: %w", err)
		}
		if user.RoleID == nil || *user.RoleID != roleID {
			user.RoleID = &roleID
			roleChanged = true
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	// A role change redraws the user's role-derived permissions.
	if roleChanged {
		s.cache.InvalidateUser(userID)
	}

	return s.GetUserByID(ctx, id)
}

func (s *userService) DeleteUser(ctx context.Context, id string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.cache.InvalidateUser(userID)
	return nil
}

// --- Helpers ---

func mapToUserResponse(user *model.User) *UserResponse {
	res := &UserResponse{
		ID:       user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		Active:   user.Active,
	}
	if user.RoleID != nil {
		res.RoleID = user.RoleID.String()
	}
	if user.Role != nil {
		res.RoleName = user.Role.Name
	}
	return res
}

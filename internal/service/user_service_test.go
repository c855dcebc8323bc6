package service

import (
	"context"
	"testing"

	"backend/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) userService() UserService {
	return NewUserService(e.userRepo, e.roleRepo, e.access)
}

func TestLoginIssuesToken(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()
	ctx := context.Background()
	secret := []byte("test-secret")

	created, err := svc.CreateUser(ctx, CreateUserRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "supersecret1",
	}, uuid.New())
	require.NoError(t, err)

	res, err := svc.Login(ctx, LoginUserRequest{Username: "alice", Password: "supersecret1"}, secret)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", res.TokenType)

	token, err := jwt.Parse(res.AccessToken, func(t *jwt.Token) (interface{}, error) { return secret, nil })
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, created.ID, claims["sub"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()
	ctx := context.Background()
	secret := []byte("test-secret")

	_, err := svc.CreateUser(ctx, CreateUserRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "supersecret1",
	}, uuid.New())
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginUserRequest{Username: "alice", Password: "wrong"}, secret)
	require.ErrorIs(t, err, apperror.ErrUnauthenticated)

	_, err = svc.Login(ctx, LoginUserRequest{Username: "nobody", Password: "supersecret1"}, secret)
	require.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

func TestLoginRejectsDeactivatedUser(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, CreateUserRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "supersecret1",
	}, uuid.New())
	require.NoError(t, err)

	inactive := false
	_, err = svc.UpdateUser(ctx, created.ID, UpdateUserRequest{
		Email:  "alice@example.com",
		Active: &inactive,
	}, uuid.New())
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginUserRequest{Username: "alice", Password: "supersecret1"}, []byte("test-secret"))
	require.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserRequest{
		Username: "alice", Email: "alice@example.com", Password: "supersecret1",
	}, uuid.New())
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, CreateUserRequest{
		Username: "alice", Email: "other@example.com", Password: "supersecret1",
	}, uuid.New())
	require.ErrorIs(t, err, apperror.ErrAlreadyInState)
}

package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/repository"
	"github.com/packline/jobdesk-api/internal/service"
	"github.com/packline/jobdesk-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type stubIssuer struct{}

func (stubIssuer) Issue(userID int64, role string) (string, error) {
	return fmt.Sprintf("token-%d-%s", userID, role), nil
}

func TestUserService_CreateAndLogin(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := service.NewUserService(repository.NewUserRepository(db), stubIssuer{}, nil, bcrypt.MinCost, zap.NewNop())
	ctx := context.Background()

	user, err := svc.Create(ctx, &domain.UserRequest{
		FirstName: "Ada",
		LastName:  "Admin",
		Email:     " ada@example.com ",
		Password:  "s3cret",
		RoleName:  "Admin",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, domain.RoleAdmin, user.RoleName)
	assert.NotEqual(t, "s3cret", user.Password)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.UserRequest{Email: "ada@example.com", Password: "x"}, nil)
		assert.ErrorIs(t, err, service.ErrUserExists)
	})

	t.Run("password required", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.UserRequest{Email: "bob@example.com"}, nil)
		assert.ErrorIs(t, err, service.ErrPasswordRequired)
	})

	t.Run("default role", func(t *testing.T) {
		u, err := svc.Create(ctx, &domain.UserRequest{Email: "eve@example.com", Password: "x"}, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleEmployee, u.RoleName)
	})

	t.Run("login", func(t *testing.T) {
		res, err := svc.Login(ctx, &domain.LoginRequest{Email: "ada@example.com", Password: "s3cret"})
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("token-%d-admin", user.ID), res.Token)
		assert.Equal(t, domain.RoleAdmin, res.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, &domain.LoginRequest{Email: "ada@example.com", Password: "nope"})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, &domain.LoginRequest{Email: "ghost@example.com", Password: "x"})
		assert.ErrorIs(t, err, service.ErrLoginUnknownUser)
	})

	t.Run("change password", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword(ctx, user.ID, "n3w"))
		_, err := svc.Login(ctx, &domain.LoginRequest{Email: "ada@example.com", Password: "n3w"})
		assert.NoError(t, err)
		assert.ErrorIs(t, svc.ChangePassword(ctx, user.ID, ""), service.ErrNewPasswordRequired)
		assert.ErrorIs(t, svc.ChangePassword(ctx, 9999, "x"), service.ErrUserNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, user.ID))
		assert.ErrorIs(t, svc.Delete(ctx, user.ID), service.ErrUserNotFound)
	})
}

package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/alexmoretti/habitgrid/internal/core/domain"
	"github.com/alexmoretti/habitgrid/internal/core/services"
)

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

		svc := services.NewAuthService(repo)
		user, err := svc.Register(ctx, services.RegisterInput{
			Email:    "person@example.com",
			Password: "correct horse battery",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
		assert.Equal(t, "person@example.com", user.Email)
		assert.NotEqual(t, "correct horse battery", user.PasswordHash)
		repo.AssertExpectations(t)
	})

	t.Run("invalid email never reaches the repo", func(t *testing.T) {
		repo := new(MockUserRepo)
		svc := services.NewAuthService(repo)

		_, err := svc.Register(ctx, services.RegisterInput{Email: "nope", Password: "long enough pw"})

		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("weak password rejected", func(t *testing.T) {
		repo := new(MockUserRepo)
		svc := services.NewAuthService(repo)

		_, err := svc.Register(ctx, services.RegisterInput{Email: "person@example.com", Password: "short"})

		assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
		repo.AssertNotCalled(t, "Create")
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	newStoredUser := func(t *testing.T) *domain.User {
		t.Helper()
		user, err := domain.NewUser("user-1", "person@example.com")
		require.NoError(t, err)
		require.NoError(t, user.SetPassword("correct horse battery"))
		return user
	}

	t.Run("success", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("GetByEmail", ctx, "person@example.com").Return(newStoredUser(t), nil)

		svc := services.NewAuthService(repo)
		user, err := svc.Login(ctx, "person@example.com", "correct horse battery")

		require.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("GetByEmail", ctx, "person@example.com").Return(newStoredUser(t), nil)

		svc := services.NewAuthService(repo)
		_, err := svc.Login(ctx, "person@example.com", "wrong password")

		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("unknown email maps to invalid credentials", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, domain.ErrUserNotFound)

		svc := services.NewAuthService(repo)
		_, err := svc.Login(ctx, "ghost@example.com", "correct horse battery")

		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}

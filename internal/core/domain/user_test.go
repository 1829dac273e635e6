package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexmoretti/habitgrid/internal/core/domain"
)

func TestNewUser(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		user, err := domain.NewUser("id-1", "  Person@Example.COM ")
		require.NoError(t, err)
		assert.Equal(t, "person@example.com", user.Email)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := domain.NewUser("id-1", "not-an-email")
		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
	})
}

func TestUserPassword(t *testing.T) {
	user, err := domain.NewUser("id-1", "person@example.com")
	require.NoError(t, err)

	assert.ErrorIs(t, user.SetPassword("short"), domain.ErrPasswordTooShort)

	require.NoError(t, user.SetPassword("correct horse battery"))
	assert.NoError(t, user.CheckPassword("correct horse battery"))
	assert.Error(t, user.CheckPassword("wrong password"))
}

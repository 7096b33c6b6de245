package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
)

func TestUserPassword(t *testing.T) {
	t.Run("Valid password is hashed and checked", func(t *testing.T) {
		u := &User{ID: "u-1"}

		require.NoError(t, u.SetPassword("secret1"))
		assert.NotEmpty(t, u.PasswordHash)
		assert.NotEqual(t, "secret1", u.PasswordHash)
		assert.True(t, u.CheckPassword("secret1"))
		assert.False(t, u.CheckPassword("secret2"))
	})

	t.Run("Short password is rejected", func(t *testing.T) {
		u := &User{ID: "u-1"}

		err := u.SetPassword("12345")
		require.Error(t, err)
		assert.True(t, errs.IsValidationError(err))
		assert.Equal(t, "password must be at least 6 characters", err.Error())
		assert.Empty(t, u.PasswordHash)
	})

	t.Run("No hash never matches", func(t *testing.T) {
		assert.False(t, (&User{}).CheckPassword(""))
	})
}

package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
	"github.com/amirhossein-jamali/locker-service/internal/domain/usecase/validation"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/idgen"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/memory"
	timeadapter "github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/time"
)

var fixedTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newUseCase(t *testing.T) (*UserUseCase, *memory.Store) {
	t.Helper()
	clock := timeadapter.NewFixedTimeProvider(fixedTime)
	store := memory.NewStore(clock, logger.NewNoopLogger())
	return NewUserUseCase(store.Users(), validation.New(), idgen.NewUUIDGenerator(), clock, logger.NewNoopLogger()), store
}

func validUser() *entity.User {
	return &entity.User{Name: "Sara", Email: "sara@example.com", Phone: "+989121234567"}
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Valid user gets an id, role and hash", func(t *testing.T) {
		uc, _ := newUseCase(t)

		user, err := uc.CreateUser(ctx, validUser(), "secret1")
		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
		assert.Equal(t, entity.RoleUser, user.Role)
		assert.Equal(t, fixedTime, user.CreatedAt)
		assert.True(t, user.CheckPassword("secret1"))

		stored, err := uc.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "sara@example.com", stored.Email)
	})

	tests := []struct {
		name    string
		mutate  func(u *entity.User)
		message string
	}{
		{"Missing name", func(u *entity.User) { u.Name = "" }, "name is required"},
		{"Missing email", func(u *entity.User) { u.Email = "" }, "email is required"},
		{"Bad email", func(u *entity.User) { u.Email = "nope" }, "email must be a valid email address"},
		{"Missing phone", func(u *entity.User) { u.Phone = "" }, "phone is required"},
		{"Unknown role", func(u *entity.User) { u.Role = "root" }, "role must be one of: admin, user"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, store := newUseCase(t)
			u := validUser()
			tt.mutate(u)

			_, err := uc.CreateUser(ctx, u, "secret1")
			require.Error(t, err)
			assert.True(t, errs.IsValidationError(err))
			assert.Equal(t, tt.message, err.Error())

			all, err := store.Users().List(ctx, 0, 0)
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}

	t.Run("Duplicate email", func(t *testing.T) {
		uc, _ := newUseCase(t)
		_, err := uc.CreateUser(ctx, validUser(), "secret1")
		require.NoError(t, err)

		_, err = uc.CreateUser(ctx, validUser(), "secret1")
		assert.ErrorIs(t, err, errs.ErrDuplicate)
	})
}

func TestCreateDefaultAdmin(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCase(t)

	require.NoError(t, uc.CreateDefaultAdmin(ctx, "admin", "admin@example.com", "changeme"))
	require.NoError(t, uc.CreateDefaultAdmin(ctx, "admin", "admin@example.com", "changeme"))

	admin, err := uc.GetUser(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, admin.Role)
}

func TestUpdateAndDeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Update keeps the password", func(t *testing.T) {
		uc, _ := newUseCase(t)
		created, err := uc.CreateUser(ctx, validUser(), "secret1")
		require.NoError(t, err)

		updated, err := uc.UpdateUser(ctx, &entity.User{
			ID:    created.ID,
			Name:  "Sara K",
			Email: "sara.k@example.com",
			Phone: "+989121234567",
		})
		require.NoError(t, err)
		assert.Equal(t, "Sara K", updated.Name)
		assert.Equal(t, entity.RoleUser, updated.Role)
		assert.True(t, updated.CheckPassword("secret1"))
	})

	t.Run("Update without id", func(t *testing.T) {
		uc, _ := newUseCase(t)

		_, err := uc.UpdateUser(ctx, validUser())
		require.Error(t, err)
		assert.Equal(t, "id is required", err.Error())
	})

	t.Run("Delete unknown", func(t *testing.T) {
		uc, _ := newUseCase(t)
		assert.ErrorIs(t, uc.DeleteUser(ctx, "missing"), errs.ErrNotFound)
	})

	t.Run("Delete existing", func(t *testing.T) {
		uc, _ := newUseCase(t)
		created, err := uc.CreateUser(ctx, validUser(), "secret1")
		require.NoError(t, err)

		require.NoError(t, uc.DeleteUser(ctx, created.ID))
		exists, err := uc.UserExists(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

package persistence

import (
	"context"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
)

// UserRepository stores customers and operators
type UserRepository interface {
	// Create creates a new user
	//
	// Possible errors:
	// - ErrDuplicate: If the email is already registered
	// - ErrDatabaseConnection: If the store fails
	Create(ctx context.Context, user *entity.User) error

	// GetByID retrieves a user by ID
	//
	// Possible errors:
	// - ErrUserNotFound: If user with specified ID doesn't exist
	GetByID(ctx context.Context, id string) (*entity.User, error)

	List(ctx context.Context, limit, offset int) ([]*entity.User, error)

	// Update updates user information
	//
	// Possible errors:
	// - ErrUserNotFound: If user doesn't exist
	// - ErrDuplicate: If the new email collides
	Update(ctx context.Context, user *entity.User) error

	Delete(ctx context.Context, id string) error
}

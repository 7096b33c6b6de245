package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
)

// UserRepository stores users in memory
type UserRepository struct {
	store *Store
}

var _ persistence.UserRepository = (*UserRepository)(nil)

// Create saves a user; emails are unique case-insensitively
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, exists := r.store.data.users[user.ID]; exists {
		return fmt.Errorf("%w: user %s", errs.ErrDuplicate, user.ID)
	}
	if r.emailTaken(user.Email, user.ID) {
		return fmt.Errorf("%w: email %s", errs.ErrDuplicate, user.Email)
	}
	r.store.data.users[user.ID] = *user
	return nil
}

func (r *UserRepository) emailTaken(email, exceptID string) bool {
	for _, u := range r.store.data.users {
		if u.ID != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

// GetByID retrieves a user
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	u, ok := r.store.data.users[id]
	if !ok {
		return nil, errs.ErrUserNotFound
	}
	return &u, nil
}

// List returns users ordered by creation time
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	out := make([]*entity.User, 0, len(r.store.data.users))
	for _, u := range r.store.data.users {
		out = append(out, &u)
	}
	slices.SortFunc(out, func(a, b *entity.User) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return page(out, limit, offset), nil
}

// Update replaces a user
func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, ok := r.store.data.users[user.ID]; !ok {
		return errs.ErrUserNotFound
	}
	if r.emailTaken(user.Email, user.ID) {
		return fmt.Errorf("%w: email %s", errs.ErrDuplicate, user.Email)
	}
	r.store.data.users[user.ID] = *user
	return nil
}

// Delete removes a user
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	release, err := r.store.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, ok := r.store.data.users[id]; !ok {
		return errs.ErrUserNotFound
	}
	delete(r.store.data.users, id)
	return nil
}

package user

import (
	"context"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	"github.com/amirhossein-jamali/locker-service/internal/domain/usecase/validation"
)

// UpdateUser replaces the profile fields; the password hash and creation time are kept
func (u *UserUseCase) UpdateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	if err := validation.RequireID("id", user.ID); err != nil {
		return nil, err
	}
	if err := u.validator.Struct(user); err != nil {
		return nil, err
	}

	existing, err := u.userRepo.GetByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	existing.Name = user.Name
	existing.Email = user.Email
	existing.Phone = user.Phone
	if user.Role != "" {
		existing.Role = user.Role
	}
	existing.UpdatedAt = u.timeProvider.Now()

	if err := u.userRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteUser removes a user
func (u *UserUseCase) DeleteUser(ctx context.Context, id string) error {
	if err := validation.RequireID("id", id); err != nil {
		return err
	}
	if err := u.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	u.logger.Info("User deleted", map[string]any{"userId": id})
	return nil
}

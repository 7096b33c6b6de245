package user

import (
	"context"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
)

// CreateUser validates and stores a new user with a hashed password
func (u *UserUseCase) CreateUser(ctx context.Context, user *entity.User, password string) (*entity.User, error) {
	if err := u.validator.Struct(user); err != nil {
		return nil, err
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}

	now := u.timeProvider.Now()
	if user.ID == "" {
		user.ID = u.ids.NewID()
	}
	if user.Role == "" {
		user.Role = entity.RoleUser
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	if err := u.userRepo.Create(ctx, user); err != nil {
		u.logger.Error("Failed to create user", map[string]any{
			"userId": user.ID,
			"error":  err.Error(),
		})
		return nil, err
	}

	u.logger.Info("User created", map[string]any{
		"userId": user.ID,
		"role":   user.Role,
	})

	return user, nil
}

// CreateDefaultAdmin seeds an operator account unless one with the id already exists
func (u *UserUseCase) CreateDefaultAdmin(ctx context.Context, id, email, password string) error {
	exists, err := u.UserExists(ctx, id)
	if err != nil {
		return err
	}
	if exists {
		u.logger.Info("Default admin already exists", map[string]any{
			"userId": id,
		})
		return nil
	}

	_, err = u.CreateUser(ctx, &entity.User{
		ID:    id,
		Name:  "Administrator",
		Email: email,
		Phone: "-",
		Role:  entity.RoleAdmin,
	}, password)
	return err
}

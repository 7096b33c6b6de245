package user

import (
	"context"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/locker-service/internal/domain/usecase/validation"
)

// UserUseCase handles user-related business logic
type UserUseCase struct {
	userRepo     persistence.UserRepository
	validator    *validation.Validator
	ids          coreport.IDGenerator
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

var _ usecase.UserUseCase = (*UserUseCase)(nil)

// NewUserUseCase creates a new UserUseCase
func NewUserUseCase(
	userRepo persistence.UserRepository,
	validator *validation.Validator,
	ids coreport.IDGenerator,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *UserUseCase {
	return &UserUseCase{
		userRepo:     userRepo,
		validator:    validator,
		ids:          ids,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// GetUser returns a user by id
func (u *UserUseCase) GetUser(ctx context.Context, id string) (*entity.User, error) {
	if err := validation.RequireID("id", id); err != nil {
		return nil, err
	}
	return u.userRepo.GetByID(ctx, id)
}

// ListUsers returns a page of users
func (u *UserUseCase) ListUsers(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	return u.userRepo.List(ctx, limit, offset)
}

// UserExists checks if a user with the given ID exists
func (u *UserUseCase) UserExists(ctx context.Context, id string) (bool, error) {
	_, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		if errs.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

package migration

import (
	"context"
	"errors"

	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
)

// DefaultAdminID is used when no admin id is configured
const DefaultAdminID = "admin"

// AdminCreator is the part of the user use case the seed needs
type AdminCreator interface {
	CreateDefaultAdmin(ctx context.Context, id, email, password string) error
}

// SeedDefaultAdmin creates the operator account when credentials are configured.
// An existing account is left alone.
func SeedDefaultAdmin(ctx context.Context, users AdminCreator, logger coreport.Logger, id, email, password string) error {
	if email == "" || password == "" {
		logger.Info("No default admin configured, skipping seed", nil)
		return nil
	}
	if id == "" {
		id = DefaultAdminID
	}

	err := users.CreateDefaultAdmin(ctx, id, email, password)
	switch {
	case err == nil:
		logger.Info("Default admin created", map[string]any{"email": email})
		return nil
	case errors.Is(err, errs.ErrDuplicate):
		logger.Debug("Default admin already exists", map[string]any{"email": email})
		return nil
	default:
		return err
	}
}

package entity

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	errs "github.com/amirhossein-jamali/locker-service/internal/domain/error"
)

// UserRole defines access roles
type UserRole string

// UserRole constants
const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// User is a customer or operator of the locker system
type User struct {
	ID           string
	Name         string   `validate:"required" label:"name"`
	Email        string   `validate:"required,email" label:"email"`
	Phone        string   `validate:"required" label:"phone"`
	Role         UserRole `validate:"omitempty,oneof=admin user" label:"role"`
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SetPassword stores a bcrypt hash of the given password
func (u *User) SetPassword(password string) error {
	if len(password) < 6 {
		return errs.NewValidationError("password", "password must be at least 6 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether the password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

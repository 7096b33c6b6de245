package dto

import (
	"time"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
)

// CreateUserRequest represents the API request for registering a user
type CreateUserRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// UpdateUserRequest represents the API request for changing a profile
type UpdateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

// UserResponse is the public view of a user; the password hash never leaves the service
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToEntity maps the request to a domain user
func (r CreateUserRequest) ToEntity() *entity.User {
	return &entity.User{
		ID:    r.ID,
		Name:  r.Name,
		Email: r.Email,
		Phone: r.Phone,
		Role:  entity.UserRole(r.Role),
	}
}

// ToEntity maps the request to a domain user with the given id
func (r UpdateUserRequest) ToEntity(id string) *entity.User {
	return &entity.User{
		ID:    id,
		Name:  r.Name,
		Email: r.Email,
		Phone: r.Phone,
		Role:  entity.UserRole(r.Role),
	}
}

// NewUserResponse maps a domain user
func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

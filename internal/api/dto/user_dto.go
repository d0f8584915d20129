package dto

import "time"

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// AuthResponse returns issued token details.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

type CreateUserRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
}

type UpdateUserRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	IsActive  *bool  `json:"is_active"`
}

// RoleRequest grants a role, optionally scoped.
type RoleRequest struct {
	Role         string `json:"role" validate:"required"`
	DepartmentID *int64 `json:"department_id" validate:"omitempty,gt=0"`
	TeamID       *int64 `json:"team_id" validate:"omitempty,gt=0"`
}

type UserRoleResponse struct {
	Role         string `json:"role"`
	DepartmentID *int64 `json:"department_id,omitempty"`
	TeamID       *int64 `json:"team_id,omitempty"`
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID        int64              `json:"id"`
	Email     string             `json:"email"`
	FirstName string             `json:"first_name"`
	LastName  string             `json:"last_name"`
	FullName  string             `json:"full_name"`
	IsActive  bool               `json:"is_active"`
	Roles     []UserRoleResponse `json:"roles"`
	CreatedAt time.Time          `json:"created_at"`
	LastLogin *time.Time         `json:"last_login"`
}

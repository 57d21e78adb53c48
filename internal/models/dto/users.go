package dto

import "github.com/mateusbrg/user-registry/internal/models"

// CreateUserRequest carries the registration payload. Pointer fields
// distinguish an absent field from a zero value so required-field checks can
// report every missing field at once.
type CreateUserRequest struct {
	Name        *string  `json:"name"`
	Email       *string  `json:"email"`
	Password    *string  `json:"password"`
	Permissions []string `json:"permissions"`
	Active      *bool    `json:"active"`
}

// UpdateUserRequest is a partial update; nil fields are left untouched.
type UpdateUserRequest struct {
	Name        *string  `json:"name"`
	Email       *string  `json:"email"`
	Password    *string  `json:"password"`
	Permissions []string `json:"permissions"`
	Active      *bool    `json:"active"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

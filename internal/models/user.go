package models

import "time"

// User is the single entity managed by the registry. PasswordHash is excluded
// from JSON so no API response ever carries it; only the storage layer
// serializes the hash.
type User struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Permissions  []Permission `json:"permissions"`
	Active       bool         `json:"active"`
	CreatedAt    time.Time    `json:"created_at"`
	LastLoginAt  *time.Time   `json:"last_login_at"`
}

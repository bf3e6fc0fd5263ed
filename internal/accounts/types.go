// Package accounts provides admin account and credential management.
package accounts

import (
	"errors"
	"time"
)

// Account is the public shape of an admin account; credentials never
// leave the package.
type Account struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"is_active"`
	LastLoginAt time.Time `json:"last_login_at,omitzero"`
	CreatedAt   time.Time `json:"created_at"`
}

// Roles assignable to accounts.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// Record is the repository-level row: an account plus its password hash.
type Record struct {
	Account
	PasswordHash string
}

// Errors returned by account operations.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("account is inactive")
	ErrAccountNotFound    = errors.New("account not found")
	ErrUsernameTaken      = errors.New("username already in use")
)

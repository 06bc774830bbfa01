package models

import "time"

// Valid account roles.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// User is an account that can sign in to the admin dashboard.
// Accounts are created by the startup bootstrap; the only mutation after
// that is a password change.
type User struct {
	ID           string
	Email        string // stored lower-cased, unique
	PasswordHash string
	Name         string
	Role         string // "admin", "editor", "viewer"
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

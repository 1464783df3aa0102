package auth

import "time"

// User represents an account that can sign in to the dashboard. Whether the
// account is an admin is decided elsewhere, by its role assignments.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

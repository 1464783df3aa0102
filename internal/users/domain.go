package users

import "time"

// User is an application account as seen by the admin screens.
type User struct {
	ID        int64
	Email     string
	Name      string
	IsActive  bool
	CreatedAt time.Time
}

// Admin is a user together with the role granting dashboard access.
type Admin struct {
	User
	RoleID   int64
	RoleName string
}

package rbac

import "time"

// Role represents a named bundle of permissions.
type Role struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Permission represents an atomic capability checked by guards and handlers.
type Permission struct {
	ID          int64
	Name        string
	Description string
}

// RolePermission ties a permission to a role.
type RolePermission struct {
	RoleID       int64
	PermissionID int64
}

// RoleAssignment links a user to a role. Holding at least one assignment is
// the definition of "is an admin" for this system.
type RoleAssignment struct {
	UserID    int64
	RoleID    int64
	CreatedAt time.Time
}

// RoleWithPermissions bundles a role with its attached permissions for the
// administration screens.
type RoleWithPermissions struct {
	Role
	Permissions []Permission
}

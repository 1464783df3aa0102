package rbac

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Satu-Teladan-App/admin-dashboard/internal/shared"
)

// Service orchestrates permission resolution and role administration.
//
// Resolution reads fail closed: a store error yields an empty permission set
// and a denial, never a grant. The underlying error is still logged so a
// silent authorization layer does not mean a silent observability layer.
type Service struct {
	store  Store
	audit  *shared.AuditLogger
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(store Store, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, audit: audit, logger: logger}
}

// RolesFor returns the roles assigned to a user.
func (s *Service) RolesFor(ctx context.Context, userID int64) ([]Role, error) {
	return s.store.RolesForUser(ctx, userID)
}

// PermissionsFor computes the effective permission set for a user: the union
// of permission names across every assigned role, duplicates removed. A store
// read failure yields an empty set.
func (s *Service) PermissionsFor(ctx context.Context, userID int64) map[string]struct{} {
	names, err := s.store.EffectivePermissionNames(ctx, userID)
	if err != nil {
		s.logger.Error("rbac: resolve permissions", slog.Int64("user_id", userID), slog.Any("error", err))
		return map[string]struct{}{}
	}
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// HasPermission reports whether the user holds the named permission. Names
// match exactly and case-sensitively; there is no wildcard or hierarchy.
func (s *Service) HasPermission(ctx context.Context, userID int64, name string) bool {
	_, ok := s.PermissionsFor(ctx, userID)[name]
	return ok
}

// IsAdmin reports whether the user holds at least one role assignment, which
// is the definition of "is an admin" for the dashboard.
func (s *Service) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	assignments, err := s.store.AssignmentsForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return len(assignments) > 0, nil
}

// ListRoles returns all roles.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.store.ListRoles(ctx)
}

// ListRolesWithPermissions returns every role together with its permission
// set, for the role administration screen.
func (s *Service) ListRolesWithPermissions(ctx context.Context) ([]RoleWithPermissions, error) {
	roles, err := s.store.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RoleWithPermissions, 0, len(roles))
	for _, role := range roles {
		perms, err := s.store.RolePermissions(ctx, role.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, RoleWithPermissions{Role: role, Permissions: perms})
	}
	return out, nil
}

// GetRole fetches a role with its permissions.
func (s *Service) GetRole(ctx context.Context, id int64) (RoleWithPermissions, error) {
	role, err := s.store.GetRole(ctx, id)
	if err != nil {
		return RoleWithPermissions{}, err
	}
	perms, err := s.store.RolePermissions(ctx, id)
	if err != nil {
		return RoleWithPermissions{}, err
	}
	return RoleWithPermissions{Role: role, Permissions: perms}, nil
}

// ListPermissions returns all permissions.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.store.ListPermissions(ctx)
}

// CreateRole creates a role and attaches the supplied permissions. An empty
// permission list is valid.
func (s *Service) CreateRole(ctx context.Context, actorID int64, name, description string, permissionIDs []int64) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, fmt.Errorf("%w: nama role wajib diisi", shared.ErrValidation)
	}
	role, err := s.store.CreateRole(ctx, name, strings.TrimSpace(description), permissionIDs)
	if err != nil {
		return Role{}, err
	}
	s.recordAudit(ctx, actorID, "role.create", "role", role.ID)
	return role, nil
}

// UpdateRole updates the role and replaces its entire permission set with the
// supplied list (full replace, not an incremental diff).
func (s *Service) UpdateRole(ctx context.Context, actorID, id int64, name, description string, permissionIDs []int64) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, fmt.Errorf("%w: nama role wajib diisi", shared.ErrValidation)
	}
	role, err := s.store.UpdateRole(ctx, id, name, strings.TrimSpace(description), permissionIDs)
	if err != nil {
		return Role{}, err
	}
	s.recordAudit(ctx, actorID, "role.update", "role", role.ID)
	return role, nil
}

// DeleteRole removes a role. It refuses while any user still holds the role.
func (s *Service) DeleteRole(ctx context.Context, actorID, id int64) error {
	inUse, err := s.store.RoleInUse(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return fmt.Errorf("%w: role masih digunakan", shared.ErrConflict)
	}
	if err := s.store.DeleteRole(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "role.delete", "role", id)
	return nil
}

// CreatePermission creates a new named capability.
func (s *Service) CreatePermission(ctx context.Context, actorID int64, name, description string) (Permission, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Permission{}, fmt.Errorf("%w: nama permission wajib diisi", shared.ErrValidation)
	}
	perm, err := s.store.CreatePermission(ctx, name, strings.TrimSpace(description))
	if err != nil {
		return Permission{}, err
	}
	s.recordAudit(ctx, actorID, "permission.create", "permission", perm.ID)
	return perm, nil
}

// DeletePermission removes a permission. Deletion is refused, not cascaded,
// while any role still references it.
func (s *Service) DeletePermission(ctx context.Context, actorID, id int64) error {
	inUse, err := s.store.PermissionInUse(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return fmt.Errorf("%w: permission masih digunakan", shared.ErrConflict)
	}
	if err := s.store.DeletePermission(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "permission.delete", "permission", id)
	return nil
}

// AddAdmin assigns a role to a user. The product convention is one role per
// admin, enforced here at the call site rather than in the schema.
func (s *Service) AddAdmin(ctx context.Context, actorID, userID, roleID int64) error {
	existing, err := s.store.AssignmentsForUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return fmt.Errorf("%w: pengguna sudah menjadi admin", shared.ErrConflict)
	}
	if err := s.store.AddAssignment(ctx, userID, roleID); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "admin.add", "user", userID)
	return nil
}

// RemoveAdmin revokes every role held by the user at once.
func (s *Service) RemoveAdmin(ctx context.Context, actorID, userID int64) error {
	if err := s.store.RemoveAssignments(ctx, userID); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "admin.remove", "user", userID)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action, entity string, entityID int64) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		EntityID: strconv.FormatInt(entityID, 10),
	})
	if err != nil {
		s.logger.Warn("rbac: record audit", slog.String("action", action), slog.Any("error", err))
	}
}

package rbac

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Satu-Teladan-App/admin-dashboard/internal/shared"
)

type memStore struct {
	roles        map[int64]Role
	permissions  map[int64]Permission
	rolePerms    map[int64][]int64
	assignments  map[int64][]int64
	nextRoleID   int64
	nextPermID   int64
	resolveErr   error
	rolesErr     error
	assignCalled int
}

func newMemStore() *memStore {
	return &memStore{
		roles:       map[int64]Role{},
		permissions: map[int64]Permission{},
		rolePerms:   map[int64][]int64{},
		assignments: map[int64][]int64{},
		nextRoleID:  1,
		nextPermID:  1,
	}
}

func (s *memStore) addRole(name string, permNames ...string) Role {
	role := Role{ID: s.nextRoleID, Name: name}
	s.nextRoleID++
	s.roles[role.ID] = role
	for _, pn := range permNames {
		var permID int64
		for id, p := range s.permissions {
			if p.Name == pn {
				permID = id
				break
			}
		}
		if permID == 0 {
			perm := Permission{ID: s.nextPermID, Name: pn}
			s.nextPermID++
			s.permissions[perm.ID] = perm
			permID = perm.ID
		}
		s.rolePerms[role.ID] = append(s.rolePerms[role.ID], permID)
	}
	return role
}

func (s *memStore) assign(userID, roleID int64) {
	s.assignments[userID] = append(s.assignments[userID], roleID)
}

func (s *memStore) ListRoles(ctx context.Context) ([]Role, error) {
	out := make([]Role, 0, len(s.roles))
	for _, r := range s.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) GetRole(ctx context.Context, id int64) (Role, error) {
	role, ok := s.roles[id]
	if !ok {
		return Role{}, shared.ErrNotFound
	}
	return role, nil
}

func (s *memStore) RolePermissions(ctx context.Context, roleID int64) ([]Permission, error) {
	var out []Permission
	for _, pid := range s.rolePerms[roleID] {
		out = append(out, s.permissions[pid])
	}
	return out, nil
}

func (s *memStore) ListPermissions(ctx context.Context) ([]Permission, error) {
	out := make([]Permission, 0, len(s.permissions))
	for _, p := range s.permissions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) RolesForUser(ctx context.Context, userID int64) ([]Role, error) {
	if s.rolesErr != nil {
		return nil, s.rolesErr
	}
	var out []Role
	for _, rid := range s.assignments[userID] {
		out = append(out, s.roles[rid])
	}
	return out, nil
}

func (s *memStore) EffectivePermissionNames(ctx context.Context, userID int64) ([]string, error) {
	if s.resolveErr != nil {
		return nil, s.resolveErr
	}
	var names []string
	for _, rid := range s.assignments[userID] {
		for _, pid := range s.rolePerms[rid] {
			names = append(names, s.permissions[pid].Name)
		}
	}
	return names, nil
}

func (s *memStore) RoleInUse(ctx context.Context, roleID int64) (bool, error) {
	for _, rids := range s.assignments {
		for _, rid := range rids {
			if rid == roleID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *memStore) PermissionInUse(ctx context.Context, permissionID int64) (bool, error) {
	for _, pids := range s.rolePerms {
		for _, pid := range pids {
			if pid == permissionID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *memStore) AssignmentsForUser(ctx context.Context, userID int64) ([]RoleAssignment, error) {
	var out []RoleAssignment
	for _, rid := range s.assignments[userID] {
		out = append(out, RoleAssignment{UserID: userID, RoleID: rid})
	}
	return out, nil
}

func (s *memStore) CreateRole(ctx context.Context, name, description string, permissionIDs []int64) (Role, error) {
	for _, r := range s.roles {
		if r.Name == name {
			return Role{}, shared.ErrConflict
		}
	}
	role := Role{ID: s.nextRoleID, Name: name, Description: description}
	s.nextRoleID++
	s.roles[role.ID] = role
	s.rolePerms[role.ID] = append([]int64(nil), permissionIDs...)
	return role, nil
}

func (s *memStore) UpdateRole(ctx context.Context, id int64, name, description string, permissionIDs []int64) (Role, error) {
	role, ok := s.roles[id]
	if !ok {
		return Role{}, shared.ErrNotFound
	}
	role.Name = name
	role.Description = description
	s.roles[id] = role
	s.rolePerms[id] = append([]int64(nil), permissionIDs...)
	return role, nil
}

func (s *memStore) DeleteRole(ctx context.Context, id int64) error {
	if _, ok := s.roles[id]; !ok {
		return shared.ErrNotFound
	}
	delete(s.roles, id)
	delete(s.rolePerms, id)
	return nil
}

func (s *memStore) CreatePermission(ctx context.Context, name, description string) (Permission, error) {
	for _, p := range s.permissions {
		if p.Name == name {
			return Permission{}, shared.ErrConflict
		}
	}
	perm := Permission{ID: s.nextPermID, Name: name, Description: description}
	s.nextPermID++
	s.permissions[perm.ID] = perm
	return perm, nil
}

func (s *memStore) DeletePermission(ctx context.Context, id int64) error {
	if _, ok := s.permissions[id]; !ok {
		return shared.ErrNotFound
	}
	delete(s.permissions, id)
	return nil
}

func (s *memStore) AddAssignment(ctx context.Context, userID, roleID int64) error {
	s.assignCalled++
	s.assignments[userID] = append(s.assignments[userID], roleID)
	return nil
}

func (s *memStore) RemoveAssignments(ctx context.Context, userID int64) error {
	delete(s.assignments, userID)
	return nil
}

var _ Store = (*memStore)(nil)

func TestPermissionsForUnionsAcrossRoles(t *testing.T) {
	store := newMemStore()
	editor := store.addRole("Editor Berita", shared.PermManageBerita, shared.PermManagePesan)
	verifier := store.addRole("Verifikator", shared.PermManageAlumni, shared.PermManagePesan)
	store.assign(7, editor.ID)
	store.assign(7, verifier.ID)

	service := NewService(store, nil, nil)
	got := service.PermissionsFor(context.Background(), 7)

	assert.Len(t, got, 3)
	assert.Contains(t, got, shared.PermManageBerita)
	assert.Contains(t, got, shared.PermManageAlumni)
	assert.Contains(t, got, shared.PermManagePesan)
}

func TestPermissionsForZeroRolesIsEmpty(t *testing.T) {
	store := newMemStore()
	service := NewService(store, nil, nil)

	got := service.PermissionsFor(context.Background(), 42)

	assert.Empty(t, got)
	assert.False(t, service.HasPermission(context.Background(), 42, shared.PermManageBerita))
}

func TestPermissionsForFailsClosedOnStoreError(t *testing.T) {
	store := newMemStore()
	role := store.addRole("Editor", shared.PermManageBerita)
	store.assign(7, role.ID)
	store.resolveErr = errors.New("connection refused")

	service := NewService(store, nil, nil)
	got := service.PermissionsFor(context.Background(), 7)

	assert.Empty(t, got)
}

func TestHasPermissionExactMatch(t *testing.T) {
	store := newMemStore()
	role := store.addRole("Editor", shared.PermManageBerita)
	store.assign(7, role.ID)

	service := NewService(store, nil, nil)

	assert.True(t, service.HasPermission(context.Background(), 7, shared.PermManageBerita))
	assert.False(t, service.HasPermission(context.Background(), 7, "MANAGE_BERITA"))
	assert.False(t, service.HasPermission(context.Background(), 7, shared.PermManageDonasi))
}

func TestCreateRoleRequiresName(t *testing.T) {
	store := newMemStore()
	service := NewService(store, nil, nil)

	_, err := service.CreateRole(context.Background(), 1, "   ", "", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateRoleAttachesPermissions(t *testing.T) {
	store := newMemStore()
	perm, err := store.CreatePermission(context.Background(), shared.PermManageKegiatan, "")
	require.NoError(t, err)

	service := NewService(store, nil, nil)
	role, err := service.CreateRole(context.Background(), 1, "Panitia", "Panitia kegiatan", []int64{perm.ID})
	require.NoError(t, err)

	got, err := service.GetRole(context.Background(), role.ID)
	require.NoError(t, err)
	require.Len(t, got.Permissions, 1)
	assert.Equal(t, shared.PermManageKegiatan, got.Permissions[0].Name)
}

func TestUpdateRoleReplacesPermissionSet(t *testing.T) {
	store := newMemStore()
	role := store.addRole("Editor", shared.PermManageBerita, shared.PermManagePesan)
	keep, err := store.CreatePermission(context.Background(), shared.PermManageKomunitas, "")
	require.NoError(t, err)

	service := NewService(store, nil, nil)
	_, err = service.UpdateRole(context.Background(), 1, role.ID, "Editor", "", []int64{keep.ID})
	require.NoError(t, err)

	got, err := service.GetRole(context.Background(), role.ID)
	require.NoError(t, err)
	require.Len(t, got.Permissions, 1)
	assert.Equal(t, shared.PermManageKomunitas, got.Permissions[0].Name)
}

func TestDeleteRoleRefusedWhileAssigned(t *testing.T) {
	store := newMemStore()
	role := store.addRole("Editor", shared.PermManageBerita)
	store.assign(7, role.ID)

	service := NewService(store, nil, nil)
	err := service.DeleteRole(context.Background(), 1, role.ID)

	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrConflict)

	_, getErr := service.GetRole(context.Background(), role.ID)
	assert.NoError(t, getErr)
}

func TestDeleteRoleSucceedsWhenUnassigned(t *testing.T) {
	store := newMemStore()
	role := store.addRole("Editor", shared.PermManageBerita)

	service := NewService(store, nil, nil)
	require.NoError(t, service.DeleteRole(context.Background(), 1, role.ID))

	_, err := service.GetRole(context.Background(), role.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeletePermissionRefusedWhileReferenced(t *testing.T) {
	store := newMemStore()
	store.addRole("Editor", shared.PermManageBerita)

	service := NewService(store, nil, nil)
	perms, err := service.ListPermissions(context.Background())
	require.NoError(t, err)
	require.Len(t, perms, 1)

	err = service.DeletePermission(context.Background(), 1, perms[0].ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestAddAdminRejectsExistingAdmin(t *testing.T) {
	store := newMemStore()
	editor := store.addRole("Editor", shared.PermManageBerita)
	verifier := store.addRole("Verifikator", shared.PermManageAlumni)
	store.assign(7, editor.ID)

	service := NewService(store, nil, nil)
	err := service.AddAdmin(context.Background(), 1, 7, verifier.ID)

	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrConflict)
	assert.Zero(t, store.assignCalled)
}

func TestRemoveAdminRevokesAllRoles(t *testing.T) {
	store := newMemStore()
	editor := store.addRole("Editor", shared.PermManageBerita)
	verifier := store.addRole("Verifikator", shared.PermManageAlumni)
	store.assign(7, editor.ID)
	store.assign(7, verifier.ID)

	service := NewService(store, nil, nil)
	require.NoError(t, service.RemoveAdmin(context.Background(), 1, 7))

	admin, err := service.IsAdmin(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, admin)
	assert.Empty(t, service.PermissionsFor(context.Background(), 7))
}

func TestGrantAndRevokeBeritaAccess(t *testing.T) {
	store := newMemStore()
	service := NewService(store, nil, nil)
	ctx := context.Background()

	perm, err := service.CreatePermission(ctx, 1, shared.PermManageBerita, "Kelola berita")
	require.NoError(t, err)
	role, err := service.CreateRole(ctx, 1, "Editor Berita", "", []int64{perm.ID})
	require.NoError(t, err)
	require.NoError(t, service.AddAdmin(ctx, 1, 42, role.ID))

	assert.True(t, service.HasPermission(ctx, 42, shared.PermManageBerita))

	require.NoError(t, service.RemoveAdmin(ctx, 1, 42))
	assert.False(t, service.HasPermission(ctx, 42, shared.PermManageBerita))

	// Revoking the assignment leaves the role and permission intact.
	kept, err := service.GetRole(ctx, role.ID)
	require.NoError(t, err)
	require.Len(t, kept.Permissions, 1)
	assert.Equal(t, shared.PermManageBerita, kept.Permissions[0].Name)
}

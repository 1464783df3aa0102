package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/Satu-Teladan-App/admin-dashboard/internal/rbac"
	"github.com/Satu-Teladan-App/admin-dashboard/internal/shared"
)

// Service manages the admin roster on top of the role assignments held by the
// rbac service.
type Service struct {
	repo Repository
	rbac *rbac.Service
}

// NewService constructs a new Service.
func NewService(repo Repository, rbacService *rbac.Service) *Service {
	return &Service{repo: repo, rbac: rbacService}
}

// ListAdmins returns users that currently hold dashboard access.
func (s *Service) ListAdmins(ctx context.Context) ([]Admin, error) {
	return s.repo.ListAdmins(ctx)
}

// GrantAdmin looks up the account by email and assigns it the given role.
func (s *Service) GrantAdmin(ctx context.Context, actorID int64, email string, roleID int64) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email wajib diisi", shared.ErrValidation)
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !user.IsActive {
		return fmt.Errorf("%w: akun tidak aktif", shared.ErrValidation)
	}
	return s.rbac.AddAdmin(ctx, actorID, user.ID, roleID)
}

// RevokeAdmin strips every role the user holds.
func (s *Service) RevokeAdmin(ctx context.Context, actorID, userID int64) error {
	if actorID == userID {
		return fmt.Errorf("%w: tidak dapat mencabut akses sendiri", shared.ErrValidation)
	}
	return s.rbac.RemoveAdmin(ctx, actorID, userID)
}

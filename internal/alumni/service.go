package alumni

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/Satu-Teladan-App/admin-dashboard/internal/shared"
)

// Service wraps alumni verification rules.
type Service struct {
	repo   Repository
	audit  *shared.AuditLogger
	logger *slog.Logger
}

// NewService constructs a new Service.
func NewService(repo Repository, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger}
}

// List returns a page of alumni profiles.
func (s *Service) List(ctx context.Context, p shared.Pagination, onlyUnverified bool) ([]Alumni, int64, error) {
	return s.repo.List(ctx, p, onlyUnverified)
}

// Verify marks one alumni profile as verified.
func (s *Service) Verify(ctx context.Context, actorID, id int64) error {
	if err := s.repo.SetVerified(ctx, id, true); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "alumni.verify", id)
	return nil
}

// Unverify reverts a verification, for profiles approved in error.
func (s *Service) Unverify(ctx context.Context, actorID, id int64) error {
	if err := s.repo.SetVerified(ctx, id, false); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "alumni.unverify", id)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, id int64) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "alumni",
		EntityID: strconv.FormatInt(id, 10),
	})
	if err != nil {
		s.logger.Warn("alumni: record audit", slog.String("action", action), slog.Any("error", err))
	}
}

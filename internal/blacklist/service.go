package blacklist

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Satu-Teladan-App/admin-dashboard/internal/shared"
)

// Service wraps blocklist business rules.
type Service struct {
	repo     Repository
	audit    *shared.AuditLogger
	logger   *slog.Logger
	validate *validator.Validate
}

// NewService constructs a new Service.
func NewService(repo Repository, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger, validate: validator.New()}
}

// List returns all blocklist entries.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	return s.repo.List(ctx)
}

// Block adds an email to the blocklist.
func (s *Service) Block(ctx context.Context, actorID int64, email, reason string) (Entry, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.validate.Var(email, "required,email"); err != nil {
		return Entry{}, fmt.Errorf("%w: email tidak valid", shared.ErrValidation)
	}
	entry, err := s.repo.Add(ctx, Entry{Email: email, Reason: strings.TrimSpace(reason), AddedBy: actorID})
	if err != nil {
		return Entry{}, err
	}
	s.recordAudit(ctx, actorID, "blacklist.add", entry.ID)
	return entry, nil
}

// Unblock removes a blocklist entry.
func (s *Service) Unblock(ctx context.Context, actorID, id int64) error {
	if err := s.repo.Remove(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "blacklist.remove", id)
	return nil
}

// IsBlocked reports whether the email is on the blocklist.
func (s *Service) IsBlocked(ctx context.Context, email string) (bool, error) {
	return s.repo.Contains(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, id int64) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "blacklist",
		EntityID: strconv.FormatInt(id, 10),
	})
	if err != nil {
		s.logger.Warn("blacklist: record audit", slog.String("action", action), slog.Any("error", err))
	}
}

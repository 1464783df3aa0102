package berita

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Satu-Teladan-App/admin-dashboard/internal/shared"
)

// Input carries the editable fields of an article.
type Input struct {
	Title string `validate:"required,min=3,max=200"`
	Body  string `validate:"required,min=10"`
}

// Service wraps news article business rules.
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

// List returns a page of articles.
func (s *Service) List(ctx context.Context, p shared.Pagination) ([]Berita, int64, error) {
	return s.repo.List(ctx, p)
}

// Get fetches one article.
func (s *Service) Get(ctx context.Context, id int64) (Berita, error) {
	return s.repo.Get(ctx, id)
}

// Create validates and stores a new draft article.
func (s *Service) Create(ctx context.Context, actorID int64, in Input) (Berita, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)
	if err := s.validate.Struct(in); err != nil {
		return Berita{}, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	created, err := s.repo.Create(ctx, Berita{
		Title:    in.Title,
		Slug:     slugify(in.Title),
		Body:     in.Body,
		AuthorID: actorID,
	})
	if err != nil {
		return Berita{}, err
	}
	s.recordAudit(ctx, actorID, "berita.create", created.ID)
	return created, nil
}

// Update validates and rewrites an article.
func (s *Service) Update(ctx context.Context, actorID, id int64, in Input) (Berita, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)
	if err := s.validate.Struct(in); err != nil {
		return Berita{}, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	updated, err := s.repo.Update(ctx, Berita{
		ID:    id,
		Title: in.Title,
		Slug:  slugify(in.Title),
		Body:  in.Body,
	})
	if err != nil {
		return Berita{}, err
	}
	s.recordAudit(ctx, actorID, "berita.update", id)
	return updated, nil
}

// Delete removes an article.
func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "berita.delete", id)
	return nil
}

// Publish makes an article visible on the platform.
func (s *Service) Publish(ctx context.Context, actorID, id int64) error {
	if err := s.repo.SetPublished(ctx, id, true); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "berita.publish", id)
	return nil
}

// Unpublish pulls an article back to draft.
func (s *Service) Unpublish(ctx context.Context, actorID, id int64) error {
	if err := s.repo.SetPublished(ctx, id, false); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "berita.unpublish", id)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, id int64) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "berita",
		EntityID: strconv.FormatInt(id, 10),
	})
	if err != nil {
		s.logger.Warn("berita: record audit", slog.String("action", action), slog.Any("error", err))
	}
}

func slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

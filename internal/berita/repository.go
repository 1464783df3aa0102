package berita

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Satu-Teladan-App/admin-dashboard/internal/shared"
)

// Repository defines persistence for news articles.
type Repository interface {
	List(ctx context.Context, p shared.Pagination) ([]Berita, int64, error)
	Get(ctx context.Context, id int64) (Berita, error)
	Create(ctx context.Context, b Berita) (Berita, error)
	Update(ctx context.Context, b Berita) (Berita, error)
	Delete(ctx context.Context, id int64) error
	SetPublished(ctx context.Context, id int64, published bool) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// List returns a page of articles, newest first, plus the total count.
func (r *PGRepository) List(ctx context.Context, p shared.Pagination) ([]Berita, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM berita`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, title, slug, body, published, published_at, author_id, created_at, updated_at
		FROM berita
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`, p.Limit(), p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Berita
	for rows.Next() {
		var b Berita
		if err := rows.Scan(&b.ID, &b.Title, &b.Slug, &b.Body, &b.Published, &b.PublishedAt, &b.AuthorID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

// Get fetches one article.
func (r *PGRepository) Get(ctx context.Context, id int64) (Berita, error) {
	var b Berita
	err := r.pool.QueryRow(ctx, `
		SELECT id, title, slug, body, published, published_at, author_id, created_at, updated_at
		FROM berita WHERE id = $1`, id).
		Scan(&b.ID, &b.Title, &b.Slug, &b.Body, &b.Published, &b.PublishedAt, &b.AuthorID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Berita{}, shared.ErrNotFound
		}
		return Berita{}, err
	}
	return b, nil
}

// Create inserts a new article.
func (r *PGRepository) Create(ctx context.Context, b Berita) (Berita, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO berita (title, slug, body, published, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, FALSE, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		b.Title, b.Slug, b.Body, b.AuthorID).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return Berita{}, mapConstraintErr(err)
	}
	return b, nil
}

// Update rewrites title, slug and body.
func (r *PGRepository) Update(ctx context.Context, b Berita) (Berita, error) {
	err := r.pool.QueryRow(ctx, `
		UPDATE berita
		SET title = $2, slug = $3, body = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		b.ID, b.Title, b.Slug, b.Body).
		Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Berita{}, shared.ErrNotFound
		}
		return Berita{}, mapConstraintErr(err)
	}
	return b, nil
}

// Delete removes an article.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM berita WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetPublished flips the publication state.
func (r *PGRepository) SetPublished(ctx context.Context, id int64, published bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE berita
		SET published = $2,
		    published_at = CASE WHEN $2 THEN NOW() ELSE NULL END,
		    updated_at = NOW()
		WHERE id = $1`, id, published)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func mapConstraintErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: slug sudah digunakan", shared.ErrConflict)
	}
	return err
}

var _ Repository = (*PGRepository)(nil)

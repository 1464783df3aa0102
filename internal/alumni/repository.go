package alumni

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Satu-Teladan-App/admin-dashboard/internal/shared"
)

// Repository defines persistence for alumni verification.
type Repository interface {
	List(ctx context.Context, p shared.Pagination, onlyUnverified bool) ([]Alumni, int64, error)
	SetVerified(ctx context.Context, id int64, verified bool) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// List returns a page of alumni profiles plus the total count.
func (r *PGRepository) List(ctx context.Context, p shared.Pagination, onlyUnverified bool) ([]Alumni, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM alumni`
	listQuery := `
		SELECT id, name, email, grad_year, verified, verified_at, created_at
		FROM alumni`
	if onlyUnverified {
		countQuery += ` WHERE verified = FALSE`
		listQuery += ` WHERE verified = FALSE`
	}
	listQuery += ` ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`

	if err := r.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, listQuery, p.Limit(), p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Alumni
	for rows.Next() {
		var a Alumni
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.GradYear, &a.Verified, &a.VerifiedAt, &a.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

// SetVerified flips the verification flag for one profile.
func (r *PGRepository) SetVerified(ctx context.Context, id int64, verified bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE alumni
		SET verified = $2,
		    verified_at = CASE WHEN $2 THEN NOW() ELSE NULL END
		WHERE id = $1`, id, verified)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shared.ErrNotFound
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)

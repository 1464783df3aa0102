package blacklist

import (
	"context"
	"errors"
	"fmt"

	pgconnv1 "github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Satu-Teladan-App/admin-dashboard/internal/shared"
)

// Repository defines persistence for the blocklist.
type Repository interface {
	List(ctx context.Context) ([]Entry, error)
	Add(ctx context.Context, e Entry) (Entry, error)
	Remove(ctx context.Context, id int64) error
	Contains(ctx context.Context, email string) (bool, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// List returns all blocklist entries, newest first.
func (r *PGRepository) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, email, reason, added_by, created_at
		FROM blacklist
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Email, &e.Reason, &e.AddedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Add inserts a new entry. A duplicate email maps to a conflict.
func (r *PGRepository) Add(ctx context.Context, e Entry) (Entry, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO blacklist (email, reason, added_by, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at`,
		e.Email, e.Reason, e.AddedBy).
		Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return Entry{}, mapConstraintErr(err)
	}
	return e, nil
}

// Remove deletes an entry by id.
func (r *PGRepository) Remove(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM blacklist WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Contains reports whether the email is currently blocked.
func (r *PGRepository) Contains(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM blacklist WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return exists, nil
}

func mapConstraintErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: email sudah diblokir", shared.ErrConflict)
	}
	var pgErrV1 *pgconnv1.PgError
	if errors.As(err, &pgErrV1) && pgErrV1.Code == "23505" {
		return fmt.Errorf("%w: email sudah diblokir", shared.ErrConflict)
	}
	return err
}

var _ Repository = (*PGRepository)(nil)

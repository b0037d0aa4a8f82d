package config

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists configuration rows in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// RepositoryPort abstracts the repository for the service.
type RepositoryPort interface {
	GetValue(ctx context.Context, key string) (string, bool, error)
	UpsertValue(ctx context.Context, key, value string) error
}

// GetValue returns the stored raw value and whether a row exists.
func (r *Repository) GetValue(ctx context.Context, key string) (string, bool, error) {
	var value *string
	err := r.pool.QueryRow(ctx, `SELECT value FROM config WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	if value == nil {
		return "", false, nil
	}
	return *value, true, nil
}

// UpsertValue stores a raw value under key.
func (r *Repository) UpsertValue(ctx context.Context, key, value string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO config (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	return err
}

var _ RepositoryPort = (*Repository)(nil)

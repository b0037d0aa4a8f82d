package ledger

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/granary/granary/internal/platform/db"
)

// TxStore exposes the row operations the engine performs inside one
// transaction. All lot reads take row locks so concurrent outbound calls
// against the same stock serialize instead of losing updates.
type TxStore interface {
	GetLotForUpdate(ctx context.Context, id string) (Lot, error)
	ListLotsForUpdate(ctx context.Context, itemType string) ([]Lot, error)
	InsertLot(ctx context.Context, lot Lot) error
	UpdateLotQuantity(ctx context.Context, id string, quantity int) error
	DeleteLot(ctx context.Context, id string) error
	InsertInbound(ctx context.Context, m InboundMovement) (int64, error)
	InsertOutbound(ctx context.Context, m OutboundMovement) (int64, error)
}

// Repository persists the stock store and movement ledger in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx runs fn against a transactional store. Either every write in fn
// commits or none of them do.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txStore{tx: tx})
	})
}

package reporting

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/granary/granary/internal/ledger"
)

// Repository reads the stock store and movement ledger for reporting views.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// RepositoryPort abstracts the repository for the service.
type RepositoryPort interface {
	ListLots(ctx context.Context) ([]ledger.Lot, error)
	SumInboundByType(ctx context.Context, start, end time.Time) (map[string]int, error)
	SumOutboundByType(ctx context.Context, start, end time.Time) (map[string]int, error)
	ListInboundDetails(ctx context.Context, itemType string, start, end time.Time) ([]IODetail, error)
	ListOutboundDetails(ctx context.Context, itemType string, start, end time.Time) ([]IODetail, error)
	ListUserInbound(ctx context.Context, userID int64, offset, limit int) ([]ledger.InboundMovement, error)
	ListUserOutbound(ctx context.Context, userID int64, offset, limit int) ([]ledger.OutboundMovement, error)
}

var _ RepositoryPort = (*Repository)(nil)

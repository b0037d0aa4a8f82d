package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/granary/granary/internal/jobs"
)

// DefaultHistoryRetainDays keeps roughly half a year of login history.
const DefaultHistoryRetainDays = 180

// HistoryCleaner prunes old login and register history rows.
type HistoryCleaner struct {
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewHistoryCleaner builds a HistoryCleaner. metrics may be nil.
func NewHistoryCleaner(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *HistoryCleaner {
	return &HistoryCleaner{pool: pool, logger: logger, metrics: metrics}
}

// Handle processes TaskHistoryCleanup tasks.
func (c *HistoryCleaner) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := c.metrics.Track("history_cleanup")
	var payload HistoryCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return tracker.End(asynq.SkipRetry)
	}
	days := payload.RetainDays
	if days <= 0 {
		days = DefaultHistoryRetainDays
	}

	logins, err := c.pool.Exec(ctx,
		`DELETE FROM login_history WHERE login_time < NOW() - make_interval(days => $1)`, days)
	if err != nil {
		return tracker.End(err)
	}
	registers, err := c.pool.Exec(ctx,
		`DELETE FROM register_history WHERE register_time < NOW() - make_interval(days => $1)`, days)
	if err != nil {
		return tracker.End(err)
	}

	c.logger.Info("auth history pruned",
		slog.Int("retain_days", days),
		slog.Int64("login_rows", logins.RowsAffected()),
		slog.Int64("register_rows", registers.RowsAffected()))
	return tracker.End(nil)
}

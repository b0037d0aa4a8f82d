package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/granary/granary/internal/config"
	jobmetrics "github.com/granary/granary/internal/jobs"
	"github.com/granary/granary/internal/reporting"
)

// ExpiryScanner walks the stock overview and logs lots in warning state and
// item types running low. The mini-program has no push channel, so the scan
// feeds the operational log rather than notifying users directly.
type ExpiryScanner struct {
	reports *reporting.Service
	configs config.Provider
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewExpiryScanner builds an ExpiryScanner. metrics may be nil.
func NewExpiryScanner(reports *reporting.Service, configs config.Provider, logger *slog.Logger, metrics *jobmetrics.Metrics) *ExpiryScanner {
	return &ExpiryScanner{reports: reports, configs: configs, logger: logger, metrics: metrics}
}

// Handle processes TaskExpiryScan tasks.
func (s *ExpiryScanner) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := s.metrics.Track("expiry_scan")
	var payload ExpiryScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return tracker.End(asynq.SkipRetry)
	}

	items, err := s.reports.Overview(ctx)
	if err != nil {
		return tracker.End(err)
	}

	warned := 0
	totals := make(map[string]int)
	for _, item := range items {
		totals[item.ItemType] += item.Quantity
		if item.ExpiryWarning {
			warned++
			s.logger.Warn("lot near expiry",
				slog.String("lot_id", item.ID),
				slog.String("item_type", item.ItemType),
				slog.Int("quantity", item.Quantity),
				slog.Int("days_remaining", item.DaysRemaining))
		}
	}

	threshold, err := s.configs.LowStockThreshold(ctx)
	if err != nil {
		return tracker.End(err)
	}
	for itemType, total := range totals {
		if total <= threshold {
			s.logger.Warn("item type low on stock",
				slog.String("item_type", itemType),
				slog.Int("total", total),
				slog.Int("threshold", threshold))
		}
	}

	s.logger.Info("expiry scan done",
		slog.Time("scheduled_for", payload.ScheduledFor),
		slog.Int("lots", len(items)),
		slog.Int("warnings", warned),
		slog.Duration("scan_lag", time.Since(payload.ScheduledFor)))
	return tracker.End(nil)
}

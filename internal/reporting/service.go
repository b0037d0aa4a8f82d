package reporting

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/granary/granary/internal/shared"
)

// timestampLayout renders creation timestamps for the client.
const timestampLayout = "2006-01-02T15:04:05"

// Service computes reporting views. All operations are idempotent reads.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds a Service.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(dateOnly(to).Sub(dateOnly(from)).Hours() / 24)
}

// Overview returns every lot with expiry progress, soonest expiry first.
// Non-expiring lots report the sentinel days value and sort last.
func (s *Service) Overview(ctx context.Context) ([]OverviewItem, error) {
	lots, err := s.repo.ListLots(ctx)
	if err != nil {
		return nil, err
	}
	today := dateOnly(s.now())

	items := make([]OverviewItem, 0, len(lots))
	for _, lot := range lots {
		item := OverviewItem{
			ID:       lot.ID,
			ItemType: lot.ItemType,
			Unit:     lot.Unit,
			Tag:      lot.Tag,
			Location: lot.Location,
			Quantity: lot.Quantity,
			Photo:    lot.Photo,
		}
		if !lot.InboundDate.IsZero() {
			item.InboundDate = lot.InboundDate.Format(shared.DateLayout)
		}
		if lot.Expires() {
			expiry := *lot.ExpiryDate
			inbound := lot.InboundDate
			if inbound.IsZero() {
				inbound = expiry
			}
			item.ExpiryDate = expiry.Format(shared.DateLayout)
			item.DaysRemaining = daysBetween(today, expiry)
			shelfDays := daysBetween(inbound, expiry)
			if shelfDays < 1 {
				shelfDays = 1
			}
			progress := float64(item.DaysRemaining) / float64(shelfDays) * 100
			progress = math.Min(100, math.Max(0, progress))
			item.ProgressPercent = math.Round(progress*100) / 100
			item.ExpiryWarning = lot.ExpiryWarningDays != nil && item.DaysRemaining <= *lot.ExpiryWarningDays
		} else {
			item.DaysRemaining = NonExpiringDays
			item.ProgressPercent = 100
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DaysRemaining < items[j].DaysRemaining
	})
	return items, nil
}

// OutboundOptions lists every current lot for the outbound-selection UI.
func (s *Service) OutboundOptions(ctx context.Context) ([]OutboundOption, error) {
	lots, err := s.repo.ListLots(ctx)
	if err != nil {
		return nil, err
	}
	options := make([]OutboundOption, 0, len(lots))
	for _, lot := range lots {
		options = append(options, OutboundOption{
			ID:       lot.ID,
			ItemType: lot.ItemType,
			Tag:      lot.Tag,
			Quantity: lot.Quantity,
			Unit:     lot.Unit,
		})
	}
	return options, nil
}

// IOStats aggregates inbound and outbound quantities per item type over the
// inclusive [start, end] range. Types with movement on either side appear.
func (s *Service) IOStats(ctx context.Context, start, end time.Time) ([]IOStat, error) {
	var inbound, outbound map[string]int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		inbound, err = s.repo.SumInboundByType(gctx, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		outbound, err = s.repo.SumOutboundByType(gctx, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	types := make([]string, 0, len(inbound)+len(outbound))
	seen := make(map[string]bool)
	for itemType := range inbound {
		if !seen[itemType] {
			seen[itemType] = true
			types = append(types, itemType)
		}
	}
	for itemType := range outbound {
		if !seen[itemType] {
			seen[itemType] = true
			types = append(types, itemType)
		}
	}
	sort.Strings(types)

	stats := make([]IOStat, 0, len(types))
	for _, itemType := range types {
		stats = append(stats, IOStat{
			ItemType:    itemType,
			InboundQty:  inbound[itemType],
			OutboundQty: outbound[itemType],
			NetChange:   inbound[itemType] - outbound[itemType],
		})
	}
	return stats, nil
}

// IODetails lists individual movements of one item type in range. With
// KindBoth the two sides merge and sort descending by (date, kind); on equal
// dates outbound rows sort before inbound rows.
func (s *Service) IODetails(ctx context.Context, itemType string, start, end time.Time, kind MovementKind) ([]IODetail, error) {
	var details []IODetail

	if kind == KindInbound || kind == KindBoth {
		rows, err := s.repo.ListInboundDetails(ctx, itemType, start, end)
		if err != nil {
			return nil, err
		}
		details = append(details, rows...)
	}
	if kind == KindOutbound || kind == KindBoth {
		rows, err := s.repo.ListOutboundDetails(ctx, itemType, start, end)
		if err != nil {
			return nil, err
		}
		details = append(details, rows...)
	}

	if kind == KindBoth {
		sort.SliceStable(details, func(i, j int) bool {
			if details[i].Date != details[j].Date {
				return details[i].Date > details[j].Date
			}
			return details[i].Kind > details[j].Kind
		})
	}
	return details, nil
}

// MyInbound returns one page of the user's inbound history plus a hasMore
// flag computed by fetching one extra row past the page.
func (s *Service) MyInbound(ctx context.Context, userID int64, page shared.PageRequest) ([]MyInboundItem, bool, error) {
	page = page.Normalize()
	rows, err := s.repo.ListUserInbound(ctx, userID, page.Offset(), page.Limit+1)
	if err != nil {
		return nil, false, err
	}
	hasMore := len(rows) > page.Limit
	if hasMore {
		rows = rows[:page.Limit]
	}

	items := make([]MyInboundItem, 0, len(rows))
	for _, m := range rows {
		item := MyInboundItem{
			ID:         m.ID,
			ItemType:   m.ItemType,
			Quantity:   m.Quantity,
			Unit:       m.Unit,
			ExpiryDate: shared.FormatDate(m.ExpiryDate),
			Location:   m.Location,
			Tag:        m.Tag,
		}
		if !m.InboundDate.IsZero() {
			item.InboundDate = m.InboundDate.Format(shared.DateLayout)
		}
		if !m.CreateTime.IsZero() {
			item.CreateTime = m.CreateTime.Format(timestampLayout)
		}
		items = append(items, item)
	}
	return items, hasMore, nil
}

// MyOutbound returns one page of the user's outbound history plus hasMore.
func (s *Service) MyOutbound(ctx context.Context, userID int64, page shared.PageRequest) ([]MyOutboundItem, bool, error) {
	page = page.Normalize()
	rows, err := s.repo.ListUserOutbound(ctx, userID, page.Offset(), page.Limit+1)
	if err != nil {
		return nil, false, err
	}
	hasMore := len(rows) > page.Limit
	if hasMore {
		rows = rows[:page.Limit]
	}

	items := make([]MyOutboundItem, 0, len(rows))
	for _, m := range rows {
		item := MyOutboundItem{
			ID:       m.ID,
			ItemType: m.ItemType,
			Quantity: m.Quantity,
			Unit:     m.Unit,
			Location: m.Location,
			Tag:      m.Tag,
		}
		if !m.OutboundDate.IsZero() {
			item.OutboundDate = m.OutboundDate.Format(shared.DateLayout)
		}
		if !m.CreateTime.IsZero() {
			item.CreateTime = m.CreateTime.Format(timestampLayout)
		}
		items = append(items, item)
	}
	return items, hasMore, nil
}

package jobs

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/granary/granary/internal/ledger"
	"github.com/granary/granary/internal/reporting"
)

type stubReportRepo struct {
	lots []ledger.Lot
}

func (s *stubReportRepo) ListLots(context.Context) ([]ledger.Lot, error) { return s.lots, nil }
func (s *stubReportRepo) SumInboundByType(context.Context, time.Time, time.Time) (map[string]int, error) {
	return nil, nil
}
func (s *stubReportRepo) SumOutboundByType(context.Context, time.Time, time.Time) (map[string]int, error) {
	return nil, nil
}
func (s *stubReportRepo) ListInboundDetails(context.Context, string, time.Time, time.Time) ([]reporting.IODetail, error) {
	return nil, nil
}
func (s *stubReportRepo) ListOutboundDetails(context.Context, string, time.Time, time.Time) ([]reporting.IODetail, error) {
	return nil, nil
}
func (s *stubReportRepo) ListUserInbound(context.Context, int64, int, int) ([]ledger.InboundMovement, error) {
	return nil, nil
}
func (s *stubReportRepo) ListUserOutbound(context.Context, int64, int, int) ([]ledger.OutboundMovement, error) {
	return nil, nil
}

type stubConfigs struct {
	threshold int
}

func (s *stubConfigs) LowStockThreshold(context.Context) (int, error) { return s.threshold, nil }
func (s *stubConfigs) DefaultExpiryWarningDays(context.Context) (int, error) {
	return 7, nil
}

func TestExpiryScanHandlesWarningLots(t *testing.T) {
	soon := time.Now().Add(48 * time.Hour)
	warnDays := 7
	repo := &stubReportRepo{lots: []ledger.Lot{
		{ID: "a", ItemType: "大米", Quantity: 5, InboundDate: time.Now().AddDate(0, 0, -10),
			ExpiryDate: &soon, ExpiryWarningDays: &warnDays},
		{ID: "b", ItemType: "油", Quantity: 50, InboundDate: time.Now().AddDate(0, 0, -1)},
	}}
	reports := reporting.NewService(repo, slog.Default())
	scanner := NewExpiryScanner(reports, &stubConfigs{threshold: 10}, slog.Default(), nil)

	task, err := NewExpiryScanTask(time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, scanner.Handle(context.Background(), task))
}

func TestExpiryScanEmptyStore(t *testing.T) {
	reports := reporting.NewService(&stubReportRepo{}, slog.Default())
	scanner := NewExpiryScanner(reports, &stubConfigs{}, slog.Default(), nil)

	task, err := NewExpiryScanTask(time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, scanner.Handle(context.Background(), task))
}

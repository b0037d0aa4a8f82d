package reporting

import (
	"context"
	"time"

	"github.com/granary/granary/internal/ledger"
	"github.com/granary/granary/internal/shared"
)

// ListLots returns every current lot in FIFO order.
func (r *Repository) ListLots(ctx context.Context) ([]ledger.Lot, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, item_type, unit, quantity, expiry_date, inbound_date, production_date, expiry_warning_days, tag, location, photo, create_time
		 FROM inventory_records
		 ORDER BY inbound_date ASC, create_time ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lots []ledger.Lot
	for rows.Next() {
		var lot ledger.Lot
		if err := rows.Scan(&lot.ID, &lot.ItemType, &lot.Unit, &lot.Quantity, &lot.ExpiryDate, &lot.InboundDate, &lot.ProductionDate, &lot.ExpiryWarningDays, &lot.Tag, &lot.Location, &lot.Photo, &lot.CreateTime); err != nil {
			return nil, err
		}
		lots = append(lots, lot)
	}
	return lots, rows.Err()
}

func (r *Repository) sumByType(ctx context.Context, query string, start, end time.Time) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[string]int)
	for rows.Next() {
		var itemType string
		var total int
		if err := rows.Scan(&itemType, &total); err != nil {
			return nil, err
		}
		totals[itemType] = total
	}
	return totals, rows.Err()
}

// SumInboundByType sums inbound quantities per item type over [start, end].
func (r *Repository) SumInboundByType(ctx context.Context, start, end time.Time) (map[string]int, error) {
	return r.sumByType(ctx,
		`SELECT item_type, COALESCE(SUM(quantity), 0)
		 FROM inbound_history
		 WHERE inbound_date >= $1 AND inbound_date <= $2
		 GROUP BY item_type`, start, end)
}

// SumOutboundByType sums outbound quantities per item type over [start, end].
func (r *Repository) SumOutboundByType(ctx context.Context, start, end time.Time) (map[string]int, error) {
	return r.sumByType(ctx,
		`SELECT item_type, COALESCE(SUM(quantity), 0)
		 FROM outbound_history
		 WHERE outbound_date >= $1 AND outbound_date <= $2
		 GROUP BY item_type`, start, end)
}

// ListInboundDetails returns inbound rows of one item type in range, joined
// with the acting user's display name, newest first.
func (r *Repository) ListInboundDetails(ctx context.Context, itemType string, start, end time.Time) ([]IODetail, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT h.inbound_date, h.quantity, h.unit, h.location, h.expiry_date, h.tag, h.item_type, COALESCE(u.name, '')
		 FROM inbound_history h
		 JOIN users u ON h.user_id = u.id
		 WHERE h.item_type = $1 AND h.inbound_date >= $2 AND h.inbound_date <= $3
		 ORDER BY h.create_time DESC`, itemType, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []IODetail
	for rows.Next() {
		var d IODetail
		var date time.Time
		var expiry *time.Time
		if err := rows.Scan(&date, &d.Quantity, &d.Unit, &d.Location, &expiry, &d.Tag, &d.ItemType, &d.UserName); err != nil {
			return nil, err
		}
		d.Kind = KindInbound
		d.Date = date.Format(shared.DateLayout)
		d.ExpiryDate = shared.FormatDate(expiry)
		details = append(details, d)
	}
	return details, rows.Err()
}

// ListOutboundDetails returns outbound rows of one item type in range, joined
// with the acting user's display name, newest first.
func (r *Repository) ListOutboundDetails(ctx context.Context, itemType string, start, end time.Time) ([]IODetail, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT h.outbound_date, h.quantity, h.unit, h.location, h.tag, h.item_type, COALESCE(u.name, '')
		 FROM outbound_history h
		 JOIN users u ON h.user_id = u.id
		 WHERE h.item_type = $1 AND h.outbound_date >= $2 AND h.outbound_date <= $3
		 ORDER BY h.create_time DESC`, itemType, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []IODetail
	for rows.Next() {
		var d IODetail
		var date time.Time
		if err := rows.Scan(&date, &d.Quantity, &d.Unit, &d.Location, &d.Tag, &d.ItemType, &d.UserName); err != nil {
			return nil, err
		}
		d.Kind = KindOutbound
		d.Date = date.Format(shared.DateLayout)
		details = append(details, d)
	}
	return details, rows.Err()
}

// ListUserInbound returns one user's inbound movements newest first.
func (r *Repository) ListUserInbound(ctx context.Context, userID int64, offset, limit int) ([]ledger.InboundMovement, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, inventory_record_id, item_type, unit, quantity, expiry_date, inbound_date, production_date, tag, location, photo, create_time
		 FROM inbound_history
		 WHERE user_id = $1
		 ORDER BY create_time DESC
		 OFFSET $2 LIMIT $3`, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []ledger.InboundMovement
	for rows.Next() {
		var m ledger.InboundMovement
		if err := rows.Scan(&m.ID, &m.UserID, &m.LotID, &m.ItemType, &m.Unit, &m.Quantity, &m.ExpiryDate, &m.InboundDate, &m.ProductionDate, &m.Tag, &m.Location, &m.Photo, &m.CreateTime); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// ListUserOutbound returns one user's outbound movements newest first.
func (r *Repository) ListUserOutbound(ctx context.Context, userID int64, offset, limit int) ([]ledger.OutboundMovement, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, item_type, quantity, outbound_date, unit, tag, location, create_time
		 FROM outbound_history
		 WHERE user_id = $1
		 ORDER BY create_time DESC
		 OFFSET $2 LIMIT $3`, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []ledger.OutboundMovement
	for rows.Next() {
		var m ledger.OutboundMovement
		if err := rows.Scan(&m.ID, &m.UserID, &m.ItemType, &m.Quantity, &m.OutboundDate, &m.Unit, &m.Tag, &m.Location, &m.CreateTime); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

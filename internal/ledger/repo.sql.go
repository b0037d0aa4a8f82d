package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/granary/granary/internal/shared"
)

type txStore struct {
	tx pgx.Tx
}

const lotColumns = `id, item_type, unit, quantity, expiry_date, inbound_date, production_date, expiry_warning_days, tag, location, photo, create_time`

func scanLot(row pgx.Row) (Lot, error) {
	var lot Lot
	err := row.Scan(&lot.ID, &lot.ItemType, &lot.Unit, &lot.Quantity, &lot.ExpiryDate, &lot.InboundDate, &lot.ProductionDate, &lot.ExpiryWarningDays, &lot.Tag, &lot.Location, &lot.Photo, &lot.CreateTime)
	return lot, err
}

func (s *txStore) GetLotForUpdate(ctx context.Context, id string) (Lot, error) {
	lot, err := scanLot(s.tx.QueryRow(ctx,
		`SELECT `+lotColumns+` FROM inventory_records WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lot{}, shared.ErrNotFound
		}
		return Lot{}, err
	}
	return lot, nil
}

// ListLotsForUpdate returns every lot of the item type in FIFO order:
// inbound date ascending with creation time as the deterministic tiebreaker.
func (s *txStore) ListLotsForUpdate(ctx context.Context, itemType string) ([]Lot, error) {
	rows, err := s.tx.Query(ctx,
		`SELECT `+lotColumns+` FROM inventory_records
		 WHERE item_type = $1
		 ORDER BY inbound_date ASC, create_time ASC
		 FOR UPDATE`, itemType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lots []Lot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, err
		}
		lots = append(lots, lot)
	}
	return lots, rows.Err()
}

func (s *txStore) InsertLot(ctx context.Context, lot Lot) error {
	_, err := s.tx.Exec(ctx,
		`INSERT INTO inventory_records (id, item_type, unit, quantity, expiry_date, inbound_date, production_date, expiry_warning_days, tag, location, photo, create_time)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		lot.ID, lot.ItemType, lot.Unit, lot.Quantity, lot.ExpiryDate, lot.InboundDate, lot.ProductionDate, lot.ExpiryWarningDays, lot.Tag, lot.Location, lot.Photo, lot.CreateTime)
	return err
}

func (s *txStore) UpdateLotQuantity(ctx context.Context, id string, quantity int) error {
	_, err := s.tx.Exec(ctx,
		`UPDATE inventory_records SET quantity = $2 WHERE id = $1`, id, quantity)
	return err
}

func (s *txStore) DeleteLot(ctx context.Context, id string) error {
	_, err := s.tx.Exec(ctx,
		`DELETE FROM inventory_records WHERE id = $1`, id)
	return err
}

func (s *txStore) InsertInbound(ctx context.Context, m InboundMovement) (int64, error) {
	var id int64
	err := s.tx.QueryRow(ctx,
		`INSERT INTO inbound_history (user_id, inventory_record_id, item_type, unit, quantity, expiry_date, inbound_date, production_date, tag, location, photo, create_time)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id`,
		m.UserID, m.LotID, m.ItemType, m.Unit, m.Quantity, m.ExpiryDate, m.InboundDate, m.ProductionDate, m.Tag, m.Location, m.Photo, m.CreateTime).Scan(&id)
	return id, err
}

func (s *txStore) InsertOutbound(ctx context.Context, m OutboundMovement) (int64, error) {
	var id int64
	err := s.tx.QueryRow(ctx,
		`INSERT INTO outbound_history (user_id, item_type, quantity, outbound_date, unit, tag, location, create_time)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		m.UserID, m.ItemType, m.Quantity, m.OutboundDate, m.Unit, m.Tag, m.Location, m.CreateTime).Scan(&id)
	return id, err
}

var _ TxStore = (*txStore)(nil)

package ledger

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/granary/granary/internal/shared"
)

// RepositoryPort abstracts the repository for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error
}

// Service applies inbound and outbound movements. Every operation runs as one
// transaction: availability is checked against locked rows before any write,
// so a failure never leaves a partial mutation behind.
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

// cleanText trims and NFC-normalizes free-text input. Item types arrive from
// the mini-program as CJK text that may mix composed and decomposed forms.
func cleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Inbound creates a new lot plus its inbound history row and returns the
// fresh lot id.
func (s *Service) Inbound(ctx context.Context, input InboundInput) (string, error) {
	itemType := cleanText(input.ItemType)
	if itemType == "" {
		return "", ErrItemTypeRequired
	}
	if input.Quantity <= 0 {
		return "", ErrInvalidQuantity
	}
	if input.InboundDate.IsZero() {
		return "", ErrDateRequired
	}
	unit := cleanText(input.Unit)

	now := s.now()
	lot := Lot{
		ID:                uuid.NewString(),
		ItemType:          itemType,
		Unit:              unit,
		Quantity:          input.Quantity,
		ExpiryDate:        input.ExpiryDate,
		InboundDate:       input.InboundDate,
		ProductionDate:    input.ProductionDate,
		ExpiryWarningDays: input.ExpiryWarningDays,
		Tag:               input.Tag,
		Location:          input.Location,
		Photo:             input.Photo,
		CreateTime:        now,
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		if err := tx.InsertLot(ctx, lot); err != nil {
			return err
		}
		_, err := tx.InsertInbound(ctx, InboundMovement{
			UserID:         input.UserID,
			LotID:          lot.ID,
			ItemType:       lot.ItemType,
			Unit:           lot.Unit,
			Quantity:       lot.Quantity,
			ExpiryDate:     lot.ExpiryDate,
			InboundDate:    lot.InboundDate,
			ProductionDate: lot.ProductionDate,
			Tag:            lot.Tag,
			Location:       lot.Location,
			Photo:          lot.Photo,
			CreateTime:     now,
		})
		return err
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("inbound posted",
		slog.String("lot_id", lot.ID),
		slog.String("item_type", lot.ItemType),
		slog.Int("quantity", lot.Quantity),
		slog.Int64("user_id", input.UserID))
	return lot.ID, nil
}

// OutboundByID depletes one specific lot. An exact match deletes the lot, a
// partial match decrements it, and an over-request fails without touching it.
func (s *Service) OutboundByID(ctx context.Context, input OutboundByIDInput) error {
	if input.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if input.OutboundDate.IsZero() {
		return ErrDateRequired
	}

	now := s.now()
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		lot, err := tx.GetLotForUpdate(ctx, input.LotID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return ErrLotNotFound
			}
			return err
		}
		if lot.Quantity < input.Quantity {
			return &InsufficientStockError{Current: lot.Quantity}
		}
		if lot.Quantity == input.Quantity {
			if err := tx.DeleteLot(ctx, lot.ID); err != nil {
				return err
			}
		} else {
			if err := tx.UpdateLotQuantity(ctx, lot.ID, lot.Quantity-input.Quantity); err != nil {
				return err
			}
		}
		_, err = tx.InsertOutbound(ctx, OutboundMovement{
			UserID:       input.UserID,
			ItemType:     lot.ItemType,
			Quantity:     input.Quantity,
			OutboundDate: input.OutboundDate,
			Unit:         lot.Unit,
			Tag:          lot.Tag,
			Location:     lot.Location,
			CreateTime:   now,
		})
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("outbound by id posted",
		slog.String("lot_id", input.LotID),
		slog.Int("quantity", input.Quantity),
		slog.Int64("user_id", input.UserID))
	return nil
}

// OutboundFIFO depletes lots of an item type oldest-first until the request
// is satisfied, deleting fully consumed lots and decrementing the last one.
// Exactly one outbound history row is written for the whole call.
func (s *Service) OutboundFIFO(ctx context.Context, input OutboundFIFOInput) error {
	itemType := cleanText(input.ItemType)
	if itemType == "" {
		return ErrItemTypeRequired
	}
	if input.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if input.OutboundDate.IsZero() {
		return ErrDateRequired
	}

	now := s.now()
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		lots, err := tx.ListLotsForUpdate(ctx, itemType)
		if err != nil {
			return err
		}
		if len(lots) == 0 {
			return ErrEmptyStock
		}
		total := 0
		for _, lot := range lots {
			total += lot.Quantity
		}
		if total < input.Quantity {
			return &InsufficientStockError{Current: total}
		}

		// unit/tag/location on the history row are each taken from the first
		// lot in FIFO order with a non-empty value, resolved independently.
		// A single movement's fields can come from different lots, and field
		// scanning runs one lot past the depletion point. Kept bug-for-bug
		// for client compatibility.
		remaining := input.Quantity
		var unit, tag, location string
		for _, lot := range lots {
			if unit == "" && lot.Unit != "" {
				unit = lot.Unit
			}
			if tag == "" && lot.Tag != "" {
				tag = lot.Tag
			}
			if location == "" && lot.Location != "" {
				location = lot.Location
			}
			if remaining <= 0 {
				break
			}
			if lot.Quantity <= remaining {
				if err := tx.DeleteLot(ctx, lot.ID); err != nil {
					return err
				}
				remaining -= lot.Quantity
			} else {
				if err := tx.UpdateLotQuantity(ctx, lot.ID, lot.Quantity-remaining); err != nil {
					return err
				}
				remaining = 0
			}
		}

		_, err = tx.InsertOutbound(ctx, OutboundMovement{
			UserID:       input.UserID,
			ItemType:     itemType,
			Quantity:     input.Quantity,
			OutboundDate: input.OutboundDate,
			Unit:         unit,
			Tag:          tag,
			Location:     location,
			CreateTime:   now,
		})
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("outbound fifo posted",
		slog.String("item_type", itemType),
		slog.Int("quantity", input.Quantity),
		slog.Int64("user_id", input.UserID))
	return nil
}

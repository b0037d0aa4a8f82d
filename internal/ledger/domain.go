// Package ledger implements the inbound/outbound stock movement engine.
// The current state lives in inventory_records (one row per lot) and every
// movement is appended to inbound_history / outbound_history for audit.
package ledger

import (
	"fmt"
	"time"

	"github.com/granary/granary/internal/shared"
)

// Lot is one inbound batch of a given item type. Quantity stays positive for
// the whole life of the row; a fully consumed lot is deleted, never kept at
// zero. Descriptive fields are immutable after creation.
type Lot struct {
	ID                string
	ItemType          string
	Unit              string
	Quantity          int
	ExpiryDate        *time.Time
	InboundDate       time.Time
	ProductionDate    string
	ExpiryWarningDays *int
	Tag               string
	Location          string
	Photo             string
	CreateTime        time.Time
}

// Expires reports whether the lot carries an expiry date at all.
func (l Lot) Expires() bool {
	return l.ExpiryDate != nil && !l.ExpiryDate.IsZero()
}

// InboundMovement is the immutable audit record of one inbound operation.
// It keeps a full copy of the lot's descriptive fields so the trail survives
// deletion of the lot itself.
type InboundMovement struct {
	ID             int64
	UserID         int64
	LotID          string
	ItemType       string
	Unit           string
	Quantity       int
	ExpiryDate     *time.Time
	InboundDate    time.Time
	ProductionDate string
	Tag            string
	Location       string
	Photo          string
	CreateTime     time.Time
}

// OutboundMovement is the immutable audit record of one outbound operation.
// It references no lot id: the lots it depleted may no longer exist.
type OutboundMovement struct {
	ID           int64
	UserID       int64
	ItemType     string
	Quantity     int
	OutboundDate time.Time
	Unit         string
	Tag          string
	Location     string
	CreateTime   time.Time
}

// InboundInput describes one inbound posting.
type InboundInput struct {
	UserID            int64
	ItemType          string
	Unit              string
	Quantity          int
	ExpiryDate        *time.Time
	InboundDate       time.Time
	ProductionDate    string
	ExpiryWarningDays *int
	Tag               string
	Location          string
	Photo             string
}

// OutboundByIDInput depletes a single specific lot.
type OutboundByIDInput struct {
	UserID       int64
	LotID        string
	Quantity     int
	OutboundDate time.Time
}

// OutboundFIFOInput depletes lots of an item type oldest-first.
type OutboundFIFOInput struct {
	UserID       int64
	ItemType     string
	Quantity     int
	OutboundDate time.Time
}

var (
	// ErrLotNotFound is returned when an outbound-by-id target is missing.
	ErrLotNotFound = shared.Safe("该物品记录不存在")
	// ErrEmptyStock is returned when a FIFO outbound finds no lots at all.
	ErrEmptyStock = shared.Safe("该物品库存为空")
	// ErrInvalidQuantity rejects non-positive quantities.
	ErrInvalidQuantity = shared.Safe("数量必须大于 0")
	// ErrItemTypeRequired rejects blank item types.
	ErrItemTypeRequired = shared.Safe("物品类型不能为空")
	// ErrDateRequired rejects missing movement dates.
	ErrDateRequired = shared.Safe("日期不能为空")
)

// InsufficientStockError reports a request exceeding available stock. Current
// is the single lot's quantity for by-id outbound, or the total across all
// lots of the type for FIFO outbound.
type InsufficientStockError struct {
	Current int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("库存不足，当前库存: %d", e.Current)
}

// UserSafe marks the message as client-facing.
func (e *InsufficientStockError) UserSafe() bool { return true }

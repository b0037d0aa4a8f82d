// Package config implements the key-value configuration store backing the
// mini-program client: item-type and unit taxonomies plus warning defaults.
// Defaults are merged in at read time; rows only exist for overridden keys.
package config

import "context"

// Well-known configuration keys.
const (
	KeyItemTypes         = "ITEM_TYPES"
	KeyUnits             = "UNIT"
	KeyLowStockThreshold = "LOW_STOCK_THRESHOLD"
	KeyExpiryWarningDays = "EXPIRY_WARNING_DAYS"
	KeyExpiry            = "EXPIRY"
)

// defaults are returned for keys without a stored override.
var defaults = map[string]any{
	KeyItemTypes:         []any{"大米", "油", "肉", "鸡蛋"},
	KeyLowStockThreshold: float64(10),
	KeyExpiryWarningDays: float64(7),
	KeyExpiry:            []any{float64(1), float64(3), float64(6)},
}

// Provider is the read-only view consumed by other modules. The per-lot
// expiry threshold set at inbound time always takes precedence over the
// global default in overview computations.
type Provider interface {
	LowStockThreshold(ctx context.Context) (int, error)
	DefaultExpiryWarningDays(ctx context.Context) (int, error)
}

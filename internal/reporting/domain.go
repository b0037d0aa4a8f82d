// Package reporting derives read-only views over the stock store and the
// movement ledger. Nothing in this package mutates state.
package reporting

// NonExpiringDays is the daysRemaining sentinel for lots without an expiry
// date. It sorts such lots after every real expiry.
const NonExpiringDays = 999999

// MovementKind filters IO detail queries.
type MovementKind string

const (
	KindInbound  MovementKind = "inbound"
	KindOutbound MovementKind = "outbound"
	KindBoth     MovementKind = "both"
)

// ParseMovementKind maps a query parameter onto a kind, defaulting to both.
func ParseMovementKind(s string) MovementKind {
	switch MovementKind(s) {
	case KindInbound, KindOutbound:
		return MovementKind(s)
	default:
		return KindBoth
	}
}

// OverviewItem is one lot enriched with expiry-progress data.
type OverviewItem struct {
	ID              string  `json:"id"`
	ItemType        string  `json:"itemType"`
	Unit            string  `json:"unit"`
	Tag             string  `json:"tag"`
	Location        string  `json:"location"`
	Quantity        int     `json:"quantity"`
	InboundDate     string  `json:"inboundDate"`
	ExpiryDate      string  `json:"expiryDate"`
	DaysRemaining   int     `json:"daysRemaining"`
	ProgressPercent float64 `json:"progressPercent"`
	ExpiryWarning   bool    `json:"expiryWarning"`
	Photo           string  `json:"photo"`
}

// OutboundOption is the flat lot projection backing the outbound picker.
type OutboundOption struct {
	ID       string `json:"id"`
	ItemType string `json:"itemType"`
	Tag      string `json:"tag"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit"`
}

// IOStat aggregates movements of one item type over a date range.
type IOStat struct {
	ItemType    string `json:"itemType"`
	InboundQty  int    `json:"inboundQty"`
	OutboundQty int    `json:"outboundQty"`
	NetChange   int    `json:"netChange"`
}

// IODetail is a single movement row joined with the acting user's name.
type IODetail struct {
	Kind       MovementKind `json:"type"`
	Date       string       `json:"date"`
	Quantity   int          `json:"quantity"`
	Unit       string       `json:"unit"`
	Location   string       `json:"location"`
	ExpiryDate string       `json:"expiryDate"`
	Tag        string       `json:"tag"`
	ItemType   string       `json:"itemType"`
	UserName   string       `json:"userName"`
}

// MyInboundItem is one page row of a user's own inbound history.
type MyInboundItem struct {
	ID          int64  `json:"id"`
	ItemType    string `json:"itemType"`
	Quantity    int    `json:"quantity"`
	Unit        string `json:"unit"`
	InboundDate string `json:"inboundDate"`
	ExpiryDate  string `json:"expiryDate"`
	Location    string `json:"location"`
	Tag         string `json:"tag"`
	CreateTime  string `json:"createTime"`
}

// MyOutboundItem is one page row of a user's own outbound history.
type MyOutboundItem struct {
	ID           int64  `json:"id"`
	ItemType     string `json:"itemType"`
	Quantity     int    `json:"quantity"`
	Unit         string `json:"unit"`
	OutboundDate string `json:"outboundDate"`
	Location     string `json:"location"`
	Tag          string `json:"tag"`
	CreateTime   string `json:"createTime"`
}

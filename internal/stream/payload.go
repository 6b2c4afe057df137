package stream

// Payload shapes sent on the wire.

type ConnectedPayload struct {
	UserID  string   `json:"userId"`
	Tickers []string `json:"tickers"`
}

type SnapshotItem struct {
	Ticker       string   `json:"ticker"`
	CurrentPrice *float64 `json:"currentPrice"`
}

type SnapshotPayload struct {
	Action    string         `json:"action"`
	Watchlist []SnapshotItem `json:"watchlist"`
}

type PricePayload struct {
	Action    string  `json:"action"`
	Ticker    string  `json:"ticker"`
	Price     float64 `json:"price"`
	Timestamp string  `json:"timestamp"`
}

type SubscriptionPayload struct {
	Tickers []string `json:"tickers"`
}

const (
	ActionSnapshot = "snapshot"
	ActionPrice    = "price"
	ActionAdded    = "added"
	ActionRemoved  = "removed"
)

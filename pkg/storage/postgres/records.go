package postgres

import "time"

// WatchlistRecord is one ticker on one user's watchlist.
type WatchlistRecord struct {
	ID uint `gorm:"primaryKey"`

	// unique index
	UserID string `gorm:"type:text;not null;index:idx_watchlist_user_ticker,unique"`
	Ticker string `gorm:"type:varchar(10);not null;index:idx_watchlist_user_ticker,unique;index:idx_watchlist_ticker"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName overrides the default table name for GORM.
func (WatchlistRecord) TableName() string {
	return "watchlists"
}

// PriceRecord is one stored OHLC observation.
type PriceRecord struct {
	ID uint `gorm:"primaryKey"`

	Ticker    string    `gorm:"type:varchar(10);not null;index:idx_prices_ticker_timestamp"`
	Timestamp time.Time `gorm:"not null;index:idx_prices_ticker_timestamp"`

	Open  float64 `gorm:"type:numeric(14,4);not null"`
	High  float64 `gorm:"type:numeric(14,4);not null"`
	Low   float64 `gorm:"type:numeric(14,4);not null"`
	Close float64 `gorm:"type:numeric(14,4);not null"`

	// nil when the upstream reports no volume
	Volume *int64 `gorm:"type:bigint"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

func (PriceRecord) TableName() string {
	return "prices"
}

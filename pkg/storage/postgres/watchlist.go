package postgres

import (
	"context"

	"gorm.io/gorm/clause"

	"watchstream/internal/market"
	apperrors "watchstream/pkg/errors"
)

var _ market.WatchlistStore = (*PostgresClient)(nil)

func (p *PostgresClient) WatchlistSymbols(ctx context.Context, userID string) ([]string, error) {
	var tickers []string
	err := p.DB.WithContext(ctx).
		Model(&WatchlistRecord{}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Pluck("ticker", &tickers).Error
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrCodePersistence, err, "load watchlist for %s", userID)
	}
	return tickers, nil
}

func (p *PostgresClient) DistinctWatchedSymbols(ctx context.Context) ([]string, error) {
	var tickers []string
	err := p.DB.WithContext(ctx).
		Model(&WatchlistRecord{}).
		Distinct("ticker").
		Order("ticker").
		Pluck("ticker", &tickers).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodePersistence, "load watched symbols", err)
	}
	return tickers, nil
}

func (p *PostgresClient) ListWatchlist(ctx context.Context, userID string) ([]market.WatchlistEntry, error) {
	var records []WatchlistRecord
	err := p.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrCodePersistence, err, "list watchlist for %s", userID)
	}

	entries := make([]market.WatchlistEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, market.WatchlistEntry{Ticker: r.Ticker, CreatedAt: r.CreatedAt})
	}
	return entries, nil
}

func (p *PostgresClient) AddTicker(ctx context.Context, userID, ticker string) error {
	record := &WatchlistRecord{UserID: userID, Ticker: market.Canonical(ticker)}
	tx := p.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "ticker"}},
		DoNothing: true,
	}).Create(record)

	if tx.Error != nil {
		return apperrors.Wrapf(apperrors.ErrCodePersistence, tx.Error, "add %s for %s", record.Ticker, userID)
	}
	if tx.RowsAffected == 0 {
		return apperrors.Newf(apperrors.ErrCodeConflict, "%s already in watchlist", record.Ticker)
	}
	return nil
}

func (p *PostgresClient) RemoveTicker(ctx context.Context, userID, ticker string) error {
	ticker = market.Canonical(ticker)
	tx := p.DB.WithContext(ctx).
		Where("user_id = ? AND ticker = ?", userID, ticker).
		Delete(&WatchlistRecord{})

	if tx.Error != nil {
		return apperrors.Wrapf(apperrors.ErrCodePersistence, tx.Error, "remove %s for %s", ticker, userID)
	}
	if tx.RowsAffected == 0 {
		return apperrors.Newf(apperrors.ErrCodeNotFound, "%s not in watchlist", ticker)
	}
	return nil
}

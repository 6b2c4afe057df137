package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Masterminds/squirrel"
	"gorm.io/gorm"

	"watchstream/internal/market"
	apperrors "watchstream/pkg/errors"
)

var _ market.PriceStore = (*PostgresClient)(nil)

func (p *PostgresClient) PersistPrice(ctx context.Context, pt market.PricePoint) error {
	record := ToPriceRecord(pt)
	if err := p.DB.WithContext(ctx).Create(record).Error; err != nil {
		return apperrors.Wrapf(apperrors.ErrCodePersistence, err, "insert price %s", record.Ticker)
	}
	return nil
}

func (p *PostgresClient) LatestPrice(ctx context.Context, symbol string) (*market.PricePoint, error) {
	var record PriceRecord
	err := p.DB.WithContext(ctx).
		Where("ticker = ?", market.Canonical(symbol)).
		Order("timestamp DESC").
		Order("id DESC").
		First(&record).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrCodePersistence, err, "latest price %s", symbol)
	}

	pt := record.PricePoint()
	return &pt, nil
}

func (p *PostgresClient) PriceHistory(ctx context.Context, symbol string) ([]market.PricePoint, error) {
	var records []PriceRecord
	err := p.DB.WithContext(ctx).
		Where("ticker = ?", market.Canonical(symbol)).
		Order("timestamp ASC").
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrCodePersistence, err, "price history %s", symbol)
	}

	points := make([]market.PricePoint, 0, len(records))
	for _, r := range records {
		points = append(points, r.PricePoint())
	}
	return points, nil
}

func (p *PostgresClient) CloseCorrelation(ctx context.Context, symbol string, window int) (float64, error) {
	query, args, err := correlationQuery(market.Canonical(symbol), window)
	if err != nil {
		return 0, err
	}

	var (
		r sql.NullFloat64
		n int64
	)
	if err := p.DB.WithContext(ctx).Raw(query, args...).Row().Scan(&r, &n); err != nil {
		return 0, apperrors.Wrapf(apperrors.ErrCodePersistence, err, "close correlation %s", symbol)
	}
	if n < 2 || !r.Valid {
		return 0, apperrors.New(apperrors.ErrCodeInsufficientData, "not enough data to compute correlation")
	}
	return math.Round(r.Float64*1e4) / 1e4, nil
}

// correlationQuery correlates each close with the average of the window
// closes ending at it.
func correlationQuery(symbol string, window int) (string, []any, error) {
	if window < 1 {
		return "", nil, apperrors.Newf(apperrors.ErrCodeInvalidParameter, "window must be positive, got %d", window)
	}

	sq := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	windowed := sq.
		Select(
			"close::float8 AS close",
			fmt.Sprintf("AVG(close::float8) OVER (ORDER BY timestamp, id ROWS BETWEEN %d PRECEDING AND CURRENT ROW) AS ma", window-1),
		).
		From(PriceRecord{}.TableName()).
		Where(squirrel.Eq{"ticker": symbol})

	return sq.
		Select("CORR(close, ma)", "COUNT(*)").
		FromSelect(windowed, "w").
		ToSql()
}

// ToPriceRecord converts a PricePoint into a PriceRecord for DB insertion.
func ToPriceRecord(pt market.PricePoint) *PriceRecord {
	ts := pt.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return &PriceRecord{
		Ticker:    market.Canonical(pt.Ticker),
		Timestamp: ts.UTC(),
		Open:      pt.Open,
		High:      pt.High,
		Low:       pt.Low,
		Close:     pt.Close,
		Volume:    pt.Volume,
	}
}

func (r PriceRecord) PricePoint() market.PricePoint {
	return market.PricePoint{
		Ticker:    r.Ticker,
		Timestamp: r.Timestamp.UTC(),
		Open:      r.Open,
		High:      r.High,
		Low:       r.Low,
		Close:     r.Close,
		Volume:    r.Volume,
	}
}

package finnhub

import (
	"fmt"
	"time"
)

// Resolution is a candle width accepted by /stock/candle.
type Resolution string

const (
	Resolution1Min  Resolution = "1"
	Resolution5Min  Resolution = "5"
	Resolution15Min Resolution = "15"
	Resolution30Min Resolution = "30"
	Resolution60Min Resolution = "60"
	ResolutionDaily Resolution = "D"
)

var validResolutions = map[Resolution]time.Duration{
	Resolution1Min:  time.Minute,
	Resolution5Min:  5 * time.Minute,
	Resolution15Min: 15 * time.Minute,
	Resolution30Min: 30 * time.Minute,
	Resolution60Min: time.Hour,
	ResolutionDaily: 24 * time.Hour,
}

// ParseResolution validates s and returns the matching Resolution.
func ParseResolution(s string) (Resolution, error) {
	r := Resolution(s)
	if _, ok := validResolutions[r]; !ok {
		return "", fmt.Errorf("invalid resolution: %s", s)
	}
	return r, nil
}

// Candle is one OHLCV bar.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// ParseCandles converts the column arrays into bars. Rows missing from any
// column are skipped.
func ParseCandles(resp CandleResponse) []Candle {
	n := len(resp.Time)
	for _, col := range [][]float64{resp.Open, resp.High, resp.Low, resp.Close, resp.Volume} {
		n = min(n, len(col))
	}

	out := make([]Candle, 0, n)
	for i := 0; i < n; i++ {
		if resp.Time[i] <= 0 || resp.Close[i] <= 0 {
			continue // skip empty bar
		}
		out = append(out, Candle{
			Time:   time.Unix(resp.Time[i], 0).UTC(),
			Open:   resp.Open[i],
			High:   resp.High[i],
			Low:    resp.Low[i],
			Close:  resp.Close[i],
			Volume: int64(resp.Volume[i]),
		})
	}
	return out
}

package market

import (
	"math"

	apperrors "watchstream/pkg/errors"
)

// MovingAverageCorrelation computes the Pearson correlation between each close
// and the trailing average of up to window closes ending at it, matching
// AVG(close) OVER (ROWS BETWEEN window-1 PRECEDING AND CURRENT ROW).
func MovingAverageCorrelation(closes []float64, window int) (float64, error) {
	if window < 1 {
		return 0, apperrors.Newf(apperrors.ErrCodeInvalidParameter, "window must be positive, got %d", window)
	}
	if len(closes) < 2 {
		return 0, apperrors.New(apperrors.ErrCodeInsufficientData, "not enough data to compute correlation")
	}

	avgs := make([]float64, len(closes))
	var sum float64
	for i, c := range closes {
		sum += c
		if i >= window {
			sum -= closes[i-window]
		}
		n := i + 1
		if n > window {
			n = window
		}
		avgs[i] = sum / float64(n)
	}

	r, ok := pearson(closes, avgs)
	if !ok {
		return 0, apperrors.New(apperrors.ErrCodeInsufficientData, "not enough variance to compute correlation")
	}
	return math.Round(r*1e4) / 1e4, nil
}

func pearson(x, y []float64) (float64, bool) {
	n := float64(len(x))
	var sx, sy float64
	for i := range x {
		sx += x[i]
		sy += y[i]
	}
	mx, my := sx/n, sy/n

	var cov, vx, vy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0, false
	}
	return cov / math.Sqrt(vx*vy), true
}

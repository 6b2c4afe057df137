package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "watchstream/pkg/errors"
)

func TestMovingAverageCorrelation(t *testing.T) {
	// a steady uptrend tracks its own moving average closely
	closes := []float64{100, 101, 102, 103, 104, 105, 106, 107}
	r, err := MovingAverageCorrelation(closes, 3)
	require.NoError(t, err)
	assert.Equal(t, 0.9935, r)
}

func TestMovingAverageCorrelationInsufficientData(t *testing.T) {
	_, err := MovingAverageCorrelation([]float64{100}, 30)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInsufficientData))

	_, err = MovingAverageCorrelation([]float64{5, 5, 5}, 30)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInsufficientData))
}

func TestCanonicalAll(t *testing.T) {
	assert.Equal(t, []string{"AAPL", "MSFT"}, CanonicalAll([]string{" aapl", "MSFT", "", "Aapl"}))
}

package indicators

import (
	"testing"

	apperrors "github.com/ducminhle1904/futures-signal-engine/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEMA(t *testing.T) {
	ema := NewEMA(20)

	assert.NotNil(t, ema)
	assert.Equal(t, 20, ema.period)
	assert.InDelta(t, 2.0/21.0, ema.Alpha(), 1e-12)
	assert.Equal(t, "EMA", ema.GetName())
	assert.Equal(t, 20, ema.GetRequiredPeriods())
}

func TestEMAValues_SeededByFirstObservation(t *testing.T) {
	got := EMAValues([]float64{1, 2, 3, 4}, 3)

	require.Len(t, got, 4)
	assert.InDelta(t, 1.0, got[0], 1e-12)
	assert.InDelta(t, 1.5, got[1], 1e-12)
	assert.InDelta(t, 2.25, got[2], 1e-12)
	assert.InDelta(t, 3.125, got[3], 1e-12)
	assert.Empty(t, EMAValues(nil, 3))
}

func TestEMA_Series_Stability(t *testing.T) {
	ema := NewEMA(3)
	series := ema.Series(candlesFromCloses(1, 2, 3, 4))

	assert.False(t, series[0].Valid)
	assert.False(t, series[1].Valid)
	assert.True(t, series[2].Valid)
	assert.True(t, series[3].Valid)
	// values exist before the series is stable
	assert.InDelta(t, 1.5, series[1].Value, 1e-12)

	ema50 := NewEMA(50)
	assert.False(t, ema50.Stable(48))
	assert.True(t, ema50.Stable(49))
	assert.True(t, Last(ema50.Series(generateTestData(50))).Valid)
}

func TestEMA_Calculate_InsufficientData(t *testing.T) {
	ema := NewEMA(50)

	_, err := ema.Calculate(generateTestData(49))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient data")
	assert.True(t, apperrors.IsInsufficientData(err))

	value, err := ema.Calculate(generateTestData(50))
	require.NoError(t, err)
	assert.Greater(t, value, 100.0)
}

func TestEMA_TracksConstantSeries(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 42
	}

	value, err := NewEMA(20).Calculate(candlesFromCloses(closes...))
	require.NoError(t, err)
	assert.InDelta(t, 42.0, value, 1e-12)
}

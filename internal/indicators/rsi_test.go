package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRSI_Calculate(t *testing.T) {
	rsi := NewRSI(14)

	value, err := rsi.Calculate(generateRealisticData(60))
	require.NoError(t, err)

	assert.GreaterOrEqual(t, value, 0.0)
	assert.LessOrEqual(t, value, 100.0)
}

func TestRSI_WilderSmoothing(t *testing.T) {
	// deltas +1, -1, +2 with alpha = 1/2
	series := NewRSI(2).Series(candlesFromCloses(10, 11, 10, 12))

	assert.False(t, series[0].Valid)
	assert.False(t, series[1].Valid)
	require.True(t, series[2].Valid)
	assert.InDelta(t, 50.0, series[2].Value, 1e-9)
	require.True(t, series[3].Valid)
	assert.InDelta(t, 100-100/6.0, series[3].Value, 1e-9)
}

func TestRSI_InsufficientDataIsUndefined(t *testing.T) {
	rsi := NewRSI(14)

	for n := 0; n < 15; n++ {
		data := generateTestData(n)
		series := rsi.Series(data)
		for _, p := range series {
			assert.False(t, p.Valid)
			assert.False(t, math.IsNaN(p.Value))
		}
		_, err := rsi.Calculate(data)
		assert.Error(t, err, "n=%d", n)
	}
}

func TestRSI_NoLossesIs100(t *testing.T) {
	rsi := NewRSI(14)

	value, err := rsi.Calculate(generateTestData(30))
	require.NoError(t, err)
	assert.Equal(t, 100.0, value)

	flat := candlesFromCloses(5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5)
	value, err = rsi.Calculate(flat)
	require.NoError(t, err)
	assert.Equal(t, 100.0, value)
}

func TestRSI_OnlyLossesIsZero(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 200 - float64(i)
	}

	value, err := NewRSI(14).Calculate(candlesFromCloses(closes...))
	require.NoError(t, err)
	assert.Equal(t, 0.0, value)
}

func TestRSI_AlwaysInRange(t *testing.T) {
	rsi := NewRSI(14)
	for _, p := range rsi.Series(generateRealisticData(300)) {
		if !p.Valid {
			continue
		}
		assert.GreaterOrEqual(t, p.Value, 0.0)
		assert.LessOrEqual(t, p.Value, 100.0)
	}
}

func TestRSI_GetRequiredPeriods(t *testing.T) {
	rsi := NewRSI(14)

	assert.Equal(t, "RSI", rsi.GetName())
	assert.Equal(t, 15, rsi.GetRequiredPeriods()) // period + 1
}

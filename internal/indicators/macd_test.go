package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMACD(t *testing.T) {
	macd := NewMACD(12, 26, 9)

	assert.NotNil(t, macd)
	assert.Equal(t, 12, macd.fastPeriod)
	assert.Equal(t, 26, macd.slowPeriod)
	assert.Equal(t, 9, macd.signalPeriod)
	assert.Equal(t, 34, macd.GetRequiredPeriods())
}

func TestMACD_Calculate_InsufficientData(t *testing.T) {
	macd := NewMACD(12, 26, 9)

	_, err := macd.Calculate(generateTestData(33))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient data")
}

func TestMACD_Calculate_RisingPrices(t *testing.T) {
	macd := NewMACD(12, 26, 9)

	value, err := macd.Calculate(generateTestData(60))
	require.NoError(t, err)

	assert.True(t, value.Line.Valid)
	assert.True(t, value.Signal.Valid)
	assert.Greater(t, value.Line.Value, 0.0)
	// the signal lags the line in a steady uptrend
	assert.Greater(t, value.Line.Value, value.Signal.Value)
	assert.InDelta(t, value.Line.Value-value.Signal.Value, value.Histogram.Value, 1e-12)
}

func TestMACD_Series_MatchesEMAs(t *testing.T) {
	data := generateRealisticData(80)
	macd := NewMACD(12, 26, 9)
	series := macd.Series(data)

	fast := NewEMA(12).Series(data)
	slow := NewEMA(26).Series(data)
	for i := range data {
		assert.InDelta(t, fast[i].Value-slow[i].Value, series[i].Line.Value, 1e-9)
	}
	assert.False(t, series[24].Line.Valid)
	assert.True(t, series[25].Line.Valid)
	assert.False(t, series[32].Signal.Valid)
	assert.True(t, series[33].Signal.Valid)
}

func TestMACD_FlatSeriesIsZero(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 10
	}

	value, err := NewMACD(12, 26, 9).Calculate(candlesFromCloses(closes...))
	require.NoError(t, err)
	assert.Equal(t, 0.0, value.Line.Value)
	assert.Equal(t, 0.0, value.Signal.Value)
}

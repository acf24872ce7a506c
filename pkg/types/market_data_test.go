package types

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPriceChange(t *testing.T) {
	pc := NewPriceChange(100, 105)
	assert.True(t, pc.Available)
	assert.InDelta(t, 5.0, pc.Percent, 1e-9)

	zero := NewPriceChange(0, 105)
	assert.False(t, zero.Available)
	assert.Equal(t, 0.0, zero.Percent)
}

func TestValidateSeries(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	good := []OHLCV{
		{Open: 100, High: 101, Low: 99, Close: 100.5, Timestamp: start},
		{Open: 100.5, High: 102, Low: 100, Close: 101, Timestamp: start.Add(time.Hour)},
	}
	assert.NoError(t, ValidateSeries(good))

	badEnvelope := []OHLCV{{Open: 100, High: 99, Low: 98, Close: 100, Timestamp: start}}
	assert.Error(t, ValidateSeries(badEnvelope))

	badOrder := []OHLCV{good[1], good[0]}
	err := ValidateSeries(badOrder)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "timestamp sequence")

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		series := append([]OHLCV(nil), good...)
		series[1].Close = v
		err := ValidateSeries(series)
		if assert.Error(t, err) {
			assert.Contains(t, err.Error(), "non-finite")
		}
	}

	nanVolume := append([]OHLCV(nil), good...)
	nanVolume[0].Volume = math.NaN()
	assert.Error(t, ValidateSeries(nanVolume))
}

func TestFundingRatePercent(t *testing.T) {
	fr := FundingRate{Rate: 0.0005}
	assert.InDelta(t, 0.05, fr.RatePercent(), 1e-12)
}

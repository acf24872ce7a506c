package types

import (
	"fmt"
	"math"
	"time"
)

// OHLCV is a single candle. Candles are immutable once produced by a provider.
type OHLCV struct {
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Timestamp time.Time
}

// Finite reports whether every price and the volume are real numbers.
func (c OHLCV) Finite() bool {
	for _, v := range [5]float64{c.Open, c.High, c.Low, c.Close, c.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// FundingRate is the latest funding record of a perpetual contract.
type FundingRate struct {
	Symbol     string
	Rate       float64 // decimal, e.g. 0.0001
	NextSettle time.Time
	Timestamp  time.Time
}

// RatePercent returns the funding rate as a percentage.
func (f FundingRate) RatePercent() float64 {
	return f.Rate * 100
}

// OpenInterest is the outstanding contract amount reported by the exchange.
type OpenInterest struct {
	Symbol    string
	Value     float64
	Timestamp time.Time
}

// FairPrice is the mark/fair price of a futures contract.
type FairPrice struct {
	Symbol    string
	Price     float64
	Timestamp time.Time
}

// PriceChange is the percentage move between two closes.
// Available is false when the baseline is zero.
type PriceChange struct {
	Previous  float64
	Current   float64
	Percent   float64
	Available bool
}

// NewPriceChange computes (current-previous)/previous*100.
func NewPriceChange(previous, current float64) PriceChange {
	pc := PriceChange{Previous: previous, Current: current}
	if previous == 0 {
		return pc
	}
	pc.Percent = (current - previous) / previous * 100
	pc.Available = true
	return pc
}

// ValidateSeries checks that every candle is finite, its OHLC envelope and strict timestamp ordering.
func ValidateSeries(data []OHLCV) error {
	for i, c := range data {
		if !c.Finite() {
			return fmt.Errorf("invalid candle at index %d: non-finite value", i)
		}
		if c.High < c.Low || c.High < c.Open || c.High < c.Close {
			return fmt.Errorf("invalid candle at index %d: high %.8f below open/close/low", i, c.High)
		}
		if c.Low > c.Open || c.Low > c.Close {
			return fmt.Errorf("invalid candle at index %d: low %.8f above open/close", i, c.Low)
		}
		if i > 0 && !c.Timestamp.After(data[i-1].Timestamp) {
			return fmt.Errorf("invalid timestamp sequence at index %d: %s is not after %s",
				i, c.Timestamp.Format(time.RFC3339), data[i-1].Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}

// Closes extracts the close prices of a series.
func Closes(data []OHLCV) []float64 {
	closes := make([]float64, len(data))
	for i, c := range data {
		closes[i] = c.Close
	}
	return closes
}

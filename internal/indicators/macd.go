package indicators

import (
	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

// MACD computes line = EMA(fast) - EMA(slow) and signal = EMA(signalPeriod) of the line.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// MACDValue is one MACD reading.
type MACDValue struct {
	Line      Point
	Signal    Point
	Histogram Point
}

// NewMACD creates a new MACD instance with specified fast, slow, and signal periods
func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{
		fastPeriod:   fast,
		slowPeriod:   slow,
		signalPeriod: signal,
	}
}

// Series computes MACD readings for every candle. The line is valid once the slow
// EMA is stable; the signal once it has signalPeriod line observations on top.
func (m *MACD) Series(data []types.OHLCV) []MACDValue {
	closes := types.Closes(data)
	fast := EMAValues(closes, m.fastPeriod)
	slow := EMAValues(closes, m.slowPeriod)

	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fast[i] - slow[i]
	}
	signal := EMAValues(line, m.signalPeriod)

	out := make([]MACDValue, len(closes))
	for i := range closes {
		lineValid := i >= m.slowPeriod-1
		signalValid := i >= m.GetRequiredPeriods()-1
		out[i] = MACDValue{
			Line:      Point{Value: line[i], Valid: lineValid},
			Signal:    Point{Value: signal[i], Valid: signalValid},
			Histogram: Point{Value: line[i] - signal[i], Valid: signalValid},
		}
	}
	return out
}

// Calculate returns the MACD reading of the latest candle
func (m *MACD) Calculate(data []types.OHLCV) (MACDValue, error) {
	need := m.GetRequiredPeriods()
	if len(data) < need {
		return MACDValue{}, insufficient(m.GetName(), len(data), need)
	}
	series := m.Series(data)
	return series[len(series)-1], nil
}

// GetName returns the indicator name
func (m *MACD) GetName() string {
	return "MACD"
}

// GetRequiredPeriods returns slow + signal - 1
func (m *MACD) GetRequiredPeriods() int {
	return m.slowPeriod + m.signalPeriod - 1
}

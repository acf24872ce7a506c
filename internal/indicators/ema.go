package indicators

import (
	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

// EMA represents the Exponential Moving Average technical indicator
type EMA struct {
	period int
	alpha  float64
}

// NewEMA creates a new EMA indicator
func NewEMA(period int) *EMA {
	return &EMA{
		period: period,
		alpha:  2.0 / float64(period+1), // Standard EMA alpha calculation
	}
}

// EMAValues smooths an arbitrary series with alpha = 2/(period+1), seeded by the
// first observation. Every index gets a value.
func EMAValues(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / float64(period+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		// EMA = (Value * Alpha) + (Previous EMA * (1 - Alpha))
		out[i] = values[i]*alpha + out[i-1]*(1-alpha)
	}
	return out
}

// Series returns the EMA of closes for every index. A reading is marked valid
// once the window holds at least period observations.
func (e *EMA) Series(data []types.OHLCV) []Point {
	raw := EMAValues(types.Closes(data), e.period)
	out := make([]Point, len(raw))
	for i, v := range raw {
		out[i] = Point{Value: v, Valid: e.Stable(i)}
	}
	return out
}

// Stable reports whether the reading at index i is past the warm-up window,
// i.e. at least period closes have been observed.
func (e *EMA) Stable(i int) bool {
	return i >= e.period-1
}

// Calculate calculates the EMA value of the latest candle
func (e *EMA) Calculate(data []types.OHLCV) (float64, error) {
	return lastValue(e.GetName(), e.Series(data), e.period)
}

// GetName returns the indicator name
func (e *EMA) GetName() string {
	return "EMA"
}

// GetRequiredPeriods returns the minimum number of periods needed
func (e *EMA) GetRequiredPeriods() int {
	return e.period
}

// Alpha returns the smoothing factor.
func (e *EMA) Alpha() float64 {
	return e.alpha
}

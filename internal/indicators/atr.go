package indicators

import (
	"math"

	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

// ATR represents the Average True Range technical indicator.
// ATR measures volatility as the simple moving average of the true range.
type ATR struct {
	period int
}

// NewATR creates a new ATR indicator
func NewATR(period int) *ATR {
	return &ATR{period: period}
}

// TrueRange returns max(High-Low, |High-PrevClose|, |Low-PrevClose|) per candle.
// The first candle has no previous close and is undefined.
func TrueRange(data []types.OHLCV) []Point {
	out := make([]Point, len(data))
	for i := 1; i < len(data); i++ {
		out[i] = Defined(trueRange(data[i], data[i-1].Close))
	}
	return out
}

func trueRange(current types.OHLCV, prevClose float64) float64 {
	hl := current.High - current.Low
	hc := math.Abs(current.High - prevClose)
	lc := math.Abs(current.Low - prevClose)

	return math.Max(hl, math.Max(hc, lc))
}

// Series returns ATR[i] = mean(TR[i-period+1..i]); undefined for i < period.
func (a *ATR) Series(data []types.OHLCV) []Point {
	out := make([]Point, len(data))
	if a.period <= 0 {
		return out
	}

	tr := TrueRange(data)
	sum := 0.0
	for i := 1; i < len(tr); i++ {
		sum += tr[i].Value
		if i > a.period {
			sum -= tr[i-a.period].Value
		}
		if i >= a.period {
			out[i] = Defined(sum / float64(a.period))
		}
	}
	return out
}

// Calculate calculates the ATR value of the latest candle
func (a *ATR) Calculate(data []types.OHLCV) (float64, error) {
	return lastValue(a.GetName(), a.Series(data), a.GetRequiredPeriods())
}

// GetName returns the indicator name
func (a *ATR) GetName() string {
	return "ATR"
}

// GetRequiredPeriods returns the minimum number of periods needed
func (a *ATR) GetRequiredPeriods() int {
	return a.period + 1 // Need extra period for True Range calculation
}

// GetPeriod returns the period used for ATR calculation
func (a *ATR) GetPeriod() int {
	return a.period
}

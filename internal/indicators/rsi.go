package indicators

import (
	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

// RSI calculates the Relative Strength Index with Wilder smoothing
// (exponential smoothing with centre of mass period-1, i.e. alpha = 1/period,
// seeded by the first price change).
type RSI struct {
	period int
}

// NewRSI creates a new RSI instance with the given period
func NewRSI(period int) *RSI {
	return &RSI{period: period}
}

// Series returns the RSI for every candle. Index 0 has no price change and
// indexes below period are still warming up; both are undefined.
func (r *RSI) Series(data []types.OHLCV) []Point {
	out := make([]Point, len(data))
	if len(data) < 2 || r.period <= 0 {
		return out
	}

	alpha := 1.0 / float64(r.period)
	var avgGain, avgLoss float64
	for i := 1; i < len(data); i++ {
		change := data[i].Close - data[i-1].Close
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		if i == 1 {
			avgGain, avgLoss = gain, loss
		} else {
			avgGain = alpha*gain + (1-alpha)*avgGain
			avgLoss = alpha*loss + (1-alpha)*avgLoss
		}

		if i < r.period {
			continue
		}
		out[i] = Defined(rsiFromAverages(avgGain, avgLoss))
	}
	return out
}

// rsiFromAverages maps smoothed averages onto [0,100]. No losses in the window
// means RSI 100 rather than a division by zero.
func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// Calculate computes the RSI value of the latest candle
func (r *RSI) Calculate(data []types.OHLCV) (float64, error) {
	return lastValue(r.GetName(), r.Series(data), r.GetRequiredPeriods())
}

// GetName returns the indicator name
func (r *RSI) GetName() string {
	return "RSI"
}

// GetRequiredPeriods returns period + 1: period price changes need one extra candle.
func (r *RSI) GetRequiredPeriods() int {
	return r.period + 1
}

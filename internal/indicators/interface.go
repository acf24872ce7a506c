package indicators

import (
	apperrors "github.com/ducminhle1904/futures-signal-engine/internal/errors"
	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

// TechnicalIndicator is implemented by the single-value indicators (ATR, EMA, RSI).
// Implementations keep no state between calls; every call recomputes from the
// candles it is given.
type TechnicalIndicator interface {
	Calculate(data []types.OHLCV) (float64, error)
	Series(data []types.OHLCV) []Point
	GetName() string
	GetRequiredPeriods() int
}

// Point is one indicator reading. Valid is false while the lookback window is
// not filled yet; Value is zero in that case and must not be used.
type Point struct {
	Value float64
	Valid bool
}

// Defined builds a valid Point.
func Defined(v float64) Point {
	return Point{Value: v, Valid: true}
}

// Last returns the final reading of a series.
func Last(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}
	return points[len(points)-1]
}

func insufficient(name string, have, need int) error {
	return apperrors.NewInsufficientDataError(name, "Calculate", have, need)
}

// lastValue converts the tail of a series into the (value, error) shape of Calculate.
func lastValue(name string, points []Point, need int) (float64, error) {
	if len(points) < need {
		return 0, insufficient(name, len(points), need)
	}
	p := Last(points)
	if !p.Valid {
		return 0, insufficient(name, len(points), need)
	}
	return p.Value, nil
}

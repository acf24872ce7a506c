package indicators

import (
	"math"
	"time"

	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// candlesFromCloses builds hourly candles whose high/low sit one unit around the close.
func candlesFromCloses(closes ...float64) []types.OHLCV {
	data := make([]types.OHLCV, len(closes))
	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}
		data[i] = types.OHLCV{
			Open:      open,
			High:      math.Max(open, c) + 1,
			Low:       math.Min(open, c) - 1,
			Close:     c,
			Volume:    1000,
			Timestamp: testStart.Add(time.Duration(i) * time.Hour),
		}
	}
	return data
}

func generateTestData(count int) []types.OHLCV {
	closes := make([]float64, count)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	return candlesFromCloses(closes...)
}

func generateRealisticData(count int) []types.OHLCV {
	closes := make([]float64, count)
	price := 50000.0
	for i := range closes {
		price += math.Sin(float64(i)/5)*120 + math.Cos(float64(i)/3)*45
		closes[i] = price
	}
	return candlesFromCloses(closes...)
}

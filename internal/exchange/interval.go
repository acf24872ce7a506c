package exchange

import (
	"fmt"
	"strings"
	"time"
)

var intervalDurations = map[string]time.Duration{
	"1m":  time.Minute,
	"5m":  5 * time.Minute,
	"15m": 15 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  time.Hour,
	"4h":  4 * time.Hour,
	"8h":  8 * time.Hour,
	"1d":  24 * time.Hour,
	"1w":  7 * 24 * time.Hour,
	"1M":  30 * 24 * time.Hour,
}

var mexcIntervals = map[string]string{
	"1m":  "Min1",
	"5m":  "Min5",
	"15m": "Min15",
	"30m": "Min30",
	"1h":  "Min60",
	"4h":  "Hour4",
	"8h":  "Hour8",
	"1d":  "Day1",
	"1w":  "Week1",
	"1M":  "Month1",
}

var bybitIntervals = map[string]string{
	"1m":  "1",
	"5m":  "5",
	"15m": "15",
	"30m": "30",
	"1h":  "60",
	"4h":  "240",
	"1d":  "D",
	"1w":  "W",
	"1M":  "M",
}

// NormalizeInterval accepts the canonical form or a MEXC interval name
// (Min15, Hour4, ...) and returns the canonical form.
func NormalizeInterval(interval string) (string, error) {
	s := strings.TrimSpace(interval)
	if _, ok := intervalDurations[s]; ok {
		return s, nil
	}
	if lower := strings.ToLower(s); intervalDurations[lower] != 0 {
		return lower, nil
	}
	for canonical, native := range mexcIntervals {
		if strings.EqualFold(native, s) {
			return canonical, nil
		}
	}
	return "", fmt.Errorf("unsupported interval %q", interval)
}

// IntervalDuration returns the length of one candle
func IntervalDuration(interval string) (time.Duration, error) {
	canonical, err := NormalizeInterval(interval)
	if err != nil {
		return 0, err
	}
	return intervalDurations[canonical], nil
}

// Intervals lists the canonical intervals in ascending order
func Intervals() []string {
	return []string{"1m", "5m", "15m", "30m", "1h", "4h", "8h", "1d", "1w", "1M"}
}

func nativeInterval(table map[string]string, exchange, interval string) (string, error) {
	canonical, err := NormalizeInterval(interval)
	if err != nil {
		return "", err
	}
	native, ok := table[canonical]
	if !ok {
		return "", fmt.Errorf("interval %s is not supported by %s", canonical, exchange)
	}
	return native, nil
}

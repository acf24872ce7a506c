package data

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SourceKey names a candle series held by the SQLite archive or an exchange
type SourceKey struct {
	Provider string
	Symbol   string
	Interval string
	Limit    int
}

// ParseSourceKey parses "symbol:interval" or "symbol:interval:limit"
func ParseSourceKey(source string) (SourceKey, error) {
	parts := strings.Split(strings.TrimSpace(source), ":")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
		return SourceKey{}, fmt.Errorf("invalid source %q, expected symbol:interval[:limit]", source)
	}

	key := SourceKey{Symbol: normalizeSymbol(parts[0]), Interval: parts[1]}
	if len(parts) == 3 {
		n, err := strconv.Atoi(parts[2])
		if err != nil || n < 0 {
			return SourceKey{}, fmt.Errorf("invalid limit %q in source %q", parts[2], source)
		}
		key.Limit = n
	}
	return key, nil
}

// String formats the key the way ParseSourceKey reads it
func (k SourceKey) String() string {
	if k.Limit > 0 {
		return fmt.Sprintf("%s:%s:%d", normalizeSymbol(k.Symbol), k.Interval, k.Limit)
	}
	return fmt.Sprintf("%s:%s", normalizeSymbol(k.Symbol), k.Interval)
}

// CacheKey namespaces the key by provider
func (k SourceKey) CacheKey() string {
	if k.Provider == "" {
		return k.String()
	}
	return strings.ToLower(k.Provider) + ":" + k.String()
}

// ParseTrailingPeriod parses period strings like "7d", "30d", "180d" or a Go duration
func ParseTrailingPeriod(s string) (time.Duration, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasSuffix(s, "days") {
		s = strings.TrimSuffix(s, "days") + "d"
	}
	if strings.HasSuffix(s, "d") {
		nStr := strings.TrimSuffix(s, "d")
		if nStr == "" {
			return 0, false
		}
		n, err := strconv.Atoi(nStr)
		if err != nil || n <= 0 {
			return 0, false
		}
		return time.Duration(n) * 24 * time.Hour, true
	}
	// allow raw durations too (e.g., 168h)
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d, true
	}
	return 0, false
}

package data

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

var testStart = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func testCandles(n int) []types.OHLCV {
	candles := make([]types.OHLCV, n)
	for i := range candles {
		price := 100 + float64(i)
		candles[i] = types.OHLCV{
			Timestamp: testStart.Add(time.Duration(i) * time.Hour),
			Open:      price,
			High:      price + 1,
			Low:       price - 1,
			Close:     price + 0.5,
			Volume:    1000,
		}
	}
	return candles
}

const sampleCSV = `timestamp,open,high,low,close,volume
2024-03-01 00:00:00,100,101,99,100.5,10
2024-03-01 01:00:00,100.5,102,100,101.5,12
2024-03-01 02:00:00,bad,102,100,101.5,12
2024-03-01 03:00:00,101.5,101,100,101.2,12
2024-03-01 04:00:00,101.2
2024-03-01 05:00:00,101.2,103,101,102.8,9
`

func TestCSVProvider_Read(t *testing.T) {
	p := NewCSVProvider()
	candles, err := p.Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, candles, 3)

	assert.Equal(t, 100.5, candles[0].Close)
	assert.Equal(t, 102.8, candles[2].Close)
	assert.Equal(t, time.Date(2024, 3, 1, 5, 0, 0, 0, time.UTC), candles[2].Timestamp)
	assert.NoError(t, p.ValidateData(candles))
}

func TestCSVProvider_UnixMillis(t *testing.T) {
	input := "ts,o,h,l,c,v\n1709251200000,100,101,99,100.5,10\n1709254800000,100.5,102,100,101.5,12\n"
	candles, err := NewCSVProviderWithFormat(ExchangeCSVFormat).Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, time.UnixMilli(1709254800000).UTC(), candles[1].Timestamp)
}

func TestCSVProvider_LoadData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candles.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	p := NewCSVProvider()
	candles, err := p.LoadData(path)
	require.NoError(t, err)
	assert.Len(t, candles, 3)

	_, err = p.LoadData(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	_, err = p.Read(strings.NewReader(""))
	assert.Error(t, err)
}

func TestValidateCandles(t *testing.T) {
	assert.Error(t, validateCandles(nil))

	bad := testCandles(3)
	bad[1].Low = 0
	assert.Error(t, validateCandles(bad))

	unordered := testCandles(3)
	unordered[2].Timestamp = unordered[0].Timestamp
	assert.Error(t, validateCandles(unordered))

	infinite := testCandles(3)
	infinite[2].High = math.Inf(1)
	assert.Error(t, validateCandles(infinite))
}

func TestCSVProvider_SkipsNonFiniteRows(t *testing.T) {
	input := "timestamp,open,high,low,close,volume\n" +
		"2024-03-01 00:00:00,100,101,99,100.5,10\n" +
		"2024-03-01 01:00:00,NaN,NaN,NaN,NaN,NaN\n" +
		"2024-03-01 02:00:00,100.5,+Inf,100,101.5,12\n" +
		"2024-03-01 03:00:00,101.5,103,101,102.8,Inf\n" +
		"2024-03-01 04:00:00,101.5,103,101,102.8,9\n"

	p := NewCSVProvider()
	candles, err := p.Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, 100.5, candles[0].Close)
	assert.Equal(t, 102.8, candles[1].Close)
	assert.NoError(t, p.ValidateData(candles))
}

func TestMemoryCache_TTL(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	now := testStart
	c.now = func() time.Time { return now }

	c.Set("BTC", testCandles(3))
	got, ok := c.Get("BTC")
	require.True(t, ok)
	assert.Len(t, got, 3)

	got[0].Close = -1
	again, _ := c.Get("BTC")
	assert.Equal(t, 100.5, again[0].Close)

	now = now.Add(time.Minute)
	_, ok = c.Get("BTC")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size())

	forever := NewMemoryCache(0)
	forever.Set("ETH", testCandles(1))
	_, ok = forever.Get("ETH")
	assert.True(t, ok)
	forever.Clear()
	assert.Equal(t, 0, forever.Size())
}

type countingProvider struct {
	calls int32
	err   error
}

func (p *countingProvider) LoadData(source string) ([]types.OHLCV, error) {
	atomic.AddInt32(&p.calls, 1)
	if p.err != nil {
		return nil, p.err
	}
	return testCandles(5), nil
}
func (p *countingProvider) ValidateData(data []types.OHLCV) error { return validateCandles(data) }
func (p *countingProvider) GetName() string { return "counting" }

func TestCachedProvider(t *testing.T) {
	inner := &countingProvider{}
	p := NewCachedProvider(inner)
	assert.Equal(t, "Cached counting", p.GetName())

	for i := 0; i < 3; i++ {
		data, err := p.LoadData("BTCUSDT:1h")
		require.NoError(t, err)
		assert.Len(t, data, 5)
	}
	assert.Equal(t, int32(1), inner.calls)
	assert.Equal(t, 1, p.GetCache().Size())

	p.ClearCache()
	_, _ = p.LoadData("BTCUSDT:1h")
	assert.Equal(t, int32(2), inner.calls)

	failing := NewCachedProvider(&countingProvider{err: errors.New("down")})
	_, err := failing.LoadData("x:1h")
	assert.Error(t, err)
	assert.Equal(t, 0, failing.GetCache().Size())
}

type fakeFetcher struct {
	calls int32
}

func (f *fakeFetcher) GetName() string { return "fake" }
func (f *fakeFetcher) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]types.OHLCV, error) {
	atomic.AddInt32(&f.calls, 1)
	if symbol == "FAIL" {
		return nil, errors.New("provider down")
	}
	return testCandles(limit), nil
}

func TestExchangeSource(t *testing.T) {
	fetcher := &fakeFetcher{}
	src := NewExchangeSource(fetcher, NewMemoryCache(time.Minute), nil)

	data, err := src.LoadData("btcusdt:15m:20")
	require.NoError(t, err)
	assert.Len(t, data, 20)

	data, err = src.GetKlines(context.Background(), "BTCUSDT", "15m", 20)
	require.NoError(t, err)
	assert.Len(t, data, 20)
	assert.Equal(t, int32(1), fetcher.calls)

	_, err = src.GetKlines(context.Background(), "FAIL", "15m", 20)
	assert.Error(t, err)

	_, err = src.LoadData("no-interval")
	assert.Error(t, err)

	uncached := NewExchangeSource(fetcher, nil, nil)
	_, _ = uncached.GetKlines(context.Background(), "BTCUSDT", "15m", 5)
	_, _ = uncached.GetKlines(context.Background(), "BTCUSDT", "15m", 5)
	assert.Equal(t, int32(4), fetcher.calls)
}

func TestSQLiteProvider(t *testing.T) {
	p, err := NewSQLiteProvider(filepath.Join(t.TempDir(), "candles.db"), nil)
	require.NoError(t, err)
	defer p.Close()
	ctx := context.Background()

	n, err := p.Import(ctx, "btcusdt", "1h", testCandles(10))
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	// re-importing overlapping candles replaces rows
	_, err = p.Import(ctx, "BTCUSDT", "1h", testCandles(12))
	require.NoError(t, err)
	count, err := p.Count(ctx, "BTCUSDT", "1h")
	require.NoError(t, err)
	assert.Equal(t, 12, count)

	all, err := p.LoadData("BTCUSDT:1h")
	require.NoError(t, err)
	require.Len(t, all, 12)
	assert.Equal(t, testStart, all[0].Timestamp)
	assert.NoError(t, p.ValidateData(all))

	last, err := p.LoadData("BTCUSDT:1h:4")
	require.NoError(t, err)
	require.Len(t, last, 4)
	assert.Equal(t, all[8].Timestamp, last[0].Timestamp)
	assert.Equal(t, all[11].Close, last[3].Close)

	_, err = p.LoadData("ETHUSDT:1h")
	assert.Error(t, err)
}

func TestParseSourceKey(t *testing.T) {
	key, err := ParseSourceKey("btc_usdt:15m:200")
	require.NoError(t, err)
	assert.Equal(t, SourceKey{Symbol: "BTC_USDT", Interval: "15m", Limit: 200}, key)
	assert.Equal(t, "BTC_USDT:15m:200", key.String())

	key.Provider = "MEXC"
	assert.Equal(t, "mexc:BTC_USDT:15m:200", key.CacheKey())

	for _, bad := range []string{"", "BTC", "BTC:", "BTC:1h:x", "a:b:c:d"} {
		_, err := ParseSourceKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseTrailingPeriod(t *testing.T) {
	d, ok := ParseTrailingPeriod("30d")
	assert.True(t, ok)
	assert.Equal(t, 30*24*time.Hour, d)

	d, ok = ParseTrailingPeriod("7days")
	assert.True(t, ok)
	assert.Equal(t, 7*24*time.Hour, d)

	d, ok = ParseTrailingPeriod("168h")
	assert.True(t, ok)
	assert.Equal(t, 168*time.Hour, d)

	_, ok = ParseTrailingPeriod("soon")
	assert.False(t, ok)
}

func TestFilters(t *testing.T) {
	candles := testCandles(48)
	f := NewDefaultDataFilter()

	recent := f.FilterByPeriod(candles, 12*time.Hour)
	require.Len(t, recent, 13)
	assert.Equal(t, candles[35].Timestamp, recent[0].Timestamp)

	ranged := f.FilterByDateRange(candles, candles[2].Timestamp, candles[4].Timestamp)
	assert.Len(t, ranged, 3)

	messy := []types.OHLCV{candles[2], candles[0], candles[1], candles[0]}
	clean := Normalize(messy)
	require.Len(t, clean, 3)
	assert.NoError(t, types.ValidateSeries(clean))
}

func TestFindDataFile(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "bybit", "linear", "BTCUSDT", "60")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "candles.csv"), []byte(sampleCSV), 0o644))

	path, _ := FindDataFile(root, "bybit", "btc_usdt", "1h")
	assert.Equal(t, filepath.Join(dir, "candles.csv"), path)

	path, attempted := FindDataFile(root, "mexc", "ETHUSDT", "15m")
	assert.Empty(t, path)
	assert.Len(t, attempted, 1)

	assert.Equal(t, "240", ConvertIntervalToMinutes("4h"))
	assert.Equal(t, "15", ConvertIntervalToMinutes("15"))
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	c, err := NewRedisCache(RedisCacheConfig{Addr: addr, Prefix: "test-candles:" + t.Name() + ":", TTL: time.Minute}, nil)
	require.NoError(t, err)
	defer c.Close()
	defer c.Clear()

	c.Set("BTCUSDT:1h", testCandles(4))
	got, ok := c.Get("BTCUSDT:1h")
	require.True(t, ok)
	require.Len(t, got, 4)
	assert.True(t, got[0].Timestamp.Equal(testStart))
	assert.Equal(t, 1, c.Size())

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

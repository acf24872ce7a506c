package bybit

import (
	"context"
	"errors"
	"testing"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKlineResponseSortsAscending(t *testing.T) {
	resp := &bybit_api.ServerResponse{
		RetCode: 0,
		RetMsg:  "OK",
		Result: map[string]interface{}{
			"symbol":   "BTCUSDT",
			"category": "linear",
			"list": [][]string{
				{"1714525200000", "60100", "60500", "60000", "60400", "12.5", "751000"},
				{"1714521600000", "59900", "60200", "59800", "60100", "10.0", "600000"},
				{"1714518000000", "bad"},
			},
		},
	}

	klines, err := parseKlineResponse(resp)
	require.NoError(t, err)
	require.Len(t, klines, 2)
	assert.True(t, klines[0].StartTime.Before(klines[1].StartTime))
	assert.Equal(t, 60100.0, klines[0].ClosePrice)
	assert.Equal(t, 60400.0, klines[1].ClosePrice)
	assert.Equal(t, time.UnixMilli(1714525200000), klines[1].StartTime)
}

func TestParseKlineResponseAPIError(t *testing.T) {
	resp := &bybit_api.ServerResponse{RetCode: ErrCodeSymbolNotFound, RetMsg: "symbol invalid"}

	_, err := parseKlineResponse(resp)
	require.Error(t, err)
	var bybitErr *BybitError
	require.True(t, errors.As(err, &bybitErr))
	assert.Equal(t, ErrCodeSymbolNotFound, bybitErr.Code)

	_, err = parseKlineResponse("not a server response")
	assert.Error(t, err)
}

func TestParseFuturesMarketData(t *testing.T) {
	resp := &bybit_api.ServerResponse{
		Result: map[string]interface{}{
			"category": "linear",
			"list": []map[string]string{{
				"symbol":          "BTCUSDT",
				"lastPrice":       "60400",
				"markPrice":       "60395.5",
				"fundingRate":     "0.0001",
				"nextFundingTime": "1714550400000",
				"openInterest":    "51234.5",
			}},
		},
	}

	md, err := parseFuturesMarketDataResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, 60395.5, md.MarkPrice)
	assert.Equal(t, 0.0001, md.FundingRate)
	assert.Equal(t, 51234.5, md.OpenInterest)
	assert.Equal(t, time.UnixMilli(1714550400000), md.NextFundingTime)

	_, err = parseFuturesMarketDataResponse(&bybit_api.ServerResponse{Result: map[string]interface{}{"list": []interface{}{}}})
	assert.Error(t, err)
}

func TestRetryWithConfig(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, BackoffFactor: 2}

	calls := 0
	err := RetryWithConfig(context.Background(), func() error {
		calls++
		if calls < 3 {
			return NewBybitError(ErrCodeRateLimitExceeded, "too many visits")
		}
		return nil
	}, cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = RetryWithConfig(context.Background(), func() error {
		calls++
		return NewBybitError(ErrCodeInvalidParameter, "params error")
	}, cfg)
	require.Error(t, err)
	assert.Equal(t, 1, calls, "non-retryable errors must not be retried")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = RetryWithConfig(ctx, func() error { return nil }, cfg)
	assert.ErrorIs(t, err, context.Canceled)
}

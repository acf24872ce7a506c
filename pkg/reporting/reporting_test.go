package reporting

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ducminhle1904/futures-signal-engine/internal/backtest"
	"github.com/ducminhle1904/futures-signal-engine/internal/exchange"
	"github.com/ducminhle1904/futures-signal-engine/internal/strategy"
	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

func sampleResult() *backtest.Result {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	trades := []backtest.Trade{
		{
			Timestamp: t0, ExitTime: t0.Add(15 * time.Minute),
			Direction: strategy.DirectionLong, Entry: 100, Target: 101, StopLoss: 97,
			ExitPrice: 102, Outcome: backtest.OutcomeWin, ReturnPercent: 2,
		},
		{
			Timestamp: t0.Add(15 * time.Minute), ExitTime: t0.Add(30 * time.Minute),
			Direction: strategy.DirectionShort, Entry: 102, Target: 101, StopLoss: 105,
			ExitPrice: 103, Outcome: backtest.OutcomeLoss, ReturnPercent: -0.98,
		},
	}
	return &backtest.Result{
		Symbol:         "BTC_USDT",
		Rule:           strategy.RuleBreakout,
		Candles:        40,
		DecisionPoints: 24,
		Trades:         trades,
		Summary:        backtest.Summarize(trades),
		Duration:       3 * time.Millisecond,
	}
}

func TestPrintSignal(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)

	r.PrintSignal(strategy.Signal{
		Symbol: "BTC_USDT", Rule: strategy.RuleBreakout, Direction: strategy.DirectionLong,
		Price: 105, Entry: 105, Target1: 106, Target2: 107, Target3: 108, HasTarget3: true,
		StopLoss: 102, ATR: 2, Reason: "close above previous high",
	})
	out := buf.String()
	assert.Contains(t, out, "BTC_USDT SIGNAL")
	assert.Contains(t, out, "LONG")
	assert.Contains(t, out, "Target 3")
	assert.Contains(t, out, "102.0000")
	assert.Contains(t, out, "close above previous high")

	buf.Reset()
	r.PrintSignal(strategy.Signal{
		Symbol: "ETH_USDT", Rule: strategy.RuleConfluence, Direction: strategy.DirectionLong,
		Price: 3000, Entry: 3000, Target1: 3010, StopLoss: 2985,
	})
	assert.Contains(t, buf.String(), "Target 1")
	assert.NotContains(t, buf.String(), "Target 2")

	buf.Reset()
	r.PrintSignal(strategy.Neutral(0.5, "no breakout"))
	assert.NotContains(t, buf.String(), "Entry")
	assert.Contains(t, buf.String(), "0.50000000")
}

func TestPrintMarketContext(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)

	r.PrintMarketContext(&exchange.MarketContext{
		Symbol:    "BTC_USDT",
		FairPrice: &types.FairPrice{Symbol: "BTC_USDT", Price: 60123.5},
		Change1h:  types.NewPriceChange(100, 101),
		Errors:    map[string]error{"funding_rate": errors.New("timeout"), "open_interest": errors.New("boom")},
	})
	out := buf.String()
	assert.Contains(t, out, "60123.50")
	assert.Contains(t, out, "+1.00%")
	assert.Contains(t, out, "unavailable")
	assert.Contains(t, out, "funding_rate, open_interest")

	buf.Reset()
	r.PrintMarketContext(nil)
	assert.Empty(t, buf.String())
}

func TestPrintBacktestAndTables(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)

	r.PrintBacktest(sampleResult())
	assert.Contains(t, buf.String(), "50.00%")
	assert.Contains(t, buf.String(), "Max Loss Streak")

	buf.Reset()
	r.PrintBatch([]backtest.BacktestResult{
		{Symbol: "ETH_USDT", Interval: "15m", Error: errors.New("provider down")},
		{Symbol: "BTC_USDT", Interval: "15m", Result: sampleResult()},
	})
	assert.Contains(t, buf.String(), "provider down")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("BTC_USDT")), bytes.Index(buf.Bytes(), []byte("ETH_USDT")))

	buf.Reset()
	r.PrintScan([]ScanRow{
		{Symbol: "AAA_USDT", Signal: strategy.Neutral(1, "flat")},
		{Symbol: "ZZZ_USDT", Signal: strategy.Signal{Direction: strategy.DirectionShort, Price: 2, Entry: 2, Target1: 1.9, StopLoss: 2.2}},
		{Symbol: "ERR_USDT", Err: errors.New("no candles")},
	})
	out := buf.String()
	assert.Contains(t, out, "no candles")
	assert.Less(t, bytes.Index([]byte(out), []byte("ZZZ_USDT")), bytes.Index([]byte(out), []byte("AAA_USDT")))
}

func TestExportTradesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "trades.csv")
	require.NoError(t, ExportTradesCSV(sampleResult(), path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, csvHeaders, records[0])
	assert.Equal(t, "LONG", records[1][2])
	assert.Equal(t, "WIN", records[1][7])
	assert.Equal(t, "-0.980000", records[2][8])
}

func TestExportTradesXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.xlsx")
	require.NoError(t, ExportTradesXLSX(sampleResult(), path))

	fx, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer fx.Close()

	assert.Equal(t, []string{"Trades", "Summary"}, fx.GetSheetList())

	rows, err := fx.GetRows("Trades")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Direction", rows[0][3])
	assert.Equal(t, "SHORT", rows[2][3])
	assert.Equal(t, "LOSS", rows[2][8])

	symbol, err := fx.GetCellValue("Summary", "B2")
	require.NoError(t, err)
	assert.Equal(t, "BTC_USDT", symbol)

	assert.Error(t, ExportTradesXLSX(nil, path))
}

func TestExportTradesDispatch(t *testing.T) {
	dir := t.TempDir()
	res := sampleResult()

	jsonPath := filepath.Join(dir, "report.json")
	require.NoError(t, ExportTrades(res, "15m", jsonPath))

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var report map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "BTC_USDT", report["symbol"])
	assert.Equal(t, "15m", report["interval"])
	trades := report["trades"].([]interface{})
	require.Len(t, trades, 2)
	assert.Equal(t, "LONG", trades[0].(map[string]interface{})["direction"])
	summary := report["summary"].(map[string]interface{})
	assert.Equal(t, 50.0, summary["accuracy_percent"])

	require.NoError(t, ExportTrades(res, "15m", filepath.Join(dir, "t.csv")))
	require.NoError(t, ExportTrades(res, "15m", filepath.Join(dir, "t.XLSX")))
	assert.Error(t, ExportTrades(res, "15m", filepath.Join(dir, "t.txt")))
	assert.Error(t, ExportTrades(nil, "15m", jsonPath))
}

func TestDefaultOutputDir(t *testing.T) {
	assert.Equal(t, filepath.Join("results", "BTC_USDT_15m"), DefaultOutputDir(" btc_usdt ", "15M"))
	assert.Equal(t, filepath.Join("results", "UNKNOWN_unknown"), DefaultOutputDir("", ""))
}

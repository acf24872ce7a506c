package reporting

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ducminhle1904/futures-signal-engine/internal/backtest"
)

// BacktestReport is the JSON document written for a backtest run
type BacktestReport struct {
	Symbol         string           `json:"symbol"`
	Interval       string           `json:"interval,omitempty"`
	Rule           string           `json:"rule"`
	Candles        int              `json:"candles"`
	DecisionPoints int              `json:"decision_points"`
	Summary        backtest.Summary `json:"summary"`
	Trades         []backtest.Trade `json:"trades"`
	DurationMs     int64            `json:"duration_ms"`
}

// NewBacktestReport flattens a result for JSON export
func NewBacktestReport(res *backtest.Result, interval string) BacktestReport {
	trades := res.Trades
	if trades == nil {
		trades = []backtest.Trade{}
	}
	return BacktestReport{
		Symbol:         res.Symbol,
		Interval:       interval,
		Rule:           string(res.Rule),
		Candles:        res.Candles,
		DecisionPoints: res.DecisionPoints,
		Summary:        res.Summary,
		Trades:         trades,
		DurationMs:     res.Duration.Milliseconds(),
	}
}

// ExportTrades picks the writer from the file extension: .xlsx, .csv or .json
func ExportTrades(res *backtest.Result, interval, path string) error {
	if res == nil {
		return fmt.Errorf("no backtest result to export")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ExportTradesXLSX(res, path)
	case ".csv":
		return ExportTradesCSV(res, path)
	case ".json":
		return WriteJSON(NewBacktestReport(res, interval), path)
	default:
		return fmt.Errorf("unsupported export format %q (use .xlsx, .csv or .json)", filepath.Ext(path))
	}
}

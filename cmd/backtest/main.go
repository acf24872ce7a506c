package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ducminhle1904/futures-signal-engine/cmd/common"
	"github.com/ducminhle1904/futures-signal-engine/internal/backtest"
	"github.com/ducminhle1904/futures-signal-engine/internal/config"
	"github.com/ducminhle1904/futures-signal-engine/internal/monitoring"
	"github.com/ducminhle1904/futures-signal-engine/pkg/reporting"
	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

func main() {
	fs := flag.NewFlagSet("backtest", flag.ExitOnError)
	flags := common.RegisterCommonFlags(fs)
	var (
		symbol   = fs.String("symbol", "", "Contract symbol to backtest - overrides config")
		symbols  = fs.String("symbols", "", "Comma separated symbols backtested in parallel")
		dataSpec = fs.String("data", "", "Offline candles instead of the provider: csv, sqlite or a file path")
		slices   = fs.Int("slices", 0, "Maximum number of decision points replayed - overrides config")
		workers  = fs.Int("workers", 4, "Parallel backtests when -symbols is set")
		xlsxPath = fs.String("xlsx", "", "Write trades to an Excel workbook")
		csvPath  = fs.String("csv", "", "Write trades to a CSV file")
		jsonPath = fs.String("json", "", "Write the report as JSON")
		save     = fs.Bool("save", false, "Write a workbook per symbol under results/SYMBOL_interval")
	)
	_ = fs.Parse(os.Args[1:])

	if *flags.Version {
		common.PrintVersion("backtest")
		return
	}

	cfg, err := flags.LoadConfig()
	if err != nil {
		common.Fatal("Failed to load config: %v", err)
	}
	switch {
	case *symbols != "":
		cfg.Exchange.Symbols = config.SplitList(*symbols)
	case *symbol != "":
		cfg.Exchange.Symbols = []string{*symbol}
	}
	if *slices > 0 {
		cfg.Strategy.Params.BacktestSlices = *slices
	}
	if len(cfg.Exchange.Symbols) == 0 {
		common.Fatal("No symbols to backtest")
	}

	app, err := common.Setup(flags, cfg, logName(cfg.Exchange.Symbols))
	if err != nil {
		common.Fatal("Failed to initialize: %v", err)
	}
	defer app.Close()

	ctx, cancel := common.SignalContext()
	defer cancel()

	runner := backtest.NewRunner(app.Engine, app.Log)
	console := reporting.NewConsoleReporter(os.Stdout)

	if len(cfg.Exchange.Symbols) > 1 {
		if err := runBatch(ctx, app, runner, console, *dataSpec, *workers, *save); err != nil {
			common.Fatal("Batch backtest failed: %v", err)
		}
		return
	}

	sym := strings.ToUpper(cfg.Exchange.Symbols[0])
	candles, err := app.Candles(ctx, *dataSpec, sym)
	if err != nil {
		common.Fatal("Failed to load candles for %s: %v", sym, err)
	}

	res, err := runner.Run(ctx, sym, candles, app.Rule)
	if err != nil {
		if errors.Is(err, backtest.ErrCannotBacktest) {
			common.Fatal("Cannot backtest %s: %v", sym, err)
		}
		common.Fatal("Backtest failed: %v", err)
	}
	publish(app, res)
	console.PrintBacktest(res)

	exports := []string{*xlsxPath, *csvPath, *jsonPath}
	if *save {
		exports = append(exports, filepath.Join(reporting.DefaultOutputDir(sym, cfg.Exchange.Interval), "trades.xlsx"))
	}
	for _, path := range exports {
		if path == "" {
			continue
		}
		if err := reporting.ExportTrades(res, cfg.Exchange.Interval, path); err != nil {
			common.Fatal("Failed to write %s: %v", path, err)
		}
		fmt.Printf("💾 Saved %s\n", path)
	}
}

// offlineSource serves batch jobs from CSV or SQLite instead of the provider
type offlineSource struct {
	app  *common.App
	spec string
}

func (s offlineSource) GetKlines(ctx context.Context, symbol, _ string, _ int) ([]types.OHLCV, error) {
	return s.app.Candles(ctx, s.spec, symbol)
}

func runBatch(ctx context.Context, app *common.App, runner *backtest.Runner, console *reporting.ConsoleReporter, dataSpec string, workers int, save bool) error {
	cfg := app.Config

	var source backtest.CandleSource = app.Source
	if dataSpec != "" {
		source = offlineSource{app: app, spec: dataSpec}
	}

	configs := make([]backtest.BatchConfig, 0, len(cfg.Exchange.Symbols))
	for _, s := range cfg.Exchange.Symbols {
		configs = append(configs, backtest.BatchConfig{
			Symbol:   strings.ToUpper(s),
			Interval: cfg.Exchange.Interval,
			Limit:    cfg.Exchange.Limit,
		})
	}

	progress := backtest.NewProgressTracker(len(configs))
	results, err := backtest.NewBatchProcessor(runner, source, workers).ProcessBatch(ctx, configs, app.Rule, progress)
	if err != nil {
		return err
	}

	done, total, _, elapsed := progress.GetProgress()
	app.Log.Info("batch finished: %d/%d jobs in %s", done, total, elapsed)

	for _, r := range results {
		if r.Error != nil {
			app.Log.Warning("%s: %v", r.Symbol, r.Error)
			continue
		}
		publish(app, r.Result)
		if save {
			path := filepath.Join(reporting.DefaultOutputDir(r.Symbol, r.Interval), "trades.xlsx")
			if err := reporting.ExportTradesXLSX(r.Result, path); err != nil {
				app.Log.Warning("failed to write %s: %v", path, err)
			}
		}
	}
	console.PrintBatch(results)
	return nil
}

func publish(app *common.App, res *backtest.Result) {
	s := res.Summary
	monitoring.RecordBacktest(res.Symbol, string(res.Rule), s.TotalTrades, s.AccuracyPercent)
	app.Log.LogBacktest(res.Symbol, string(res.Rule), s.TotalTrades, s.Wins, s.Losses, s.AccuracyPercent, s.CumulativeReturnPercent)
}

func logName(symbols []string) string {
	if len(symbols) == 1 {
		return strings.ToUpper(symbols[0])
	}
	return "batch"
}

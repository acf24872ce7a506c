package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ducminhle1904/futures-signal-engine/cmd/common"
	"github.com/ducminhle1904/futures-signal-engine/internal/config"
	"github.com/ducminhle1904/futures-signal-engine/internal/monitoring"
	"github.com/ducminhle1904/futures-signal-engine/internal/scanner"
	"github.com/ducminhle1904/futures-signal-engine/pkg/reporting"
)

func main() {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	flags := common.RegisterCommonFlags(fs)
	var (
		symbols     = fs.String("symbols", "", "Comma separated symbols - overrides config")
		workers     = fs.Int("workers", 4, "Parallel symbol fetches")
		every       = fs.Duration("every", 0, "Rescan period; 0 scans once and exits")
		metricsAddr = fs.String("metrics-addr", "", "Serve /metrics and /health on this address - overrides config")
	)
	_ = fs.Parse(os.Args[1:])

	if *flags.Version {
		common.PrintVersion("scan")
		return
	}

	cfg, err := flags.LoadConfig()
	if err != nil {
		common.Fatal("Failed to load config: %v", err)
	}
	if *symbols != "" {
		cfg.Exchange.Symbols = config.SplitList(*symbols)
	}
	if *metricsAddr != "" {
		cfg.App.MetricsAddr = *metricsAddr
	}

	app, err := common.Setup(flags, cfg, "scan")
	if err != nil {
		common.Fatal("Failed to initialize: %v", err)
	}
	defer app.Close()

	ctx, cancel := common.SignalContext()
	defer cancel()

	staleAfter := 3 * *every
	if staleAfter == 0 {
		staleAfter = 5 * time.Minute
	}
	health := monitoring.NewHealthChecker(staleAfter, 5)
	if srv := common.ServeMetrics(cfg.App.MetricsAddr, health, app.Log); srv != nil {
		defer func() {
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelShutdown()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	app.WarnUnlisted(ctx, cfg.Exchange.Symbols)

	sc := scanner.New(app.Source, app.Engine, app.Rule, scanner.Config{
		Interval: cfg.Exchange.Interval,
		Limit:    cfg.Exchange.Limit,
		Workers:  *workers,
		Every:    *every,
	}, health, app.Log)

	console := reporting.NewConsoleReporter(os.Stdout)
	render := func(results []scanner.Result) {
		rows := make([]reporting.ScanRow, 0, len(results))
		for _, r := range results {
			rows = append(rows, reporting.ScanRow{Symbol: r.Symbol, Signal: r.Signal, Err: r.Err})
		}
		console.PrintScan(rows)
		fmt.Printf("%d actionable of %d symbols at %s\n",
			len(scanner.Actionable(results)), len(results), time.Now().Format("15:04:05"))
	}

	if *every <= 0 {
		render(sc.Scan(ctx, cfg.Exchange.Symbols))
		return
	}

	if err := sc.Watch(ctx, cfg.Exchange.Symbols, render); err != nil && !errors.Is(err, context.Canceled) {
		common.Fatal("Scan stopped: %v", err)
	}
	fmt.Println("\n🛑 Scanner stopped")
}

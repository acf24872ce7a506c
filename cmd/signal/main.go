package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ducminhle1904/futures-signal-engine/cmd/common"
	"github.com/ducminhle1904/futures-signal-engine/internal/exchange"
	"github.com/ducminhle1904/futures-signal-engine/internal/monitoring"
	"github.com/ducminhle1904/futures-signal-engine/pkg/reporting"
)

func main() {
	fs := flag.NewFlagSet("signal", flag.ExitOnError)
	flags := common.RegisterCommonFlags(fs)
	var (
		symbol    = fs.String("symbol", "", "Contract symbol (e.g. BTC_USDT) - overrides config")
		dataSpec  = fs.String("data", "", "Offline candles instead of the provider: csv, sqlite or a file path")
		noContext = fs.Bool("no-context", false, "Skip fair price, funding rate and open interest")
		jsonOut   = fs.Bool("json", false, "Print the signal as JSON instead of a table")
	)
	_ = fs.Parse(os.Args[1:])

	if *flags.Version {
		common.PrintVersion("signal")
		return
	}

	cfg, err := flags.LoadConfig()
	if err != nil {
		common.Fatal("Failed to load config: %v", err)
	}
	if *symbol != "" {
		cfg.Exchange.Symbols = []string{*symbol}
	}
	sym := strings.ToUpper(cfg.Exchange.Symbols[0])

	app, err := common.Setup(flags, cfg, sym)
	if err != nil {
		common.Fatal("Failed to initialize: %v", err)
	}
	defer app.Close()

	ctx, cancel := common.SignalContext()
	defer cancel()

	if *dataSpec == "" {
		app.WarnUnlisted(ctx, []string{sym})
	}

	start := time.Now()
	sig := app.Signal(ctx, *dataSpec, sym)
	monitoring.RecordSignal(sym, string(sig.Rule), sig.Direction.String(), time.Since(start))
	app.Log.LogSignal(sym, string(sig.Rule), sig.Direction.String(), sig.Price, sig.Entry, sig.StopLoss, sig.Reason)

	if *jsonOut {
		if err := reporting.PrintJSON(sig); err != nil {
			common.Fatal("Failed to encode signal: %v", err)
		}
		return
	}

	console := reporting.NewConsoleReporter(os.Stdout)
	console.PrintSignal(sig)

	if !*noContext && *dataSpec == "" {
		ctxTimeout, cancelContext := context.WithTimeout(ctx, cfg.Exchange.Timeout+2*time.Second)
		defer cancelContext()
		console.PrintMarketContext(exchange.FetchMarketContext(ctxTimeout, app.Provider, sym))
	}

	if !sig.IsActionable() {
		fmt.Printf("\nNo trade: %s\n", sig.Reason)
	}
}

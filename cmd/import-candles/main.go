package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ducminhle1904/futures-signal-engine/cmd/common"
	"github.com/ducminhle1904/futures-signal-engine/internal/config"
	"github.com/ducminhle1904/futures-signal-engine/pkg/data"
)

func main() {
	fs := flag.NewFlagSet("import-candles", flag.ExitOnError)
	flags := common.RegisterCommonFlags(fs)
	var (
		symbols  = fs.String("symbols", "", "Comma separated symbols - overrides config")
		dbPath   = fs.String("db", "", "SQLite archive path - overrides config (default data/candles.db)")
		dataSpec = fs.String("from", "", "Import from csv or a CSV file instead of the provider")
	)
	_ = fs.Parse(os.Args[1:])

	if *flags.Version {
		common.PrintVersion("import-candles")
		return
	}

	cfg, err := flags.LoadConfig()
	if err != nil {
		common.Fatal("Failed to load config: %v", err)
	}
	if *symbols != "" {
		cfg.Exchange.Symbols = config.SplitList(*symbols)
	}
	if *dbPath != "" {
		cfg.Data.SQLitePath = *dbPath
	}
	if cfg.Data.SQLitePath == "" {
		cfg.Data.SQLitePath = "data/candles.db"
	}
	if strings.EqualFold(*dataSpec, "sqlite") {
		common.Fatal("-from sqlite would import the archive into itself")
	}

	app, err := common.Setup(flags, cfg, "import")
	if err != nil {
		common.Fatal("Failed to initialize: %v", err)
	}
	defer app.Close()

	store, err := data.NewSQLiteProvider(cfg.Data.SQLitePath, app.Log)
	if err != nil {
		common.Fatal("Failed to open %s: %v", cfg.Data.SQLitePath, err)
	}
	defer store.Close()

	ctx, cancel := common.SignalContext()
	defer cancel()

	failed := 0
	for _, s := range cfg.Exchange.Symbols {
		sym := strings.ToUpper(s)
		candles, err := app.Candles(ctx, *dataSpec, sym)
		if err != nil {
			app.Log.LogError("load "+sym, err)
			failed++
			continue
		}

		n, err := store.Import(ctx, sym, cfg.Exchange.Interval, candles)
		if err != nil {
			app.Log.LogError("import "+sym, err)
			failed++
			continue
		}
		total, _ := store.Count(ctx, sym, cfg.Exchange.Interval)
		fmt.Printf("✅ %s %s: imported %d candles (%d archived)\n", sym, cfg.Exchange.Interval, n, total)
	}

	if failed > 0 {
		common.Fatal("%d of %d symbols failed", failed, len(cfg.Exchange.Symbols))
	}
}

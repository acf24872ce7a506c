package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ducminhle1904/futures-signal-engine/cmd/common"
	"github.com/ducminhle1904/futures-signal-engine/internal/config"
	"github.com/ducminhle1904/futures-signal-engine/internal/strategy"
	"github.com/ducminhle1904/futures-signal-engine/pkg/optimization"
	"github.com/ducminhle1904/futures-signal-engine/pkg/reporting"
	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
	"github.com/ducminhle1904/futures-signal-engine/pkg/validation"
)

func main() {
	fs := flag.NewFlagSet("optimize", flag.ExitOnError)
	flags := common.RegisterCommonFlags(fs)
	def := optimization.GetDefaultOptimizationConfig()
	var (
		symbol      = fs.String("symbol", "", "Contract symbol to tune - overrides config")
		dataSpec    = fs.String("data", "", "Offline candles instead of the provider: csv, sqlite or a file path")
		population  = fs.Int("population", def.PopulationSize, "GA population size")
		generations = fs.Int("generations", def.Generations, "GA generations")
		workers     = fs.Int("workers", def.MaxWorkers, "Parallel backtests per generation")
		objective   = fs.String("objective", string(def.Objective), "Fitness: accuracy or return")
		minTrades   = fs.Int("min-trades", def.MinTrades, "Minimum decisive trades for a trusted score")
		seed        = fs.Int64("seed", 0, "Random seed; 0 seeds from the clock")
		walkForward = fs.String("wf", "", "Walk-forward validation: holdout or rolling")
		splitRatio  = fs.Float64("wf-split", 0.7, "Holdout share of training candles")
		trainN      = fs.Int("wf-train", 500, "Rolling train window in candles")
		testN       = fs.Int("wf-test", 100, "Rolling test window in candles")
		stepN       = fs.Int("wf-step", 0, "Rolling step in candles (default wf-test)")
		savePath    = fs.String("save", "", "Write the config with the tuned parameters as YAML")
	)
	_ = fs.Parse(os.Args[1:])

	if *flags.Version {
		common.PrintVersion("optimize")
		return
	}

	obj := optimization.Objective(strings.ToLower(*objective))
	if obj != optimization.ObjectiveAccuracy && obj != optimization.ObjectiveReturn {
		common.Fatal("Unknown objective %q (accuracy, return)", *objective)
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

	candles, err := app.Candles(ctx, *dataSpec, sym)
	if err != nil {
		common.Fatal("Failed to load candles for %s: %v", sym, err)
	}
	app.Log.Info("tuning %s rule on %d %s candles of %s", app.Rule.Kind(), len(candles), cfg.Exchange.Interval, sym)

	optCfg := optimization.OptimizationConfig{
		PopulationSize: *population,
		Generations:    *generations,
		MutationRate:   def.MutationRate,
		CrossoverRate:  def.CrossoverRate,
		EliteSize:      def.EliteSize,
		TournamentSize: def.TournamentSize,
		MaxWorkers:     *workers,
		Objective:      obj,
		MinTrades:      *minTrades,
		Seed:           *seed,
	}
	tune := func(ctx context.Context, train []types.OHLCV, base strategy.Params) (*optimization.Result, error) {
		opt := optimization.NewOptimizer(optCfg, optimization.GetDefaultOptimizationRanges(), app.Log)
		return opt.Optimize(ctx, base, optimization.NewBacktestEvaluator(ctx, sym, train, app.Rule))
	}

	base := cfg.Strategy.Params
	res, err := tune(ctx, candles, base)
	if err != nil {
		common.Fatal("Optimization failed: %v", err)
	}

	console := reporting.NewConsoleReporter(os.Stdout)
	console.PrintOptimization(res)
	if !res.Best.Valid {
		fmt.Printf("⚠️  No candidate reached %d decisive trades, the result is not reliable\n", *minTrades)
	}

	if *walkForward != "" {
		wf := validation.WalkForwardConfig{
			Rolling:      strings.EqualFold(*walkForward, "rolling"),
			SplitRatio:   *splitRatio,
			TrainCandles: *trainN,
			TestCandles:  *testN,
			StepCandles:  *stepN,
		}
		validator := validation.NewWalkForwardValidator(app.Rule, func(ctx context.Context, train []types.OHLCV, base strategy.Params) (strategy.Params, error) {
			r, err := tune(ctx, train, base)
			if err != nil {
				return base, err
			}
			return r.Best.Params, nil
		}, app.Log)

		summary, err := validator.Validate(ctx, sym, candles, base, wf)
		if err != nil {
			common.Fatal("Walk-forward validation failed: %v", err)
		}
		console.PrintWalkForward(summary)
	}

	if *savePath != "" {
		tuned := res.Best.Params
		tuned.BacktestSlices = base.BacktestSlices
		cfg.Strategy.Params = tuned
		if err := config.Save(*savePath, cfg); err != nil {
			common.Fatal("Failed to save %s: %v", *savePath, err)
		}
		fmt.Printf("💾 Saved tuned config to %s\n", *savePath)
	}
}

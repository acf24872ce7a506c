package validation

import (
	"context"
	"time"

	"github.com/ducminhle1904/futures-signal-engine/internal/backtest"
	"github.com/ducminhle1904/futures-signal-engine/internal/strategy"
	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

// Package validation checks whether tuned parameters keep their score on
// candles they were not tuned on.

// Tuner picks parameters on the training candles
type Tuner func(ctx context.Context, train []types.OHLCV, base strategy.Params) (strategy.Params, error)

// WalkForwardConfig holds the configuration for walk-forward validation
type WalkForwardConfig struct {
	Rolling    bool
	SplitRatio float64 // holdout share of training candles, default 0.7
	// rolling windows, in candles
	TrainCandles int
	TestCandles  int
	StepCandles  int // defaults to TestCandles
}

// WalkForwardFold is one train window followed by its test window.
// Indexes refer to the full series.
type WalkForwardFold struct {
	TrainFrom  int
	TestFrom   int
	TestTo     int // exclusive
	TrainStart time.Time
	TrainEnd   time.Time
	TestStart  time.Time
	TestEnd    time.Time
}

// WalkForwardResult holds the scores of a single fold
type WalkForwardResult struct {
	Fold   int
	Window WalkForwardFold
	Params strategy.Params
	Train  backtest.Summary
	Test   backtest.Summary
}

// WalkForwardSummary aggregates all folds
type WalkForwardSummary struct {
	Results              []WalkForwardResult
	AverageTrainAccuracy float64
	AverageTestAccuracy  float64
	TestAccuracyStdDev   float64
	AverageTrainReturn   float64
	AverageTestReturn    float64
	// relative accuracy loss from train to test, in percent
	AccuracyDegradation float64
	IsRobust            bool
	OverfittingRisk     string
}

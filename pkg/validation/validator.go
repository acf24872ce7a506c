package validation

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/ducminhle1904/futures-signal-engine/internal/backtest"
	"github.com/ducminhle1904/futures-signal-engine/internal/logger"
	"github.com/ducminhle1904/futures-signal-engine/internal/strategy"
	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

// ErrNotEnoughData is returned when the series cannot hold a single fold
var ErrNotEnoughData = errors.New("not enough data for walk-forward validation")

// WalkForwardValidator tunes on each train window and scores the result on
// the test window that follows it
type WalkForwardValidator struct {
	rule strategy.Rule
	tune Tuner
	log  *logger.Logger
}

// NewWalkForwardValidator creates a validator; a nil tuner scores the base
// parameters on both windows
func NewWalkForwardValidator(rule strategy.Rule, tune Tuner, log *logger.Logger) *WalkForwardValidator {
	if log == nil {
		log = logger.Nop()
	}
	return &WalkForwardValidator{rule: rule, tune: tune, log: log.With("walk_forward")}
}

// Validate performs holdout or rolling walk-forward validation
func (v *WalkForwardValidator) Validate(ctx context.Context, symbol string, data []types.OHLCV, base strategy.Params, cfg WalkForwardConfig) (*WalkForwardSummary, error) {
	var folds []WalkForwardFold
	if cfg.Rolling {
		folds = CreateRollingFolds(data, cfg.TrainCandles, cfg.TestCandles, cfg.StepCandles)
	} else {
		ratio := cfg.SplitRatio
		if ratio == 0 {
			ratio = 0.7
		}
		if fold, ok := SplitByRatio(data, ratio); ok {
			folds = append(folds, fold)
		}
	}
	if len(folds) == 0 {
		return nil, fmt.Errorf("%w: %d candles", ErrNotEnoughData, len(data))
	}

	results := make([]WalkForwardResult, 0, len(folds))
	for i, fold := range folds {
		res, err := v.runFold(ctx, symbol, data, base, fold)
		if err != nil {
			return nil, fmt.Errorf("fold %d/%d: %w", i+1, len(folds), err)
		}
		res.Fold = i + 1
		results = append(results, *res)

		v.log.Info("fold %d/%d %s -> %s: train %.2f%% test %.2f%% accuracy",
			i+1, len(folds), fold.TestStart.Format("2006-01-02 15:04"), fold.TestEnd.Format("2006-01-02 15:04"),
			res.Train.AccuracyPercent, res.Test.AccuracyPercent)
	}

	return calculateSummary(results), nil
}

func (v *WalkForwardValidator) runFold(ctx context.Context, symbol string, data []types.OHLCV, base strategy.Params, fold WalkForwardFold) (*WalkForwardResult, error) {
	train := data[fold.TrainFrom:fold.TestFrom:fold.TestFrom]

	params := base
	if v.tune != nil {
		tuned, err := v.tune(ctx, train, base)
		if err != nil {
			return nil, fmt.Errorf("tuning: %w", err)
		}
		params = tuned
	}
	params.BacktestSlices = 0

	runner := backtest.NewRunner(strategy.NewEngine(params, nil), nil)
	trainRes, err := runner.Run(ctx, symbol, train, v.rule)
	if err != nil {
		return nil, fmt.Errorf("train backtest: %w", err)
	}

	// the candles before the test window only serve as lookback, so every
	// decision point still lies inside the test window
	warmup := v.rule.MinCandles(params)
	from := fold.TestFrom - warmup
	if from < 0 {
		from = 0
	}
	testRes, err := runner.Run(ctx, symbol, data[from:fold.TestTo], v.rule)
	if err != nil {
		return nil, fmt.Errorf("test backtest: %w", err)
	}

	return &WalkForwardResult{
		Window: fold,
		Params: params,
		Train:  trainRes.Summary,
		Test:   testRes.Summary,
	}, nil
}

func calculateSummary(results []WalkForwardResult) *WalkForwardSummary {
	if len(results) == 0 {
		return &WalkForwardSummary{}
	}

	var trainAcc, testAcc, trainRet, testRet []float64
	for _, r := range results {
		trainAcc = append(trainAcc, r.Train.AccuracyPercent)
		testAcc = append(testAcc, r.Test.AccuracyPercent)
		trainRet = append(trainRet, r.Train.CumulativeReturnPercent)
		testRet = append(testRet, r.Test.CumulativeReturnPercent)
	}

	s := &WalkForwardSummary{
		Results:              results,
		AverageTrainAccuracy: average(trainAcc),
		AverageTestAccuracy:  average(testAcc),
		TestAccuracyStdDev:   stdDev(testAcc),
		AverageTrainReturn:   average(trainRet),
		AverageTestReturn:    average(testRet),
	}
	s.AccuracyDegradation = (s.AverageTrainAccuracy - s.AverageTestAccuracy) / math.Max(0.01, math.Abs(s.AverageTrainAccuracy)) * 100

	switch {
	case s.AccuracyDegradation > 30:
		s.OverfittingRisk = "HIGH"
	case s.AccuracyDegradation > 15:
		s.OverfittingRisk = "MODERATE"
	default:
		s.OverfittingRisk = "LOW"
	}
	s.IsRobust = s.AccuracyDegradation <= 30
	return s
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdDev(values []float64) float64 {
	if len(values) <= 1 {
		return 0
	}

	avg := average(values)
	sumSquares := 0.0
	for _, v := range values {
		diff := v - avg
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(len(values)-1))
}

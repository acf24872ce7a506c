package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/ducminhle1904/futures-signal-engine/internal/errors"
	"github.com/ducminhle1904/futures-signal-engine/internal/logger"
	"github.com/ducminhle1904/futures-signal-engine/internal/strategy"
	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

// ErrCannotBacktest is wrapped by Run when the series leaves no decision point
// with a following candle to score against.
var ErrCannotBacktest = errors.New("cannot backtest")

// Outcome is the result of scoring one fired signal against the next candle
type Outcome string

const (
	OutcomeWin     Outcome = "WIN"
	OutcomeLoss    Outcome = "LOSS"
	OutcomeNeutral Outcome = "NEUTRAL"
)

// Trade is one fired signal and how the following candle treated it
type Trade struct {
	Timestamp     time.Time          `json:"timestamp"` // close time of the decision candle
	ExitTime      time.Time          `json:"exit_time"` // close time of the scoring candle
	Direction     strategy.Direction `json:"direction"`
	Entry         float64            `json:"entry"`
	Target        float64            `json:"target"`
	StopLoss      float64            `json:"stop_loss"`
	ExitPrice     float64            `json:"exit_price"`
	Outcome       Outcome            `json:"outcome"`
	ReturnPercent float64            `json:"return_percent"` // signed, positive when the trade made money
}

// Result holds every trade of a run plus the aggregate
type Result struct {
	Symbol         string
	Rule           strategy.RuleKind
	Candles        int
	DecisionPoints int
	Trades         []Trade
	Summary        Summary
	Duration       time.Duration
}

// Runner replays a rule over historical candles
type Runner struct {
	engine *strategy.Engine
	log    *logger.Logger
}

// NewRunner creates a backtest runner driving the given signal engine
func NewRunner(engine *strategy.Engine, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{
		engine: engine,
		log:    log.With("backtest"),
	}
}

// Run evaluates rule at every decision point i in [start, N-2], using only
// data[:i+1], and scores each Long/Short signal against data[i+1].
// start is the rule's lookback floor, moved forward so that at most
// BacktestSlices decision points are replayed.
func (r *Runner) Run(ctx context.Context, symbol string, data []types.OHLCV, rule strategy.Rule) (*Result, error) {
	startTime := time.Now()
	params := r.engine.Params()

	floor := rule.MinCandles(params)
	if len(data) < floor+2 {
		err := apperrors.NewInsufficientDataError("backtest", "Run", len(data), floor+2)
		err.Underlying = ErrCannotBacktest
		return nil, err
	}
	if err := types.ValidateSeries(data); err != nil {
		return nil, apperrors.NewValidationError("backtest", "Run", err.Error())
	}

	start := floor
	if params.BacktestSlices > 0 && len(data)-1-params.BacktestSlices > start {
		start = len(data) - 1 - params.BacktestSlices
	}

	result := &Result{
		Symbol:  symbol,
		Rule:    rule.Kind(),
		Candles: len(data),
	}

	for i := start; i <= len(data)-2; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("backtest interrupted at candle %d: %w", i, err)
		}
		result.DecisionPoints++

		// cap the slice so the rule cannot reach past the decision candle
		end := i + 1
		window := data[:end:end]
		sig := r.engine.ComputeSignal(ctx, symbol, window, rule)
		if !sig.IsActionable() {
			continue
		}

		next := data[i+1]
		outcome, exit := ScoreOutcome(sig, next)
		result.Trades = append(result.Trades, Trade{
			Timestamp:     data[i].Timestamp,
			ExitTime:      next.Timestamp,
			Direction:     sig.Direction,
			Entry:         sig.Entry,
			Target:        sig.Target1,
			StopLoss:      sig.StopLoss,
			ExitPrice:     exit,
			Outcome:       outcome,
			ReturnPercent: ReturnPercent(sig.Direction, sig.Entry, exit),
		})
	}

	result.Summary = Summarize(result.Trades)
	result.Duration = time.Since(startTime)

	s := result.Summary
	r.log.LogBacktest(symbol, string(rule.Kind()), s.TotalTrades, s.Wins, s.Losses, s.AccuracyPercent, s.CumulativeReturnPercent)
	return result, nil
}

// ScoreOutcome scores a Long/Short signal against the single candle that follows
// it. The target is checked before the stop, so a candle touching both is a win.
func ScoreOutcome(sig strategy.Signal, next types.OHLCV) (Outcome, float64) {
	switch sig.Direction {
	case strategy.DirectionLong:
		if next.High >= sig.Target1 {
			return OutcomeWin, sig.Target1
		}
		if next.Low <= sig.StopLoss {
			return OutcomeLoss, sig.StopLoss
		}
	case strategy.DirectionShort:
		if next.Low <= sig.Target1 {
			return OutcomeWin, sig.Target1
		}
		if next.High >= sig.StopLoss {
			return OutcomeLoss, sig.StopLoss
		}
	}
	return OutcomeNeutral, next.Close
}

// ReturnPercent is the signed percentage move from entry to exit in the trade's favour
func ReturnPercent(dir strategy.Direction, entry, exit float64) float64 {
	if entry == 0 {
		return 0
	}
	return dir.Sign() * (exit - entry) / entry * 100
}

package strategy

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ducminhle1904/futures-signal-engine/internal/logger"
	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

// Engine evaluates rules over candle series. It is stateless apart from its
// parameters, so the same Engine can be shared between goroutines.
type Engine struct {
	params Params
	log    *logger.Logger
	now    func() time.Time
}

// NewEngine creates an engine with the given parameters; a nil logger discards output.
func NewEngine(params Params, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{
		params: params,
		log:    log.With("signal_engine"),
		now:    time.Now,
	}
}

// Params returns the engine parameters
func (e *Engine) Params() Params {
	return e.params
}

// ComputeSignal evaluates rule over data. It never returns an error: malformed
// or short series, rule panics and non-finite levels all degrade to an
// Unavailable signal.
func (e *Engine) ComputeSignal(ctx context.Context, symbol string, data []types.OHLCV, rule Rule) (sig Signal) {
	var kind RuleKind
	if rule != nil {
		kind = rule.Kind()
	}
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("rule %s panicked on %s: %v", kind, symbol, r)
			sig = Unavailable(fmt.Sprintf("rule evaluation failed: %v", r))
		}
		sig.Symbol = symbol
		sig.Rule = kind
		if len(data) > 0 {
			sig.Timestamp = data[len(data)-1].Timestamp
		} else {
			sig.Timestamp = e.now()
		}
	}()

	if rule == nil {
		return Unavailable("no rule configured")
	}
	if err := types.ValidateSeries(data); err != nil {
		return Unavailable(err.Error())
	}
	if need := rule.MinCandles(e.params); len(data) < need {
		return Unavailable(fmt.Sprintf("insufficient data: have %d candles, need %d", len(data), need))
	}

	sig = rule.Evaluate(ctx, symbol, data, e.params)
	if sig.IsActionable() && !finiteLevels(sig) {
		e.log.Warning("rule %s produced non-finite levels for %s", kind, symbol)
		return Unavailable("non-finite price levels")
	}

	e.log.Debug("%s %s: %s (%s)", kind, symbol, sig.Direction, sig.Reason)
	return sig
}

func finiteLevels(s Signal) bool {
	levels := []float64{s.Entry, s.Target1, s.StopLoss, s.ATR}
	if s.Target2 != 0 {
		levels = append(levels, s.Target2)
	}
	if s.HasTarget3 {
		levels = append(levels, s.Target3)
	}
	for _, v := range levels {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

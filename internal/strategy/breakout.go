package strategy

import (
	"context"
	"fmt"
	"math"

	"github.com/ducminhle1904/futures-signal-engine/internal/indicators"
	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

// BreakoutRule is the price-action rule: a close above the previous candle's high
// is a long breakout, a close below its low a short reversal.
type BreakoutRule struct{}

// NewBreakoutRule creates the breakout/reversal rule
func NewBreakoutRule() *BreakoutRule {
	return &BreakoutRule{}
}

// Kind implements Rule
func (r *BreakoutRule) Kind() RuleKind {
	return RuleBreakout
}

// MinCandles implements Rule. Only the previous and the last candle are required;
// ATR falls back to the previous range when its window is not filled.
func (r *BreakoutRule) MinCandles(Params) int {
	return 2
}

// Evaluate implements Rule
func (r *BreakoutRule) Evaluate(_ context.Context, _ string, data []types.OHLCV, p Params) Signal {
	prev := data[len(data)-2]
	current := data[len(data)-1].Close
	return ClassifyBreakout(prev, current, EffectiveATR(data, p), p)
}

// ClassifyBreakout applies the breakout rule to the previous candle, the current
// close and an already resolved ATR.
func ClassifyBreakout(prev types.OHLCV, current, atr float64, p Params) Signal {
	switch {
	case current > prev.High:
		sig := priceTargets(DirectionLong, current, atr, p)
		sig.Reason = fmt.Sprintf("close %.8g broke above previous high %.8g", current, prev.High)
		return sig
	case current < prev.Low:
		sig := priceTargets(DirectionShort, current, atr, p)
		sig.Reason = fmt.Sprintf("close %.8g reversed below previous low %.8g", current, prev.Low)
		return sig
	default:
		return Neutral(current, fmt.Sprintf("close %.8g inside previous range [%.8g, %.8g]", current, prev.Low, prev.High))
	}
}

// EffectiveATR resolves the volatility used for sizing: ATR(period) when defined,
// else the previous candle's range, else price * VolatilityFloor.
func EffectiveATR(data []types.OHLCV, p Params) float64 {
	if len(data) == 0 {
		return 0
	}

	if atr := indicators.Last(indicators.NewATR(p.ATRPeriod).Series(data)); atr.Valid {
		return atr.Value
	}

	current := data[len(data)-1].Close
	if len(data) >= 2 {
		prev := data[len(data)-2]
		if r := math.Abs(prev.High - prev.Low); r != 0 {
			return r
		}
	}
	return current * p.VolatilityFloor
}

// priceTargets sizes three ATR targets and an ATR stop around entry.
func priceTargets(dir Direction, entry, atr float64, p Params) Signal {
	sign := dir.Sign()
	return Signal{
		Direction:  dir,
		Price:      entry,
		Entry:      entry,
		Target1:    entry + sign*p.TargetMultipliers[0]*atr,
		Target2:    entry + sign*p.TargetMultipliers[1]*atr,
		Target3:    entry + sign*p.TargetMultipliers[2]*atr,
		HasTarget3: true,
		StopLoss:   entry - sign*p.ATRMultiplier*atr,
		ATR:        atr,
	}
}

package strategy

import (
	"context"
	"fmt"

	"github.com/ducminhle1904/futures-signal-engine/internal/indicators"
	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

// ConfluenceRule combines the EMA cross, MACD and RSI:
//
//	Long  iff close > EMAfast > EMAslow, MACD > signal and RSILongMin <= RSI <= RSILongMax
//	Short iff close < EMAslow, MACD < signal and RSI > RSIShortMin
//
// The short side deliberately has no EMA ordering check.
type ConfluenceRule struct{}

// NewConfluenceRule creates the EMA/MACD/RSI confluence rule
func NewConfluenceRule() *ConfluenceRule {
	return &ConfluenceRule{}
}

// Kind implements Rule
func (r *ConfluenceRule) Kind() RuleKind {
	return RuleConfluence
}

// MinCandles implements Rule
func (r *ConfluenceRule) MinCandles(p Params) int {
	return p.SnapshotConfig().RequiredPeriods()
}

// Evaluate implements Rule
func (r *ConfluenceRule) Evaluate(_ context.Context, _ string, data []types.OHLCV, p Params) Signal {
	snap := indicators.NewSnapshot(data, p.SnapshotConfig())
	return ConfluenceSignal(data[len(data)-1].Close, snap, p)
}

// ClassifyConfluence returns the direction implied by an indicator snapshot.
// An incomplete snapshot is Unavailable.
func ClassifyConfluence(close float64, s indicators.Snapshot, p Params) Direction {
	if !s.Complete() {
		return DirectionUnavailable
	}

	emaFast, emaSlow := s.EMAFast.Value, s.EMASlow.Value
	macd, signal := s.MACDLine.Value, s.MACDSignal.Value
	rsi := s.RSI.Value

	if close > emaFast && emaFast > emaSlow && macd > signal && rsi >= p.RSILongMin && rsi <= p.RSILongMax {
		return DirectionLong
	}
	if close < emaSlow && macd < signal && rsi > p.RSIShortMin {
		return DirectionShort
	}
	return DirectionNeutral
}

// ConfluenceSignal sizes the confluence decision: Target1 and the stop both sit
// ATRMultiplier * ATR away from entry. Target2 and Target3 stay unset.
func ConfluenceSignal(close float64, s indicators.Snapshot, p Params) Signal {
	dir := ClassifyConfluence(close, s, p)
	switch dir {
	case DirectionUnavailable:
		return Unavailable("insufficient data for EMA/MACD/RSI/ATR")
	case DirectionNeutral:
		return Neutral(close, describeSnapshot(close, s))
	}

	atr := s.ATR.Value
	sign := dir.Sign()
	return Signal{
		Direction: dir,
		Price:     close,
		Entry:     close,
		Target1:   close + sign*p.ATRMultiplier*atr,
		StopLoss:  close - sign*p.ATRMultiplier*atr,
		ATR:       atr,
		Reason:    describeSnapshot(close, s),
	}
}

func describeSnapshot(close float64, s indicators.Snapshot) string {
	return fmt.Sprintf("close=%.8g ema_fast=%.8g ema_slow=%.8g macd=%.6g signal=%.6g rsi=%.2f",
		close, s.EMAFast.Value, s.EMASlow.Value, s.MACDLine.Value, s.MACDSignal.Value, s.RSI.Value)
}

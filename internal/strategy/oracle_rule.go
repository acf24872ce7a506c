package strategy

import (
	"context"
	"fmt"

	"github.com/ducminhle1904/futures-signal-engine/internal/oracle"
	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

// OracleRule goes long when the external predictor expects a higher next close
// and short when it expects a lower one. Targets are sized like the breakout rule.
type OracleRule struct {
	predictor oracle.Predictor
}

// NewOracleRule creates the predictor-driven rule; a nil predictor is treated as
// permanently unavailable.
func NewOracleRule(predictor oracle.Predictor) *OracleRule {
	return &OracleRule{predictor: predictor}
}

// Kind implements Rule
func (r *OracleRule) Kind() RuleKind {
	return RuleOracle
}

// MinCandles implements Rule
func (r *OracleRule) MinCandles(Params) int {
	return 2
}

// Evaluate implements Rule
func (r *OracleRule) Evaluate(ctx context.Context, symbol string, data []types.OHLCV, p Params) Signal {
	current := data[len(data)-1].Close
	if r.predictor == nil {
		return Neutral(current, "oracle unavailable: no predictor configured")
	}

	prediction, err := r.predictor.Predict(ctx, symbol, types.Closes(data))
	if err != nil {
		return Neutral(current, fmt.Sprintf("oracle unavailable: %v", err))
	}
	return ClassifyPrediction(current, prediction, EffectiveATR(data, p), p)
}

// ClassifyPrediction compares a predicted next close against the current close.
func ClassifyPrediction(current, prediction, atr float64, p Params) Signal {
	var sig Signal
	switch {
	case prediction > current:
		sig = priceTargets(DirectionLong, current, atr, p)
	case prediction < current:
		sig = priceTargets(DirectionShort, current, atr, p)
	default:
		sig = Neutral(current, "")
	}
	sig.Reason = fmt.Sprintf("predicted next close %.8g vs current %.8g", prediction, current)
	return sig
}

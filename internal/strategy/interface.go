package strategy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ducminhle1904/futures-signal-engine/internal/oracle"
	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

// Rule classifies a candle series into a trading signal.
// Evaluate is only called by the Engine after the series has been validated and
// holds at least MinCandles candles.
type Rule interface {
	Kind() RuleKind
	MinCandles(p Params) int
	Evaluate(ctx context.Context, symbol string, data []types.OHLCV, p Params) Signal
}

// RuleKind enumerates the available rule variants
type RuleKind string

const (
	RuleBreakout   RuleKind = "breakout"
	RuleConfluence RuleKind = "confluence"
	RuleOracle     RuleKind = "oracle"
)

// RuleKinds lists every supported rule variant
func RuleKinds() []RuleKind {
	return []RuleKind{RuleBreakout, RuleConfluence, RuleOracle}
}

// ParseRuleKind maps a textual rule name onto a RuleKind
func ParseRuleKind(name string) (RuleKind, error) {
	kind := RuleKind(strings.ToLower(strings.TrimSpace(name)))
	for _, k := range RuleKinds() {
		if k == kind {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown rule %q (supported: breakout, confluence, oracle)", name)
}

// NewRule builds the rule for kind. The predictor is only used by the oracle rule
// and may be nil, in which case that rule always reports Neutral.
func NewRule(kind RuleKind, predictor oracle.Predictor) (Rule, error) {
	switch kind {
	case RuleBreakout:
		return NewBreakoutRule(), nil
	case RuleConfluence:
		return NewConfluenceRule(), nil
	case RuleOracle:
		return NewOracleRule(predictor), nil
	default:
		return nil, fmt.Errorf("unknown rule %q", kind)
	}
}

// Direction is the classification of a signal
type Direction int

const (
	DirectionUnavailable Direction = iota
	DirectionNeutral
	DirectionLong
	DirectionShort
)

func (d Direction) String() string {
	switch d {
	case DirectionLong:
		return "LONG"
	case DirectionShort:
		return "SHORT"
	case DirectionNeutral:
		return "NEUTRAL"
	case DirectionUnavailable:
		return "UNAVAILABLE"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the direction by name
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Sign returns +1 for long, -1 for short and 0 otherwise
func (d Direction) Sign() float64 {
	switch d {
	case DirectionLong:
		return 1
	case DirectionShort:
		return -1
	default:
		return 0
	}
}

// Signal is the outcome of one rule evaluation.
// Entry, targets and stop are only meaningful for Long and Short.
type Signal struct {
	Symbol     string    `json:"symbol"`
	Rule       RuleKind  `json:"rule"`
	Direction  Direction `json:"direction"`
	Price      float64   `json:"price"` // latest close
	Entry      float64   `json:"entry,omitempty"`
	Target1    float64   `json:"target1,omitempty"`
	Target2    float64   `json:"target2,omitempty"`
	Target3    float64   `json:"target3,omitempty"`
	HasTarget3 bool      `json:"-"`
	StopLoss   float64   `json:"stop_loss,omitempty"`
	ATR        float64   `json:"atr,omitempty"` // effective ATR used for sizing
	Reason     string    `json:"reason,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// IsActionable reports whether the signal is Long or Short
func (s Signal) IsActionable() bool {
	return s.Direction == DirectionLong || s.Direction == DirectionShort
}

// Neutral builds a flat-market signal carrying only the current price
func Neutral(price float64, reason string) Signal {
	return Signal{Direction: DirectionNeutral, Price: price, Reason: reason}
}

// Unavailable builds a signal for series that could not be evaluated
func Unavailable(reason string) Signal {
	return Signal{Direction: DirectionUnavailable, Reason: reason}
}

// NoDataPrefix starts the reason of signals whose candles could not be fetched.
const NoDataPrefix = "no data: "

// NoData builds the signal reported when the candle fetch itself failed, so it
// reads differently from a short series.
func NoData(err error) Signal {
	return Unavailable(NoDataPrefix + err.Error())
}

package strategy

import (
	"fmt"

	apperrors "github.com/ducminhle1904/futures-signal-engine/internal/errors"
	"github.com/ducminhle1904/futures-signal-engine/internal/indicators"
)

// Params is the immutable configuration shared by the rules and the backtest runner.
type Params struct {
	ATRPeriod     int     `yaml:"atr_period" json:"atr_period"`
	ATRMultiplier float64 `yaml:"atr_multiplier" json:"atr_multiplier"` // stop distance, and the confluence target distance
	RSIPeriod     int     `yaml:"rsi_period" json:"rsi_period"`

	// EMA-cross configuration of the confluence rule
	EMAFast int `yaml:"ema_fast" json:"ema_fast"`
	EMASlow int `yaml:"ema_slow" json:"ema_slow"`

	// MACD configuration, independent from the EMA cross above
	MACDFast   int `yaml:"macd_fast" json:"macd_fast"`
	MACDSlow   int `yaml:"macd_slow" json:"macd_slow"`
	MACDSignal int `yaml:"macd_signal" json:"macd_signal"`

	// ATR multiples of TP1..TP3 for the breakout and oracle rules
	TargetMultipliers [3]float64 `yaml:"target_multipliers" json:"target_multipliers"`
	// Fraction of price used as ATR when neither ATR nor the previous range is usable
	VolatilityFloor float64 `yaml:"volatility_floor" json:"volatility_floor"`

	RSILongMin  float64 `yaml:"rsi_long_min" json:"rsi_long_min"`
	RSILongMax  float64 `yaml:"rsi_long_max" json:"rsi_long_max"`
	RSIShortMin float64 `yaml:"rsi_short_min" json:"rsi_short_min"`

	// Number of trailing decision points replayed by the backtest runner; 0 replays all
	BacktestSlices int `yaml:"backtest_slices" json:"backtest_slices"`
}

// DefaultParams returns the defaults of the original dashboards
func DefaultParams() Params {
	return Params{
		ATRPeriod:         14,
		ATRMultiplier:     1.5,
		RSIPeriod:         14,
		EMAFast:           20,
		EMASlow:           50,
		MACDFast:          12,
		MACDSlow:          26,
		MACDSignal:        9,
		TargetMultipliers: [3]float64{0.5, 1.0, 1.5},
		VolatilityFloor:   0.005,
		RSILongMin:        40,
		RSILongMax:        60,
		RSIShortMin:       70,
		BacktestSlices:    50,
	}
}

// Validate checks that the parameters describe a computable configuration
func (p Params) Validate() error {
	fail := func(format string, args ...interface{}) error {
		return apperrors.NewConfigurationError("strategy", "Params.Validate", fmt.Sprintf(format, args...))
	}

	for name, v := range map[string]int{
		"atr_period":  p.ATRPeriod,
		"rsi_period":  p.RSIPeriod,
		"ema_fast":    p.EMAFast,
		"ema_slow":    p.EMASlow,
		"macd_fast":   p.MACDFast,
		"macd_slow":   p.MACDSlow,
		"macd_signal": p.MACDSignal,
	} {
		if v <= 0 {
			return fail("%s must be positive, got %d", name, v)
		}
	}
	if p.EMAFast >= p.EMASlow {
		return fail("ema_fast (%d) must be below ema_slow (%d)", p.EMAFast, p.EMASlow)
	}
	if p.MACDFast >= p.MACDSlow {
		return fail("macd_fast (%d) must be below macd_slow (%d)", p.MACDFast, p.MACDSlow)
	}
	if p.ATRMultiplier <= 0 {
		return fail("atr_multiplier must be positive, got %.4f", p.ATRMultiplier)
	}
	prev := 0.0
	for _, m := range p.TargetMultipliers {
		if m <= prev {
			return fail("target_multipliers must be positive and ascending, got %v", p.TargetMultipliers)
		}
		prev = m
	}
	if p.VolatilityFloor <= 0 || p.VolatilityFloor >= 1 {
		return fail("volatility_floor must be in (0,1), got %.4f", p.VolatilityFloor)
	}
	if p.RSILongMin < 0 || p.RSILongMax > 100 || p.RSILongMin > p.RSILongMax {
		return fail("rsi long band [%.1f, %.1f] is invalid", p.RSILongMin, p.RSILongMax)
	}
	if p.RSIShortMin < 0 || p.RSIShortMin > 100 {
		return fail("rsi_short_min must be in [0,100], got %.1f", p.RSIShortMin)
	}
	if p.BacktestSlices < 0 {
		return fail("backtest_slices must not be negative, got %d", p.BacktestSlices)
	}
	return nil
}

// SnapshotConfig maps the parameters onto the indicator windows
func (p Params) SnapshotConfig() indicators.SnapshotConfig {
	return indicators.SnapshotConfig{
		EMAFast:    p.EMAFast,
		EMASlow:    p.EMASlow,
		MACDFast:   p.MACDFast,
		MACDSlow:   p.MACDSlow,
		MACDSignal: p.MACDSignal,
		RSIPeriod:  p.RSIPeriod,
		ATRPeriod:  p.ATRPeriod,
	}
}

package indicators

import (
	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

// SnapshotConfig selects the windows of every indicator in a Snapshot.
type SnapshotConfig struct {
	EMAFast    int
	EMASlow    int
	MACDFast   int
	MACDSlow   int
	MACDSignal int
	RSIPeriod  int
	ATRPeriod  int
}

// DefaultSnapshotConfig is the EMA 20/50, MACD 12/26/9, RSI 14, ATR 14 set.
func DefaultSnapshotConfig() SnapshotConfig {
	return SnapshotConfig{
		EMAFast:    20,
		EMASlow:    50,
		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,
		RSIPeriod:  14,
		ATRPeriod:  14,
	}
}

// RequiredPeriods is the number of candles needed for every field to be defined.
func (c SnapshotConfig) RequiredPeriods() int {
	need := c.EMAFast
	for _, n := range []int{
		c.EMASlow,
		NewMACD(c.MACDFast, c.MACDSlow, c.MACDSignal).GetRequiredPeriods(),
		NewRSI(c.RSIPeriod).GetRequiredPeriods(),
		NewATR(c.ATRPeriod).GetRequiredPeriods(),
	} {
		if n > need {
			need = n
		}
	}
	return need
}

// Snapshot holds the latest reading of every indicator the confluence rule needs.
type Snapshot struct {
	EMAFast    Point
	EMASlow    Point
	MACDLine   Point
	MACDSignal Point
	RSI        Point
	ATR        Point
}

// NewSnapshot computes a fresh Snapshot for the last candle of data.
func NewSnapshot(data []types.OHLCV, cfg SnapshotConfig) Snapshot {
	var macd, macdSignal Point
	if series := NewMACD(cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal).Series(data); len(series) > 0 {
		last := series[len(series)-1]
		macd, macdSignal = last.Line, last.Signal
	}

	return Snapshot{
		EMAFast:    Last(NewEMA(cfg.EMAFast).Series(data)),
		EMASlow:    Last(NewEMA(cfg.EMASlow).Series(data)),
		MACDLine:   macd,
		MACDSignal: macdSignal,
		RSI:        Last(NewRSI(cfg.RSIPeriod).Series(data)),
		ATR:        Last(NewATR(cfg.ATRPeriod).Series(data)),
	}
}

// Complete reports whether every reading is defined.
func (s Snapshot) Complete() bool {
	return s.EMAFast.Valid && s.EMASlow.Valid && s.MACDLine.Valid &&
		s.MACDSignal.Valid && s.RSI.Valid && s.ATR.Valid
}

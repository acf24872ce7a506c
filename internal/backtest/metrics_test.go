package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func trades(outcomes ...interface{}) []Trade {
	var out []Trade
	for i := 0; i+1 < len(outcomes); i += 2 {
		out = append(out, Trade{Outcome: outcomes[i].(Outcome), ReturnPercent: outcomes[i+1].(float64)})
	}
	return out
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, Summary{}, s)
}

func TestSummarizeAccuracyExcludesNeutral(t *testing.T) {
	s := Summarize(trades(
		OutcomeWin, 1.0,
		OutcomeLoss, -2.0,
		OutcomeNeutral, 0.5,
		OutcomeWin, 1.5,
	))

	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 1, s.Losses)
	assert.Equal(t, 1, s.Neutrals)
	assert.Equal(t, 4, s.TotalTrades)
	assert.InDelta(t, 66.6667, s.AccuracyPercent, 1e-3)
	assert.InDelta(t, 1.0, s.CumulativeReturnPercent, 1e-9)
	assert.InDelta(t, 0.25, s.AverageReturnPercent, 1e-9)
	assert.InDelta(t, 3.0/2.0, s.ProfitFactor, 1e-9)
}

func TestSummarizeOnlyNeutral(t *testing.T) {
	s := Summarize(trades(OutcomeNeutral, 0.2, OutcomeNeutral, -0.1))
	assert.Equal(t, 0.0, s.AccuracyPercent)
	assert.Equal(t, 2, s.Neutrals)
	assert.InDelta(t, 0.1, s.CumulativeReturnPercent, 1e-9)
}

func TestSummarizeMaxConsecutiveLosses(t *testing.T) {
	s := Summarize(trades(
		OutcomeLoss, -1.0,
		OutcomeLoss, -1.0,
		OutcomeNeutral, 0.0,
		OutcomeLoss, -1.0,
		OutcomeWin, 2.0,
		OutcomeLoss, -1.0,
	))
	assert.Equal(t, 3, s.MaxConsecutiveLosses)
}

func TestSummarizeProfitFactorWithoutLosses(t *testing.T) {
	s := Summarize(trades(OutcomeWin, 1.0, OutcomeWin, 2.0))
	assert.Equal(t, 0.0, s.ProfitFactor)
	assert.Equal(t, 100.0, s.AccuracyPercent)
	assert.Greater(t, s.SharpeRatio, 0.0)
}

func TestSharpeRatioZeroVolatility(t *testing.T) {
	s := Summarize(trades(OutcomeWin, 1.0, OutcomeWin, 1.0, OutcomeWin, 1.0))
	assert.Equal(t, 0.0, s.SharpeRatio)
}

package backtest

import (
	"math"
)

// Summary aggregates the trades of one backtest run
type Summary struct {
	Wins        int `json:"wins"`
	Losses      int `json:"losses"`
	Neutrals    int `json:"neutrals"`
	TotalTrades int `json:"total_trades"`

	// wins / (wins + losses) * 100; neutral outcomes are excluded, 0 without decisive trades
	AccuracyPercent         float64 `json:"accuracy_percent"`
	CumulativeReturnPercent float64 `json:"cumulative_return_percent"`
	AverageReturnPercent    float64 `json:"average_return_percent"`

	// gross positive return / gross negative return; 0 when no trade lost money
	ProfitFactor         float64 `json:"profit_factor"`
	SharpeRatio          float64 `json:"sharpe_ratio"`
	MaxConsecutiveLosses int     `json:"max_consecutive_losses"`
}

// Summarize computes the aggregate of a trade list
func Summarize(trades []Trade) Summary {
	s := Summary{TotalTrades: len(trades)}
	if len(trades) == 0 {
		return s
	}

	streak := 0
	for _, t := range trades {
		switch t.Outcome {
		case OutcomeWin:
			s.Wins++
			streak = 0
		case OutcomeLoss:
			s.Losses++
			streak++
			if streak > s.MaxConsecutiveLosses {
				s.MaxConsecutiveLosses = streak
			}
		default:
			s.Neutrals++
		}
		s.CumulativeReturnPercent += t.ReturnPercent
	}

	if decisive := s.Wins + s.Losses; decisive > 0 {
		s.AccuracyPercent = float64(s.Wins) / float64(decisive) * 100
	}
	s.AverageReturnPercent = s.CumulativeReturnPercent / float64(len(trades))
	s.ProfitFactor = profitFactor(trades)
	s.SharpeRatio = sharpeRatio(trades)
	return s
}

func profitFactor(trades []Trade) float64 {
	totalProfit, totalLoss := 0.0, 0.0
	for _, t := range trades {
		if t.ReturnPercent > 0 {
			totalProfit += t.ReturnPercent
		} else {
			totalLoss += math.Abs(t.ReturnPercent)
		}
	}
	if totalLoss == 0 {
		return 0
	}
	return totalProfit / totalLoss
}

// sharpeRatio is the per-trade mean return over its standard deviation, risk free rate 0
func sharpeRatio(trades []Trade) float64 {
	if len(trades) < 2 {
		return 0
	}

	avg := 0.0
	for _, t := range trades {
		avg += t.ReturnPercent
	}
	avg /= float64(len(trades))

	variance := 0.0
	for _, t := range trades {
		variance += math.Pow(t.ReturnPercent-avg, 2)
	}
	stdDev := math.Sqrt(variance / float64(len(trades)))
	if stdDev < 1e-10 {
		return 0
	}
	return avg / stdDev
}

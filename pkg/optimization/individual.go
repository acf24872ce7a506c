package optimization

import (
	"github.com/ducminhle1904/futures-signal-engine/internal/backtest"
	"github.com/ducminhle1904/futures-signal-engine/internal/strategy"
)

// Individual is one candidate parameter set and its backtest score
type Individual struct {
	Params    strategy.Params
	Fitness   float64
	Summary   backtest.Summary
	Evaluated bool
	// false when the backtest could not run or traded too little to be trusted
	Valid bool
	Err   error
}

// NewIndividual creates an unevaluated individual
func NewIndividual(params strategy.Params) *Individual {
	return &Individual{Params: params}
}

// Copy returns a copy that keeps the score
func (i *Individual) Copy() *Individual {
	c := *i
	return &c
}

// Reset clears the score so the individual is evaluated again
func (i *Individual) Reset() {
	i.Fitness = 0
	i.Summary = backtest.Summary{}
	i.Evaluated = false
	i.Valid = false
	i.Err = nil
}

// better ranks valid individuals first and failed backtests last, then by fitness
func better(a, b *Individual) bool {
	if a.Valid != b.Valid {
		return a.Valid
	}
	if (a.Err == nil) != (b.Err == nil) {
		return a.Err == nil
	}
	return a.Fitness > b.Fitness
}

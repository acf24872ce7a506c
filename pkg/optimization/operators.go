package optimization

import (
	"math/rand"

	"github.com/ducminhle1904/futures-signal-engine/internal/strategy"
)

// gene reads and writes one tunable parameter
type gene struct {
	name   string
	mutate func(p *strategy.Params, r *OptimizationRanges, rng *rand.Rand)
	copy   func(dst *strategy.Params, src strategy.Params)
}

var genes = []gene{
	{"atr_period",
		func(p *strategy.Params, r *OptimizationRanges, rng *rand.Rand) {
			p.ATRPeriod = randomChoice(r.ATRPeriods, p.ATRPeriod, rng)
		},
		func(d *strategy.Params, s strategy.Params) { d.ATRPeriod = s.ATRPeriod }},
	{"atr_multiplier",
		func(p *strategy.Params, r *OptimizationRanges, rng *rand.Rand) {
			p.ATRMultiplier = randomChoice(r.ATRMultipliers, p.ATRMultiplier, rng)
		},
		func(d *strategy.Params, s strategy.Params) { d.ATRMultiplier = s.ATRMultiplier }},
	{"target_multipliers",
		func(p *strategy.Params, r *OptimizationRanges, rng *rand.Rand) {
			p.TargetMultipliers = randomChoice(r.TargetMultipliers, p.TargetMultipliers, rng)
		},
		func(d *strategy.Params, s strategy.Params) { d.TargetMultipliers = s.TargetMultipliers }},
	{"rsi_period",
		func(p *strategy.Params, r *OptimizationRanges, rng *rand.Rand) {
			p.RSIPeriod = randomChoice(r.RSIPeriods, p.RSIPeriod, rng)
		},
		func(d *strategy.Params, s strategy.Params) { d.RSIPeriod = s.RSIPeriod }},
	{"rsi_long_band",
		func(p *strategy.Params, r *OptimizationRanges, rng *rand.Rand) {
			p.RSILongMin = randomChoice(r.RSILongMin, p.RSILongMin, rng)
			p.RSILongMax = randomChoice(r.RSILongMax, p.RSILongMax, rng)
		},
		func(d *strategy.Params, s strategy.Params) {
			d.RSILongMin, d.RSILongMax = s.RSILongMin, s.RSILongMax
		}},
	{"rsi_short_min",
		func(p *strategy.Params, r *OptimizationRanges, rng *rand.Rand) {
			p.RSIShortMin = randomChoice(r.RSIShortMin, p.RSIShortMin, rng)
		},
		func(d *strategy.Params, s strategy.Params) { d.RSIShortMin = s.RSIShortMin }},
	{"ema",
		func(p *strategy.Params, r *OptimizationRanges, rng *rand.Rand) {
			p.EMAFast = randomChoice(r.EMAFast, p.EMAFast, rng)
			p.EMASlow = randomChoice(r.EMASlow, p.EMASlow, rng)
		},
		func(d *strategy.Params, s strategy.Params) { d.EMAFast, d.EMASlow = s.EMAFast, s.EMASlow }},
	{"macd",
		func(p *strategy.Params, r *OptimizationRanges, rng *rand.Rand) {
			p.MACDFast = randomChoice(r.MACDFast, p.MACDFast, rng)
			p.MACDSlow = randomChoice(r.MACDSlow, p.MACDSlow, rng)
			p.MACDSignal = randomChoice(r.MACDSignal, p.MACDSignal, rng)
		},
		func(d *strategy.Params, s strategy.Params) {
			d.MACDFast, d.MACDSlow, d.MACDSignal = s.MACDFast, s.MACDSlow, s.MACDSignal
		}},
}

// repairAttempts bounds the retries spent looking for a valid mutation
const repairAttempts = 8

// GeneticOperator implements selection, crossover and mutation over strategy.Params
type GeneticOperator struct {
	ranges *OptimizationRanges
}

// NewGeneticOperator creates a genetic operator with optimization ranges
func NewGeneticOperator(ranges *OptimizationRanges) *GeneticOperator {
	return &GeneticOperator{ranges: ranges}
}

// Randomize draws every gene from the ranges, keeping base where the result is invalid
func (op *GeneticOperator) Randomize(base strategy.Params, rng *rand.Rand) strategy.Params {
	for attempt := 0; attempt < repairAttempts; attempt++ {
		p := base
		for _, g := range genes {
			g.mutate(&p, op.ranges, rng)
		}
		if p.Validate() == nil {
			return p
		}
	}
	return base
}

// Crossover creates a child taking each gene from either parent
func (op *GeneticOperator) Crossover(parent1, parent2 *Individual, rate float64, rng *rand.Rand) *Individual {
	child := parent1.Params
	if rng.Float64() < rate {
		for _, g := range genes {
			if rng.Intn(2) == 1 {
				g.copy(&child, parent2.Params)
			}
		}
		if child.Validate() != nil {
			child = parent1.Params
		}
	}
	return NewIndividual(child)
}

// Mutate redraws one random gene of the individual
func (op *GeneticOperator) Mutate(ind *Individual, rate float64, rng *rand.Rand) {
	if rng.Float64() >= rate {
		return
	}

	for attempt := 0; attempt < repairAttempts; attempt++ {
		p := ind.Params
		genes[rng.Intn(len(genes))].mutate(&p, op.ranges, rng)
		if p.Validate() == nil {
			if p != ind.Params {
				ind.Params = p
				ind.Reset()
			}
			return
		}
	}
}

// Select chooses an individual using tournament selection
func (op *GeneticOperator) Select(pop *Population, tournamentSize int, rng *rand.Rand) *Individual {
	individuals := pop.Individuals()
	if len(individuals) == 0 {
		return nil
	}

	best := individuals[rng.Intn(len(individuals))]
	for i := 1; i < tournamentSize; i++ {
		candidate := individuals[rng.Intn(len(individuals))]
		if better(candidate, best) {
			best = candidate
		}
	}
	return best
}

// randomChoice selects a random element, or current when there is no choice
func randomChoice[T any](choices []T, current T, rng *rand.Rand) T {
	if len(choices) == 0 {
		return current
	}
	return choices[rng.Intn(len(choices))]
}

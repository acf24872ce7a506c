package optimization

import (
	"github.com/ducminhle1904/futures-signal-engine/internal/backtest"
	"github.com/ducminhle1904/futures-signal-engine/internal/strategy"
)

// Package optimization tunes strategy parameters with a genetic algorithm,
// scoring every candidate with a backtest over the same candles.

// Objective selects the backtest metric used as fitness
type Objective string

const (
	ObjectiveAccuracy Objective = "accuracy"
	ObjectiveReturn   Objective = "return"
)

// OptimizationConfig holds the configuration for the genetic algorithm
type OptimizationConfig struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	CrossoverRate  float64
	EliteSize      int
	TournamentSize int
	MaxWorkers     int

	Objective Objective
	// Candidates with fewer decisive trades than this are never preferred
	// over one that reaches it
	MinTrades int
	// 0 seeds from the clock
	Seed int64
}

// OptimizationRanges defines the candidate values of every tuned parameter.
// An empty list leaves that parameter at its base value.
type OptimizationRanges struct {
	ATRPeriods        []int
	ATRMultipliers    []float64
	TargetMultipliers [][3]float64
	RSIPeriods        []int
	RSILongMin        []float64
	RSILongMax        []float64
	RSIShortMin       []float64
	EMAFast           []int
	EMASlow           []int
	MACDFast          []int
	MACDSlow          []int
	MACDSignal        []int
}

// GenerationStats records the population after one generation
type GenerationStats struct {
	Generation     int
	BestFitness    float64
	AverageFitness float64
	Valid          int
}

// Result is the outcome of an optimization run
type Result struct {
	Best        *Individual
	Base        *Individual
	Generations []GenerationStats
	Evaluations int
}

// Improvement is the fitness gained over the base parameters
func (r *Result) Improvement() float64 {
	if r == nil || r.Best == nil || r.Base == nil || !r.Base.Valid {
		return 0
	}
	return r.Best.Fitness - r.Base.Fitness
}

// Evaluator scores one candidate parameter set
type Evaluator interface {
	Evaluate(params strategy.Params) (*backtest.Result, error)
}

package optimization

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/futures-signal-engine/internal/backtest"
	"github.com/ducminhle1904/futures-signal-engine/internal/strategy"
	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

// waves oscillates with a slow drift so the breakout rule fires in both directions
func waves(n int) []types.OHLCV {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	data := make([]types.OHLCV, n)
	prev := 100.0
	for i := range data {
		c := 100 + 5*math.Sin(float64(i)/3) + 0.1*float64(i)
		spread := 0.5 + float64(i%3)*0.3
		data[i] = types.OHLCV{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      prev,
			High:      math.Max(prev, c) + spread,
			Low:       math.Min(prev, c) - spread,
			Close:     c,
			Volume:    1000,
		}
		prev = c
	}
	return data
}

func smallConfig() OptimizationConfig {
	return OptimizationConfig{
		PopulationSize: 6,
		Generations:    3,
		MutationRate:   0.5,
		CrossoverRate:  0.8,
		EliteSize:      2,
		TournamentSize: 2,
		MaxWorkers:     2,
		MinTrades:      1,
		Seed:           7,
	}
}

func TestOptimize_NeverRanksBelowBase(t *testing.T) {
	base := strategy.DefaultParams()
	eval := NewBacktestEvaluator(context.Background(), "TEST", waves(200), strategy.NewBreakoutRule())

	res, err := NewOptimizer(smallConfig(), DefaultOptimizationRanges, nil).Optimize(context.Background(), base, eval)
	require.NoError(t, err)

	require.NotNil(t, res.Base)
	assert.Equal(t, base, res.Base.Params)
	require.True(t, res.Base.Valid)
	require.True(t, res.Best.Valid)
	assert.GreaterOrEqual(t, res.Best.Fitness, res.Base.Fitness)
	assert.GreaterOrEqual(t, res.Improvement(), 0.0)
	assert.NoError(t, res.Best.Params.Validate())

	require.Len(t, res.Generations, 3)
	assert.GreaterOrEqual(t, res.Evaluations, 6)
	for i := 1; i < len(res.Generations); i++ {
		assert.GreaterOrEqual(t, res.Generations[i].BestFitness, res.Generations[i-1].BestFitness)
	}
}

func TestOptimize_ReturnObjective(t *testing.T) {
	cfg := smallConfig()
	cfg.Objective = ObjectiveReturn
	eval := NewBacktestEvaluator(context.Background(), "TEST", waves(120), strategy.NewBreakoutRule())

	res, err := NewOptimizer(cfg, DefaultOptimizationRanges, nil).Optimize(context.Background(), strategy.DefaultParams(), eval)
	require.NoError(t, err)
	assert.Equal(t, res.Best.Summary.CumulativeReturnPercent, res.Best.Fitness)
}

func TestOptimize_NoCandidate(t *testing.T) {
	eval := NewBacktestEvaluator(context.Background(), "TEST", waves(1), strategy.NewBreakoutRule())

	_, err := NewOptimizer(smallConfig(), DefaultOptimizationRanges, nil).Optimize(context.Background(), strategy.DefaultParams(), eval)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoValidCandidate)
}

func TestOptimize_InvalidBase(t *testing.T) {
	base := strategy.DefaultParams()
	base.ATRMultiplier = 0
	eval := NewBacktestEvaluator(context.Background(), "TEST", waves(50), strategy.NewBreakoutRule())

	_, err := NewOptimizer(smallConfig(), DefaultOptimizationRanges, nil).Optimize(context.Background(), base, eval)
	assert.Error(t, err)
}

func TestOptimize_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	eval := NewBacktestEvaluator(ctx, "TEST", waves(100), strategy.NewBreakoutRule())

	_, err := NewOptimizer(smallConfig(), DefaultOptimizationRanges, nil).Optimize(ctx, strategy.DefaultParams(), eval)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestGeneticOperator_KeepsParamsValid(t *testing.T) {
	ranges := GetDefaultOptimizationRanges()
	op := NewGeneticOperator(&ranges)
	rng := rand.New(rand.NewSource(1))
	base := strategy.DefaultParams()

	for i := 0; i < 200; i++ {
		a := NewIndividual(op.Randomize(base, rng))
		b := NewIndividual(op.Randomize(base, rng))
		require.NoError(t, a.Params.Validate())

		child := op.Crossover(a, b, 1, rng)
		op.Mutate(child, 1, rng)
		require.NoError(t, child.Params.Validate())
		assert.False(t, child.Evaluated)
	}
}

func TestGeneticOperator_EmptyRangesKeepBase(t *testing.T) {
	op := NewGeneticOperator(&OptimizationRanges{})
	rng := rand.New(rand.NewSource(3))
	base := strategy.DefaultParams()

	assert.Equal(t, base, op.Randomize(base, rng))

	ind := NewIndividual(base)
	ind.Evaluated = true
	op.Mutate(ind, 1, rng)
	assert.Equal(t, base, ind.Params)
	assert.True(t, ind.Evaluated)
}

func TestPopulationRanking(t *testing.T) {
	errored := &Individual{Evaluated: true, Err: errors.New("short series")}
	thin := &Individual{Evaluated: true, Fitness: 90}
	good := &Individual{Evaluated: true, Valid: true, Fitness: 55}
	better := &Individual{Evaluated: true, Valid: true, Fitness: 60}

	pop := NewPopulation([]*Individual{errored, thin, good, better})
	assert.Same(t, better, pop.GetBest())
	assert.Equal(t, 2, pop.ValidCount())
	assert.InDelta(t, 57.5, pop.AverageFitness(), 1e-9)

	elite := pop.GetElite(3)
	require.Len(t, elite, 3)
	assert.Equal(t, 60.0, elite[0].Fitness)
	assert.Equal(t, 55.0, elite[1].Fitness)
	assert.Equal(t, 90.0, elite[2].Fitness)
	assert.Same(t, errored, pop.Individuals()[3])
}

func TestFitness(t *testing.T) {
	s := backtest.Summary{AccuracyPercent: 60, CumulativeReturnPercent: -2}
	assert.Equal(t, 60.0, Fitness(s, ObjectiveAccuracy))
	assert.Equal(t, -2.0, Fitness(s, ObjectiveReturn))
}

package optimization

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/ducminhle1904/futures-signal-engine/internal/backtest"
	"github.com/ducminhle1904/futures-signal-engine/internal/logger"
	"github.com/ducminhle1904/futures-signal-engine/internal/strategy"
	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

// ErrNoValidCandidate is returned when no parameter set could be backtested
var ErrNoValidCandidate = errors.New("no candidate could be backtested")

// BacktestEvaluator replays a rule over fixed candles for each candidate
type BacktestEvaluator struct {
	ctx    context.Context
	symbol string
	data   []types.OHLCV
	rule   strategy.Rule
}

// NewBacktestEvaluator creates an evaluator over data
func NewBacktestEvaluator(ctx context.Context, symbol string, data []types.OHLCV, rule strategy.Rule) *BacktestEvaluator {
	return &BacktestEvaluator{ctx: ctx, symbol: symbol, data: data, rule: rule}
}

// Evaluate backtests params over every decision point of the candles
func (e *BacktestEvaluator) Evaluate(params strategy.Params) (*backtest.Result, error) {
	params.BacktestSlices = 0
	runner := backtest.NewRunner(strategy.NewEngine(params, nil), nil)
	return runner.Run(e.ctx, e.symbol, e.data, e.rule)
}

// Optimizer runs the genetic algorithm
type Optimizer struct {
	config   OptimizationConfig
	operator *GeneticOperator
	log      *logger.Logger
	rng      *rand.Rand
}

// NewOptimizer creates an optimizer; zero config fields take the defaults
func NewOptimizer(config OptimizationConfig, ranges OptimizationRanges, log *logger.Logger) *Optimizer {
	if log == nil {
		log = logger.Nop()
	}
	config = config.withDefaults()

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Optimizer{
		config:   config,
		operator: NewGeneticOperator(&ranges),
		log:      log.With("optimizer"),
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Config returns the effective configuration
func (o *Optimizer) Config() OptimizationConfig {
	return o.config
}

// Optimize searches for the parameters scoring best on the evaluator. The base
// parameters are always part of the first generation, so the best result
// never ranks below base.
func (o *Optimizer) Optimize(ctx context.Context, base strategy.Params, eval Evaluator) (*Result, error) {
	if err := base.Validate(); err != nil {
		return nil, err
	}

	pop := o.initialPopulation(base)
	result := &Result{}
	var best *Individual

	for gen := 0; gen < o.config.Generations; gen++ {
		n, err := o.evaluatePopulation(ctx, pop, eval)
		result.Evaluations += n
		if err != nil {
			return nil, err
		}
		if gen == 0 {
			result.Base = pop.Individuals()[0].Copy()
		}

		pop.SortByFitness()
		top := pop.Individuals()[0]
		if best == nil || better(top, best) {
			best = top.Copy()
		}

		stats := GenerationStats{
			Generation:     gen + 1,
			BestFitness:    best.Fitness,
			AverageFitness: pop.AverageFitness(),
			Valid:          pop.ValidCount(),
		}
		result.Generations = append(result.Generations, stats)
		o.log.Debug("generation %d/%d: best %.2f avg %.2f (%d valid)",
			stats.Generation, o.config.Generations, stats.BestFitness, stats.AverageFitness, stats.Valid)

		if gen < o.config.Generations-1 {
			pop = o.nextGeneration(pop)
		}
	}

	// errored candidates rank last, so an errored best means every one failed
	if best == nil || best.Err != nil {
		if best != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoValidCandidate, best.Err)
		}
		return nil, ErrNoValidCandidate
	}
	if !best.Valid {
		o.log.Warning("no candidate reached %d decisive trades", o.config.MinTrades)
	}

	result.Best = best
	o.log.Info("optimization finished: %s %.2f (base %.2f) after %d evaluations",
		o.config.Objective, best.Fitness, result.Base.Fitness, result.Evaluations)
	return result, nil
}

func (o *Optimizer) initialPopulation(base strategy.Params) *Population {
	individuals := make([]*Individual, o.config.PopulationSize)
	individuals[0] = NewIndividual(base)
	for i := 1; i < len(individuals); i++ {
		individuals[i] = NewIndividual(o.operator.Randomize(base, o.rng))
	}
	return NewPopulation(individuals)
}

// evaluatePopulation scores every unevaluated individual in parallel and
// returns how many backtests ran
func (o *Optimizer) evaluatePopulation(ctx context.Context, pop *Population, eval Evaluator) (int, error) {
	var wg sync.WaitGroup
	workerChan := make(chan struct{}, o.config.MaxWorkers)
	count := 0

	for _, ind := range pop.Individuals() {
		if ind.Evaluated {
			continue
		}
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return count, err
		}

		count++
		wg.Add(1)
		go func(ind *Individual) {
			defer wg.Done()
			workerChan <- struct{}{}
			defer func() { <-workerChan }()

			o.score(ind, eval)
		}(ind)
	}

	wg.Wait()
	return count, ctx.Err()
}

func (o *Optimizer) score(ind *Individual, eval Evaluator) {
	ind.Evaluated = true

	res, err := eval.Evaluate(ind.Params)
	if err != nil {
		ind.Err = err
		return
	}

	ind.Summary = res.Summary
	ind.Fitness = Fitness(res.Summary, o.config.Objective)
	ind.Valid = res.Summary.Wins+res.Summary.Losses >= o.config.MinTrades
}

// Fitness maps a backtest summary onto the optimized metric
func Fitness(s backtest.Summary, objective Objective) float64 {
	if objective == ObjectiveReturn {
		return s.CumulativeReturnPercent
	}
	return s.AccuracyPercent
}

func (o *Optimizer) nextGeneration(pop *Population) *Population {
	next := pop.GetElite(o.config.EliteSize)

	for len(next) < pop.Size() {
		parent1 := o.operator.Select(pop, o.config.TournamentSize, o.rng)
		parent2 := o.operator.Select(pop, o.config.TournamentSize, o.rng)

		child := o.operator.Crossover(parent1, parent2, o.config.CrossoverRate, o.rng)
		o.operator.Mutate(child, o.config.MutationRate, o.rng)
		next = append(next, child)
	}
	return NewPopulation(next)
}

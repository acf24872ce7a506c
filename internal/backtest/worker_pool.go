package backtest

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/ducminhle1904/futures-signal-engine/internal/strategy"
	"github.com/ducminhle1904/futures-signal-engine/pkg/types"
)

// CandleSource loads the candles a batch job backtests
type CandleSource interface {
	GetKlines(ctx context.Context, symbol, interval string, limit int) ([]types.OHLCV, error)
}

// WorkerPool manages parallel backtest execution. Jobs share no mutable state,
// each one runs the same Runner over its own candle series.
type WorkerPool struct {
	runner      *Runner
	workerCount int
	jobQueue    chan BacktestJob
	resultQueue chan BacktestResult
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

// BacktestJob represents a single backtest task
type BacktestJob struct {
	ID       string
	Symbol   string
	Interval string
	Data     []types.OHLCV
	Rule     strategy.Rule
}

// BacktestResult represents the result of a backtest job
type BacktestResult struct {
	ID       string
	Symbol   string
	Interval string
	Result   *Result
	Duration time.Duration
	Error    error
}

// NewWorkerPool creates a new worker pool for parallel backtesting
func NewWorkerPool(ctx context.Context, runner *Runner, workerCount int, jobBufferSize int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		runner:      runner,
		workerCount: workerCount,
		jobQueue:    make(chan BacktestJob, jobBufferSize),
		resultQueue: make(chan BacktestResult, jobBufferSize),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start starts the worker pool
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// Stop closes the job queue, waits for the workers and closes the result channel.
// Results not yet read are discarded.
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	go func() {
		for range wp.resultQueue {
		}
	}()
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()
}

// SubmitJob submits a backtest job to the pool
func (wp *WorkerPool) SubmitJob(job BacktestJob) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	}
}

// GetResults returns the result channel for collecting completed jobs
func (wp *WorkerPool) GetResults() <-chan BacktestResult {
	return wp.resultQueue
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for {
		select {
		case job, ok := <-wp.jobQueue:
			if !ok {
				return
			}

			result := wp.processJob(job)

			select {
			case wp.resultQueue <- result:
			case <-wp.ctx.Done():
				return
			}

		case <-wp.ctx.Done():
			return
		}
	}
}

func (wp *WorkerPool) processJob(job BacktestJob) BacktestResult {
	startTime := time.Now()

	res, err := wp.runner.Run(wp.ctx, job.Symbol, job.Data, job.Rule)
	return BacktestResult{
		ID:       job.ID,
		Symbol:   job.Symbol,
		Interval: job.Interval,
		Result:   res,
		Duration: time.Since(startTime),
		Error:    err,
	}
}

// BatchConfig describes one symbol/interval pair of a batch
type BatchConfig struct {
	Symbol   string
	Interval string
	Limit    int
}

// BatchProcessor loads candles and backtests several symbol/interval pairs in parallel
type BatchProcessor struct {
	runner      *Runner
	source      CandleSource
	workerCount int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(runner *Runner, source CandleSource, workerCount int) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		source:      source,
		workerCount: workerCount,
	}
}

// ProcessBatch runs rule over every configuration. Load failures are reported
// in the corresponding result instead of aborting the batch. Results come back
// in completion order.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, configs []BatchConfig, rule strategy.Rule, progress *ProgressTracker) ([]BacktestResult, error) {
	pool := NewWorkerPool(ctx, bp.runner, bp.workerCount, len(configs))
	pool.Start()

	results := make([]BacktestResult, 0, len(configs))
	submitted := 0
	for i, cfg := range configs {
		id := generateJobID(cfg, i)
		data, err := bp.source.GetKlines(ctx, cfg.Symbol, cfg.Interval, cfg.Limit)
		if err != nil {
			results = append(results, BacktestResult{ID: id, Symbol: cfg.Symbol, Interval: cfg.Interval, Error: err})
			if progress != nil {
				progress.Increment()
			}
			continue
		}

		job := BacktestJob{ID: id, Symbol: cfg.Symbol, Interval: cfg.Interval, Data: data, Rule: rule}
		if err := pool.SubmitJob(job); err != nil {
			pool.Stop()
			return results, err
		}
		submitted++
	}

	for i := 0; i < submitted; i++ {
		select {
		case res := <-pool.GetResults():
			results = append(results, res)
			if progress != nil {
				progress.Increment()
			}
		case <-ctx.Done():
			pool.Stop()
			return results, ctx.Err()
		}
	}

	pool.Stop()
	return results, nil
}

func generateJobID(cfg BatchConfig, index int) string {
	return fmt.Sprintf("%s_%s_%d", cfg.Symbol, cfg.Interval, index)
}

// ProgressTracker tracks the progress of batch processing
type ProgressTracker struct {
	total     int
	completed int
	startTime time.Time
	mutex     sync.RWMutex
}

// NewProgressTracker creates a new progress tracker
func NewProgressTracker(total int) *ProgressTracker {
	return &ProgressTracker{
		total:     total,
		startTime: time.Now(),
	}
}

// Increment increments the completion count
func (pt *ProgressTracker) Increment() {
	pt.mutex.Lock()
	defer pt.mutex.Unlock()
	pt.completed++
}

// GetProgress returns completed, total, percentage and elapsed time
func (pt *ProgressTracker) GetProgress() (int, int, float64, time.Duration) {
	pt.mutex.RLock()
	defer pt.mutex.RUnlock()

	elapsed := time.Since(pt.startTime)
	if pt.total == 0 {
		return pt.completed, pt.total, 100, elapsed
	}
	progress := float64(pt.completed) / float64(pt.total) * 100

	return pt.completed, pt.total, progress, elapsed
}

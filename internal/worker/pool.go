package worker

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type ProcessFunc func(ctx context.Context, source string) (any, error)

// WorkerPool runs ProcessFunc over page sources with a fixed number of
// workers. Throttled tasks share one rate limiter.
type WorkerPool struct {
	workers     int
	taskQueue   chan Task
	resultChan  chan Result
	wg          sync.WaitGroup
	taskGenWg   sync.WaitGroup
	statsMu     sync.Mutex
	stats       *Stats
	logger      *zap.Logger
	rateLimiter *rate.Limiter
}

func NewPool(workers, rateLimit int, logger *zap.Logger) *WorkerPool {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers < 1 {
		workers = 1
	}
	if rateLimit < 1 {
		rateLimit = 1
	}

	return &WorkerPool{
		workers:     workers,
		taskQueue:   make(chan Task, workers*2),
		resultChan:  make(chan Result, workers*2),
		stats:       &Stats{StartTime: time.Now()},
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
	}
}

// Process starts the workers and returns the result channel. The channel is
// closed once every task has been handled or ctx is done.
func (wp *WorkerPool) Process(ctx context.Context, sources []string, throttle func(string) bool, processFunc ProcessFunc) <-chan Result {
	wp.stats.Total = len(sources)

	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, processFunc)
	}

	wp.taskGenWg.Add(1)
	go func() {
		defer wp.taskGenWg.Done()
		wp.generateTasks(ctx, sources, throttle)
	}()

	go func() {
		wp.taskGenWg.Wait()
		wp.wg.Wait()
		wp.logFinalStats()
		close(wp.resultChan)
	}()

	return wp.resultChan
}

// Run processes every source and returns the results in input order.
func (wp *WorkerPool) Run(ctx context.Context, sources []string, throttle func(string) bool, processFunc ProcessFunc) []Result {
	results := make([]Result, 0, len(sources))
	for r := range wp.Process(ctx, sources, throttle, processFunc) {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Task.Index < results[j].Task.Index
	})
	return results
}

func (wp *WorkerPool) generateTasks(ctx context.Context, sources []string, throttle func(string) bool) {
	defer close(wp.taskQueue)

	for i, source := range sources {
		task := NewTask(i, source, throttle != nil && throttle(source))
		select {
		case wp.taskQueue <- task:
		case <-ctx.Done():
			wp.logger.Debug("task generator cancelled",
				zap.Int("sent", i), zap.Int("total", len(sources)))
			return
		}
	}
}

func (wp *WorkerPool) worker(ctx context.Context, processFunc ProcessFunc) {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		if task.Throttle {
			if err := wp.rateLimiter.Wait(ctx); err != nil {
				wp.send(ctx, Result{Task: task, Error: err})
				continue
			}
		}

		start := time.Now()

		data, err := func() (data any, err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("panic in processFunc: %v", r)
				}
			}()
			return processFunc(ctx, task.Source)
		}()

		result := Result{
			Task:  task,
			Data:  data,
			Error: err,
			Time:  time.Since(start),
		}
		wp.updateStats(result)

		if result.Error != nil {
			wp.logger.Debug("task failed", zap.String("source", task.Source), zap.Error(result.Error))
		}
		wp.send(ctx, result)
	}
}

func (wp *WorkerPool) send(ctx context.Context, r Result) {
	select {
	case wp.resultChan <- r:
	case <-ctx.Done():
	}
}

func (wp *WorkerPool) updateStats(result Result) {
	wp.statsMu.Lock()
	defer wp.statsMu.Unlock()

	done := wp.stats.Completed + wp.stats.Failed
	wp.stats.AvgTime = (wp.stats.AvgTime*time.Duration(done) + result.Time) / time.Duration(done+1)

	if result.Error != nil {
		wp.stats.Failed++
	} else {
		wp.stats.Completed++
	}

	completed := wp.stats.Completed + wp.stats.Failed
	wp.stats.SuccessRate = float64(wp.stats.Completed) / float64(completed) * 100
}

// Stats returns a snapshot of the pool counters.
func (wp *WorkerPool) Stats() Stats {
	wp.statsMu.Lock()
	defer wp.statsMu.Unlock()
	return *wp.stats
}

func (wp *WorkerPool) logFinalStats() {
	s := wp.Stats()
	wp.logger.Debug("page processing complete",
		zap.Int("total", s.Total),
		zap.Int("completed", s.Completed),
		zap.Int("failed", s.Failed),
		zap.Float64("success_rate", s.SuccessRate),
		zap.Duration("avg_time", s.AvgTime.Round(time.Millisecond)),
		zap.Duration("total_time", time.Since(s.StartTime).Round(time.Millisecond)))
}

package worker_pool

import (
	"context"
	"sync"
)

// Task is a unit of work that produces a T
type Task[T any] func(ctx context.Context) (T, error)

// Result is the outcome of one task
type Result[T any] struct {
	Value T
	Error error
}

// WorkerPool executes tasks concurrently with semaphore-based limiting
type WorkerPool[T any] struct {
	maxWorkers int
	semaphore  chan struct{}
}

// NewWorkerPool creates a pool running at most maxWorkers tasks at once.
// Browser sessions are heavy, so anything below one means one.
func NewWorkerPool[T any](maxWorkers int) *WorkerPool[T] {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}

	return &WorkerPool[T]{
		maxWorkers: maxWorkers,
		semaphore:  make(chan struct{}, maxWorkers),
	}
}

// Run executes all tasks and returns results in task order. Tasks that
// never started because ctx was cancelled carry ctx.Err().
func (wp *WorkerPool[T]) Run(ctx context.Context, tasks []Task[T]) []Result[T] {
	if len(tasks) == 0 {
		return []Result[T]{}
	}

	results := make([]Result[T], len(tasks))
	var wg sync.WaitGroup

	for i, task := range tasks {
		wg.Add(1)
		go func(index int, t Task[T]) {
			defer wg.Done()

			// Acquire semaphore (blocks if max workers already running)
			select {
			case wp.semaphore <- struct{}{}:
				defer func() { <-wp.semaphore }()
			case <-ctx.Done():
				results[index] = Result[T]{Error: ctx.Err()}
				return
			}

			if err := ctx.Err(); err != nil {
				results[index] = Result[T]{Error: err}
				return
			}

			value, err := t(ctx)
			results[index] = Result[T]{Value: value, Error: err}
		}(i, task)
	}

	wg.Wait()
	return results
}

// GetMaxWorkers returns the maximum number of workers
func (wp *WorkerPool[T]) GetMaxWorkers() int {
	return wp.maxWorkers
}

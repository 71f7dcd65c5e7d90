package worker_pool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPool_PreservesOrder(t *testing.T) {
	pool := NewWorkerPool[int](3)

	var tasks []Task[int]
	for i := 0; i < 10; i++ {
		tasks = append(tasks, func(ctx context.Context) (int, error) {
			time.Sleep(time.Duration(10-i) * time.Millisecond)
			return i * i, nil
		})
	}

	results := pool.Run(t.Context(), tasks)
	if len(results) != 10 {
		t.Fatalf("Expected 10 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Error != nil {
			t.Errorf("Task %d: unexpected error %v", i, r.Error)
		}
		if r.Value != i*i {
			t.Errorf("Task %d: expected %d, got %d", i, i*i, r.Value)
		}
	}
}

func TestWorkerPool_LimitsConcurrency(t *testing.T) {
	pool := NewWorkerPool[struct{}](2)
	var running, peak int32

	var tasks []Task[struct{}]
	for i := 0; i < 8; i++ {
		tasks = append(tasks, func(ctx context.Context) (struct{}, error) {
			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return struct{}{}, nil
		})
	}

	pool.Run(t.Context(), tasks)
	if peak > 2 {
		t.Errorf("Expected at most 2 concurrent tasks, got %d", peak)
	}
}

func TestWorkerPool_DefaultsToOneWorker(t *testing.T) {
	if got := NewWorkerPool[int](0).GetMaxWorkers(); got != 1 {
		t.Errorf("Expected 1 worker, got %d", got)
	}
}

func TestWorkerPool_TaskErrors(t *testing.T) {
	pool := NewWorkerPool[string](1)
	boom := errors.New("boom")

	results := pool.Run(t.Context(), []Task[string]{
		func(ctx context.Context) (string, error) { return "ok", nil },
		func(ctx context.Context) (string, error) { return "", boom },
	})

	if results[0].Value != "ok" || results[0].Error != nil {
		t.Errorf("Expected first task ok, got %+v", results[0])
	}
	if !errors.Is(results[1].Error, boom) {
		t.Errorf("Expected boom, got %v", results[1].Error)
	}
}

func TestWorkerPool_CancelledContext(t *testing.T) {
	pool := NewWorkerPool[int](1)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	var ran int32
	results := pool.Run(ctx, []Task[int]{
		func(ctx context.Context) (int, error) { atomic.AddInt32(&ran, 1); return 1, nil },
	})

	if !errors.Is(results[0].Error, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", results[0].Error)
	}
	if ran != 0 {
		t.Errorf("Expected task not to run, ran %d times", ran)
	}
}

func TestWorkerPool_Empty(t *testing.T) {
	if results := NewWorkerPool[int](2).Run(t.Context(), nil); len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}

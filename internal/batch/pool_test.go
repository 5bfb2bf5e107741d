package batch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/quantfolio/tapestry/internal/config"
	"github.com/quantfolio/tapestry/internal/core"
)

func testPool(workers int, timeout time.Duration) *Pool {
	return NewPool(config.BatchConfig{Workers: workers, JobTimeout: timeout}, zap.NewNop(), nil)
}

func TestPool_RunsAllJobs(t *testing.T) {
	p := testPool(3, time.Second)

	var ran int32
	jobs := make([]Job, 10)
	for i := range jobs {
		jobs[i] = Job{
			Name: fmt.Sprintf("job-%d", i),
			Run: func(ctx context.Context) error {
				atomic.AddInt32(&ran, 1)
				return nil
			},
		}
	}

	results := p.Run(context.Background(), jobs)

	if got := atomic.LoadInt32(&ran); got != 10 {
		t.Errorf("ran %d jobs, want 10", got)
	}
	if len(results) != 10 {
		t.Fatalf("got %d results, want 10", len(results))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Errorf("job %d failed: %v", i, r.Err)
		}
		if r.Name != fmt.Sprintf("job-%d", i) {
			t.Errorf("result %d is for %q, results out of order", i, r.Name)
		}
		if r.ID == "" {
			t.Errorf("job %d has no ID", i)
		}
	}
}

func TestPool_FailureDoesNotAbortBatch(t *testing.T) {
	p := testPool(2, time.Second)

	boom := errors.New("render exploded")
	jobs := []Job{
		{Name: "ok-1", Run: func(ctx context.Context) error { return nil }},
		{Name: "bad", Run: func(ctx context.Context) error { return boom }},
		{Name: "ok-2", Run: func(ctx context.Context) error { return nil }},
	}

	results := p.Run(context.Background(), jobs)

	failed := Failed(results)
	if len(failed) != 1 {
		t.Fatalf("got %d failures, want 1", len(failed))
	}
	if failed[0].Name != "bad" || !errors.Is(failed[0].Err, boom) {
		t.Errorf("unexpected failure: %+v", failed[0])
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Error("healthy jobs should have completed")
	}
}

func TestPool_JobTimeout(t *testing.T) {
	p := testPool(1, 20*time.Millisecond)

	jobs := []Job{{
		Name: "slow",
		Run: func(ctx context.Context) error {
			select {
			case <-time.After(5 * time.Second):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	}}

	results := p.Run(context.Background(), jobs)

	if results[0].Err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(results[0].Err, core.ErrJobTimeout) {
		t.Errorf("expected ErrJobTimeout, got %v", results[0].Err)
	}
}

func TestPool_BoundedConcurrency(t *testing.T) {
	p := testPool(2, time.Second)

	var active, peak int32
	jobs := make([]Job, 8)
	for i := range jobs {
		jobs[i] = Job{
			Name: "probe",
			Run: func(ctx context.Context) error {
				n := atomic.AddInt32(&active, 1)
				for {
					cur := atomic.LoadInt32(&peak)
					if n <= cur || atomic.CompareAndSwapInt32(&peak, cur, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&active, -1)
				return nil
			},
		}
	}

	p.Run(context.Background(), jobs)

	if got := atomic.LoadInt32(&peak); got > 2 {
		t.Errorf("peak concurrency %d exceeds worker bound 2", got)
	}
}

func TestPool_EmptyBatch(t *testing.T) {
	p := testPool(4, time.Second)

	results := p.Run(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("got %d results for empty batch", len(results))
	}
}

// Package batch runs independent render/export jobs through a bounded
// worker pool. Jobs share no mutable state, so the pool is a throughput
// optimization only; a job failure is recorded in its result and never
// aborts the rest of the batch.
package batch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quantfolio/tapestry/internal/config"
	"github.com/quantfolio/tapestry/internal/core"
	"github.com/quantfolio/tapestry/internal/metrics"
)

// Job is one unit of render/export work. Run must respect ctx; the pool
// cancels it at the configured per-job timeout.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Result reports one job's outcome.
type Result struct {
	ID       string
	Name     string
	Duration time.Duration
	Err      error
}

// Pool executes jobs with bounded concurrency and a per-job timeout.
type Pool struct {
	workers int
	timeout time.Duration
	logger  *zap.Logger
	metrics *metrics.Registry
}

// NewPool creates a pool. The metrics registry may be nil.
func NewPool(cfg config.BatchConfig, logger *zap.Logger, reg *metrics.Registry) *Pool {
	return &Pool{
		workers: cfg.Workers,
		timeout: cfg.JobTimeout,
		logger:  logger,
		metrics: reg,
	}
}

// Run executes all jobs and returns one result per job, in job order.
// It returns once every job has finished or timed out.
func (p *Pool) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	workers := p.workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	type indexed struct {
		idx int
		job Job
	}
	queue := make(chan indexed)
	done := make(chan struct{})

	for w := 0; w < workers; w++ {
		go func() {
			for it := range queue {
				results[it.idx] = p.runOne(ctx, it.job)
				done <- struct{}{}
			}
		}()
	}

	go func() {
		for i, j := range jobs {
			queue <- indexed{idx: i, job: j}
		}
		close(queue)
	}()

	for range jobs {
		<-done
	}
	return results
}

func (p *Pool) runOne(ctx context.Context, job Job) Result {
	res := Result{ID: uuid.New().String(), Name: job.Name}

	jobCtx := ctx
	var cancel context.CancelFunc
	if p.timeout > 0 {
		jobCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if p.metrics != nil {
		p.metrics.BatchJobStarted()
	}
	start := time.Now()

	errCh := make(chan error, 1)
	go func() {
		errCh <- job.Run(jobCtx)
	}()

	select {
	case err := <-errCh:
		if err != nil && errors.Is(err, context.DeadlineExceeded) {
			err = core.WrapError(core.ErrJobTimeout, err)
		}
		res.Err = err
	case <-jobCtx.Done():
		res.Err = core.WrapError(core.ErrJobTimeout, jobCtx.Err())
	}
	res.Duration = time.Since(start)

	status := "ok"
	if res.Err != nil {
		status = "failed"
		p.logger.Warn("batch job failed",
			zap.String("job_id", res.ID),
			zap.String("job", job.Name),
			zap.Duration("duration", res.Duration),
			zap.Error(res.Err))
	} else {
		p.logger.Debug("batch job finished",
			zap.String("job_id", res.ID),
			zap.String("job", job.Name),
			zap.Duration("duration", res.Duration))
	}
	if p.metrics != nil {
		p.metrics.BatchJobFinished(status)
	}
	return res
}

// Failed filters the results down to the ones that errored.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

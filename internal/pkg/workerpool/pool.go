package workerpool

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Job func(ctx context.Context)

type WorkerPool struct {
	queue  chan Job
	wg     sync.WaitGroup
	logger *zap.Logger
	once   sync.Once
}

func NewWorkerPool(ctx context.Context, workerCount int, queueSize int, logger *zap.Logger) *WorkerPool {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workerCount < 1 {
		workerCount = 1
	}

	pool := &WorkerPool{
		queue:  make(chan Job, queueSize),
		logger: logger,
	}

	pool.wg.Add(workerCount)
	for range workerCount {
		go pool.worker(ctx)
	}

	return pool
}

func (p *WorkerPool) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("worker received shutdown signal")
			return
		case job, ok := <-p.queue:
			if !ok {
				// queue closed and drained
				return
			}
			job(ctx)
		}
	}
}

// Submit queues the job without blocking and reports whether it was
// accepted.
func (p *WorkerPool) Submit(job Job) bool {
	select {
	case p.queue <- job:
		return true
	default:
		p.logger.Warn("worker pool queue full, job dropped")
		return false
	}
}

// SubmitWait queues the job, waiting for room in the queue.
func (p *WorkerPool) SubmitWait(ctx context.Context, job Job) error {
	select {
	case p.queue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish.
func (p *WorkerPool) Shutdown(ctx context.Context) {
	p.once.Do(func() { close(p.queue) })

	done := make(chan struct{})

	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		p.logger.Warn("worker pool shutdown timed out")
	case <-done:
		p.logger.Debug("worker pool shutdown complete")
	}
}

// WithRetry runs job up to retries times, sleeping delay between attempts.
// onGiveUp, when set, receives the last error.
func WithRetry(logger *zap.Logger, retries int, delay time.Duration, job func(ctx context.Context) error, onGiveUp func(err error)) Job {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context) {
		var err error
		for i := range retries {
			if ctx.Err() != nil {
				logger.Debug("job canceled before execution")
				return
			}

			err = job(ctx)
			if err == nil {
				return // success
			}
			logger.Warn("job failed",
				zap.Int("attempt", i+1),
				zap.Int("retries", retries),
				zap.Error(err))

			if i == retries-1 {
				break
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
		}
		logger.Error("job failed after max retries", zap.Error(err))
		if onGiveUp != nil {
			onGiveUp(err)
		}
	}
}

// Package background runs fire-and-forget work scheduled after a chat
// response has been finalized. Jobs execute on contexts detached from
// the request, so a client disconnect never cancels persistence, and
// every job carries its own timeout so a stalled sink cannot accumulate
// unbounded outstanding work.
package background

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type job struct {
	name string
	run  func(ctx context.Context) error
}

// Pool is a bounded worker pool. Submission never blocks: when the queue
// is full the job is dropped with a diagnostic, which is the contract the
// request path relies on.
type Pool struct {
	queue   chan job
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewPool starts workers goroutines consuming a queue of queueSize
// pending jobs. Each job runs under jobTimeout.
func NewPool(workers, queueSize int, jobTimeout time.Duration, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pool{
		queue:   make(chan job, queueSize),
		timeout: jobTimeout,
		logger:  logger,
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}

	return p
}

// Submit enqueues a job for execution. It reports false when the job was
// dropped because the queue is full or the pool is closed; the drop is
// logged, never surfaced to the request that scheduled it.
func (p *Pool) Submit(name string, run func(ctx context.Context) error) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.logger.Warn("background job rejected, pool closed", slog.String("job", name))
		return false
	}

	select {
	case p.queue <- job{name: name, run: run}:
		return true
	default:
		p.logger.Warn("background job dropped, queue full", slog.String("job", name))
		return false
	}
}

// Close stops intake and blocks until every queued job has finished.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.queue {
		p.execute(j)
	}
}

func (p *Pool) execute(j job) {
	ctx := context.Background()
	cancel := context.CancelFunc(func() {})
	if p.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
	}
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("background job panicked",
				slog.String("job", j.name),
				slog.Any("panic", r),
			)
		}
	}()

	start := time.Now()
	if err := j.run(ctx); err != nil {
		p.logger.Error("background job failed",
			slog.String("job", j.name),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()),
		)
		return
	}

	p.logger.Debug("background job completed",
		slog.String("job", j.name),
		slog.Duration("duration", time.Since(start)),
	)
}

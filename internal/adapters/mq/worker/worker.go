// Package worker runs queued scoring tasks and exposes the pool as a parallel
// map for the ranker.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/reciperank/internal/adapters/mq/queue"
	"github.com/okian/reciperank/pkg/logger"
	"github.com/okian/reciperank/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultChunkSize         = 256
	defaultParallelThreshold = 512
	metricsUpdateInterval    = 5 * time.Second
	workerShutdownTimeout    = 5 * time.Second
	poolShutdownTimeout      = 30 * time.Second
)

// Queue defines how workers receive tasks.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Task
}

// TaskQueue is the queue the pool feeds.
type TaskQueue interface {
	Queue
	Enqueue(ctx context.Context, t queue.Task) bool
	Len(ctx context.Context) int
	IsClosed() bool
	Close() error
}

// Worker processes queued tasks.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for scoring tasks.
type InMemoryWorker struct {
	queue Queue
	name  string

	// Shutdown control
	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	tasks := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case t, ok := <-tasks:
			if !ok {
				return
			}
			w.process(ctx, t)
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process runs one task and reports its outcome through Done.
func (w *InMemoryWorker) process(ctx context.Context, t queue.Task) {
	start := time.Now()
	err := runTask(t)
	metrics.RecordWorkerChunk(float64(time.Since(start).Microseconds()) / 1e3)
	if err != nil {
		metrics.RecordErrorByComponent("worker", "task_panic")
		w.logger.Error(ctx, "scoring task failed",
			logger.Int("start", t.Start),
			logger.Int("end", t.End),
			logger.Error(err),
		)
	}
}

// runTask applies Run to every index and always calls Done. A panic in Run
// fails the task instead of the process.
func runTask(t queue.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
		if t.Done != nil {
			t.Done(err)
		}
	}()
	for i := t.Start; i < t.End; i++ {
		t.Run(i)
	}
	return nil
}

// Pool manages multiple workers and fans scoring out to them.
type Pool struct {
	workers []*InMemoryWorker
	queue   TaskQueue

	chunkSize         int
	parallelThreshold int

	// Shutdown control. shutdown closes once the queue stops taking work;
	// killed closes when workers are stopped without draining.
	shutdown     chan struct{}
	shutdownOnce sync.Once
	killed       chan struct{}
	killOnce     sync.Once
	started      atomic.Bool
	stopped      atomic.Bool
	running      atomic.Int64

	logger logger.Logger
}

// NewPool creates a new worker pool. workerCount < 1 uses runtime.NumCPU().
func NewPool(workerCount int, q TaskQueue, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		workers:           make([]*InMemoryWorker, workerCount),
		queue:             q,
		chunkSize:         defaultChunkSize,
		parallelThreshold: defaultParallelThreshold,
		shutdown:          make(chan struct{}),
		killed:            make(chan struct{}),
		logger:            logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	for i := range workerCount {
		p.workers[i] = NewInMemoryWorker(q,
			WithName("worker-"+strconv.Itoa(i)),
			WithLogger(p.logger),
		)
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	metrics.UpdateWorkerIdleCount(workerCount)

	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool. Workers outlive ctx: when it ends the
// pool stops accepting chunks and the workers finish what is already queued.
func (p *Pool) Start(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	runCtx := context.WithoutCancel(ctx)
	for _, w := range p.workers {
		p.running.Add(1)
		go func(w *InMemoryWorker) {
			defer p.running.Add(-1)
			w.Run(runCtx)
		}(w)
	}
	go p.startMetricsUpdater(runCtx)
	go func() {
		select {
		case <-ctx.Done():
			p.logger.Info(runCtx, "context done, draining scoring queue")
			p.drain(runCtx)
		case <-p.shutdown:
		}
	}()
}

// drain stops new chunks from being queued. Workers exit once the queue is
// empty.
func (p *Pool) drain(ctx context.Context) {
	p.stopped.Store(true)
	if err := p.queue.Close(); err != nil {
		p.logger.Error(ctx, "error closing queue", logger.Error(err))
	}
	p.shutdownOnce.Do(func() { close(p.shutdown) })
}

// startMetricsUpdater periodically publishes worker and queue gauges.
func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	p.updateMetrics(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			p.updateMetrics(ctx)
		}
	}
}

func (p *Pool) updateMetrics(ctx context.Context) {
	active := int(p.running.Load())
	metrics.UpdateWorkerActiveCount(active)
	metrics.UpdateWorkerIdleCount(len(p.workers) - active)
	p.queue.Len(ctx)
}

// Map implements ranking.Mapper. Batches below the parallel threshold, and
// every batch while the pool is not running, run on the calling goroutine.
// Larger batches are split into chunks for the workers; a chunk the queue
// rejects runs inline so the call always completes.
func (p *Pool) Map(ctx context.Context, n int, fn func(i int)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n < p.parallelThreshold || !p.started.Load() || p.stopped.Load() || len(p.workers) == 0 {
		for i := range n {
			fn(i)
		}
		return nil
	}

	var (
		wg       sync.WaitGroup
		pending  atomic.Int64
		mu       sync.Mutex
		firstErr error
	)
	done := func(err error) {
		if err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
		}
		pending.Add(-1)
		wg.Done()
	}

	for start := 0; start < n; start += p.chunkSize {
		t := queue.Task{Start: start, End: min(start+p.chunkSize, n), Run: fn, Done: done}
		wg.Add(1)
		pending.Add(1)
		if !p.queue.Enqueue(ctx, t) {
			metrics.RecordInlineChunk()
			p.logger.Debug(ctx, "running scoring chunk inline",
				logger.Int("start", t.Start), logger.Error(p.rejectReason()))
			_ = runTask(t)
		}
	}

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return firstErrLocked(&mu, &firstErr)
	case <-ctx.Done():
		return fmt.Errorf("waiting for scoring chunks: %w", ctx.Err())
	case <-p.killed:
		// Workers finish their chunks before they exit, so nothing pending
		// means the batch completed.
		if pending.Load() == 0 {
			return firstErrLocked(&mu, &firstErr)
		}
		return ErrPoolStopped
	}
}

func firstErrLocked(mu *sync.Mutex, err *error) error {
	mu.Lock()
	defer mu.Unlock()
	return *err
}

func (p *Pool) rejectReason() error {
	if p.queue.IsClosed() {
		return queue.ErrClosed
	}
	return queue.ErrFull
}

// Stop stops every worker without draining the queue and waits briefly for
// each. Map calls still waiting on queued chunks fail with ErrPoolStopped.
func (p *Pool) Stop() {
	p.drain(context.Background())
	p.killOnce.Do(func() { close(p.killed) })
	if !p.started.Load() {
		return
	}

	for _, w := range p.workers {
		w.shutdownOnce.Do(func() { close(w.shutdown) })
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
}

// Shutdown closes the queue and lets the workers finish queued chunks within
// ctx. Workers still busy when ctx ends are stopped.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.drain(ctx)
	if !p.started.Load() {
		p.killOnce.Do(func() { close(p.killed) })
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			if err := w.Shutdown(shutdownCtx); err != nil {
				p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			}
		}
	}
	p.killOnce.Do(func() { close(p.killed) })
	metrics.UpdateWorkerActiveCount(0)
	metrics.UpdateWorkerIdleCount(len(p.workers))
	return nil
}

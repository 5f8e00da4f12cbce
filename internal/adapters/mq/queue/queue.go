// Package queue carries scoring work between request handlers and workers.
//
// The in-memory queue is bounded: Enqueue never blocks, it reports whether the
// task was accepted so the caller can run it itself.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/reciperank/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 4096
)

// Task is a contiguous range [Start, End) of per-candidate scoring work.
// Done must be called exactly once after Run has been applied to every index,
// with a non-nil error if the range could not be completed.
type Task struct {
	Start      int
	End        int
	Run        func(i int)
	Done       func(err error)
	EnqueuedAt time.Time
}

// Len returns the number of indices in the task.
func (t Task) Len() int {
	return t.End - t.Start
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a task to the queue.
	// Returns false if the queue is full or closed and the task was not enqueued.
	Enqueue(ctx context.Context, t Task) bool

	// Dequeue returns a channel that will receive tasks as they become available.
	// The channel will be closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Task

	// Len returns the current number of queued tasks.
	Len(ctx context.Context) int

	// Capacity returns the maximum number of queued tasks.
	Capacity() int

	// Close gracefully shuts down the queue.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	tasks    chan Task
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.tasks = make(chan Task, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue adds a task to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, t Task) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}
	if ctx.Err() != nil {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	}

	t.EnqueuedAt = time.Now()
	select {
	case q.tasks <- t:
		metrics.RecordQueueEnqueue()
		q.observeSize()
		return true
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel that will receive tasks as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Task {
	out := make(chan Task)
	go func() {
		defer close(out)
		for t := range q.tasks {
			select {
			case out <- t:
				metrics.RecordQueueDequeue()
				metrics.RecordQueueProcessingLatency(float64(time.Since(t.EnqueuedAt).Microseconds()) / 1e3)
				q.observeSize()
			case <-ctx.Done():
				// Nothing reads from out anymore, so neither the task in hand
				// nor anything still buffered will run.
				fail(t, ctx.Err())
				q.failBuffered(ctx.Err())
				return
			}
		}
	}()
	return out
}

func fail(t Task, err error) {
	if t.Done != nil {
		t.Done(err)
	}
}

// failBuffered fails every task currently in the buffer.
func (q *InMemoryQueue) failBuffered(err error) {
	for {
		select {
		case t, ok := <-q.tasks:
			if !ok {
				return
			}
			fail(t, err)
		default:
			q.observeSize()
			return
		}
	}
}

// Len returns the current number of queued tasks.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	return q.observeSize()
}

// Capacity returns the maximum number of queued tasks.
func (q *InMemoryQueue) Capacity() int {
	return q.capacity
}

func (q *InMemoryQueue) observeSize() int {
	size := len(q.tasks)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.tasks)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

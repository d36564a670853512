// Package worker runs fire-and-forget side effects (audit writes, emails)
// off the request path.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
)

// Task is one unit of background work. ctx carries the per-task timeout.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Submitter is what request-path code depends on.
type Submitter interface {
	Submit(task Task) bool
}

type Pool struct {
	queue   chan Task
	timeout time.Duration

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewPool starts workers goroutines draining a queue of queueSize tasks.
func NewPool(workers, queueSize int, timeout time.Duration) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	p := &Pool{
		queue:   make(chan Task, queueSize),
		timeout: timeout,
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.loop()
	}
	return p
}

// Submit enqueues task without blocking. It returns false and logs when the
// queue is full or the pool is stopped.
func (p *Pool) Submit(task Task) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		slog.Warn("worker pool stopped, task dropped", "task", task.Name)
		return false
	}
	select {
	case p.queue <- task:
		return true
	default:
		slog.Warn("worker queue full, task dropped", "task", task.Name)
		return false
	}
}

// Stop refuses new tasks and waits for queued ones to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) loop() {
	defer p.wg.Done()
	for task := range p.queue {
		p.run(task)
	}
}

func (p *Pool) run(task Task) {
	ctx := context.Background()
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			sentry.CurrentHub().Clone().Recover(r)
			slog.Error("worker task panicked", "task", task.Name, "error", fmt.Sprint(r))
		}
	}()

	if err := task.Run(ctx); err != nil {
		slog.Error("worker task failed", "task", task.Name, "error", err)
	}
}

// Inline runs each task synchronously on the caller's goroutine. Tests use it
// to observe side effects deterministically.
type Inline struct{}

func (Inline) Submit(task Task) bool {
	(&Pool{}).run(task)
	return true
}

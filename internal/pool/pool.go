// Package pool provides a fixed-size worker pool whose Submit never blocks.
//
// Tasks are queued without limit and picked up by a bounded number of workers in
// submission order. A panicking task is recovered and logged; the worker that ran it keeps
// serving the queue.
//
//	p := pool.New(4, logger)
//	p.Submit(func() { notify(event) }) // never blocks
//	...
//	_ = p.Close(ctx) // stops accepting, drains what is queued
package pool

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Task is a unit of work run by the pool.
type Task func()

// Pool runs submitted tasks on a fixed number of worker goroutines.
type Pool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []Task
	closed  bool
	panics  int
	workers int
	wg      sync.WaitGroup
	logger  *zap.Logger
}

// New starts a pool with the given number of workers. Values below 1 are treated as 1. A
// nil logger discards recovered panics.
func New(workers int, logger *zap.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pool{
		queue:   make([]Task, 0, 64),
		workers: workers,
		logger:  logger,
	}
	p.cond = sync.NewCond(&p.mu)

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.work()
	}
	return p
}

// Submit queues task. It never blocks. It returns false, and drops the task, once the pool
// is closed.
func (p *Pool) Submit(task Task) bool {
	if task == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	p.queue = append(p.queue, task)
	p.cond.Signal()
	return true
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.workers
}

// Pending returns the number of queued tasks not yet picked up by a worker.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Panics returns how many tasks panicked.
func (p *Pool) Panics() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.panics
}

// Close stops accepting tasks and waits until every queued task has run or ctx is done.
// It is safe to call more than once; later calls wait for the same drain.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		p.cond.Broadcast()
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) work() {
	defer p.wg.Done()
	for {
		task, ok := p.next()
		if !ok {
			return
		}
		p.run(task)
	}
}

// next blocks until a task is queued or the pool is closed and drained.
func (p *Pool) next() (Task, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.queue) == 0 && !p.closed {
		p.cond.Wait()
	}
	if len(p.queue) == 0 {
		return nil, false
	}

	task := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]
	return task, true
}

func (p *Pool) run(task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.mu.Lock()
			p.panics++
			p.mu.Unlock()
			p.logger.Error("pool task panicked",
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
		}
	}()
	task()
}

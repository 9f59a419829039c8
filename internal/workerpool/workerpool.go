// Package workerpool implements the concurrency primitives of spec.md §5
// and §4.4.2/§4.4.3 (C13): a bounded worker pool fed by typed tasks, a
// throughput meter with a 60-second sliding window, and a scoped-lock
// helper. Grounded on the teacher's core/connection_pool.go (background
// reaper goroutine + sync.Once shutdown) and TxPool.Run(ctx)'s
// context-cancellation idiom.
package workerpool

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// TaskKind tags the work variants named in spec.md §5.
type TaskKind int

const (
	TaskCanonicalize TaskKind = iota
	TaskExecuteQuery
	TaskValidateBlock
	TaskShutdown
)

// Task is a unit of work submitted to the pool. Fn is executed on a
// worker goroutine; Result, if non-nil, receives Fn's return value (or
// error) exactly once.
type Task struct {
	Kind   TaskKind
	Fn     func(ctx context.Context) (any, error)
	Result chan<- TaskResult
}

// TaskResult is delivered on a Task's Result channel.
type TaskResult struct {
	Value any
	Err   error
}

// Pool owns N worker goroutines fed by an unbuffered task channel, per
// spec.md §5 ("owns N OS threads fed by an MPSC channel"). Shutdown sends
// N Shutdown tokens and joins all workers, mirroring the teacher's
// ConnPool.Close (sync.Once + close(channel) + wait).
type Pool struct {
	n        int
	tasks    chan Task
	wg       sync.WaitGroup
	closeOnce sync.Once
	meter    *ThroughputMeter
}

// New starts a Pool with n worker goroutines. n<=0 defaults to 1.
func New(n int) *Pool {
	if n <= 0 {
		n = 1
	}
	p := &Pool{n: n, tasks: make(chan Task), meter: NewThroughputMeter()}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for t := range p.tasks {
		if t.Kind == TaskShutdown {
			return
		}
		val, err := t.Fn(context.Background())
		p.meter.Record(1)
		if t.Result != nil {
			t.Result <- TaskResult{Value: val, Err: err}
		}
	}
}

// Submit enqueues a task and blocks until a worker picks it up (the
// channel is unbuffered, matching the MPSC shape of spec.md §5).
func (p *Pool) Submit(t Task) { p.tasks <- t }

// Do submits fn as a task and blocks for its result.
func (p *Pool) Do(ctx context.Context, kind TaskKind, fn func(ctx context.Context) (any, error)) (any, error) {
	result := make(chan TaskResult, 1)
	p.Submit(Task{Kind: kind, Fn: fn, Result: result})
	select {
	case r := <-result:
		return r.Value, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Shutdown sends one Shutdown token per worker and waits for them to
// exit. Safe to call more than once.
func (p *Pool) Shutdown() {
	p.closeOnce.Do(func() {
		for i := 0; i < p.n; i++ {
			p.tasks <- Task{Kind: TaskShutdown}
		}
		p.wg.Wait()
		close(p.tasks)
	})
}

// Meter exposes the pool's throughput meter.
func (p *Pool) Meter() *ThroughputMeter { return p.meter }

// ParallelMap runs fn over items concurrently, bounded by maxConcurrency,
// and aggregates results deterministically (output[i] always corresponds
// to items[i]), per spec.md §5's "deterministic result aggregation" for
// the reasoner's optional parallel satisfiability mode. Built on
// errgroup+semaphore rather than a hand-rolled channel fan-out, per
// SPEC_FULL.md's DOMAIN STACK section.
func ParallelMap[T, R any](ctx context.Context, items []T, maxConcurrency int, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	out := make([]R, len(items))
	sem := semaphore.NewWeighted(int64(maxConcurrency))
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		i, item := i, item
		if err := sem.Acquire(gctx, 1); err != nil {
			return nil, fmt.Errorf("parallel map: acquire: %w", err)
		}
		g.Go(func() error {
			defer sem.Release(1)
			r, err := fn(gctx, item)
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

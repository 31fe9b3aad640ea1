// Package workers runs CPU-bound jobs on a fixed set of goroutines so that
// slow work does not occupy request-handling goroutines.
package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/JaimeStill/folio/pkg/lifecycle"
)

var (
	// ErrClosed indicates the pool is not running.
	ErrClosed = errors.New("worker pool closed")
	// ErrPanic indicates a job panicked. The worker survives.
	ErrPanic = errors.New("worker job panicked")
)

// System executes jobs on a bounded pool and coordinates with the lifecycle.
type System interface {
	// Start launches the workers and registers a shutdown hook that drains
	// queued jobs before returning.
	Start(lc *lifecycle.Coordinator) error
	// Do queues job and blocks until it has run, returning its error.
	// ctx only bounds the wait for a queue slot: once a worker picks the
	// job up it runs to completion.
	Do(ctx context.Context, job func() error) error
}

type task struct {
	job  func() error
	done chan error
}

type pool struct {
	workers int
	tasks   chan task
	logger  *slog.Logger

	mu      sync.RWMutex
	running bool
	wg      sync.WaitGroup
}

// New creates a worker pool. No goroutines run until Start is called.
func New(cfg *Config, logger *slog.Logger) System {
	return &pool{
		workers: cfg.Workers,
		tasks:   make(chan task, cfg.QueueSize),
		logger:  logger.With("system", "workers"),
	}
}

func (p *pool) Start(lc *lifecycle.Coordinator) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return fmt.Errorf("worker pool already started")
	}
	p.running = true

	for range p.workers {
		p.wg.Go(p.work)
	}
	p.logger.Info("worker pool started", "workers", p.workers, "queue", cap(p.tasks))

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		p.logger.Info("draining worker pool")

		p.mu.Lock()
		p.running = false
		close(p.tasks)
		p.mu.Unlock()

		p.wg.Wait()
		p.logger.Info("worker pool stopped")
	})

	return nil
}

func (p *pool) Do(ctx context.Context, job func() error) error {
	t := task{job: job, done: make(chan error, 1)}

	p.mu.RLock()
	if !p.running {
		p.mu.RUnlock()
		return ErrClosed
	}
	select {
	case p.tasks <- t:
	case <-ctx.Done():
		p.mu.RUnlock()
		return ctx.Err()
	}
	p.mu.RUnlock()

	return <-t.done
}

func (p *pool) work() {
	for t := range p.tasks {
		t.done <- p.run(t.job)
	}
}

func (p *pool) run(job func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("worker job panicked", "panic", r)
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return job()
}

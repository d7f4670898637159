// Package worker defines worker contracts for asynchronous submission dispatch.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"pontoval/internal/domain/dispatch"
	"pontoval/internal/domain/model"
	"pontoval/pkg/logger"
	"pontoval/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount    = 4
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Submission abstracts what workers read off the queue.
type Submission = model.Submission

// Outbox records delivery outcomes for accepted submissions.
type Outbox interface {
	MarkDelivered(ctx context.Context, id string, at time.Time) (bool, error)
}

// Queue defines how workers receive submissions.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Submission
}

// Worker drains the queue, runs the dispatcher and records the outcome.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing submissions.
type InMemoryWorker struct {
	queue      Queue
	dispatcher dispatch.Dispatcher
	outbox     Outbox
	name       string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, d dispatch.Dispatcher, o Outbox, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:      q,
		dispatcher: d,
		outbox:     o,
		name:       "worker",
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	subs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case sub, ok := <-subs:
			if !ok {
				// Channel closed, worker should stop
				return
			}
			if err := w.processSubmission(ctx, sub); err != nil {
				w.logger.Error(ctx, "error processing submission", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processSubmission handles a single submission.
func (w *InMemoryWorker) processSubmission(ctx context.Context, sub Submission) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	dispatchStart := time.Now()
	receipt, err := w.dispatcher.Deliver(ctx, sub)
	metrics.RecordDispatchLatency(float64(time.Since(dispatchStart).Milliseconds()))

	if err != nil {
		metrics.RecordDispatchError()
		metrics.RecordWorkerError()
		w.logger.Error(ctx, "dispatch failed for submission",
			logger.String("submissionID", sub.ID),
			logger.Error(err),
		)
		return fmt.Errorf("failed to dispatch submission %s: %w", sub.ID, err)
	}

	marked, err := w.outbox.MarkDelivered(ctx, receipt.ID, receipt.DeliveredAt)
	if err != nil {
		metrics.RecordWorkerError()
		w.logger.Error(ctx, "outbox update failed for submission",
			logger.String("submissionID", sub.ID),
			logger.Error(err),
		)
		return fmt.Errorf("outbox update failed: %w", err)
	}

	if marked {
		metrics.RecordSubmissionDelivered()
	}

	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers    []*InMemoryWorker
	queue      Queue
	dispatcher dispatch.Dispatcher
	outbox     Outbox

	// Shutdown control
	shutdown chan struct{}

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, q Queue, d dispatch.Dispatcher, o Outbox) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
		if workerCount < defaultWorkerCount {
			workerCount = defaultWorkerCount
		}
	}

	pool := &Pool{
		workers:    make([]*InMemoryWorker, workerCount),
		queue:      q,
		dispatcher: d,
		outbox:     o,
		shutdown:   make(chan struct{}),
		logger:     logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			q,
			d,
			o,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	close(p.shutdown)

	for _, w := range p.workers {
		select {
		case <-w.done:
			// Worker finished
		case <-time.After(workerShutdownTimeout):
			// Worker timeout
		}
	}
	metrics.UpdateWorkerCount(0)
}

// Shutdown gracefully shuts down the entire worker pool, draining the queue
// first when it supports closing.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	close(p.shutdown)

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	metrics.UpdateWorkerCount(0)
	return nil
}

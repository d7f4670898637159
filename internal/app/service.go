// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	submissionqueue "pontoval/internal/adapters/mq/queue"
	workerpool "pontoval/internal/adapters/mq/worker"
	repository "pontoval/internal/adapters/repository"
	"pontoval/internal/domain/convert"
	"pontoval/internal/domain/dedupe"
	"pontoval/internal/domain/dispatch"
	"pontoval/internal/domain/model"
	"pontoval/internal/domain/types"
	"pontoval/internal/domain/validate"
	"pontoval/pkg/logger"
	"pontoval/pkg/metrics"
)

// Service implements the API dependencies for the contact pipeline.
type Service struct {
	mu sync.RWMutex

	// Core components
	outbox     repository.Store
	deduper    dedupe.Deduper
	queue      submissionqueue.Queue
	dispatcher dispatch.Dispatcher
	workerPool *workerpool.Pool
	converter  *convert.Converter
	checker    *validate.Checker

	// Configuration
	workerCount    int
	queueSize      int
	dedupeSize     int
	outboxCapacity int
	// Dispatch latency configuration
	dispatchMinLatency time.Duration
	dispatchMaxLatency time.Duration

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the submission queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithOutboxCapacity sets the maximum number of retained submission records.
func WithOutboxCapacity(capacity int) Option {
	return func(s *Service) {
		if capacity > 0 {
			s.outboxCapacity = capacity
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDispatchLatencyRange sets the simulated dispatch latency range.
func WithDispatchLatencyRange(min, max time.Duration) Option {
	return func(s *Service) {
		if min > 0 && max > min {
			s.dispatchMinLatency = min
			s.dispatchMaxLatency = max
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:        4,
		queueSize:          10000,
		dedupeSize:         50000,
		outboxCapacity:     10000,
		stopCh:             make(chan struct{}),
		logger:             nil, // Will be replaced when service starts
		dispatchMinLatency: 80 * time.Millisecond,
		dispatchMaxLatency: 150 * time.Millisecond,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting contact pipeline...")

	// Initialize components
	s.converter = convert.New()
	s.checker = validate.NewChecker()
	s.outbox = repository.NewMemStore(ctx,
		repository.WithCapacity(s.outboxCapacity),
	)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = submissionqueue.NewInMemoryQueue(
		submissionqueue.WithCapacity(s.queueSize),
	)
	s.dispatcher = dispatch.NewSimulatedDispatcher(
		dispatch.WithLatencyRange(s.dispatchMinLatency, s.dispatchMaxLatency),
	)

	// Create and start the worker pool
	s.workerPool = workerpool.NewPool(s.workerCount, s.queue, s.dispatcher, s.outbox)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "contact pipeline started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)

	return nil
}

// Stop gracefully shuts down the service. The queue is closed first so
// workers drain the remaining submissions before the pool stops.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping contact pipeline...")

	if s.queue != nil {
		_ = s.queue.Close()
	}

	if s.workerPool != nil {
		s.workerPool.Stop()
	}

	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "contact pipeline stopped")
}

// Convert estimates the redemption value for a raw points input.
func (s *Service) Convert(ctx context.Context, raw string) convert.Result {
	result := s.converter.ConvertString(raw)
	if !result.OK {
		s.logger.Debug(ctx, "conversion rejected",
			logger.String("input", raw),
		)
	}
	return result
}

// ValidateContact checks the three fixed contact fields independently and
// returns one error per failing field.
func (s *Service) ValidateContact(ctx context.Context, name, email, message string) []validate.FieldError {
	var errs []validate.FieldError
	for _, f := range validate.ContactFields(name, email, message) {
		res := s.checker.Check(f)
		if res.Valid {
			continue
		}
		metrics.RecordValidationFailure(f.Name, res.Rule)
		errs = append(errs, validate.FieldError{Field: f.Name, Message: res.Message})
	}
	if len(errs) > 0 {
		s.logger.Debug(ctx, "contact validation failed",
			logger.Int("failedFields", len(errs)),
		)
	}
	return errs
}

// SeenAndRecord atomically checks if a submission id was seen and records it
// if not. Returns true if the id was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	return s.deduper.SeenAndRecord(ctx, id)
}

// Unrecord removes a submission id from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Enqueue records the submission in the outbox and pushes it onto the
// dispatch queue. Returns false on backpressure.
func (s *Service) Enqueue(ctx context.Context, sub model.Submission) bool {
	if err := s.outbox.Record(ctx, sub); err != nil {
		s.logger.Warn(ctx, "outbox record failed",
			logger.String("submissionID", sub.ID),
			logger.Error(err),
		)
	}

	if ok := s.queue.Enqueue(ctx, sub); !ok {
		s.logger.Warn(ctx, "submission queue full",
			logger.String("submissionID", sub.ID),
		)
		return false
	}

	s.logger.Debug(ctx, "submission enqueued",
		logger.String("submissionID", sub.ID),
		logger.String("email", sub.Email),
	)
	metrics.UpdateQueueSize(s.queue.Len(ctx))
	metrics.UpdateOutboxSize(s.outbox.Count(ctx))
	return true
}

// SubmissionStatus returns the outbox status for a given submission id.
func (s *Service) SubmissionStatus(ctx context.Context, id string) (types.SubmissionStatus, error) {
	return s.outbox.Status(ctx, id)
}

// RecentSubmissions returns up to n outbox records, newest first.
func (s *Service) RecentSubmissions(ctx context.Context, n int) ([]types.SubmissionStatus, error) {
	return s.outbox.Recent(ctx, n)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		outboxCount := s.outbox.Count(ctx)

		stats["queueLength"] = queueLen
		stats["outboxCount"] = outboxCount
		stats["dedupeEntries"] = s.deduper.Size()

		// Update metrics
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateOutboxSize(outboxCount)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}

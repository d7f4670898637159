// Package dispatch defines the contract for delivering accepted submissions.
//
// There is no real outbound hop; the implementation sleeps for a configurable
// random interval to model the latency a mail gateway would add. The delay is
// perceptual only and carries no semantics.
package dispatch

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"pontoval/internal/domain/model"
)

// Default dispatch configuration constants.
const (
	defaultMinLatency = 80 * time.Millisecond
	defaultMaxLatency = 150 * time.Millisecond
	defaultRandomSeed = 42
)

// Receipt confirms a delivered submission.
type Receipt struct {
	ID          string
	DeliveredAt time.Time
}

// Dispatcher delivers a submission. Implementations may simulate latency to
// model an external gateway.
type Dispatcher interface {
	// Deliver completes a submission, honoring ctx for cancellation.
	Deliver(ctx context.Context, sub model.Submission) (Receipt, error)
}

// Option applies a configuration option to the SimulatedDispatcher.
type Option func(*SimulatedDispatcher)

// WithLatencyRange sets the simulated delivery latency range.
func WithLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(d *SimulatedDispatcher) {
		if minLatency > 0 && maxLatency > minLatency {
			d.minLatency = minLatency
			d.maxLatency = maxLatency
		}
	}
}

// SimulatedDispatcher implements Dispatcher with a timed no-op delivery.
type SimulatedDispatcher struct {
	minLatency time.Duration
	maxLatency time.Duration

	// rng is guarded by mu; workers call Deliver concurrently.
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedDispatcher creates a new simulated dispatcher with configuration options.
func NewSimulatedDispatcher(opts ...Option) *SimulatedDispatcher {
	d := &SimulatedDispatcher{
		minLatency: defaultMinLatency,
		maxLatency: defaultMaxLatency,
		rng:        rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // deterministic seed for reproducible testing
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Deliver waits out the simulated latency and returns a receipt.
func (d *SimulatedDispatcher) Deliver(ctx context.Context, sub model.Submission) (Receipt, error) {
	d.mu.Lock()
	latency := d.minLatency + time.Duration(d.rng.Int63n(int64(d.maxLatency-d.minLatency)))
	d.mu.Unlock()

	select {
	case <-ctx.Done():
		return Receipt{}, fmt.Errorf("context cancelled: %w", ctx.Err())
	case <-time.After(latency):
	}

	return Receipt{
		ID:          sub.ID,
		DeliveredAt: time.Now(),
	}, nil
}

// Package repository defines the submission outbox interface and errors.
//
// The outbox tracks accepted submissions from enqueue to simulated delivery
// so the page can poll a receipt. It is in-memory only; nothing survives a
// restart.
package repository

import (
	"context"
	"time"

	"pontoval/internal/domain/model"
	"pontoval/internal/domain/types"
)

// Store is the read/write contract for the submission outbox.
type Store interface {
	// Record registers an accepted submission as queued.
	Record(ctx context.Context, sub model.Submission) error

	// MarkDelivered flips a submission to delivered. Returns false when the
	// id is unknown or already delivered.
	MarkDelivered(ctx context.Context, id string, at time.Time) (bool, error)

	// Status returns the current state for a receipt id.
	Status(ctx context.Context, id string) (types.SubmissionStatus, error)

	// Recent returns up to n statuses, newest first.
	Recent(ctx context.Context, n int) ([]types.SubmissionStatus, error)

	// Count returns the number of tracked submissions.
	Count(ctx context.Context) int
}

// Package types contains common types used across the application
package types

import "time"

// Submission lifecycle states.
const (
	StatusQueued    = "queued"
	StatusDelivered = "delivered"
)

// SubmissionStatus is the read shape returned by outbox queries.
type SubmissionStatus struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	ReceivedAt  time.Time  `json:"received_at"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}

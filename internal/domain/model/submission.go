// Package model contains domain models passed between layers.
package model

import "time"

// Submission is a validated contact-form submission flowing through the
// dispatch pipeline. ID doubles as the idempotency key.
type Submission struct {
	ID         string    // receipt id, unique per submission
	Name       string    // sender name, already validated
	Email      string    // sender address, already validated
	Message    string    // free-text body, already validated
	ReceivedAt time.Time // when the API accepted the submission
}

// Package repository defines the submission outbox interface and errors.
package repository

import "errors"

// Sentinel kinds for outbox errors.
var (
	ErrNotFound        = errors.New("submission not found")
	ErrAlreadyRecorded = errors.New("submission already recorded")
)

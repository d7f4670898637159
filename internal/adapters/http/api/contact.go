// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"pontoval/internal/domain/dedupe"
	"pontoval/internal/domain/model"
	"pontoval/internal/domain/validate"
	"pontoval/pkg/metrics"
)

// ContactDependencies defines the interface for contact submission processing.
type ContactDependencies interface {
	dedupe.Deduper
	ValidateContact(ctx context.Context, name, email, message string) []validate.FieldError
	Enqueue(ctx context.Context, sub model.Submission) bool
}

// ContactHandler handles contact-form submissions.
type ContactHandler struct {
	deps ContactDependencies
}

// NewContactHandler creates a new contact handler.
func NewContactHandler(deps ContactDependencies) *ContactHandler {
	return &ContactHandler{deps: deps}
}

// contactRequest mirrors the OpenAPI schema for POST /contact.
// SubmissionID is optional; the page sends one so a double-fired submit is
// answered as a duplicate instead of dispatched twice.
type contactRequest struct {
	SubmissionID string `json:"submission_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Message      string `json:"message"`
}

// HandlePostContact handles POST /contact requests.
// The three fields are validated independently; submission proceeds only
// when all of them pass.
func (h *ContactHandler) HandlePostContact(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_contact"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	if errs := h.deps.ValidateContact(r.Context(), req.Name, req.Email, req.Message); len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, fieldErrorsResponse{Errors: errs})
		return
	}

	id := req.SubmissionID
	if id == "" {
		id = uuid.NewString()
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), id) {
		metrics.RecordSubmissionDuplicate()
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", ID: id, Duplicate: true})
		return
	}

	sub := model.Submission{
		ID:         id,
		Name:       req.Name,
		Email:      req.Email,
		Message:    req.Message,
		ReceivedAt: time.Now(),
	}

	// Try to enqueue for async dispatch
	if ok := h.deps.Enqueue(r.Context(), sub); !ok {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), id)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}

	metrics.RecordSubmissionAccepted()
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", ID: id, Duplicate: false})
}

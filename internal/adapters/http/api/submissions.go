// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"pontoval/internal/adapters/repository"
	"pontoval/internal/domain/types"
)

// defaultRecentLimit applies when GET /submissions has no limit parameter.
const defaultRecentLimit = 20

// SubmissionsDependencies defines the interface for outbox read operations.
type SubmissionsDependencies interface {
	SubmissionStatus(ctx context.Context, id string) (types.SubmissionStatus, error)
	RecentSubmissions(ctx context.Context, n int) ([]types.SubmissionStatus, error)
}

// SubmissionsHandler handles outbox read requests.
type SubmissionsHandler struct {
	deps     SubmissionsDependencies
	maxLimit int
}

// NewSubmissionsHandler creates a new submissions handler.
func NewSubmissionsHandler(deps SubmissionsDependencies, maxLimit int) *SubmissionsHandler {
	return &SubmissionsHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetSubmission handles GET /submissions/{id} requests.
func (h *SubmissionsHandler) HandleGetSubmission(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /submissions/
	id := strings.TrimPrefix(r.URL.Path, "/submissions/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	st, err := h.deps.SubmissionStatus(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HandleListSubmissions handles GET /submissions?limit=N requests.
func (h *SubmissionsHandler) HandleListSubmissions(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_submissions"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n := defaultRecentLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		n = parsed
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	statuses, err := h.deps.RecentSubmissions(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if statuses == nil {
		statuses = []types.SubmissionStatus{}
	}
	writeJSON(w, http.StatusOK, statuses)
}

// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"pontoval/internal/domain/convert"
	"pontoval/internal/domain/dedupe"
	"pontoval/internal/domain/model"
	"pontoval/internal/domain/types"
	"pontoval/internal/domain/validate"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Convert estimates the redemption value for a raw points input.
	Convert(ctx context.Context, raw string) convert.Result

	// ValidateContact checks the three fixed contact fields independently.
	ValidateContact(ctx context.Context, name, email, message string) []validate.FieldError

	// Enqueue pushes a submission for async dispatch. Returns false on backpressure.
	Enqueue(ctx context.Context, sub model.Submission) bool

	// Read operations expose outbox data.
	SubmissionStatus(ctx context.Context, id string) (types.SubmissionStatus, error)
	RecentSubmissions(ctx context.Context, n int) ([]types.SubmissionStatus, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	convertHandler     *ConvertHandler
	contactHandler     *ContactHandler
	submissionsHandler *SubmissionsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxRecentLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		convertHandler:     NewConvertHandler(deps),
		contactHandler:     NewContactHandler(deps),
		submissionsHandler: NewSubmissionsHandler(deps, maxRecentLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/convert", MetricsMiddleware(s.convertHandler.HandlePostConvert, "convert"))
	mux.HandleFunc("/contact", MetricsMiddleware(s.contactHandler.HandlePostContact, "contact"))
	mux.HandleFunc("/submissions", MetricsMiddleware(s.submissionsHandler.HandleListSubmissions, "submissions"))
	mux.HandleFunc("/submissions/", MetricsMiddleware(s.submissionsHandler.HandleGetSubmission, "submission"))
}

// ackResponse acknowledges a contact submission.
type ackResponse struct {
	Status    string `json:"status"`
	ID        string `json:"id,omitempty"`
	Duplicate bool   `json:"duplicate"`
}

// fieldErrorsResponse reports per-field validation failures.
type fieldErrorsResponse struct {
	Errors []validate.FieldError `json:"errors"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

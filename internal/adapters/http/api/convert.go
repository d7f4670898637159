// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"pontoval/internal/domain/convert"
	"pontoval/pkg/metrics"
)

// ConvertDependencies defines the interface for conversion operations.
type ConvertDependencies interface {
	Convert(ctx context.Context, raw string) convert.Result
}

// ConvertHandler handles point-conversion requests.
type ConvertHandler struct {
	deps ConvertDependencies
}

// NewConvertHandler creates a new convert handler.
func NewConvertHandler(deps ConvertDependencies) *ConvertHandler {
	return &ConvertHandler{deps: deps}
}

// pointsValue accepts the points field both as a JSON string (what the page
// sends, preserving whatever the user typed) and as a JSON number.
type pointsValue string

func (p *pointsValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*p = pointsValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*p = pointsValue(n.String())
	return nil
}

// convertRequest mirrors the OpenAPI schema for POST /convert.
type convertRequest struct {
	Points pointsValue `json:"points"`
}

// HandlePostConvert handles POST /convert requests.
// Domain failures (non-numeric, zero, negative) are normal results with
// success=false, not HTTP errors; only malformed JSON is a 400.
func (h *ConvertHandler) HandlePostConvert(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_convert"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	result := h.deps.Convert(r.Context(), string(req.Points))
	metrics.RecordConversion(result.OK)
	writeJSON(w, http.StatusOK, result)
}

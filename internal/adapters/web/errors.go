package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"stocktrack/internal/core"
)

type errorResponse struct {
	Error     string            `json:"error"`
	Code      string            `json:"code"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps core errors onto HTTP statuses. Stock shortfalls
// split by detection stage: a validation-stage shortfall is a rejected request
// (422), an apply-stage shortfall is a lost race (409, resubmit).
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(errorResponse{
			Error:     "validation failed",
			Code:      "VALIDATION_ERROR",
			Fields:    ve.Fields,
			RequestID: requestIDFromContext(r.Context()),
		})
		return
	}

	var ise *core.InsufficientStockError
	if errors.As(err, &ise) {
		status := http.StatusUnprocessableEntity
		if ise.DetectedAt == core.DetectedAtApply {
			status = http.StatusConflict
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(struct {
			errorResponse
			ProductID int64 `json:"product_id"`
			Available int   `json:"available"`
			Required  int   `json:"required"`
		}{
			errorResponse: errorResponse{
				Error:     ise.Error(),
				Code:      "INSUFFICIENT_STOCK",
				RequestID: requestIDFromContext(r.Context()),
			},
			ProductID: ise.ProductID,
			Available: ise.Available,
			Required:  ise.Required,
		})
		return
	}

	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrCategoryHasProducts),
		errors.Is(err, core.ErrProductHasStock),
		errors.Is(err, core.ErrUserProtected),
		errors.Is(err, core.ErrAppointmentClosed):
		writeError(w, r, err.Error(), "CONFLICT", http.StatusConflict)
	case errors.Is(err, core.ErrInvalidCredentials):
		writeError(w, r, "invalid username or password", "UNAUTHORIZED", http.StatusUnauthorized)
	default:
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}

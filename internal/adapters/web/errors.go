package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"quote-to-cash/internal/app"
	"quote-to-cash/internal/core"
	"quote-to-cash/internal/logger"

	"go.uber.org/zap"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: logger.RequestIDFrom(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var errorCodes = []struct {
	err    error
	code   string
	status int
}{
	{core.ErrInvalidQuantity, "INVALID_QUANTITY", http.StatusBadRequest},
	{core.ErrInvalidDiscount, "INVALID_DISCOUNT", http.StatusBadRequest},
	{core.ErrInvalidPrice, "INVALID_PRICE", http.StatusBadRequest},
	{core.ErrInvalidInput, "INVALID_INPUT", http.StatusBadRequest},
	{core.ErrNotFound, "NOT_FOUND", http.StatusNotFound},
	{core.ErrIllegalTransition, "ILLEGAL_TRANSITION", http.StatusConflict},
	{core.ErrIllegalSourceStatus, "ILLEGAL_SOURCE_STATUS", http.StatusConflict},
	{app.ErrAIUnavailable, "AI_UNAVAILABLE", http.StatusServiceUnavailable},
}

// writeServiceError maps an ApplicationService error onto a status and code.
// Unrecognised errors are logged and reported as 500 without their text.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			writeError(w, r, err.Error(), ec.code, ec.status)
			return
		}
	}
	logger.FromCtx(r.Context()).Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
}

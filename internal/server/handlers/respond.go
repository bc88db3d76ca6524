package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/iudanet/medicnote/pkg/api"
)

// SendJSON writes data as a JSON response
func SendJSON(logger *slog.Logger, w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

// SendError writes an api.ErrorResponse
func SendError(logger *slog.Logger, w http.ResponseWriter, message string, statusCode int) {
	resp := api.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	SendJSON(logger, w, resp, statusCode)
}

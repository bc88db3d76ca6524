package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/iudanet/medicnote/pkg/api"
)

// RecordCounter counts live records of an owner
type RecordCounter interface {
	CountRecords(ctx context.Context, ownerID string) (int, error)
}

// HealthHandler serves the health check
type HealthHandler struct {
	logger  *slog.Logger
	records RecordCounter
	version string
}

// NewHealthHandler creates a new health check handler
func NewHealthHandler(logger *slog.Logger, records RecordCounter, version string) *HealthHandler {
	return &HealthHandler{
		logger:  logger,
		records: records,
		version: version,
	}
}

// Health handles GET /api/v1/health. The caller's record count is included
// when the request carries a valid token.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp := api.HealthResponse{
		Status:  "ok",
		Version: h.version,
	}

	if userID, ok := GetUserID(ctx); ok {
		count, err := h.records.CountRecords(ctx, userID)
		if err != nil {
			h.logger.ErrorContext(ctx, "Failed to count records", "user_id", userID, "error", err)
			SendError(h.logger, w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
		resp.Count = &count
	}

	SendJSON(h.logger, w, resp, http.StatusOK)
}

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/iudanet/medicnote/internal/models"
	"github.com/iudanet/medicnote/internal/server/storage"
	"github.com/iudanet/medicnote/internal/validation"
	"github.com/iudanet/medicnote/pkg/api"
)

// RecordsHandler serves /api/v1/tables/{table}/records. Every request acts
// on the authenticated user's records only.
type RecordsHandler struct {
	logger  *slog.Logger
	records storage.RecordStorage
	now     func() time.Time
}

// NewRecordsHandler creates a new records handler
func NewRecordsHandler(logger *slog.Logger, records storage.RecordStorage) *RecordsHandler {
	return &RecordsHandler{
		logger:  logger,
		records: records,
		now:     time.Now,
	}
}

// List handles GET /api/v1/tables/{table}/records
func (h *RecordsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, table, ok := h.scope(w, r)
	if !ok {
		return
	}

	if owner := r.URL.Query().Get("owner_id"); owner != "" && owner != userID {
		SendError(h.logger, w, "owner_id does not match the session", http.StatusForbidden)
		return
	}

	recs, err := h.records.ListRecords(ctx, table, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list records", "table", table, "user_id", userID, "error", err)
		SendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := api.ListRecordsResponse{Records: make([]api.Record, 0, len(recs))}
	for _, rec := range recs {
		resp.Records = append(resp.Records, toAPI(rec))
	}

	SendJSON(h.logger, w, resp, http.StatusOK)
}

// Create handles POST /api/v1/tables/{table}/records
func (h *RecordsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, table, ok := h.scope(w, r)
	if !ok {
		return
	}

	var req api.CreateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateRecordID(req.ID); err != nil {
		SendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.OwnerID != "" && req.OwnerID != userID {
		SendError(h.logger, w, "owner_id does not match the session", http.StatusForbidden)
		return
	}

	rec := &models.Record{
		ID:        req.ID,
		OwnerID:   userID,
		Table:     table,
		Fields:    req.Fields,
		CreatedAt: req.CreatedAt.UTC(),
		UpdatedAt: req.UpdatedAt.UTC(),
	}
	if rec.Fields == nil {
		rec.Fields = map[string]any{}
	}
	if req.CreatedAt.IsZero() {
		rec.CreatedAt = h.now().UTC()
	}
	if req.UpdatedAt.IsZero() {
		rec.UpdatedAt = rec.CreatedAt
	}

	if err := h.records.CreateRecord(ctx, rec); err != nil {
		if errors.Is(err, storage.ErrRecordExists) {
			h.logger.InfoContext(ctx, "Record id already taken", "table", table, "record_id", rec.ID)
			SendError(h.logger, w, "record already exists", http.StatusConflict)
			return
		}
		h.logger.ErrorContext(ctx, "Failed to create record", "table", table, "record_id", rec.ID, "error", err)
		SendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.DebugContext(ctx, "Record created", "table", table, "record_id", rec.ID, "user_id", userID)
	SendJSON(h.logger, w, toAPI(rec), http.StatusCreated)
}

// Get handles GET /api/v1/tables/{table}/records/{id}
func (h *RecordsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, table, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}

	rec, err := h.records.GetRecord(ctx, table, userID, id)
	if err != nil && !errors.Is(err, storage.ErrRecordNotFound) {
		h.logger.ErrorContext(ctx, "Failed to get record", "table", table, "record_id", id, "error", err)
		SendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}
	if rec == nil || rec.IsDeleted() {
		SendError(h.logger, w, "record not found", http.StatusNotFound)
		return
	}

	SendJSON(h.logger, w, toAPI(rec), http.StatusOK)
}

// Update handles PUT /api/v1/tables/{table}/records/{id}
func (h *RecordsHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, table, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}

	var req api.UpdateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UpdatedAt.IsZero() {
		SendError(h.logger, w, "updated_at is required", http.StatusBadRequest)
		return
	}
	if req.Fields == nil {
		req.Fields = map[string]any{}
	}

	rec, err := h.records.UpdateRecord(ctx, table, userID, id, req.Fields, req.UpdatedAt.UTC())
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) || errors.Is(err, storage.ErrRecordDeleted) {
			SendError(h.logger, w, "record not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "Failed to update record", "table", table, "record_id", id, "error", err)
		SendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.DebugContext(ctx, "Record updated", "table", table, "record_id", id, "user_id", userID)
	SendJSON(h.logger, w, toAPI(rec), http.StatusOK)
}

// Delete handles DELETE /api/v1/tables/{table}/records/{id}?deleted_at=
func (h *RecordsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, table, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := h.recordID(w, r)
	if !ok {
		return
	}

	deletedAt := h.now().UTC()
	if raw := r.URL.Query().Get("deleted_at"); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			SendError(h.logger, w, "deleted_at must be an RFC 3339 timestamp", http.StatusBadRequest)
			return
		}
		deletedAt = t.UTC()
	}

	if err := h.records.SoftDeleteRecord(ctx, table, userID, id, deletedAt); err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			SendError(h.logger, w, "record not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "Failed to delete record", "table", table, "record_id", id, "error", err)
		SendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.DebugContext(ctx, "Record deleted", "table", table, "record_id", id, "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}

// scope returns the caller and a known table, or writes the error response
func (h *RecordsHandler) scope(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.logger.Error("User ID not found in context")
		SendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return "", "", false
	}

	table := mux.Vars(r)["table"]
	if !models.IsKnownTable(table) {
		SendError(h.logger, w, "unknown table "+table, http.StatusBadRequest)
		return "", "", false
	}

	return userID, table, true
}

func (h *RecordsHandler) recordID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := mux.Vars(r)["id"]
	if err := validation.ValidateRecordID(id); err != nil {
		SendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return id, true
}

func toAPI(rec *models.Record) api.Record {
	return api.Record{
		ID:        rec.ID,
		OwnerID:   rec.OwnerID,
		Fields:    rec.Fields,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
		DeletedAt: rec.DeletedAt,
	}
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/medicnote/internal/models"
	"github.com/iudanet/medicnote/internal/server/storage/sqlite"
	"github.com/iudanet/medicnote/pkg/api"
)

type recordsFixture struct {
	handler *RecordsHandler
	store   *sqlite.Storage
	userID  string
}

func newRecordsFixture(t *testing.T) *recordsFixture {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.New(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	userID := uuid.New().String()
	require.NoError(t, store.CreateUser(ctx, &models.User{ID: userID, Username: "alice", PasswordHash: "x", CreatedAt: t0, UpdatedAt: t0}))

	return &recordsFixture{
		handler: NewRecordsHandler(testLogger(), store),
		store:   store,
		userID:  userID,
	}
}

// do calls fn as the fixture's user with mux vars set
func (f *recordsFixture) do(fn http.HandlerFunc, method, target string, vars map[string]string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, target, &buf)
	req = req.WithContext(WithUser(req.Context(), f.userID, "alice"))
	req = mux.SetURLVars(req, vars)

	w := httptest.NewRecorder()
	fn(w, req)
	return w
}

func (f *recordsFixture) create(t *testing.T, id, text string, updatedAt time.Time) *httptest.ResponseRecorder {
	t.Helper()
	return f.do(f.handler.Create, http.MethodPost, "/api/v1/tables/notes/records",
		map[string]string{"table": models.TableNotes},
		api.CreateRecordRequest{
			ID:        id,
			OwnerID:   f.userID,
			Fields:    map[string]any{"text": text},
			CreatedAt: updatedAt,
			UpdatedAt: updatedAt,
		})
}

var t0 = time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)

func TestRecordsHandler_CreateAndGet(t *testing.T) {
	f := newRecordsFixture(t)
	id := uuid.New().String()

	w := f.create(t, id, "fever", t0)
	require.Equal(t, http.StatusCreated, w.Code)

	var created api.Record
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	assert.Equal(t, id, created.ID)
	assert.Equal(t, f.userID, created.OwnerID)
	assert.True(t, t0.Equal(created.UpdatedAt))

	w = f.do(f.handler.Get, http.MethodGet, "/", map[string]string{"table": models.TableNotes, "id": id}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got api.Record
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "fever", got.Fields["text"])

	t.Run("duplicate id conflicts", func(t *testing.T) {
		w := f.create(t, id, "again", t0)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("wrong table is missing", func(t *testing.T) {
		w := f.do(f.handler.Get, http.MethodGet, "/", map[string]string{"table": models.TableTrainingCompletions, "id": id}, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRecordsHandler_Validation(t *testing.T) {
	f := newRecordsFixture(t)

	tests := []struct {
		body       any
		fn         http.HandlerFunc
		vars       map[string]string
		name       string
		method     string
		target     string
		wantStatus int
	}{
		{
			name: "unknown table", fn: f.handler.List, method: http.MethodGet, target: "/",
			vars: map[string]string{"table": "patients"}, wantStatus: http.StatusBadRequest,
		},
		{
			name: "id is not a uuid", fn: f.handler.Create, method: http.MethodPost, target: "/",
			vars: map[string]string{"table": models.TableNotes},
			body: api.CreateRecordRequest{ID: "n1"}, wantStatus: http.StatusBadRequest,
		},
		{
			name: "foreign owner on create", fn: f.handler.Create, method: http.MethodPost, target: "/",
			vars: map[string]string{"table": models.TableNotes},
			body: api.CreateRecordRequest{ID: uuid.New().String(), OwnerID: uuid.New().String()}, wantStatus: http.StatusForbidden,
		},
		{
			name: "foreign owner on list", fn: f.handler.List, method: http.MethodGet, target: "/?owner_id=someone-else",
			vars: map[string]string{"table": models.TableNotes}, wantStatus: http.StatusForbidden,
		},
		{
			name: "update without updated_at", fn: f.handler.Update, method: http.MethodPut, target: "/",
			vars: map[string]string{"table": models.TableNotes, "id": uuid.New().String()},
			body: api.UpdateRecordRequest{Fields: map[string]any{}}, wantStatus: http.StatusBadRequest,
		},
		{
			name: "bad deleted_at", fn: f.handler.Delete, method: http.MethodDelete, target: "/?deleted_at=yesterday",
			vars: map[string]string{"table": models.TableNotes, "id": uuid.New().String()}, wantStatus: http.StatusBadRequest,
		},
		{
			name: "get path id", fn: f.handler.Get, method: http.MethodGet, target: "/",
			vars: map[string]string{"table": models.TableNotes, "id": "../etc"}, wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(tt.fn, tt.method, tt.target, tt.vars, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRecordsHandler_Unauthenticated(t *testing.T) {
	f := newRecordsFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = mux.SetURLVars(req, map[string]string{"table": models.TableNotes})
	w := httptest.NewRecorder()
	f.handler.List(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecordsHandler_List(t *testing.T) {
	f := newRecordsFixture(t)
	older, newer := uuid.New().String(), uuid.New().String()
	require.Equal(t, http.StatusCreated, f.create(t, older, "older", t0).Code)
	require.Equal(t, http.StatusCreated, f.create(t, newer, "newer", t0.Add(time.Minute)).Code)

	w := f.do(f.handler.List, http.MethodGet, "/?owner_id="+f.userID, map[string]string{"table": models.TableNotes}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.ListRecordsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Records, 2)
	assert.Equal(t, newer, resp.Records[0].ID)
	assert.Equal(t, older, resp.Records[1].ID)

	w = f.do(f.handler.List, http.MethodGet, "/", map[string]string{"table": models.TableTrainingCompletions}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"records":[]}`, w.Body.String())
}

func TestRecordsHandler_Update(t *testing.T) {
	f := newRecordsFixture(t)
	id := uuid.New().String()
	require.Equal(t, http.StatusCreated, f.create(t, id, "fever", t0).Code)
	vars := map[string]string{"table": models.TableNotes, "id": id}

	w := f.do(f.handler.Update, http.MethodPut, "/", vars, api.UpdateRecordRequest{
		Fields:    map[string]any{"text": "fever 39C", "patient": "bed 4"},
		UpdatedAt: t0.Add(time.Minute),
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated api.Record
	require.NoError(t, json.NewDecoder(w.Body).Decode(&updated))
	assert.Equal(t, "fever 39C", updated.Fields["text"])
	assert.True(t, t0.Add(time.Minute).Equal(updated.UpdatedAt))
	assert.True(t, t0.Equal(updated.CreatedAt))

	t.Run("missing record", func(t *testing.T) {
		w := f.do(f.handler.Update, http.MethodPut, "/", map[string]string{"table": models.TableNotes, "id": uuid.New().String()},
			api.UpdateRecordRequest{Fields: map[string]any{}, UpdatedAt: t0})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRecordsHandler_Delete(t *testing.T) {
	f := newRecordsFixture(t)
	id := uuid.New().String()
	require.Equal(t, http.StatusCreated, f.create(t, id, "fever", t0).Code)
	vars := map[string]string{"table": models.TableNotes, "id": id}
	deletedAt := t0.Add(time.Hour).Format(time.RFC3339Nano)

	w := f.do(f.handler.Delete, http.MethodDelete, "/?deleted_at="+deletedAt, vars, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(f.handler.Delete, http.MethodDelete, "/?deleted_at="+deletedAt, vars, nil)
	assert.Equal(t, http.StatusNoContent, w.Code, "deleting a tombstone succeeds")

	w = f.do(f.handler.Get, http.MethodGet, "/", vars, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(f.handler.Update, http.MethodPut, "/", vars, api.UpdateRecordRequest{Fields: map[string]any{}, UpdatedAt: t0.Add(2 * time.Hour)})
	assert.Equal(t, http.StatusNotFound, w.Code, "tombstones cannot be updated")

	w = f.create(t, id, "resurrected", t0.Add(3*time.Hour))
	assert.Equal(t, http.StatusConflict, w.Code, "tombstones keep their id")

	w = f.do(f.handler.Delete, http.MethodDelete, "/", map[string]string{"table": models.TableNotes, "id": uuid.New().String()}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

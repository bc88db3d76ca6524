package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/medicnote/pkg/api"
)

type countFunc func(ctx context.Context, ownerID string) (int, error)

func (f countFunc) CountRecords(ctx context.Context, ownerID string) (int, error) {
	return f(ctx, ownerID)
}

func TestHealthHandler_Health(t *testing.T) {
	counter := countFunc(func(ctx context.Context, ownerID string) (int, error) {
		if ownerID == "broken" {
			return 0, errors.New("db down")
		}
		return 7, nil
	})
	h := NewHealthHandler(testLogger(), counter, "1.2.3")

	t.Run("anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Health(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var resp api.HealthResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "1.2.3", resp.Version)
		assert.Nil(t, resp.Count)
	})

	t.Run("authenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		req = req.WithContext(WithUser(req.Context(), "u1", "alice"))
		w := httptest.NewRecorder()
		h.Health(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp api.HealthResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.NotNil(t, resp.Count)
		assert.Equal(t, 7, *resp.Count)
	})

	t.Run("count failure", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		req = req.WithContext(WithUser(req.Context(), "broken", "alice"))
		w := httptest.NewRecorder()
		h.Health(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/medicnote/internal/client/auth"
	"github.com/iudanet/medicnote/internal/client/facade"
	"github.com/iudanet/medicnote/internal/client/gateway"
	"github.com/iudanet/medicnote/internal/client/notify"
	"github.com/iudanet/medicnote/internal/client/queue"
	"github.com/iudanet/medicnote/internal/client/reconcile"
	"github.com/iudanet/medicnote/internal/client/session"
	"github.com/iudanet/medicnote/internal/client/storage/boltdb"
	"github.com/iudanet/medicnote/internal/clock"
	"github.com/iudanet/medicnote/internal/logging"
	"github.com/iudanet/medicnote/internal/models"
	"github.com/iudanet/medicnote/internal/server"
	"github.com/iudanet/medicnote/internal/server/config"
	"github.com/iudanet/medicnote/internal/server/storage/sqlite"
)

const password = "correct horse battery"

func newTestServer(t *testing.T, modify func(*config.Config)) *httptest.Server {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
	if modify != nil {
		modify(cfg)
	}
	require.NoError(t, cfg.Validate())

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)

	srv := server.New(cfg, store, logging.Discard(), "test")
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
		_ = store.Close()
	})
	return ts
}

// device is one client installation with its own local store
type device struct {
	auth       *auth.Service
	records    *facade.Facade
	reconciler *reconcile.Reconciler
	gateway    *gateway.HTTPGateway
	state      *session.State
}

func newDevice(t *testing.T, serverURL string) *device {
	t.Helper()
	logger := logging.Discard()

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)

	state := session.New()
	gw := gateway.NewHTTP(serverURL, state, 5*time.Second)
	clk := clock.New()
	q := queue.New(store, clk, logger)
	reports := notify.NewBroadcaster[notify.SyncReport](4)

	d := &device{
		auth:       auth.NewService(gw, store, state, logger),
		records:    facade.New(store, q, gw, state, clk, logger),
		reconciler: reconcile.New(store, q, gw, state, reports, logger),
		gateway:    gw,
		state:      state,
	}
	t.Cleanup(func() {
		d.records.Wait()
		reports.Close()
		_ = store.Close()
	})
	return d
}

func (d *device) login(t *testing.T) {
	t.Helper()
	_, err := d.auth.Login(context.Background(), "alice", password)
	require.NoError(t, err)
	d.state.SetOnline(true)
}

func noteText(t *testing.T, rec *models.Record) string {
	t.Helper()
	note, err := models.NoteFromRecord(rec)
	require.NoError(t, err)
	return note.Text
}

func TestOfflineWritesConverge(t *testing.T) {
	ctx := context.Background()
	ts := newTestServer(t, nil)

	laptop := newDevice(t, ts.URL)
	_, err := laptop.auth.Register(ctx, "alice", password)
	require.NoError(t, err)
	laptop.login(t)

	// written offline, pushed by one reconcile pass
	laptop.state.SetOnline(false)
	rec, task, err := laptop.records.Create(ctx, models.TableNotes, models.Note{Text: "fever"}.Fields())
	require.NoError(t, err)
	assert.ErrorIs(t, task.Wait(ctx), session.ErrOffline)
	_, _, err = laptop.records.Update(ctx, rec.ID, models.Note{Text: "fever 39C"}.Fields())
	require.NoError(t, err)

	laptop.state.SetOnline(true)
	result, err := laptop.reconciler.Reconcile(ctx, laptop.state.OwnerID())
	require.NoError(t, err)
	assert.Equal(t, reconcile.Result{Processed: 2}, result)

	remote, err := laptop.gateway.Fetch(ctx, models.TableNotes, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "fever 39C", noteText(t, remote))

	again, err := laptop.reconciler.Reconcile(ctx, laptop.state.OwnerID())
	require.NoError(t, err)
	assert.Zero(t, again.Processed, "a second pass has nothing to do")

	health, err := laptop.gateway.HealthCheck(ctx)
	require.NoError(t, err)
	assert.True(t, health.Authenticated)
	require.NotNil(t, health.Count)
	assert.Equal(t, 1, *health.Count)

	// a second device pulls the note on first login
	phone := newDevice(t, ts.URL)
	phone.login(t)
	merged, err := phone.records.MergeOnInit(ctx)
	require.NoError(t, err)
	assert.Equal(t, facade.MergeResult{Pulled: 1}, merged)

	notes, err := phone.records.List(ctx, models.TableNotes)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "fever 39C", noteText(t, notes[0]))
	assert.True(t, notes[0].Synced)

	// deleted on the phone, removed from the laptop on its next merge
	task, err = phone.records.Delete(ctx, rec.ID)
	require.NoError(t, err)
	require.NoError(t, task.Wait(ctx))

	merged, err = laptop.records.MergeOnInit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, merged.Tombstoned)

	notes, err = laptop.records.List(ctx, models.TableNotes)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestDirectWriteOnline(t *testing.T) {
	ctx := context.Background()
	ts := newTestServer(t, nil)

	d := newDevice(t, ts.URL)
	_, err := d.auth.Register(ctx, "alice", password)
	require.NoError(t, err)
	d.login(t)

	rec, task, err := d.records.Create(ctx, models.TableTrainingCompletions, models.TrainingCompletion{
		Module:      "triage",
		Score:       88,
		CompletedAt: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	}.Fields())
	require.NoError(t, err)
	require.NoError(t, task.Wait(ctx))

	remote, err := d.gateway.Fetch(ctx, models.TableTrainingCompletions, rec.ID)
	require.NoError(t, err)
	tc, err := models.TrainingCompletionFromRecord(remote)
	require.NoError(t, err)
	assert.Equal(t, "triage", tc.Module)
	assert.InDelta(t, 88, tc.Score, 0.001)

	// the queued entry finds the record already there
	result, err := d.reconciler.Reconcile(ctx, d.state.OwnerID())
	require.NoError(t, err)
	assert.Equal(t, reconcile.Result{Processed: 1}, result)
}

func TestRoutes(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) { c.AuthRateLimit = 2 })

	t.Run("records need a token", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/tables/notes/records")
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("health is public", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/health")
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unknown endpoint", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v2/anything")
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("auth is rate limited", func(t *testing.T) {
		var codes []int
		for i := 0; i < 3; i++ {
			resp, err := http.Post(ts.URL+"/api/v1/auth/login", "application/json", strings.NewReader(`{"username":"nobody","password":"whatever123"}`))
			require.NoError(t, err)
			_ = resp.Body.Close()
			codes = append(codes, resp.StatusCode)
		}
		assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
	})
}

func TestServe_Shutdown(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
	cfg.Addr = "127.0.0.1:0"

	store, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	srv := server.New(cfg, store, logging.Discard(), "test")
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestOnlineEditsThenDeleteSettle(t *testing.T) {
	ctx := context.Background()
	ts := newTestServer(t, nil)

	d := newDevice(t, ts.URL)
	_, err := d.auth.Register(ctx, "alice", password)
	require.NoError(t, err)
	d.login(t)

	rec, task, err := d.records.Create(ctx, models.TableNotes, models.Note{Text: "fever"}.Fields())
	require.NoError(t, err)
	require.NoError(t, task.Wait(ctx))
	_, task, err = d.records.Update(ctx, rec.ID, models.Note{Text: "fever 39C"}.Fields())
	require.NoError(t, err)
	require.NoError(t, task.Wait(ctx))
	task, err = d.records.Delete(ctx, rec.ID)
	require.NoError(t, err)
	require.NoError(t, task.Wait(ctx))

	result, err := d.reconciler.Reconcile(ctx, d.state.OwnerID())
	require.NoError(t, err)
	assert.Equal(t, reconcile.Result{Processed: 3}, result)

	again, err := d.reconciler.Reconcile(ctx, d.state.OwnerID())
	require.NoError(t, err)
	assert.Equal(t, reconcile.Result{}, again)
}

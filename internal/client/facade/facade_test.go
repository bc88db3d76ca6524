package facade

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/medicnote/internal/client/gateway"
	"github.com/iudanet/medicnote/internal/client/gateway/gatewaytest"
	"github.com/iudanet/medicnote/internal/client/queue"
	"github.com/iudanet/medicnote/internal/client/reconcile"
	"github.com/iudanet/medicnote/internal/client/session"
	"github.com/iudanet/medicnote/internal/client/storage"
	"github.com/iudanet/medicnote/internal/client/storage/boltdb"
	"github.com/iudanet/medicnote/internal/clock"
	"github.com/iudanet/medicnote/internal/models"
)

const owner = "u1"

var t0 = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	facade *Facade
	store  *boltdb.Storage
	queue  *queue.Queue
	remote *gatewaytest.Memory
	gw     *gateway.GatewayMock
	state  *session.State
	wall   *clock.Fake
	logger *slog.Logger
}

func newFixture(t *testing.T, online bool) *fixture {
	t.Helper()

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	wall := clock.NewFake(t0)
	clk := clock.NewWithSource(wall.Now)
	q := queue.New(store, clk, logger)

	remote := gatewaytest.NewMemory()
	gw := remote.Mock()

	state := session.New()
	state.SignIn(owner, "alice", "tok")
	state.SetOnline(online)

	return &fixture{
		facade: New(store, q, gw, state, clk, logger),
		store:  store,
		queue:  q,
		remote: remote,
		gw:     gw,
		state:  state,
		wall:   wall,
		logger: logger,
	}
}

func (f *fixture) reconciler() *reconcile.Reconciler {
	return reconcile.New(f.store, f.queue, f.gw, f.state, nil, f.logger)
}

func noteFields(text string) map[string]any {
	return models.Note{Text: text}.Fields()
}

func TestFacade_CreateOnline(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	rec, task, err := f.facade.Create(ctx, models.TableNotes, noteFields("fever"))
	require.NoError(t, err)
	require.NoError(t, task.Wait(ctx))
	assert.NoError(t, task.QueueErr())
	require.NotNil(t, task.Entry())
	assert.Equal(t, models.ActionCreate, task.Entry().Action)

	assert.Equal(t, owner, rec.OwnerID)
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)

	local, err := f.store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, local.Synced, "direct write confirms the local record")

	remote := f.remote.Get(rec.ID)
	require.NotNil(t, remote)
	assert.Equal(t, "fever", remote.Fields["text"])

	// the queue entry stays pending for the reconciler, which settles it without a second create
	pending, err := f.queue.ListPending(ctx, owner)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	result, err := f.reconciler().Reconcile(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, reconcile.Result{Processed: 1}, result)
	assert.Equal(t, 1, f.remote.Len())
}

func TestFacade_CreateOffline(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	rec, task, err := f.facade.Create(ctx, models.TableNotes, noteFields("fever"))
	require.NoError(t, err)

	select {
	case <-task.Done():
	default:
		t.Fatal("offline task should already be done")
	}
	assert.ErrorIs(t, task.Err(), session.ErrOffline)
	assert.Empty(t, f.gw.CreateCalls())

	got, err := f.facade.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.False(t, got.Synced)
	assert.Equal(t, "fever", got.Fields["text"])
}

func TestFacade_UnknownTable(t *testing.T) {
	f := newFixture(t, true)

	_, _, err := f.facade.Create(context.Background(), "prescriptions", noteFields("x"))
	assert.ErrorIs(t, err, ErrUnknownTable)

	_, err = f.facade.List(context.Background(), "prescriptions")
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestFacade_NoSession(t *testing.T) {
	f := newFixture(t, true)
	f.state.SignOut()

	_, _, err := f.facade.Create(context.Background(), models.TableNotes, noteFields("x"))
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestFacade_LocalFailureIsSynchronous(t *testing.T) {
	f := newFixture(t, true)
	boom := errors.New("disk full")
	local := &storage.RecordStorageMock{
		PutFunc: func(ctx context.Context, rec *models.Record) error {
			return boom
		},
	}
	fc := New(local, f.queue, f.gw, f.state, clock.New(), f.logger)

	_, task, err := fc.Create(context.Background(), models.TableNotes, noteFields("fever"))
	require.Error(t, err)
	assert.Nil(t, task)

	var localErr *storage.LocalError
	assert.ErrorAs(t, err, &localErr)
	assert.ErrorIs(t, err, storage.ErrLocalStorage)
	assert.ErrorIs(t, err, boom)

	entries, err := f.queue.List(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing is queued after a failed local write")
	assert.Empty(t, f.gw.CreateCalls())
}

func TestFacade_UpdateStampsNewerVersion(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	rec, _, err := f.facade.Create(ctx, models.TableNotes, noteFields("fever"))
	require.NoError(t, err)

	// wall clock steps back; the new version must still be newer
	f.wall.Set(t0.Add(-time.Hour))
	updated, task, err := f.facade.Update(ctx, rec.ID, noteFields("fever 39C"))
	require.NoError(t, err)
	assert.ErrorIs(t, task.Err(), session.ErrOffline)

	assert.True(t, updated.UpdatedAt.After(rec.UpdatedAt))
	assert.True(t, updated.CreatedAt.Equal(rec.CreatedAt))

	entries, err := f.queue.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.ActionUpdate, entries[1].Action)
}

func TestFacade_UpdateOnlineFallsBackToCreate(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	rec, _, err := f.facade.Create(ctx, models.TableNotes, noteFields("fever"))
	require.NoError(t, err)

	f.state.SetOnline(true)
	_, task, err := f.facade.Update(ctx, rec.ID, noteFields("fever 39C"))
	require.NoError(t, err)
	require.NoError(t, task.Wait(ctx))

	assert.Equal(t, "fever 39C", f.remote.Get(rec.ID).Fields["text"])
	got, err := f.store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, got.Synced)
}

func TestFacade_DirectWriteFailureLeavesRecordUnsynced(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	f.remote.FailWith(func(op, id string) error { return gatewaytest.Network(op) })

	rec, task, err := f.facade.Create(ctx, models.TableNotes, noteFields("fever"))
	require.NoError(t, err, "remote failure never fails the write")
	assert.ErrorIs(t, task.Wait(ctx), gateway.ErrNetwork)

	got, err := f.store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.False(t, got.Synced)

	f.remote.FailWith(nil)
	result, err := f.reconciler().Reconcile(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, reconcile.Result{Processed: 1}, result)
	assert.NotNil(t, f.remote.Get(rec.ID))
}

func TestFacade_Delete(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	rec, task, err := f.facade.Create(ctx, models.TableNotes, noteFields("fever"))
	require.NoError(t, err)
	require.NoError(t, task.Wait(ctx))

	task, err = f.facade.Delete(ctx, rec.ID)
	require.NoError(t, err)
	require.NoError(t, task.Wait(ctx))

	_, err = f.facade.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)

	_, err = f.facade.Delete(ctx, rec.ID)
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)

	remote := f.remote.Get(rec.ID)
	require.NotNil(t, remote)
	assert.NotNil(t, remote.DeletedAt)

	tomb, err := f.store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, tomb.Synced)
}

func TestFacade_ListNewestFirst(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	first, _, err := f.facade.Create(ctx, models.TableNotes, noteFields("first"))
	require.NoError(t, err)
	f.wall.Advance(time.Minute)
	second, _, err := f.facade.Create(ctx, models.TableNotes, noteFields("second"))
	require.NoError(t, err)
	f.wall.Advance(time.Minute)
	gone, _, err := f.facade.Create(ctx, models.TableNotes, noteFields("gone"))
	require.NoError(t, err)
	_, err = f.facade.Delete(ctx, gone.ID)
	require.NoError(t, err)

	training := models.TrainingCompletion{Module: "triage", Score: 0.9, CompletedAt: t0}
	_, _, err = f.facade.Create(ctx, models.TableTrainingCompletions, training.Fields())
	require.NoError(t, err)

	notes, err := f.facade.List(ctx, models.TableNotes)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, second.ID, notes[0].ID)
	assert.Equal(t, first.ID, notes[1].ID)

	completions, err := f.facade.List(ctx, models.TableTrainingCompletions)
	require.NoError(t, err)
	assert.Len(t, completions, 1)
}

func TestFacade_GetOtherOwner(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	require.NoError(t, f.store.Put(ctx, &models.Record{
		ID: "foreign", OwnerID: "u2", Table: models.TableNotes, CreatedAt: t0, UpdatedAt: t0,
	}))

	_, err := f.facade.Get(ctx, "foreign")
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestFacade_Wait(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	var tasks []*Task
	for _, text := range []string{"a", "b", "c"} {
		_, task, err := f.facade.Create(ctx, models.TableNotes, noteFields(text))
		require.NoError(t, err)
		tasks = append(tasks, task)
	}

	f.facade.Wait()
	for _, task := range tasks {
		select {
		case <-task.Done():
			assert.NoError(t, task.Err())
		default:
			t.Fatal("task still running after Wait")
		}
	}
	assert.Equal(t, 3, f.remote.Len())
}

func TestFacade_DirectWritesKeepOrderPerRecord(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	rec, task, err := f.facade.Create(ctx, models.TableNotes, noteFields("v0"))
	require.NoError(t, err)
	require.NoError(t, task.Wait(ctx))

	// the first update is slow to reach the remote store
	var slowed atomic.Bool
	f.remote.FailWith(func(op, id string) error {
		if op == "update" && slowed.CompareAndSwap(false, true) {
			time.Sleep(100 * time.Millisecond)
		}
		return nil
	})

	_, first, err := f.facade.Update(ctx, rec.ID, noteFields("v1"))
	require.NoError(t, err)
	_, second, err := f.facade.Update(ctx, rec.ID, noteFields("v2"))
	require.NoError(t, err)
	require.NoError(t, first.Wait(ctx))
	require.NoError(t, second.Wait(ctx))

	assert.Equal(t, "v2", f.remote.Get(rec.ID).Fields["text"])
	local, err := f.store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", local.Fields["text"])
	assert.True(t, local.Synced)

	updates := f.gw.UpdateCalls()
	require.Len(t, updates, 2)
	assert.Equal(t, "v1", updates[0].Fields["text"])
	assert.Equal(t, "v2", updates[1].Fields["text"])
}

func TestFacade_OnlineWritesThenDeleteSettleInOnePass(t *testing.T) {
	tests := []struct {
		name  string
		edits []string
	}{
		{name: "create then delete"},
		{name: "create, update, delete", edits: []string{"fever 39C"}},
		{name: "create, two updates, delete", edits: []string{"fever 39C", "fever 38C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)
			ctx := context.Background()

			rec, task, err := f.facade.Create(ctx, models.TableNotes, noteFields("fever"))
			require.NoError(t, err)
			require.NoError(t, task.Wait(ctx))
			tasks := []*Task{task}

			for _, text := range tt.edits {
				_, task, err := f.facade.Update(ctx, rec.ID, noteFields(text))
				require.NoError(t, err)
				require.NoError(t, task.Wait(ctx))
				tasks = append(tasks, task)
			}

			task, err = f.facade.Delete(ctx, rec.ID)
			require.NoError(t, err)
			require.NoError(t, task.Wait(ctx))
			tasks = append(tasks, task)

			result, err := f.reconciler().Reconcile(ctx, owner)
			require.NoError(t, err)
			assert.Equal(t, reconcile.Result{Processed: len(tasks)}, result)

			for _, task := range tasks {
				entry, err := f.queue.Get(ctx, task.Entry().EntryID)
				require.NoError(t, err)
				assert.Equal(t, models.StatusSynced, entry.Status, "%s entry", entry.Action)
			}

			again, err := f.reconciler().Reconcile(ctx, owner)
			require.NoError(t, err)
			assert.Equal(t, reconcile.Result{}, again)

			tomb, err := f.store.Get(ctx, rec.ID)
			require.NoError(t, err)
			assert.True(t, tomb.IsDeleted())
			assert.True(t, tomb.Synced)
			assert.NotNil(t, f.remote.Get(rec.ID).DeletedAt)
		})
	}
}

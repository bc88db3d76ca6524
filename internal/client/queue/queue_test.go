package queue

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/medicnote/internal/client/storage"
	"github.com/iudanet/medicnote/internal/client/storage/boltdb"
	"github.com/iudanet/medicnote/internal/clock"
	"github.com/iudanet/medicnote/internal/models"
)

var start = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestQueue(t *testing.T) (*Queue, *boltdb.Storage) {
	t.Helper()

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "queue.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	fake := clock.NewFake(start)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, clock.NewWithSource(fake.Now), logger), store
}

func payload(text string) models.MutationPayload {
	return models.MutationPayload{
		Fields:    map[string]any{"text": text},
		CreatedAt: start,
		UpdatedAt: start,
	}
}

func TestQueue_Enqueue(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(t)

	entry, err := q.Enqueue(ctx, "u1", models.ActionCreate, models.TableNotes, "n1", payload("fever"))
	require.NoError(t, err)

	assert.NotEmpty(t, entry.EntryID)
	assert.Equal(t, models.StatusPending, entry.Status)
	assert.Equal(t, models.ActionCreate, entry.Action)
	assert.False(t, entry.CreatedAt.IsZero())

	got, err := q.Get(ctx, entry.EntryID)
	require.NoError(t, err)
	p, err := got.DecodePayload()
	require.NoError(t, err)
	assert.Equal(t, "fever", p.Fields["text"])
}

func TestQueue_ListPending_Order(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(t)

	var ids []string
	for _, text := range []string{"a", "b", "c"} {
		e, err := q.Enqueue(ctx, "u1", models.ActionUpdate, models.TableNotes, "n1", payload(text))
		require.NoError(t, err)
		ids = append(ids, e.EntryID)
	}

	pending, err := q.ListPending(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, pending, 3)
	for i, e := range pending {
		assert.Equal(t, ids[i], e.EntryID, "entries come back in enqueue order")
	}
}

func TestQueue_MarkSynced_Idempotent(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(t)

	e, err := q.Enqueue(ctx, "u1", models.ActionCreate, models.TableNotes, "n1", payload("x"))
	require.NoError(t, err)

	first, err := q.MarkSynced(ctx, e.EntryID)
	require.NoError(t, err)
	require.NotNil(t, first.SyncedAt)
	assert.Equal(t, models.StatusSynced, first.Status)

	second, err := q.MarkSynced(ctx, e.EntryID)
	require.NoError(t, err)
	assert.True(t, first.SyncedAt.Equal(*second.SyncedAt), "re-marking keeps the first synced_at")

	// a synced entry cannot become failed
	after, err := q.MarkFailed(ctx, e.EntryID, "network")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSynced, after.Status)

	pending, err := q.ListPending(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestQueue_MarkFailed_Requeue(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(t)

	e, err := q.Enqueue(ctx, "u1", models.ActionUpdate, models.TableNotes, "n1", payload("x"))
	require.NoError(t, err)

	failed, err := q.MarkFailed(ctx, e.EntryID, "network")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, failed.Status)
	assert.Equal(t, 1, failed.Attempts)
	assert.Equal(t, "network", failed.LastErrorKind)

	again, err := q.MarkFailed(ctx, e.EntryID, "rejected")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Attempts, "failing a failed entry is a no-op")
	assert.Equal(t, "network", again.LastErrorKind)

	moved, err := q.Requeue(ctx, e.EntryID)
	require.NoError(t, err)
	assert.True(t, moved)

	moved, err = q.Requeue(ctx, e.EntryID)
	require.NoError(t, err)
	assert.False(t, moved, "pending entry is not requeued")

	pending, err := q.ListPending(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].Attempts)
}

func TestQueue_RequeueRetryable(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(t)

	transient, err := q.Enqueue(ctx, "u1", models.ActionUpdate, models.TableNotes, "n1", payload("a"))
	require.NoError(t, err)
	permanent, err := q.Enqueue(ctx, "u1", models.ActionUpdate, models.TableNotes, "n2", payload("b"))
	require.NoError(t, err)

	_, err = q.MarkFailed(ctx, transient.EntryID, "network")
	require.NoError(t, err)
	_, err = q.MarkFailed(ctx, permanent.EntryID, "rejected")
	require.NoError(t, err)

	moved, err := q.RequeueRetryable(ctx, "u1", func(kind string) bool { return kind == "network" })
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	pending, err := q.ListPending(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, transient.EntryID, pending[0].EntryID)

	open, err := q.OpenRecordIDs(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"n1": true, "n2": true}, open)

	stats, err := q.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats[models.StatusPending])
	assert.Equal(t, 1, stats[models.StatusFailed])
	assert.Equal(t, 0, stats[models.StatusSynced])
}

func TestQueue_StorageFailure(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("quota exceeded")

	mock := &storage.QueueStorageMock{
		AppendEntryFunc: func(ctx context.Context, entry *models.MutationEntry) error {
			return storage.WrapLocal("append entry", cause)
		},
		ListPendingEntriesFunc: func(ctx context.Context, ownerID string) ([]*models.MutationEntry, error) {
			return nil, storage.WrapLocal("list pending entries", cause)
		},
	}
	q := New(mock, clock.New(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := q.Enqueue(ctx, "u1", models.ActionCreate, models.TableNotes, "n1", payload("x"))
	require.Error(t, err)

	var qe *Error
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "enqueue", qe.Op)
	assert.ErrorIs(t, err, ErrQueue)
	assert.ErrorIs(t, err, cause)
	assert.Len(t, mock.AppendEntryCalls(), 1)

	_, err = q.ListPending(ctx, "u1")
	assert.ErrorIs(t, err, ErrQueue)
}

func TestQueue_NotFound(t *testing.T) {
	q, _ := newTestQueue(t)

	_, err := q.MarkSynced(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrEntryNotFound)
	assert.ErrorIs(t, err, ErrQueue)
}

func TestAge(t *testing.T) {
	e := &models.MutationEntry{CreatedAt: start}
	assert.Equal(t, time.Minute, Age(e, start.Add(time.Minute)))
}

// Package reconcile drains the mutation queue against the remote store.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/iudanet/medicnote/internal/client/gateway"
	"github.com/iudanet/medicnote/internal/client/notify"
	"github.com/iudanet/medicnote/internal/client/queue"
	"github.com/iudanet/medicnote/internal/client/session"
	"github.com/iudanet/medicnote/internal/client/storage"
	"github.com/iudanet/medicnote/internal/lww"
	"github.com/iudanet/medicnote/internal/models"
)

// kindInvalidEntry marks entries that cannot be dispatched at all
const kindInvalidEntry = "invalid_entry"

var errInvalidEntry = errors.New("invalid mutation entry")

// errRemoteDeleted reports a write for an id the remote store keeps only as a
// tombstone: create is refused as a duplicate while reads find nothing.
var errRemoteDeleted = errors.New("record deleted remotely")

// Result summarises one pass
type Result struct {
	Processed int // entries that reached synced
	Failed    int // entries that reached failed
	Deferred  int // entries left pending behind a failure or an interruption
}

// Reconciler applies pending entries to the remote store in queue order
type Reconciler struct {
	records    storage.RecordStorage
	queue      *queue.Queue
	gateway    gateway.Gateway
	state      *session.State
	reports    *notify.Broadcaster[notify.SyncReport]
	logger     *slog.Logger
	ownerLocks map[string]*sync.Mutex
	mu         sync.Mutex
}

// New creates a reconciler. reports may be nil.
func New(
	records storage.RecordStorage,
	q *queue.Queue,
	gw gateway.Gateway,
	state *session.State,
	reports *notify.Broadcaster[notify.SyncReport],
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		records:    records,
		queue:      q,
		gateway:    gw,
		state:      state,
		reports:    reports,
		logger:     logger,
		ownerLocks: make(map[string]*sync.Mutex),
	}
}

// Reconcile runs one pass for the owner. Offline it returns a zero result at
// once. Remote failures are recorded on the entries and never returned; the
// error is reserved for the queue itself being unreadable.
func (r *Reconciler) Reconcile(ctx context.Context, ownerID string) (Result, error) {
	if !r.state.Online() {
		r.logger.Debug("Offline, reconcile deferred", "owner_id", ownerID)
		return Result{}, nil
	}

	lock := r.lockFor(ownerID)
	lock.Lock()
	defer lock.Unlock()

	r.logger.Info("Starting reconcile pass", "owner_id", ownerID)

	if _, err := r.queue.RequeueRetryable(ctx, ownerID, gateway.IsRetryableKind); err != nil {
		return Result{}, fmt.Errorf("failed to requeue retryable entries: %w", err)
	}

	if err := r.recoverDropped(ctx, ownerID); err != nil {
		// entries already in the queue can still be drained
		r.logger.Warn("Failed to recover unsynced records", "owner_id", ownerID, "error", err)
	}

	pending, err := r.queue.ListPending(ctx, ownerID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list pending entries: %w", err)
	}

	sort.SliceStable(pending, func(i, j int) bool {
		a, b := pending[i], pending[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.EntryID < b.EntryID
	})

	var result Result
	blocked := make(map[string]bool)

	for i, entry := range pending {
		if ctx.Err() != nil || !r.state.Online() {
			result.Deferred += len(pending) - i
			r.logger.Info("Reconcile pass interrupted", "owner_id", ownerID, "remaining", len(pending)-i)
			break
		}

		if blocked[entry.TargetRecordID] {
			result.Deferred++
			continue
		}

		// another pass or a requeue may have moved it since the list was read
		current, err := r.queue.Get(ctx, entry.EntryID)
		if err != nil {
			r.logger.Warn("Failed to re-read entry", "entry_id", entry.EntryID, "error", err)
			blocked[entry.TargetRecordID] = true
			result.Deferred++
			continue
		}
		if current.Status != models.StatusPending {
			continue
		}

		if r.process(ctx, current) {
			result.Processed++
		} else {
			result.Failed++
			blocked[current.TargetRecordID] = true
		}
	}

	r.logger.Info("Reconcile pass finished",
		"owner_id", ownerID,
		"processed", result.Processed,
		"failed", result.Failed,
		"deferred", result.Deferred)

	if r.reports != nil {
		r.reports.Publish(notify.SyncReport{
			OwnerID:   ownerID,
			Processed: result.Processed,
			Failed:    result.Failed,
			Deferred:  result.Deferred,
		})
	}

	return result, nil
}

// process dispatches one entry and records the outcome. Reports success.
func (r *Reconciler) process(ctx context.Context, entry *models.MutationEntry) bool {
	payload, err := entry.DecodePayload()
	if err != nil {
		r.fail(ctx, entry, fmt.Errorf("%w: %w", errInvalidEntry, err))
		return false
	}

	remote, err := r.apply(ctx, entry, payload)
	if errors.Is(err, errRemoteDeleted) {
		r.logger.Info("Record deleted remotely, write superseded",
			"entry_id", entry.EntryID,
			"action", entry.Action,
			"record_id", entry.TargetRecordID)
		if _, err := r.queue.MarkSynced(ctx, entry.EntryID); err != nil {
			r.logger.Warn("Failed to mark entry synced", "entry_id", entry.EntryID, "error", err)
		}
		r.foldRemoteDeletion(ctx, entry)
		return true
	}
	if err != nil {
		r.fail(ctx, entry, err)
		return false
	}

	if _, err := r.queue.MarkSynced(ctx, entry.EntryID); err != nil {
		// the remote write is idempotent, a replay on the next pass is harmless
		r.logger.Warn("Failed to mark entry synced", "entry_id", entry.EntryID, "error", err)
	}

	r.confirmLocal(ctx, entry, payload, remote)
	return true
}

// apply performs the remote side of an entry. Returns the remote view of the
// record, nil for deletes.
func (r *Reconciler) apply(ctx context.Context, entry *models.MutationEntry, payload models.MutationPayload) (*models.Record, error) {
	table, id := entry.TargetTable, entry.TargetRecordID

	switch entry.Action {
	case models.ActionCreate:
		created, err := r.gateway.Create(ctx, table, payload.Record(entry))
		if err == nil {
			return created, nil
		}
		if gateway.IsConflict(err) {
			// already there, e.g. from a direct write; settle it as an update
			return r.applyUpdate(ctx, entry, payload, false)
		}
		return nil, err

	case models.ActionUpdate:
		return r.applyUpdate(ctx, entry, payload, true)

	case models.ActionDelete:
		deletedAt := payload.UpdatedAt
		if payload.DeletedAt != nil {
			deletedAt = *payload.DeletedAt
		}
		err := r.gateway.SoftDelete(ctx, table, id, deletedAt)
		if errors.Is(err, gateway.ErrNotFound) {
			r.logger.Debug("Record already absent remotely", "record_id", id)
			return nil, nil
		}
		return nil, err

	default:
		return nil, fmt.Errorf("%w: unknown action %q", errInvalidEntry, entry.Action)
	}
}

// applyUpdate writes the payload unless the remote copy is at least as fresh
func (r *Reconciler) applyUpdate(ctx context.Context, entry *models.MutationEntry, payload models.MutationPayload, createIfMissing bool) (*models.Record, error) {
	table, id := entry.TargetTable, entry.TargetRecordID

	remote, err := r.gateway.Fetch(ctx, table, id)
	if err != nil {
		if !errors.Is(err, gateway.ErrNotFound) {
			return nil, err
		}
		if !createIfMissing {
			// create already saw a duplicate
			return nil, errRemoteDeleted
		}
		created, err := r.gateway.Create(ctx, table, payload.Record(entry))
		if gateway.IsConflict(err) {
			return nil, errRemoteDeleted
		}
		return created, err
	}

	if lww.Supersedes(remote.UpdatedAt, payload.UpdatedAt) {
		r.logger.Debug("Remote copy is newer, skipping write",
			"entry_id", entry.EntryID,
			"record_id", id,
			"remote_updated_at", remote.UpdatedAt,
			"local_updated_at", payload.UpdatedAt)
		return remote, nil
	}

	return r.gateway.Update(ctx, table, id, payload.Fields, payload.UpdatedAt)
}

// confirmLocal folds the remote outcome back into the local store. Failures
// are logged; the entry is already synced.
func (r *Reconciler) confirmLocal(ctx context.Context, entry *models.MutationEntry, payload models.MutationPayload, remote *models.Record) {
	var err error
	if remote == nil {
		_, err = r.records.MarkSynced(ctx, entry.TargetRecordID, payload.UpdatedAt)
	} else {
		view := remote.Clone()
		view.Table = entry.TargetTable
		if view.OwnerID == "" {
			view.OwnerID = entry.OwnerID
		}
		_, err = r.records.ApplyRemote(ctx, view)
	}

	if err != nil && !errors.Is(err, storage.ErrRecordNotFound) {
		r.logger.Warn("Failed to update local record after sync",
			"record_id", entry.TargetRecordID,
			"error", err)
	}
}

// foldRemoteDeletion tombstones the local copy at its own UpdatedAt, so the
// tie goes to the remote deletion and the record stops being unsynced
func (r *Reconciler) foldRemoteDeletion(ctx context.Context, entry *models.MutationEntry) {
	local, err := r.records.Get(ctx, entry.TargetRecordID)
	if err != nil {
		if !errors.Is(err, storage.ErrRecordNotFound) {
			r.logger.Warn("Failed to read local record", "record_id", entry.TargetRecordID, "error", err)
		}
		return
	}
	if local.IsDeleted() {
		return
	}

	tomb := local.Clone()
	at := local.UpdatedAt
	tomb.DeletedAt = &at
	if _, err := r.records.ApplyRemote(ctx, tomb); err != nil {
		r.logger.Warn("Failed to tombstone local record", "record_id", entry.TargetRecordID, "error", err)
	}
}

func (r *Reconciler) fail(ctx context.Context, entry *models.MutationEntry, cause error) {
	kind := string(gateway.KindOf(cause))
	if kind == "" {
		kind = kindInvalidEntry
	}

	r.logger.Warn("Mutation failed",
		"entry_id", entry.EntryID,
		"action", entry.Action,
		"record_id", entry.TargetRecordID,
		"kind", kind,
		"error", cause)

	if _, err := r.queue.MarkFailed(ctx, entry.EntryID, kind); err != nil {
		r.logger.Error("Failed to mark entry failed", "entry_id", entry.EntryID, "error", err)
	}
}

// recoverDropped enqueues entries for unsynced records that have no pending
// or failed entry, so a lost enqueue is still pushed
func (r *Reconciler) recoverDropped(ctx context.Context, ownerID string) error {
	unsynced, err := r.records.ListUnsynced(ctx, ownerID)
	if err != nil {
		return err
	}
	if len(unsynced) == 0 {
		return nil
	}

	open, err := r.queue.OpenRecordIDs(ctx, ownerID)
	if err != nil {
		return err
	}

	for _, rec := range unsynced {
		if open[rec.ID] {
			continue
		}

		action := models.ActionUpdate
		if rec.IsDeleted() {
			action = models.ActionDelete
		}

		if _, err := r.queue.Enqueue(ctx, ownerID, action, rec.Table, rec.ID, models.PayloadFromRecord(rec)); err != nil {
			return err
		}
		r.logger.Info("Re-derived mutation for unsynced record", "record_id", rec.ID, "action", action)
	}

	return nil
}

func (r *Reconciler) lockFor(ownerID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.ownerLocks[ownerID]
	if !ok {
		lock = &sync.Mutex{}
		r.ownerLocks[ownerID] = lock
	}
	return lock
}

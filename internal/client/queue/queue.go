// Package queue is the durable outbound log of local mutations awaiting the remote store.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/medicnote/internal/client/storage"
	"github.com/iudanet/medicnote/internal/clock"
	"github.com/iudanet/medicnote/internal/models"
)

// ErrQueue matches every *Error
var ErrQueue = errors.New("mutation queue failure")

// Error reports that the queue could not be read or written
type Error struct {
	Err     error
	Op      string
	EntryID string
}

func (e *Error) Error() string {
	if e.EntryID != "" {
		return fmt.Sprintf("queue: %s %s: %v", e.Op, e.EntryID, e.Err)
	}
	return fmt.Sprintf("queue: %s: %v", e.Op, e.Err)
}

// Unwrap exposes ErrQueue and the cause
func (e *Error) Unwrap() []error {
	return []error{ErrQueue, e.Err}
}

// Queue appends and transitions mutation entries
type Queue struct {
	store  storage.QueueStorage
	clock  clock.Clock
	logger *slog.Logger
}

// New creates a queue over store
func New(store storage.QueueStorage, clk clock.Clock, logger *slog.Logger) *Queue {
	return &Queue{
		store:  store,
		clock:  clk,
		logger: logger,
	}
}

// Enqueue persists a new pending entry for a change already written locally
func (q *Queue) Enqueue(ctx context.Context, ownerID string, action models.Action, table, recordID string, payload models.MutationPayload) (*models.MutationEntry, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, &Error{Op: "enqueue", Err: fmt.Errorf("failed to generate entry id: %w", err)}
	}

	raw, err := models.EncodePayload(payload)
	if err != nil {
		return nil, &Error{Op: "enqueue", Err: err}
	}

	entry := &models.MutationEntry{
		EntryID:        id.String(),
		OwnerID:        ownerID,
		Action:         action,
		TargetTable:    table,
		TargetRecordID: recordID,
		Payload:        raw,
		CreatedAt:      q.clock.Now(),
		Status:         models.StatusPending,
	}

	if err := q.store.AppendEntry(ctx, entry); err != nil {
		return nil, &Error{Op: "enqueue", EntryID: entry.EntryID, Err: err}
	}

	q.logger.Debug("Mutation enqueued",
		"entry_id", entry.EntryID,
		"action", action,
		"table", table,
		"record_id", recordID)

	return entry, nil
}

// Get returns one entry
func (q *Queue) Get(ctx context.Context, entryID string) (*models.MutationEntry, error) {
	entry, err := q.store.GetEntry(ctx, entryID)
	if err != nil {
		return nil, &Error{Op: "get", EntryID: entryID, Err: err}
	}
	return entry, nil
}

// List returns every entry of the owner, for inspection
func (q *Queue) List(ctx context.Context, ownerID string) ([]*models.MutationEntry, error) {
	entries, err := q.store.ListEntries(ctx, ownerID)
	if err != nil {
		return nil, &Error{Op: "list", Err: err}
	}
	return entries, nil
}

// ListPending returns the owner's pending entries ordered by created_at, then entry id
func (q *Queue) ListPending(ctx context.Context, ownerID string) ([]*models.MutationEntry, error) {
	entries, err := q.store.ListPendingEntries(ctx, ownerID)
	if err != nil {
		return nil, &Error{Op: "list pending", Err: err}
	}
	return entries, nil
}

// MarkSynced moves a pending entry to synced. Terminal entries are left alone.
func (q *Queue) MarkSynced(ctx context.Context, entryID string) (*models.MutationEntry, error) {
	now := q.clock.Now()
	entry, err := q.store.UpdateEntry(ctx, entryID, func(e *models.MutationEntry) bool {
		if e.Status != models.StatusPending {
			return false
		}
		e.Status = models.StatusSynced
		e.SyncedAt = &now
		return true
	})
	if err != nil {
		return nil, &Error{Op: "mark synced", EntryID: entryID, Err: err}
	}
	return entry, nil
}

// MarkFailed moves a pending entry to failed and records the error kind.
// Terminal entries are left alone.
func (q *Queue) MarkFailed(ctx context.Context, entryID, kind string) (*models.MutationEntry, error) {
	entry, err := q.store.UpdateEntry(ctx, entryID, func(e *models.MutationEntry) bool {
		if e.Status != models.StatusPending {
			return false
		}
		e.Status = models.StatusFailed
		e.Attempts++
		e.LastErrorKind = kind
		return true
	})
	if err != nil {
		return nil, &Error{Op: "mark failed", EntryID: entryID, Err: err}
	}
	return entry, nil
}

// Requeue moves a failed entry back to pending. Returns whether it moved.
func (q *Queue) Requeue(ctx context.Context, entryID string) (bool, error) {
	var moved bool
	_, err := q.store.UpdateEntry(ctx, entryID, func(e *models.MutationEntry) bool {
		if e.Status != models.StatusFailed {
			return false
		}
		e.Status = models.StatusPending
		moved = true
		return true
	})
	if err != nil {
		return false, &Error{Op: "requeue", EntryID: entryID, Err: err}
	}
	return moved, nil
}

// RequeueRetryable moves the owner's failed entries whose last error kind
// satisfies retryable back to pending. Returns how many moved.
func (q *Queue) RequeueRetryable(ctx context.Context, ownerID string, retryable func(kind string) bool) (int, error) {
	entries, err := q.List(ctx, ownerID)
	if err != nil {
		return 0, err
	}

	moved := 0
	for _, e := range entries {
		if e.Status != models.StatusFailed || !retryable(e.LastErrorKind) {
			continue
		}
		ok, err := q.Requeue(ctx, e.EntryID)
		if err != nil {
			return moved, err
		}
		if ok {
			moved++
		}
	}

	if moved > 0 {
		q.logger.Info("Requeued failed mutations", "owner_id", ownerID, "count", moved)
	}
	return moved, nil
}

// OpenRecordIDs returns the ids of records that have a pending or failed entry
func (q *Queue) OpenRecordIDs(ctx context.Context, ownerID string) (map[string]bool, error) {
	entries, err := q.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	open := make(map[string]bool)
	for _, e := range entries {
		if e.Status != models.StatusSynced {
			open[e.TargetRecordID] = true
		}
	}
	return open, nil
}

// Stats counts the owner's entries per status
func (q *Queue) Stats(ctx context.Context, ownerID string) (map[models.EntryStatus]int, error) {
	entries, err := q.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	stats := map[models.EntryStatus]int{
		models.StatusPending: 0,
		models.StatusSynced:  0,
		models.StatusFailed:  0,
	}
	for _, e := range entries {
		stats[e.Status]++
	}
	return stats, nil
}

// Age returns how long an entry has been waiting
func Age(e *models.MutationEntry, now time.Time) time.Duration {
	return now.Sub(e.CreatedAt)
}

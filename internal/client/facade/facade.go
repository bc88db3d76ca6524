// Package facade is the entry point for reading and writing records. Writes
// land locally first, are queued for the reconciler, and are also tried on
// the remote store right away when online.
package facade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/medicnote/internal/client/gateway"
	"github.com/iudanet/medicnote/internal/client/queue"
	"github.com/iudanet/medicnote/internal/client/session"
	"github.com/iudanet/medicnote/internal/client/storage"
	"github.com/iudanet/medicnote/internal/models"
)

// ErrUnknownTable is returned for a table the engine does not sync
var ErrUnknownTable = errors.New("unknown table")

// Clock stamps new record versions
type Clock interface {
	Now() time.Time
	Observe(t time.Time)
}

// Facade serves record reads from the local store and performs writes
type Facade struct {
	records storage.RecordStorage
	queue   *queue.Queue
	gateway gateway.Gateway
	state   *session.State
	clock   Clock
	logger  *slog.Logger
	last    map[string]*Task // latest direct write per record id
	wg      sync.WaitGroup
	mu      sync.Mutex
}

// New creates a facade
func New(
	records storage.RecordStorage,
	q *queue.Queue,
	gw gateway.Gateway,
	state *session.State,
	clk Clock,
	logger *slog.Logger,
) *Facade {
	return &Facade{
		records: records,
		queue:   q,
		gateway: gw,
		state:   state,
		clock:   clk,
		logger:  logger,
		last:    make(map[string]*Task),
	}
}

// Create stores a new record locally and schedules its sync. The error is a
// *storage.LocalError when the local write fails; nothing is queued then.
func (f *Facade) Create(ctx context.Context, table string, fields map[string]any) (*models.Record, *Task, error) {
	ownerID, err := f.state.RequireOwner()
	if err != nil {
		return nil, nil, err
	}
	if !models.IsKnownTable(table) {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}

	now := f.clock.Now()
	rec := &models.Record{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Table:     table,
		Fields:    fields,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := f.records.Put(ctx, rec); err != nil {
		return nil, nil, storage.WrapLocal("create record", err)
	}

	task := f.schedule(ctx, models.ActionCreate, rec, func(ctx context.Context) error {
		_, err := f.gateway.Create(ctx, table, rec)
		if gateway.IsConflict(err) {
			return nil
		}
		return err
	})
	return rec.Clone(), task, nil
}

// Update replaces the fields of a live record
func (f *Facade) Update(ctx context.Context, id string, fields map[string]any) (*models.Record, *Task, error) {
	prev, err := f.live(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	f.clock.Observe(prev.UpdatedAt)
	rec := prev.Clone()
	rec.Fields = fields
	rec.UpdatedAt = f.clock.Now()
	rec.Synced = false

	if err := f.records.Put(ctx, rec); err != nil {
		return nil, nil, storage.WrapLocal("update record", err)
	}

	task := f.schedule(ctx, models.ActionUpdate, rec, func(ctx context.Context) error {
		_, err := f.gateway.Update(ctx, rec.Table, rec.ID, rec.Fields, rec.UpdatedAt)
		if errors.Is(err, gateway.ErrNotFound) {
			// an earlier create never reached the remote store
			_, err = f.gateway.Create(ctx, rec.Table, rec)
		}
		return err
	})
	return rec.Clone(), task, nil
}

// Delete tombstones a live record
func (f *Facade) Delete(ctx context.Context, id string) (*Task, error) {
	prev, err := f.live(ctx, id)
	if err != nil {
		return nil, err
	}

	f.clock.Observe(prev.UpdatedAt)
	tomb, err := f.records.SoftDelete(ctx, id, f.clock.Now())
	if err != nil {
		return nil, storage.WrapLocal("delete record", err)
	}

	task := f.schedule(ctx, models.ActionDelete, tomb, func(ctx context.Context) error {
		err := f.gateway.SoftDelete(ctx, tomb.Table, tomb.ID, *tomb.DeletedAt)
		if errors.Is(err, gateway.ErrNotFound) {
			return nil
		}
		return err
	})
	return task, nil
}

// Get returns a live record of the signed-in owner from the local store
func (f *Facade) Get(ctx context.Context, id string) (*models.Record, error) {
	return f.live(ctx, id)
}

// List returns the owner's live records of table, newest first
func (f *Facade) List(ctx context.Context, table string) ([]*models.Record, error) {
	ownerID, err := f.state.RequireOwner()
	if err != nil {
		return nil, err
	}
	if !models.IsKnownTable(table) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}

	all, err := f.records.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, storage.WrapLocal("list records", err)
	}

	out := make([]*models.Record, 0, len(all))
	for _, rec := range all {
		if rec.Table == table && !rec.IsDeleted() {
			out = append(out, rec)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Wait blocks until every direct write started so far has finished
func (f *Facade) Wait() {
	f.wg.Wait()
}

func (f *Facade) live(ctx context.Context, id string) (*models.Record, error) {
	ownerID, err := f.state.RequireOwner()
	if err != nil {
		return nil, err
	}

	rec, err := f.records.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return nil, err
		}
		return nil, storage.WrapLocal("get record", err)
	}
	if rec.OwnerID != ownerID || rec.IsDeleted() {
		return nil, storage.ErrRecordNotFound
	}
	return rec, nil
}

// chain registers task as the latest direct write for id and returns the one
// it must wait for, if any
func (f *Facade) chain(id string, task *Task) *Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev := f.last[id]
	f.last[id] = task
	return prev
}

func (f *Facade) unchain(id string, task *Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.last[id] == task {
		delete(f.last, id)
	}
}

// schedule enqueues the mutation for rec and, when online, starts the direct
// write. Both steps are best effort once the local write has committed.
func (f *Facade) schedule(ctx context.Context, action models.Action, rec *models.Record, write func(context.Context) error) *Task {
	entry, err := f.queue.Enqueue(ctx, rec.OwnerID, action, rec.Table, rec.ID, models.PayloadFromRecord(rec))
	if err != nil {
		f.logger.Error("Failed to enqueue mutation",
			"action", action,
			"record_id", rec.ID,
			"error", err)
	}

	task := newTask(entry, err)
	if !f.state.Online() {
		task.finish(session.ErrOffline)
		return task
	}

	// the write outlives the caller's request; the gateway bounds it
	writeCtx := context.WithoutCancel(ctx)
	updatedAt := rec.UpdatedAt
	prev := f.chain(rec.ID, task)

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		defer f.unchain(rec.ID, task)

		// writes to one record reach the remote store in the order they were made
		if prev != nil {
			<-prev.Done()
		}

		err := write(writeCtx)
		if err != nil {
			f.logger.Warn("Direct remote write failed, left to the queue",
				"action", action,
				"record_id", rec.ID,
				"error", err)
			task.finish(err)
			return
		}

		if _, err := f.records.MarkSynced(writeCtx, rec.ID, updatedAt); err != nil {
			f.logger.Warn("Failed to mark record synced", "record_id", rec.ID, "error", err)
		}
		f.logger.Debug("Direct remote write confirmed", "action", action, "record_id", rec.ID)
		task.finish(nil)
	}()

	return task
}

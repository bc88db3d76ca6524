package facade

import (
	"context"
	"fmt"

	"github.com/iudanet/medicnote/internal/client/gateway"
	"github.com/iudanet/medicnote/internal/client/session"
	"github.com/iudanet/medicnote/internal/client/storage"
	"github.com/iudanet/medicnote/internal/models"
)

// MergeResult counts what a merge changed
type MergeResult struct {
	Pulled     int // remote records written locally
	Pushed     int // local-only records created remotely
	Tombstoned int // local records deleted remotely in the meantime
}

// MergeOnInit aligns the local store with the remote store once at start.
// Remote records are folded in unless the local copy is newer; live records
// the remote store does not list are pushed by id. A push rejected as a
// duplicate means the remote store holds only a tombstone for that id, so the
// local copy is tombstoned too. Offline it returns session.ErrOffline and
// leaves everything to the queue.
func (f *Facade) MergeOnInit(ctx context.Context) (MergeResult, error) {
	var result MergeResult

	ownerID, err := f.state.RequireOwner()
	if err != nil {
		return result, err
	}
	if !f.state.Online() {
		return result, session.ErrOffline
	}

	f.logger.Info("Starting merge on init", "owner_id", ownerID)

	local, err := f.records.ListByOwner(ctx, ownerID)
	if err != nil {
		return result, storage.WrapLocal("list records", err)
	}

	for _, table := range models.Tables {
		if err := f.mergeTable(ctx, ownerID, table, local, &result); err != nil {
			return result, err
		}
	}

	f.logger.Info("Merge on init finished",
		"owner_id", ownerID,
		"pulled", result.Pulled,
		"pushed", result.Pushed,
		"tombstoned", result.Tombstoned)
	return result, nil
}

func (f *Facade) mergeTable(ctx context.Context, ownerID, table string, local []*models.Record, result *MergeResult) error {
	remote, err := f.gateway.FetchAll(ctx, table, ownerID)
	if err != nil {
		return fmt.Errorf("failed to fetch remote %s: %w", table, err)
	}

	remoteIDs := make(map[string]bool, len(remote))
	for _, rec := range remote {
		remoteIDs[rec.ID] = true

		view := rec.Clone()
		view.Table = table
		view.OwnerID = ownerID
		applied, err := f.records.ApplyRemote(ctx, view)
		if err != nil {
			return storage.WrapLocal("apply remote record", err)
		}
		if applied {
			result.Pulled++
		}
	}

	for _, rec := range local {
		if rec.Table != table || rec.IsDeleted() || remoteIDs[rec.ID] {
			continue
		}

		_, err := f.gateway.Create(ctx, table, rec)
		switch {
		case err == nil:
			result.Pushed++
			if _, err := f.records.MarkSynced(ctx, rec.ID, rec.UpdatedAt); err != nil {
				f.logger.Warn("Failed to mark record synced", "record_id", rec.ID, "error", err)
			}

		case gateway.IsConflict(err):
			if err := f.tombstone(ctx, rec); err != nil {
				return err
			}
			result.Tombstoned++

		default:
			return fmt.Errorf("failed to push local record %s: %w", rec.ID, err)
		}
	}

	return nil
}

// tombstone records a remote deletion the device has not seen yet
func (f *Facade) tombstone(ctx context.Context, rec *models.Record) error {
	f.clock.Observe(rec.UpdatedAt)
	at := f.clock.Now()

	tomb := rec.Clone()
	tomb.DeletedAt = &at
	tomb.UpdatedAt = at
	tomb.Synced = true

	if err := f.records.Put(ctx, tomb); err != nil {
		return storage.WrapLocal("tombstone record", err)
	}
	f.logger.Info("Record deleted remotely, tombstoned locally", "record_id", rec.ID)
	return nil
}

package boltdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/medicnote/internal/client/storage"
	"github.com/iudanet/medicnote/internal/lww"
	"github.com/iudanet/medicnote/internal/models"
)

// Put upserts a record by id
func (s *Storage) Put(ctx context.Context, rec *models.Record) error {
	if s.closed.Load() {
		return storage.WrapLocal("put record", storage.ErrStorageClosed)
	}
	if rec.ID == "" || rec.OwnerID == "" {
		return storage.WrapLocal("put record", errors.New("record id and owner id are required"))
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		return putRecord(tx, rec)
	})
	if err != nil {
		return storage.WrapLocal("put record", err)
	}

	kind := storage.ChangePut
	if rec.IsDeleted() {
		kind = storage.ChangeDelete
	}
	s.publish(rec, kind)
	return nil
}

// Get retrieves a record by id
func (s *Storage) Get(ctx context.Context, id string) (*models.Record, error) {
	if s.closed.Load() {
		return nil, storage.WrapLocal("get record", storage.ErrStorageClosed)
	}

	var rec *models.Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		rec, err = getRecord(tx, id)
		if err != nil {
			return err
		}
		if rec == nil {
			return storage.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, storage.WrapLocal("get record", err)
	}

	return rec, nil
}

// ListByOwner returns the owner's non-deleted records
func (s *Storage) ListByOwner(ctx context.Context, ownerID string) ([]*models.Record, error) {
	records, err := s.listIndexed(bucketRecordsByOwner, ownerID)
	if err != nil {
		return nil, storage.WrapLocal("list records", err)
	}

	live := records[:0]
	for _, rec := range records {
		if !rec.IsDeleted() {
			live = append(live, rec)
		}
	}
	return live, nil
}

// ListUnsynced returns the owner's records not yet known to be remote
func (s *Storage) ListUnsynced(ctx context.Context, ownerID string) ([]*models.Record, error) {
	records, err := s.listIndexed(bucketUnsynced, ownerID)
	if err != nil {
		return nil, storage.WrapLocal("list unsynced records", err)
	}
	return records, nil
}

// SoftDelete marks the record as deleted at the given time.
// Deleting a tombstone again returns it unchanged.
func (s *Storage) SoftDelete(ctx context.Context, id string, at time.Time) (*models.Record, error) {
	if s.closed.Load() {
		return nil, storage.WrapLocal("soft delete record", storage.ErrStorageClosed)
	}

	var (
		rec     *models.Record
		changed bool
	)
	err := s.db.Update(func(tx *bbolt.Tx) error {
		var err error
		rec, err = getRecord(tx, id)
		if err != nil {
			return err
		}
		if rec == nil {
			return storage.ErrRecordNotFound
		}
		if rec.IsDeleted() {
			return nil
		}

		deletedAt := at
		rec.DeletedAt = &deletedAt
		rec.UpdatedAt = at
		rec.Synced = false
		changed = true
		return putRecord(tx, rec)
	})
	if err != nil {
		return nil, storage.WrapLocal("soft delete record", err)
	}

	if changed {
		s.publish(rec, storage.ChangeDelete)
	}
	return rec, nil
}

// ApplyRemote stores the remote version unless the local copy is strictly newer
func (s *Storage) ApplyRemote(ctx context.Context, rec *models.Record) (bool, error) {
	if s.closed.Load() {
		return false, storage.WrapLocal("apply remote record", storage.ErrStorageClosed)
	}

	remote := rec.Clone()
	remote.Synced = true

	var applied bool
	err := s.db.Update(func(tx *bbolt.Tx) error {
		existing, err := getRecord(tx, remote.ID)
		if err != nil {
			return err
		}
		if existing != nil && lww.IsNewer(existing, remote) {
			return nil
		}
		applied = true
		return putRecord(tx, remote)
	})
	if err != nil {
		return false, storage.WrapLocal("apply remote record", err)
	}

	if applied {
		s.publish(remote, storage.ChangeApplied)
	}
	return applied, nil
}

// MarkSynced flags the record as synced if it is still at version updatedAt
func (s *Storage) MarkSynced(ctx context.Context, id string, updatedAt time.Time) (bool, error) {
	if s.closed.Load() {
		return false, storage.WrapLocal("mark record synced", storage.ErrStorageClosed)
	}

	var (
		rec    *models.Record
		marked bool
	)
	err := s.db.Update(func(tx *bbolt.Tx) error {
		var err error
		rec, err = getRecord(tx, id)
		if err != nil {
			return err
		}
		if rec == nil {
			return storage.ErrRecordNotFound
		}
		if rec.Synced || !rec.UpdatedAt.Equal(updatedAt) {
			return nil
		}
		rec.Synced = true
		marked = true
		return putRecord(tx, rec)
	})
	if err != nil {
		return false, storage.WrapLocal("mark record synced", err)
	}

	if marked {
		s.publish(rec, storage.ChangeSynced)
	}
	return marked, nil
}

// listIndexed loads every record referenced by the owner's bucket under index
func (s *Storage) listIndexed(index []byte, ownerID string) ([]*models.Record, error) {
	if s.closed.Load() {
		return nil, storage.ErrStorageClosed
	}

	var records []*models.Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		idx, err := ownerBucket(tx, index, ownerID, false)
		if err != nil {
			return err
		}
		if idx == nil {
			return nil
		}

		return idx.ForEach(func(k, _ []byte) error {
			rec, err := getRecord(tx, string(k))
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("index %s references missing record %s", index, k)
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (s *Storage) publish(rec *models.Record, kind storage.ChangeKind) {
	s.changes.Publish(storage.Change{
		OwnerID:  rec.OwnerID,
		RecordID: rec.ID,
		Table:    rec.Table,
		Kind:     kind,
	})
}

// getRecord returns nil without error when the id is unknown
func getRecord(tx *bbolt.Tx, id string) (*models.Record, error) {
	bucket := tx.Bucket(bucketRecords)
	if bucket == nil {
		return nil, fmt.Errorf("bucket %s not found", bucketRecords)
	}

	data := bucket.Get([]byte(id))
	if data == nil {
		return nil, nil
	}

	rec := &models.Record{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return rec, nil
}

// putRecord writes the record and keeps owner and sync-status indexes in step
func putRecord(tx *bbolt.Tx, rec *models.Record) error {
	previous, err := getRecord(tx, rec.ID)
	if err != nil {
		return err
	}
	if previous != nil && previous.OwnerID != rec.OwnerID {
		if err := unindexRecord(tx, previous); err != nil {
			return err
		}
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := tx.Bucket(bucketRecords).Put([]byte(rec.ID), data); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	byOwner, err := ownerBucket(tx, bucketRecordsByOwner, rec.OwnerID, true)
	if err != nil {
		return err
	}
	if err := byOwner.Put([]byte(rec.ID), []byte(rec.Table)); err != nil {
		return fmt.Errorf("failed to index record by owner: %w", err)
	}

	unsynced, err := ownerBucket(tx, bucketUnsynced, rec.OwnerID, true)
	if err != nil {
		return err
	}
	if rec.Synced {
		err = unsynced.Delete([]byte(rec.ID))
	} else {
		err = unsynced.Put([]byte(rec.ID), []byte{})
	}
	if err != nil {
		return fmt.Errorf("failed to update unsynced index: %w", err)
	}

	return nil
}

func unindexRecord(tx *bbolt.Tx, rec *models.Record) error {
	for _, index := range [][]byte{bucketRecordsByOwner, bucketUnsynced} {
		b, err := ownerBucket(tx, index, rec.OwnerID, false)
		if err != nil {
			return err
		}
		if b == nil {
			continue
		}
		if err := b.Delete([]byte(rec.ID)); err != nil {
			return fmt.Errorf("failed to remove record from %s: %w", index, err)
		}
	}
	return nil
}

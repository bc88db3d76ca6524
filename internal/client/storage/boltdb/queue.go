package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/medicnote/internal/client/storage"
	"github.com/iudanet/medicnote/internal/models"
)

// AppendEntry stores a new mutation entry together with its indexes
func (s *Storage) AppendEntry(ctx context.Context, entry *models.MutationEntry) error {
	if s.closed.Load() {
		return storage.WrapLocal("append entry", storage.ErrStorageClosed)
	}
	if entry.EntryID == "" || entry.OwnerID == "" {
		return storage.WrapLocal("append entry", errors.New("entry id and owner id are required"))
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		existing, err := getEntry(tx, entry.EntryID)
		if err != nil {
			return err
		}
		if existing != nil {
			return storage.ErrEntryExists
		}
		return putEntry(tx, nil, entry)
	})
	if err != nil {
		return storage.WrapLocal("append entry", err)
	}

	return nil
}

// GetEntry retrieves a mutation entry by id
func (s *Storage) GetEntry(ctx context.Context, entryID string) (*models.MutationEntry, error) {
	if s.closed.Load() {
		return nil, storage.WrapLocal("get entry", storage.ErrStorageClosed)
	}

	var entry *models.MutationEntry
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		entry, err = getEntry(tx, entryID)
		if err != nil {
			return err
		}
		if entry == nil {
			return storage.ErrEntryNotFound
		}
		return nil
	})
	if err != nil {
		return nil, storage.WrapLocal("get entry", err)
	}

	return entry, nil
}

// ListEntries returns all entries of the owner in id order
func (s *Storage) ListEntries(ctx context.Context, ownerID string) ([]*models.MutationEntry, error) {
	entries, err := s.listEntryIndex(bucketQueueByOwner, ownerID, func(k, _ []byte) string { return string(k) })
	if err != nil {
		return nil, storage.WrapLocal("list entries", err)
	}
	return entries, nil
}

// ListPendingEntries returns the owner's pending entries ordered by created_at, then entry id
func (s *Storage) ListPendingEntries(ctx context.Context, ownerID string) ([]*models.MutationEntry, error) {
	entries, err := s.listEntryIndex(bucketQueuePending, ownerID, func(_, v []byte) string { return string(v) })
	if err != nil {
		return nil, storage.WrapLocal("list pending entries", err)
	}
	return entries, nil
}

// UpdateEntry applies fn to the stored entry inside one transaction
func (s *Storage) UpdateEntry(ctx context.Context, entryID string, fn func(entry *models.MutationEntry) bool) (*models.MutationEntry, error) {
	if s.closed.Load() {
		return nil, storage.WrapLocal("update entry", storage.ErrStorageClosed)
	}

	var updated *models.MutationEntry
	err := s.db.Update(func(tx *bbolt.Tx) error {
		previous, err := getEntry(tx, entryID)
		if err != nil {
			return err
		}
		if previous == nil {
			return storage.ErrEntryNotFound
		}

		next := *previous
		if !fn(&next) {
			updated = previous
			return nil
		}

		// identity and payload are immutable
		next.EntryID = previous.EntryID
		next.OwnerID = previous.OwnerID
		next.CreatedAt = previous.CreatedAt
		next.Action = previous.Action
		next.TargetTable = previous.TargetTable
		next.TargetRecordID = previous.TargetRecordID
		next.Payload = previous.Payload

		updated = &next
		return putEntry(tx, previous, &next)
	})
	if err != nil {
		return nil, storage.WrapLocal("update entry", err)
	}

	return updated, nil
}

func (s *Storage) listEntryIndex(index []byte, ownerID string, idOf func(k, v []byte) string) ([]*models.MutationEntry, error) {
	if s.closed.Load() {
		return nil, storage.ErrStorageClosed
	}

	var entries []*models.MutationEntry
	err := s.db.View(func(tx *bbolt.Tx) error {
		idx, err := ownerBucket(tx, index, ownerID, false)
		if err != nil {
			return err
		}
		if idx == nil {
			return nil
		}

		// bbolt iterates keys in byte order, which is the queue order for the pending index
		return idx.ForEach(func(k, v []byte) error {
			id := idOf(k, v)
			entry, err := getEntry(tx, id)
			if err != nil {
				return err
			}
			if entry == nil {
				return fmt.Errorf("index %s references missing entry %s", index, id)
			}
			entries = append(entries, entry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// pendingKey orders entries by created_at, ties broken by entry id
func pendingKey(entry *models.MutationEntry) []byte {
	key := make([]byte, 8, 8+len(entry.EntryID))
	binary.BigEndian.PutUint64(key, uint64(entry.CreatedAt.UnixNano()))
	return append(key, entry.EntryID...)
}

func getEntry(tx *bbolt.Tx, entryID string) (*models.MutationEntry, error) {
	bucket := tx.Bucket(bucketQueue)
	if bucket == nil {
		return nil, fmt.Errorf("bucket %s not found", bucketQueue)
	}

	data := bucket.Get([]byte(entryID))
	if data == nil {
		return nil, nil
	}

	entry := &models.MutationEntry{}
	if err := json.Unmarshal(data, entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
	}
	return entry, nil
}

// putEntry writes entry and moves it between status indexes. previous is nil for new entries.
func putEntry(tx *bbolt.Tx, previous, entry *models.MutationEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	if err := tx.Bucket(bucketQueue).Put([]byte(entry.EntryID), data); err != nil {
		return fmt.Errorf("failed to save entry: %w", err)
	}

	byOwner, err := ownerBucket(tx, bucketQueueByOwner, entry.OwnerID, true)
	if err != nil {
		return err
	}
	if err := byOwner.Put([]byte(entry.EntryID), []byte{}); err != nil {
		return fmt.Errorf("failed to index entry by owner: %w", err)
	}

	pending, err := ownerBucket(tx, bucketQueuePending, entry.OwnerID, true)
	if err != nil {
		return err
	}

	wasPending := previous != nil && previous.Status == models.StatusPending
	isPending := entry.Status == models.StatusPending
	switch {
	case isPending && !wasPending:
		err = pending.Put(pendingKey(entry), []byte(entry.EntryID))
	case !isPending && wasPending:
		err = pending.Delete(pendingKey(previous))
	}
	if err != nil {
		return fmt.Errorf("failed to update pending index: %w", err)
	}

	return nil
}

package boltdb

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.etcd.io/bbolt"

	"github.com/iudanet/medicnote/internal/client/notify"
	"github.com/iudanet/medicnote/internal/client/storage"
)

var (
	// BoltDB bucket names
	bucketAuth           = []byte("auth")
	bucketRecords        = []byte("records")          // id -> record JSON
	bucketRecordsByOwner = []byte("records_by_owner") // owner/ -> id -> table
	bucketUnsynced       = []byte("records_unsynced") // owner/ -> id
	bucketQueue          = []byte("queue")            // entry id -> entry JSON
	bucketQueueByOwner   = []byte("queue_by_owner")   // owner/ -> entry id
	bucketQueuePending   = []byte("queue_pending")    // owner/ -> created_at|entry id -> entry id

	allBuckets = [][]byte{
		bucketAuth,
		bucketRecords,
		bucketRecordsByOwner,
		bucketUnsynced,
		bucketQueue,
		bucketQueueByOwner,
		bucketQueuePending,
	}
)

// changeBuffer is the per-subscriber buffer of the change feed
const changeBuffer = 64

// Storage represents BoltDB storage implementation for client.
// It implements storage.RecordStorage, storage.QueueStorage and storage.AuthStorage.
type Storage struct {
	db      *bbolt.DB
	changes *notify.Broadcaster[storage.Change]
	closed  atomic.Bool
}

var (
	_ storage.RecordStorage = (*Storage)(nil)
	_ storage.QueueStorage  = (*Storage)(nil)
	_ storage.AuthStorage   = (*Storage)(nil)
)

// New creates a new BoltDB storage instance
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string) (*Storage, error) {
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	s := &Storage{
		db:      db,
		changes: notify.NewBroadcaster[storage.Change](changeBuffer),
	}

	if err := s.initBuckets(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return s, nil
}

// Close closes the database connection and the change feed
func (s *Storage) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	// bbolt waits for open transactions before closing
	err := s.db.Close()
	s.changes.Close()
	return err
}

// Subscribe returns a feed of committed changes to the owner's records.
func (s *Storage) Subscribe(ownerID string) (<-chan storage.Change, func()) {
	return s.changes.Subscribe(func(c storage.Change) bool {
		return c.OwnerID == ownerID
	})
}

// initBuckets creates top-level buckets if they do not exist
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

// ownerBucket returns the nested per-owner bucket under parent.
// With create=false a missing bucket yields nil without error.
func ownerBucket(tx *bbolt.Tx, parent []byte, ownerID string, create bool) (*bbolt.Bucket, error) {
	root := tx.Bucket(parent)
	if root == nil {
		return nil, fmt.Errorf("bucket %s not found", parent)
	}
	if !create {
		return root.Bucket([]byte(ownerID)), nil
	}
	b, err := root.CreateBucketIfNotExists([]byte(ownerID))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s bucket for owner: %w", parent, err)
	}
	return b, nil
}
